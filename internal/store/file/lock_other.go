//go:build !unix

package file

// lockFile is a no-op where flock is unavailable; callers fall back to the
// single-writer assumption.
func lockFile(string) (func() error, error) {
	return func() error { return nil }, nil
}
