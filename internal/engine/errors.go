package engine

import "fmt"

// OpError reports a storage failure during an engine operation.
// Malformed version data never produces an OpError; only I/O does.
type OpError struct {
	// Operation during which the error occurred
	Op Operation

	// Path of the version file
	Path string

	// Underlying error
	Err error
}

func (e *OpError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
