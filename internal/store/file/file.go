package file

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maloquacious/vista/internal/props"
	"github.com/maloquacious/vista/internal/store"
)

// FileStore implements the Store interface on a properties file.
type FileStore struct {
	path string
	perm os.FileMode
}

// New creates a new FileStore for path.
func New(path string) *FileStore {
	return &FileStore{
		path: path,
		perm: 0644,
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing or empty file yields an empty snapshot.
func (s *FileStore) Load() (*props.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return props.New(), nil
		}
		return nil, fmt.Errorf("failed to read version file: %w", err)
	}
	snap, err := props.Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse version file %s: %w", s.path, err)
	}
	return snap, nil
}

// Save writes the snapshot to a temp file next to the target and renames it
// into place, so a failed write leaves the previous file intact.
func (s *FileStore) Save(snap *props.Snapshot) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create version file directory: %w", err)
	}

	perm := s.perm
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := snap.WriteTo(tmp); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace version file: %w", err)
	}
	committed = true
	return nil
}

// State reports whether the version file exists and has entries.
func (s *FileStore) State() (store.StoreState, error) {
	exists, err := store.CheckExists(s.path)
	if err != nil {
		return store.StateMissing, err
	}
	if !exists {
		return store.StateMissing, nil
	}
	snap, err := s.Load()
	if err != nil {
		return store.StateMissing, err
	}
	if snap.Len() == 0 {
		return store.StateUninitialized, nil
	}
	return store.StateReady, nil
}

// Lock takes an exclusive advisory lock on a sibling lock file.
func (s *FileStore) Lock() (func() error, error) {
	return lockFile(store.GetLockPath(s.path))
}

var (
	_ store.Store  = (*FileStore)(nil)
	_ store.Locker = (*FileStore)(nil)
)
