package store

import (
	"context"
	"time"

	"github.com/maloquacious/vista/internal/props"
)

// StoreState represents the initialization state of a backing store.
type StoreState int

const (
	StateMissing         StoreState = iota // File doesn't exist
	StateUninitialized                     // File exists but holds nothing
	StateVersionMismatch                   // Schema exists but wrong version
	StateReady                             // Initialized and usable
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateVersionMismatch:
		return "version-mismatch"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Store defines the version file contract.
// Implementations assume a single writer per operation.
type Store interface {
	// Path identifies the backing file
	Path() string

	// Load returns the persisted snapshot; a missing file yields an empty one
	Load() (*props.Snapshot, error)

	// Save replaces the persisted snapshot atomically
	Save(s *props.Snapshot) error

	// State reports whether the backing file exists and has entries
	State() (StoreState, error)
}

// Locker is implemented by stores that can hold an advisory lock across
// a load/save cycle. The returned func releases the lock.
type Locker interface {
	Lock() (unlock func() error, err error)
}

// HistoryEntry is one committed bump.
type HistoryEntry struct {
	ID         string    `json:"id" yaml:"id"`
	Operation  string    `json:"operation" yaml:"operation"`
	OldVersion string    `json:"old_version" yaml:"old_version"`
	NewVersion string    `json:"new_version" yaml:"new_version"`
	File       string    `json:"file" yaml:"file"`
	AppliedAt  time.Time `json:"applied_at" yaml:"applied_at"`
}

// History defines the bump ledger contract.
type History interface {
	// Open opens the ledger connection
	Open() error

	// Close closes the ledger connection
	Close() error

	// InitSchema creates the ledger schema if needed
	InitSchema(version string) error

	// CheckState returns the current state of the ledger
	CheckState() (StoreState, error)

	// Record appends an entry
	Record(ctx context.Context, e HistoryEntry) error

	// List returns the newest entries first, at most limit (0 means all)
	List(ctx context.Context, limit int) ([]HistoryEntry, error)
}
