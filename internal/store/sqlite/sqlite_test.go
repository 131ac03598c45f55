package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/maloquacious/vista/internal/store"
)

func openTestStore(t *testing.T, schema string) *SQLiteStore {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "history", store.DefaultHistoryFile), schema)
	if err := s.Open(); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCheckStateLifecycle(t *testing.T) {
	s := openTestStore(t, SchemaVersion)

	state, err := s.CheckState()
	if err != nil {
		t.Fatalf("CheckState() error = %v", err)
	}
	if state != store.StateUninitialized {
		t.Errorf("got %v, want %v", state, store.StateUninitialized)
	}

	if err := s.InitSchema(SchemaVersion); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}
	state, err = s.CheckState()
	if err != nil {
		t.Fatalf("CheckState() error = %v", err)
	}
	if state != store.StateReady {
		t.Errorf("got %v, want %v", state, store.StateReady)
	}

	// Re-running the migration is harmless.
	if err := s.InitSchema(SchemaVersion); err != nil {
		t.Fatalf("second InitSchema() error = %v", err)
	}
	v, err := s.GetSchemaVersion()
	if err != nil {
		t.Fatalf("GetSchemaVersion() error = %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("got %q, want %q", v, SchemaVersion)
	}
}

func TestCheckStateMismatch(t *testing.T) {
	s := openTestStore(t, "2")
	if err := s.InitSchema(SchemaVersion); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}

	state, err := s.CheckState()
	if err != nil {
		t.Fatalf("CheckState() error = %v", err)
	}
	if state != store.StateVersionMismatch {
		t.Errorf("got %v, want %v", state, store.StateVersionMismatch)
	}
}

func TestNotOpened(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "x.db"), SchemaVersion)
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"InitSchema", func() error { return s.InitSchema(SchemaVersion) }},
		{"CheckState", func() error { _, err := s.CheckState(); return err }},
		{"GetSchemaVersion", func() error { _, err := s.GetSchemaVersion(); return err }},
		{"Record", func() error { return s.Record(ctx, store.HistoryEntry{}) }},
		{"List", func() error { _, err := s.List(ctx, 0); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); err == nil {
				t.Error("expected error but got none")
			}
		})
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close() on unopened store error = %v", err)
	}
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t, SchemaVersion)
	if err := s.InitSchema(SchemaVersion); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	ctx := context.Background()
	bumps := []store.HistoryEntry{
		{Operation: "bump-build", OldVersion: "1.2.3.4", NewVersion: "1.2.3.5", File: "version.properties"},
		{Operation: "bump-minor", OldVersion: "1.2.3.5", NewVersion: "1.3.0.0", File: "version.properties"},
		{ID: "fixed-id", Operation: "bump-build", OldVersion: "1.3.0.0", NewVersion: "1.3.0.1", File: "version.properties"},
	}
	for _, b := range bumps {
		if err := s.Record(ctx, b); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].ID != "fixed-id" {
		t.Errorf("got id %q, want %q", all[0].ID, "fixed-id")
	}
	if all[0].NewVersion != "1.3.0.1" {
		t.Errorf("got new version %q, want %q", all[0].NewVersion, "1.3.0.1")
	}
	if all[1].Operation != "bump-minor" {
		t.Errorf("got operation %q, want %q", all[1].Operation, "bump-minor")
	}
	if all[2].ID == "" {
		t.Error("expected a generated id")
	}
	if !all[0].AppliedAt.After(all[1].AppliedAt) {
		t.Errorf("entries not newest first: %v then %v", all[0].AppliedAt, all[1].AppliedAt)
	}

	latest, err := s.List(ctx, 1)
	if err != nil {
		t.Fatalf("List(1) error = %v", err)
	}
	if len(latest) != 1 || latest[0].ID != "fixed-id" {
		t.Errorf("got %+v, want only fixed-id", latest)
	}
}
