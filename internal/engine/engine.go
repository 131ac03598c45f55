// Package engine implements the version state machine.
//
// A version is four counters, MAJOR.MINOR.PATCH.BUILD, kept in a properties
// file. Bumping a counter zeroes every finer one. Each call loads the file,
// applies one transition and saves it back; nothing is cached between calls.
//
// Bumps read the file only. The effective version additionally lets
// VISTA_VERSION_MAJOR, VISTA_VERSION_MINOR, VISTA_VERSION_PATCH and
// VISTA_BUILD_NUMBER override individual counters, and never writes.
//
// Concurrent writers to one file race with last-writer-wins unless the store
// implements store.Locker, in which case the lock is held for the whole
// load/save cycle.
package engine

import (
	"context"
	"fmt"

	"github.com/maloquacious/vista/internal/logger"
	"github.com/maloquacious/vista/internal/props"
	"github.com/maloquacious/vista/internal/store"
)

// Recorder receives committed bumps.
type Recorder interface {
	Record(ctx context.Context, e store.HistoryEntry) error
}

// Engine runs version operations against one store.
type Engine struct {
	store   store.Store
	log     logger.Logger
	history Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is logger.Default.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithHistory records every committed bump in r.
func WithHistory(r Recorder) Option {
	return func(e *Engine) {
		e.history = r
	}
}

// New creates an Engine over st.
func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		log:   logger.Default,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes the outcome of a bump.
type Result struct {
	Operation  Operation  `json:"operation" yaml:"operation"`
	Component  Component  `json:"component" yaml:"component"`
	File       string     `json:"file" yaml:"file"`
	Old        Components `json:"old" yaml:"old"`
	New        Components `json:"new" yaml:"new"`
	OldVersion string     `json:"old_version" yaml:"old_version"`
	NewVersion string     `json:"new_version" yaml:"new_version"`
	// Value is the new value of the bumped component.
	Value  int  `json:"value" yaml:"value"`
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// BumpMajor increments major and zeroes minor, patch and build.
func (e *Engine) BumpMajor(ctx context.Context) (Result, error) { return e.Bump(ctx, Major) }

// BumpMinor increments minor and zeroes patch and build.
func (e *Engine) BumpMinor(ctx context.Context) (Result, error) { return e.Bump(ctx, Minor) }

// BumpPatch increments patch and zeroes build.
func (e *Engine) BumpPatch(ctx context.Context) (Result, error) { return e.Bump(ctx, Patch) }

// BumpBuild increments build only.
func (e *Engine) BumpBuild(ctx context.Context) (Result, error) { return e.Bump(ctx, Build) }

// Bump increments c, resets finer components and saves the file.
// Only storage failures are returned; malformed values count as 0.
func (e *Engine) Bump(ctx context.Context, c Component) (Result, error) {
	return e.bump(ctx, c, false)
}

// Preview computes what Bump would do without touching storage.
func (e *Engine) Preview(ctx context.Context, c Component) (Result, error) {
	return e.bump(ctx, c, true)
}

func (e *Engine) bump(ctx context.Context, c Component, dryRun bool) (Result, error) {
	if !c.valid() {
		return Result{}, fmt.Errorf("unknown component %d", int(c))
	}
	op := c.Operation()
	path := e.store.Path()

	if !dryRun {
		if l, ok := e.store.(store.Locker); ok {
			unlock, lerr := l.Lock()
			if lerr != nil {
				return Result{}, &OpError{Op: op, Path: path, Err: lerr}
			}
			defer func() {
				if uerr := unlock(); uerr != nil {
					e.log.Warn("%s: releasing lock: %v", path, uerr)
				}
			}()
		}
	}

	snap, err := e.store.Load()
	if err != nil {
		return Result{}, &OpError{Op: op, Path: path, Err: err}
	}
	if snap.Len() == 0 {
		e.log.Warn("%s is missing or empty, starting from 0.0.0.0", path)
	}

	old := e.components(snap, path)
	next := old.Bump(c)
	res := Result{
		Operation:  op,
		Component:  c,
		File:       path,
		Old:        old,
		New:        next,
		OldVersion: old.String(),
		NewVersion: next.String(),
		Value:      next.Get(c),
		DryRun:     dryRun,
	}
	if dryRun {
		e.log.Debug("%s (dry run): %s -> %s", op, res.OldVersion, res.NewVersion)
		return res, nil
	}

	next.applyBump(snap, c)
	if err := e.store.Save(snap); err != nil {
		return Result{}, &OpError{Op: op, Path: path, Err: err}
	}
	e.log.Info("%s: %s -> %s", op, res.OldVersion, res.NewVersion)

	if e.history != nil {
		entry := store.HistoryEntry{
			Operation:  string(op),
			OldVersion: res.OldVersion,
			NewVersion: res.NewVersion,
			File:       path,
		}
		if herr := e.history.Record(ctx, entry); herr != nil {
			e.log.Warn("%s: recording history: %v", op, herr)
		}
	}
	return res, nil
}

// components projects snap and logs every recognized key it had to ignore.
func (e *Engine) components(snap *props.Snapshot, path string) Components {
	for _, c := range All {
		raw, ok := snap.Get(c.Key())
		if !ok {
			continue
		}
		if _, ok := props.ParseInt(raw); !ok {
			e.log.Info("%s: ignoring unparsable %s=%q, using 0", path, c.Key(), raw)
		}
	}
	return FromSnapshot(snap)
}

// Current returns the persisted components, ignoring the environment.
func (e *Engine) Current() (Components, error) {
	snap, err := e.store.Load()
	if err != nil {
		return Components{}, &OpError{Op: OpEffective, Path: e.store.Path(), Err: err}
	}
	return e.components(snap, e.store.Path()), nil
}

// Resolve returns each component's effective value and where it came from.
func (e *Engine) Resolve(lookup LookupFunc) ([]Resolved, error) {
	snap, err := e.store.Load()
	if err != nil {
		return nil, &OpError{Op: OpEffective, Path: e.store.Path(), Err: err}
	}
	return ResolveSnapshot(snap, lookup), nil
}

// Effective returns the effective version string. It never writes.
func (e *Engine) Effective(lookup LookupFunc) (string, error) {
	v, err := e.EffectiveComponents(lookup)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// EffectiveComponents is Effective before formatting.
func (e *Engine) EffectiveComponents(lookup LookupFunc) (Components, error) {
	snap, err := e.store.Load()
	if err != nil {
		return Components{}, &OpError{Op: OpEffective, Path: e.store.Path(), Err: err}
	}
	return EffectiveComponents(snap, lookup), nil
}

// State reports the version file state.
func (e *Engine) State() (store.StoreState, error) {
	return e.store.State()
}
