package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maloquacious/vista/internal/engine"
	"github.com/maloquacious/vista/internal/render"
	"github.com/maloquacious/vista/internal/store"
	"github.com/maloquacious/vista/internal/store/sqlite"
	"github.com/maloquacious/vista/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

func (a *app) bumpCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "bump <major|minor|patch|build>",
		Short: "Increment one version part and reset the finer ones",
		Long: `Increment one version part and save the file.

  major  zeroes minor, patch and build
  minor  zeroes patch and build
  patch  zeroes build
  build  changes nothing else

A missing file counts as 0.0.0.0 and is created. Unparsable values count as 0.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"major", "minor", "patch", "build"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := engine.ParseComponent(args[0])
			if err != nil {
				return err
			}
			e, closeFn, err := a.engine()
			if err != nil {
				return err
			}
			defer closeFn()

			var res engine.Result
			if dryRun {
				res, err = e.Preview(a.cmdContext(cmd), c)
			} else {
				res, err = e.Bump(a.cmdContext(cmd), c)
			}
			if err != nil {
				return err
			}
			return a.printer.Bump(res)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the result without writing the file")
	return cmd
}

func (a *app) effectiveCmd() *cobra.Command {
	var tag bool
	cmd := &cobra.Command{
		Use:   "effective",
		Short: "Print the effective version after environment overrides",
		Long: `Print MAJOR.MINOR.PATCH.BUILD, taking each part from its VISTA_* environment
variable when set to a number, else from the file, else 0. Never writes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := a.engine()
			if err != nil {
				return err
			}
			defer closeFn()

			v, err := e.EffectiveComponents(a.lookup)
			if err != nil {
				return err
			}
			out := render.EffectiveOutput{Version: v.String()}
			if tag {
				out.Tag = semver.Canonical(v.Tag())
				if out.Tag == "" {
					return fmt.Errorf("%s is not a valid release tag", v.Tag())
				}
			}
			return a.printer.Effective(out, tag)
		},
	}
	cmd.Flags().BoolVar(&tag, "tag", false, "print the release tag vMAJOR.MINOR.PATCH instead")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show each version part and where its effective value comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := a.engine()
			if err != nil {
				return err
			}
			defer closeFn()

			state, err := e.State()
			if err != nil {
				return err
			}
			persisted, err := e.Current()
			if err != nil {
				return err
			}
			resolved, err := e.Resolve(a.lookup)
			if err != nil {
				return err
			}
			return a.printer.Show(render.NewShowOutput(a.versionFile(), state, persisted, resolved))
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded bumps, newest first",
		Long: `List recorded bumps, newest first.

Bumps are recorded only when a history database is configured with
--history-db or VISTA_HISTORY_DB. The database is created on first use;
"history init" creates it ahead of time and "history verify" checks it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireHistory(); err != nil {
				return err
			}
			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			entries, err := h.List(a.cmdContext(cmd), limit)
			if err != nil {
				return err
			}
			return a.printer.History(entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show (0 for all)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create the history database and apply its schema",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireHistory(); err != nil {
					return err
				}
				h, err := a.openHistory()
				if err != nil {
					return err
				}
				defer h.Close()
				return a.printLedger(h, store.StateReady, "initialized")
			},
		},
		&cobra.Command{
			Use:   "verify",
			Short: "Verify the history database schema without changing it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireHistory(); err != nil {
					return err
				}
				exists, err := store.CheckExists(a.cfg.HistoryDB)
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("history database %s does not exist: run 'vista history init'", a.cfg.HistoryDB)
				}

				h := sqlite.New(a.cfg.HistoryDB, sqlite.SchemaVersion)
				if err := h.Open(); err != nil {
					return err
				}
				defer h.Close()

				state, err := h.CheckState()
				if err != nil {
					return err
				}
				if state != store.StateReady {
					return fmt.Errorf("history database %s is %s", a.cfg.HistoryDB, state)
				}
				return a.printLedger(h, state, "verified")
			},
		},
	)
	return cmd
}

func (a *app) requireHistory() error {
	if a.cfg.HistoryDB == "" {
		return errors.New("history is disabled: set --history-db or VISTA_HISTORY_DB")
	}
	return nil
}

func (a *app) printLedger(h *sqlite.SQLiteStore, state store.StoreState, verb string) error {
	schema, err := h.GetSchemaVersion()
	if err != nil {
		return err
	}
	return a.printer.Ledger(render.LedgerOutput{
		Database: a.cfg.HistoryDB,
		State:    state.String(),
		Schema:   schema,
	}, verb)
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the effective version every time the file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := a.engine()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, stop := signal.NotifyContext(a.cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.runWatch(ctx, e)
		},
	}
}

func (a *app) runWatch(ctx context.Context, e *engine.Engine) error {
	last := ""
	w := watch.New(a.versionFile(), a.log)
	return w.Run(ctx, func() error {
		v, err := e.Effective(a.lookup)
		if err != nil {
			// Read failures are logged and the watch continues.
			a.log.Warn("%v", err)
			return nil
		}
		if v == last {
			return nil
		}
		last = v
		return a.printer.Watch(time.Now(), v)
	})
}
