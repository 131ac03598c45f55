package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/maloquacious/semver"
	"github.com/maloquacious/vista/internal/config"
	"github.com/maloquacious/vista/internal/engine"
	"github.com/maloquacious/vista/internal/logger"
	"github.com/maloquacious/vista/internal/render"
	"github.com/maloquacious/vista/internal/store"
	"github.com/maloquacious/vista/internal/store/file"
	"github.com/maloquacious/vista/internal/store/sqlite"
	"github.com/spf13/cobra"
)

var (
	version = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
)

func main() {
	a := newApp(os.Stdout, os.Stderr, os.LookupEnv)
	if err := a.rootCmd().Execute(); err != nil {
		a.reportError(err)
		os.Exit(1)
	}
}

// app carries what every command needs once flags are parsed.
type app struct {
	out    io.Writer
	errOut io.Writer
	lookup engine.LookupFunc

	cfg     config.Config
	log     logger.Logger
	printer *render.Printer
}

func newApp(out, errOut io.Writer, lookup engine.LookupFunc) *app {
	return &app{
		out:    out,
		errOut: errOut,
		lookup: lookup,
		cfg:    config.Defaults(),
		log:    logger.Default,
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vista",
		Short: "Manage a MAJOR.MINOR.PATCH.BUILD version kept in a properties file",
		Long: `vista keeps a four-part version in version.properties:

  VERSION_MAJOR=1
  VERSION_MINOR=2
  VERSION_PATCH=3
  BUILD_NUMBER=4

Bumping a part resets every finer part to zero. The effective version may be
overridden per part with VISTA_VERSION_MAJOR, VISTA_VERSION_MINOR,
VISTA_VERSION_PATCH and VISTA_BUILD_NUMBER; bumps ignore those variables.`,
		Version:           version.String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// Global flags
	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		a.bumpCmd(),
		a.effectiveCmd(),
		a.showCmd(),
		a.historyCmd(),
		a.watchCmd(),
	)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)
	return rootCmd
}

// setup resolves configuration and builds the logger and printer.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(a.errOut, logger.ParseLevel(cfg.LogLevel))
	a.printer = render.New(a.out, cfg.Output, cfg.NoColor)
	return nil
}

func (a *app) versionFile() string {
	return store.GetFilePath("", a.cfg.File)
}

// engine opens the version store and, when configured, the history ledger.
// The returned func closes whatever was opened.
func (a *app) engine() (*engine.Engine, func(), error) {
	opts := []engine.Option{engine.WithLogger(a.log)}
	closeFn := func() {}

	if a.cfg.HistoryDB != "" {
		h, err := a.openHistory()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, engine.WithHistory(h))
		closeFn = func() {
			if err := h.Close(); err != nil {
				a.log.Warn("closing history: %v", err)
			}
		}
	}

	return engine.New(file.New(a.versionFile()), opts...), closeFn, nil
}

func (a *app) openHistory() (*sqlite.SQLiteStore, error) {
	h := sqlite.New(a.cfg.HistoryDB, sqlite.SchemaVersion)
	if err := h.Open(); err != nil {
		return nil, err
	}
	if err := h.InitSchema(sqlite.SchemaVersion); err != nil {
		h.Close()
		return nil, err
	}
	state, err := h.CheckState()
	if err != nil {
		h.Close()
		return nil, err
	}
	if state != store.StateReady {
		h.Close()
		return nil, fmt.Errorf("history database %s is %s", a.cfg.HistoryDB, state)
	}
	return h, nil
}

func (a *app) reportError(err error) {
	if a.printer != nil && a.cfg.Output == config.OutputJSON {
		a.printer.Error(err)
		return
	}
	render.New(a.errOut, config.OutputText, a.cfg.NoColor).Error(err)
}

func (a *app) cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
