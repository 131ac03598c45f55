// Package render prints engine results as text, tables, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/maloquacious/vista/internal/config"
	"github.com/maloquacious/vista/internal/engine"
	"github.com/maloquacious/vista/internal/store"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// JSONResponse is the envelope for JSON output.
type JSONResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Printer writes results in one format.
type Printer struct {
	w      io.Writer
	format string
	color  bool
	now    func() time.Time
}

// New returns a Printer for format. Color is used only for text output to a
// terminal, and never when noColor is set.
func New(w io.Writer, format string, noColor bool) *Printer {
	if format == "" {
		format = config.OutputText
	}
	return &Printer{
		w:      w,
		format: format,
		color:  !noColor && IsTerminal(w),
		now:    time.Now,
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) paint(attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.SprintFunc()
}

func (p *Printer) structured(v any) (bool, error) {
	switch p.format {
	case config.OutputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(JSONResponse{Success: true, Data: v})
	case config.OutputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// Error reports err in the printer's format.
func (p *Printer) Error(err error) {
	switch p.format {
	case config.OutputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(JSONResponse{Success: false, Error: err.Error()})
	default:
		red := p.paint(color.FgRed)
		fmt.Fprintf(p.w, "%s %v\n", red("Error:"), err)
	}
}

// Bump prints the outcome of a bump.
func (p *Printer) Bump(res engine.Result) error {
	if ok, err := p.structured(res); ok {
		return err
	}
	green := p.paint(color.FgGreen)
	cyan := p.paint(color.FgCyan)
	dim := p.paint(color.Faint)

	verb := "Updated"
	if res.DryRun {
		verb = "Would update"
	}
	_, err := fmt.Fprintf(p.w, "%s %s %s to %s %s\n",
		green("✓"), verb, res.Component, cyan(res.Value),
		dim(fmt.Sprintf("(%s -> %s)", res.OldVersion, res.NewVersion)))
	return err
}

// EffectiveOutput is the structured form of the effective version.
type EffectiveOutput struct {
	Version string `json:"version" yaml:"version"`
	Tag     string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// Effective prints the effective version, or its tag when tag is set.
func (p *Printer) Effective(out EffectiveOutput, tag bool) error {
	if ok, err := p.structured(out); ok {
		return err
	}
	v := out.Version
	if tag {
		v = out.Tag
	}
	_, err := fmt.Fprintln(p.w, v)
	return err
}

// ShowOutput is the structured form of the show command.
type ShowOutput struct {
	File       string            `json:"file" yaml:"file"`
	State      string            `json:"state" yaml:"state"`
	Persisted  string            `json:"persisted" yaml:"persisted"`
	Effective  string            `json:"effective" yaml:"effective"`
	Components []engine.Resolved `json:"components" yaml:"components"`
}

// NewShowOutput assembles ShowOutput from engine values.
func NewShowOutput(file string, state store.StoreState, persisted engine.Components, resolved []engine.Resolved) ShowOutput {
	return ShowOutput{
		File:       file,
		State:      state.String(),
		Persisted:  persisted.String(),
		Effective:  engine.Collapse(resolved).String(),
		Components: resolved,
	}
}

// Show prints each component with its source.
func (p *Printer) Show(out ShowOutput) error {
	if ok, err := p.structured(out); ok {
		return err
	}
	cyan := p.paint(color.FgCyan)
	yellow := p.paint(color.FgYellow)
	dim := p.paint(color.Faint)

	state := out.State
	if out.State != store.StateReady.String() {
		state = yellow(state)
	}
	fmt.Fprintf(p.w, "%s %s %s\n", cyan(out.File), dim("state:"), state)

	t := p.table()
	t.AppendHeader(table.Row{"Component", "Value", "Source", "From"})
	for _, r := range out.Components {
		t.AppendRow(table.Row{r.Component, r.Value, r.Source, r.Origin})
	}
	t.AppendFooter(table.Row{"effective", out.Effective, "", "persisted " + out.Persisted})
	t.Render()
	return nil
}

// History prints ledger entries, newest first.
func (p *Printer) History(entries []store.HistoryEntry) error {
	if entries == nil {
		entries = []store.HistoryEntry{}
	}
	if ok, err := p.structured(entries); ok {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(p.w, "No bumps recorded.")
		return err
	}
	now := p.now()
	t := p.table()
	t.AppendHeader(table.Row{"When", "Operation", "Old", "New", "File"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			humanize.RelTime(e.AppliedAt, now, "ago", "from now"),
			e.Operation, e.OldVersion, e.NewVersion, e.File,
		})
	}
	t.Render()
	return nil
}

// LedgerOutput describes the history database.
type LedgerOutput struct {
	Database string `json:"database" yaml:"database"`
	State    string `json:"state" yaml:"state"`
	Schema   string `json:"schema" yaml:"schema"`
}

// Ledger reports the history database after init or verify.
func (p *Printer) Ledger(out LedgerOutput, verb string) error {
	if ok, err := p.structured(out); ok {
		return err
	}
	green := p.paint(color.FgGreen)
	cyan := p.paint(color.FgCyan)
	_, err := fmt.Fprintf(p.w, "%s History database %s %s (schema %s)\n",
		green("✓"), cyan(out.Database), verb, out.Schema)
	return err
}

// Watch prints one line per observed change.
func (p *Printer) Watch(at time.Time, version string) error {
	if p.format == config.OutputJSON {
		// One compact object per line so the stream stays parseable.
		return json.NewEncoder(p.w).Encode(map[string]string{
			"time":    at.UTC().Format(time.RFC3339),
			"version": version,
		})
	}
	dim := p.paint(color.Faint)
	_, err := fmt.Fprintf(p.w, "%s %s\n", dim(at.Format("15:04:05")), version)
	return err
}

func (p *Printer) table() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	if p.color {
		t.SetStyle(table.StyleLight)
	} else {
		style := table.StyleDefault
		style.Format.Header = text.FormatDefault
		style.Format.Footer = text.FormatDefault
		t.SetStyle(style)
	}
	return t
}
