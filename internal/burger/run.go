// Package burger implements the pdf-burger command: it collects the inputs,
// reports warnings, resolves the output path and merges, turning the outcome
// into console messages and an exit code.
package burger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lvillar/pdfburger"
	"github.com/lvillar/pdfburger/codec"
	"github.com/lvillar/pdfburger/history"
	"github.com/lvillar/pdfburger/internal/console"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// ProgressThreshold is the number of files above which a progress bar is
// drawn on a terminal when verbose output is off.
const ProgressThreshold = 5

// Options is one invocation of the command.
type Options struct {
	Inputs      []string
	Output      string
	Recursive   bool
	Overwrite   bool
	Verbose     bool
	DryRun      bool
	Codec       string
	Format      string
	History     string
	ListHistory int
	DeleteRun   int64
	LogJSON     bool
}

type runner struct {
	opts   Options
	stdout io.Writer
	con    *console.Console
	logger *slog.Logger
	format Format
}

// NewLogger returns the diagnostic logger for the command: text on w at
// Warn level, Debug when verbose, JSON when asJSON is set.
func NewLogger(w io.Writer, verbose, asJSON bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Run executes opts and returns the process exit code. Structured output
// goes to stdout; messages and logs go to stderr.
func Run(opts Options, stdout, stderr io.Writer) int {
	con := console.New(stderr, opts.Verbose)

	format, err := ParseFormat(opts.Format)
	if err != nil {
		con.Error(err.Error())
		return ExitUsage
	}
	r := &runner{
		opts:   opts,
		stdout: stdout,
		con:    con,
		logger: NewLogger(stderr, opts.Verbose, opts.LogJSON),
		format: format,
	}

	if opts.ListHistory > 0 {
		return r.listHistory()
	}
	if opts.DeleteRun > 0 {
		return r.deleteRun()
	}

	c, err := codec.ByName(opts.Codec)
	if err != nil {
		con.Error(err.Error())
		return ExitUsage
	}
	if len(opts.Inputs) == 0 {
		con.Error("at least one input file or directory is required")
		return ExitUsage
	}

	started := time.Now()
	run := history.Run{StartedAt: started, Inputs: opts.Inputs, Codec: c.Name()}
	code := r.merge(c, &run)
	run.Duration = time.Since(started)
	r.record(run)
	return code
}

func (r *runner) merge(c codec.Codec, run *history.Run) int {
	b := pdfburger.New(
		pdfburger.WithCodec(c),
		pdfburger.WithLogger(r.logger),
		pdfburger.WithProgress(r.progress),
	)

	cr, err := b.Collect(r.opts.Inputs, r.opts.Recursive).Get()
	if err != nil {
		return r.fail(run, err)
	}
	run.Files, run.Warnings, run.FileCount = cr.Files, cr.Warnings, len(cr.Files)
	for _, w := range cr.Warnings {
		r.con.Warning(w)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return r.fail(run, fmt.Errorf("cannot determine working directory: %w", err))
	}
	output := ResolveOutput(r.opts.Output, r.opts.Inputs, cwd)
	run.Output = output
	if err := CheckOverwrite(output, r.opts.Output != "", r.opts.Overwrite); err != nil {
		return r.fail(run, err)
	}

	if r.opts.DryRun {
		run.Status = history.StatusDryRun
		if r.format == FormatText {
			r.con.Info(FormatDryRun(cr.Files))
			return ExitOK
		}
		return r.write(dryRunDoc{Output: output, Files: cr.Files, Warnings: nonNil(cr.Warnings)})
	}

	report, err := b.Merge(cr.Files, output).Get()
	if err != nil {
		return r.fail(run, err)
	}
	run.Status = history.StatusMerged
	run.PageCount = report.PageCount

	if r.format == FormatText {
		r.con.Success(FormatReport(report))
		r.con.Detail("  output: " + report.Output)
		return ExitOK
	}
	return r.write(reportDoc{Report: report, Warnings: nonNil(cr.Warnings)})
}

func (r *runner) progress(e pdfburger.Event) {
	switch e.Kind {
	case pdfburger.EventCreateDir:
		r.con.Detail("  creating directory: " + e.Path)
	case pdfburger.EventAppend:
		if r.con.Verbose() {
			r.con.Detail("  adding: " + filepath.Base(e.Path))
		} else if e.Total > ProgressThreshold {
			r.con.Progress("merging...", e.Index, e.Total)
		}
	}
}

func (r *runner) fail(run *history.Run, err error) int {
	run.Status = history.StatusFailed
	run.Error = err.Error()
	r.con.Error(err.Error())
	return ExitFailure
}

func (r *runner) write(v any) int {
	if err := encode(r.stdout, r.format, v); err != nil {
		r.con.Error(err.Error())
		return ExitFailure
	}
	return ExitOK
}

// record appends run to the history database when one is configured. A
// history failure is reported but does not change the exit code.
func (r *runner) record(run history.Run) {
	if r.opts.History == "" {
		return
	}
	db, err := history.Open(r.opts.History)
	if err != nil {
		r.con.Warning(err.Error())
		return
	}
	defer db.Close()

	id, err := db.Record(run)
	if err != nil {
		r.con.Warning(err.Error())
		return
	}
	r.logger.Debug("run recorded", "id", id, "history", db.Path(), "status", run.Status)
}

// openHistory opens the --history database for a command named by flag.
func (r *runner) openHistory(flag string) (*history.DB, int) {
	if r.opts.History == "" {
		r.con.Error(flag + " requires --history")
		return nil, ExitUsage
	}
	db, err := history.Open(r.opts.History)
	if err != nil {
		r.con.Error(err.Error())
		return nil, ExitFailure
	}
	return db, ExitOK
}

func (r *runner) listHistory() int {
	db, code := r.openHistory("--list-history")
	if db == nil {
		return code
	}
	defer db.Close()

	runs, err := db.Recent(r.opts.ListHistory)
	if err != nil {
		r.con.Error(err.Error())
		return ExitFailure
	}
	if r.format == FormatText {
		if err := writeRuns(r.stdout, runs); err != nil {
			r.con.Error(err.Error())
			return ExitFailure
		}
		return ExitOK
	}
	return r.write(runs)
}

func (r *runner) deleteRun() int {
	db, code := r.openHistory("--delete-run")
	if db == nil {
		return code
	}
	defer db.Close()

	if err := db.Delete(r.opts.DeleteRun); err != nil {
		r.con.Error(err.Error())
		return ExitFailure
	}
	r.con.Success(fmt.Sprintf("deleted run %d", r.opts.DeleteRun))
	return ExitOK
}
