// Package console writes user-facing messages for the command line tool:
// plain information, verbose detail, warnings, errors, success lines and a
// progress indicator. Colour is used only when the destination is a
// terminal and NO_COLOR is unset.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[1;31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// Console writes messages to a single stream.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	verbose  bool
	color    bool
	terminal bool
	progress bool // a progress line is on screen
}

// New returns a Console writing to w. Verbose messages are dropped unless
// verbose is set.
func New(w io.Writer, verbose bool) *Console {
	term := IsTerminal(w)
	_, noColor := os.LookupEnv("NO_COLOR")
	return &Console{w: w, verbose: verbose, terminal: term, color: term && !noColor}
}

// IsTerminal reports whether w is a terminal, including Cygwin and MSYS
// terminals on Windows.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Verbose reports whether verbose messages are shown.
func (c *Console) Verbose() bool { return c.verbose }

// Interactive reports whether the console writes to a terminal.
func (c *Console) Interactive() bool { return c.terminal }

// Info writes msg as is.
func (c *Console) Info(msg string) {
	c.println(msg)
}

// Detail writes msg, dimmed, when verbose output is enabled.
func (c *Console) Detail(msg string) {
	if !c.verbose {
		return
	}
	c.println(c.paint(ansiDim, msg))
}

// Warning writes msg with a "warning:" prefix.
func (c *Console) Warning(msg string) {
	c.println(c.paint(ansiYellow, "warning:") + " " + msg)
}

// Error writes msg with an "error:" prefix.
func (c *Console) Error(msg string) {
	c.println(c.paint(ansiRed, "error:") + " " + msg)
}

// Success writes msg in green.
func (c *Console) Success(msg string) {
	c.println(c.paint(ansiGreen, msg))
}

// Progress redraws a single status line on a terminal. It does nothing when
// the console is not interactive. The line is cleared by the next message.
func (c *Console) Progress(label string, done, total int) {
	if !c.terminal {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "\r%s %s %d/%d", label, bar(done, total, 20), done, total)
	c.progress = true
}

func (c *Console) println(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress {
		fmt.Fprint(c.w, "\r\x1b[K")
		c.progress = false
	}
	fmt.Fprintln(c.w, msg)
}

func (c *Console) paint(code, s string) string {
	if !c.color {
		return s
	}
	return code + s + ansiReset
}

// bar renders a fixed-width progress bar such as "[=====     ]".
func bar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, done*width/total)
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}
