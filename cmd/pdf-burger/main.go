// Command pdf-burger stacks PDF files and directories of PDFs into a single
// document.
//
// Usage:
//
//	pdf-burger [options] INPUT...
//
// Directories contribute the PDFs they contain in natural order ("2.pdf"
// before "10.pdf"); -r descends into subdirectories. Unreadable PDFs inside
// directories are skipped with a warning. Without -o the output is
// merged.pdf, or <dir>.pdf for a single directory, in the current
// directory, numbered _001, _002 ... if the name is taken.
//
// Exit status is 0 on success, 1 on failure, 2 on a usage error and 130
// when interrupted.
package main

import (
	"os"

	"github.com/lvillar/pdfburger/internal/burger"
)

var version = "dev"

func main() {
	stop := burger.HandleInterrupt(os.Stderr, os.Exit)
	code := burger.Main(os.Args, version, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
