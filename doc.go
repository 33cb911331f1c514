// Package pdfburger merges PDF files, given as explicit paths or as
// directories to scan, into a single output document.
//
// Work happens in two stages. Collect resolves every raw input into a list
// of validated PDF paths and a list of warnings; an explicit file that cannot
// be used is fatal, while problems found inside a scanned directory only
// produce warnings. Merge then appends the collected files, in order, into
// one output file and reports how many files and pages were written.
//
// Both stages return a result.Result instead of panicking:
//
//	collected := pdfburger.Collect([]string{"scans/", "cover.pdf"}, false)
//	files, err := collected.Get()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := pdfburger.Merge(files.Files, "out/book.pdf").Get()
//
// The PDF reading and writing itself is delegated to a codec.Codec; see
// WithCodec.
package pdfburger

import (
	"log/slog"

	"github.com/lvillar/pdfburger/codec"
)

// Burger runs the collection and merge pipeline with a fixed codec, logger
// and progress callback. A Burger holds no per-call state and may be reused.
type Burger struct {
	codec    codec.Codec
	logger   *slog.Logger
	progress func(Event)
	resolver *Resolver
}

// Codec returns the codec the Burger reads and writes with.
func (b *Burger) Codec() codec.Codec { return b.codec }
