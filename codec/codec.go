// Package codec defines the PDF capabilities the merge pipeline depends on
// and provides two implementations of them.
//
// A Codec reports page counts and creates Writers. A Writer accumulates the
// pages of one or more documents, in append order, and finalizes them into a
// single output file. The gofpdi codec (the default) imports each page as a
// template into a gofpdf document; the pdfcpu codec delegates to pdfcpu's
// merge API.
package codec

import (
	"errors"
	"fmt"
	"sort"
)

// Codec opens PDF documents and creates merge writers.
type Codec interface {
	// Name identifies the codec, e.g. "gofpdi".
	Name() string
	// PageCount opens path and returns its number of pages.
	PageCount(path string) (int, error)
	// NewWriter returns an empty writer.
	NewWriter() Writer
}

// Writer accumulates pages for a single output document.
type Writer interface {
	// Append adds every page of the document at path, returning how many
	// pages were added.
	Append(path string) (pages int, err error)
	// Finalize writes the accumulated document to outputPath and returns the
	// number of pages in the written file.
	Finalize(outputPath string) (pagesWritten int, err error)
}

// Default is the codec name used when none is configured.
const Default = "gofpdi"

var (
	// ErrUnknownCodec is returned by ByName for unregistered names.
	ErrUnknownCodec = errors.New("codec: unknown codec")
	// ErrNothingAppended is returned by Finalize when no pages were appended.
	ErrNothingAppended = errors.New("codec: no pages appended")
	// ErrFinalized is returned when a writer is used after Finalize.
	ErrFinalized = errors.New("codec: writer already finalized")
)

var registry = map[string]func() Codec{
	"gofpdi": func() Codec { return NewGofpdi() },
	"pdfcpu": func() Codec { return NewPDFCPU() },
}

// ByName returns the codec registered under name. An empty name selects
// Default.
func ByName(name string) (Codec, error) {
	if name == "" {
		name = Default
	}
	newCodec, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownCodec, name, Names())
	}
	return newCodec(), nil
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
