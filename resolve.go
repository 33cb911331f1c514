package pdfburger

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvillar/pdfburger/codec"
	"github.com/lvillar/pdfburger/natsort"
	"github.com/lvillar/pdfburger/result"
)

// Entry is what a single raw input resolves to: the validated PDF paths it
// contributes, in order, and any warnings produced along the way.
type Entry struct {
	Paths    []string
	Warnings []string
}

// Resolver turns one raw input string into an Entry.
type Resolver struct {
	codec  codec.Codec
	logger *slog.Logger
}

// NewResolver returns a Resolver validating documents with c.
func NewResolver(c codec.Codec) *Resolver {
	return &Resolver{codec: c, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Resolve classifies raw and resolves it.
//
// An explicit file must have a .pdf extension and pass Validate, otherwise
// the result is a failure. A directory is scanned for .pdf files (the whole
// subtree when recursive is set); scanned files that fail validation become
// warnings. A directory without candidates succeeds with a warning.
func (r *Resolver) Resolve(raw string, recursive bool) result.Result[Entry] {
	abs, err := filepath.Abs(raw)
	if err != nil {
		return result.Failure[Entry](newPathError(ErrAccess, raw, err.Error()))
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result.Failure[Entry](newPathError(ErrPathNotFound, raw, ""))
		}
		return result.Failure[Entry](newPathError(ErrAccess, raw, errDetail(err)))
	}

	switch classify(info.Mode()) {
	case kindFile:
		return r.resolveFile(raw, abs)
	case kindDir:
		return result.Success(r.resolveDir(raw, abs, recursive))
	default:
		r.logger.Debug("skipping unsupported path", "path", raw, "mode", info.Mode().String())
		return result.Success(Entry{Warnings: []string{newPathError(ErrUnsupportedPath, raw, "").Error()}})
	}
}

func (r *Resolver) resolveFile(raw, abs string) result.Result[Entry] {
	if !isPDFName(abs) {
		return result.Failure[Entry](newPathError(ErrNotPDF, raw, ""))
	}
	validated := Validate(r.codec, abs).MapFailure(func(err error) error {
		return newPathError(ErrUnreadable, raw, validationDetail(err))
	})
	return result.Map(validated, func(path string) Entry {
		return Entry{Paths: []string{path}}
	})
}

func (r *Resolver) resolveDir(raw, abs string, recursive bool) Entry {
	// WalkDir does not descend a symlinked root.
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	candidates, scanWarnings := scanDir(abs, recursive)
	natsort.SortPaths(candidates)
	r.logger.Debug("scanned directory", "dir", abs, "recursive", recursive, "candidates", len(candidates))

	validated := make([]result.Result[string], len(candidates))
	for i, path := range candidates {
		validated[i] = Validate(r.codec, path)
	}
	return directoryEntry(raw, validated, scanWarnings)
}

type pathKind int

const (
	kindFile pathKind = iota
	kindDir
	kindOther
)

// classify maps a file mode, with symlinks already followed, to the way the
// input is resolved.
func classify(mode fs.FileMode) pathKind {
	switch {
	case mode.IsRegular():
		return kindFile
	case mode.IsDir():
		return kindDir
	default:
		return kindOther
	}
}

// isPDFName reports whether name has a .pdf extension in any letter case.
func isPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// directoryEntry builds the Entry for a scanned directory from the
// validation results of its candidates, in scan order.
func directoryEntry(raw string, validated []result.Result[string], scanWarnings []string) Entry {
	warnings := append([]string(nil), scanWarnings...)
	if len(validated) == 0 {
		warnings = append(warnings, newPathError(ErrNoPDFsInDirectory, raw, "").Error())
		return Entry{Warnings: warnings}
	}

	paths, errs := result.Partition(validated)
	for _, err := range errs {
		warnings = append(warnings, err.Error())
	}
	return Entry{Paths: paths, Warnings: warnings}
}

// scanDir lists the PDF files directly inside dir, or anywhere below it when
// recursive is set. Symlinks to files are followed; symlinks to directories
// are not descended. Directories that cannot be read produce warnings.
func scanDir(dir string, recursive bool) (paths, warnings []string) {
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, []string{newPathError(ErrScanDirectory, dir, errDetail(err)).Error()}
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if isPDFCandidate(path, e) {
				paths = append(paths, path)
			}
		}
		return paths, nil
	}

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, newPathError(ErrScanDirectory, path, errDetail(err)).Error())
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isPDFCandidate(path, d) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, warnings
}

// isPDFCandidate reports whether a directory entry is a regular file, or a
// symlink to one, with a .pdf name.
func isPDFCandidate(path string, d fs.DirEntry) bool {
	if !isPDFName(d.Name()) {
		return false
	}
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	}
	return d.Type().IsRegular()
}

// errDetail returns the innermost message of a filesystem error, without
// the "op path:" prefix that *fs.PathError adds.
func errDetail(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}
