package burger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvillar/pdfburger"
)

// ErrOutputExists is returned by CheckOverwrite.
var ErrOutputExists = errors.New("output file already exists")

// OverwriteError reports an explicit output path that already exists.
type OverwriteError struct {
	Path string
}

func (e *OverwriteError) Error() string {
	return fmt.Sprintf("%v: %s\n  use --overwrite to replace it", ErrOutputExists, e.Path)
}

func (e *OverwriteError) Unwrap() error { return ErrOutputExists }

// ResolveOutput returns the absolute output path. An explicit outputArg is
// used as given, relative to cwd. Otherwise the output is named after the
// input directory when it is the only input, or "merged.pdf", and made
// unique with UniquePath.
func ResolveOutput(outputArg string, inputs []string, cwd string) string {
	if outputArg != "" {
		return absFrom(cwd, outputArg)
	}
	name := "merged.pdf"
	if len(inputs) == 1 {
		in := absFrom(cwd, inputs[0])
		if info, err := os.Stat(in); err == nil && info.IsDir() {
			name = filepath.Base(in) + ".pdf"
		}
	}
	return UniquePath(filepath.Join(cwd, name))
}

// UniquePath returns path if nothing exists there, otherwise the first free
// "<stem>_NNN<ext>" sibling for NNN in 001..999. When all are taken path is
// returned unchanged.
func UniquePath(path string) string {
	if !exists(path) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i < 1000; i++ {
		candidate := fmt.Sprintf("%s_%03d%s", stem, i, ext)
		if !exists(candidate) {
			return candidate
		}
	}
	return path
}

// CheckOverwrite fails when an explicitly requested output already exists
// and overwrite is not allowed. Generated default paths are never checked.
func CheckOverwrite(output string, explicit, overwrite bool) error {
	if explicit && !overwrite && exists(output) {
		return &OverwriteError{Path: output}
	}
	return nil
}

// FormatDryRun lists the files a merge would read.
func FormatDryRun(files []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "target files (%d):", len(files))
	for _, f := range files {
		sb.WriteString("\n  ")
		sb.WriteString(f)
	}
	return sb.String()
}

// FormatReport is the one-line summary printed after a merge.
func FormatReport(r pdfburger.Report) string {
	return fmt.Sprintf("merged %d PDFs (%d pages) -> %s", r.FileCount, r.PageCount, filepath.Base(r.Output))
}

func absFrom(cwd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
