package pdfburger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lvillar/pdfburger/result"
)

// Report summarises a successful merge.
type Report struct {
	Output    string `json:"output" yaml:"output"`
	FileCount int    `json:"file_count" yaml:"file_count"`
	PageCount int    `json:"page_count" yaml:"page_count"`
}

// Merge appends files, in order, into a single document written to output,
// creating the destination directory if needed. PageCount in the report is
// read back from the written file and must equal the number of pages
// appended. On failure a partial output file may remain.
func (b *Burger) Merge(files []string, output string) result.Result[Report] {
	if len(files) == 0 {
		return result.Failure[Report](ErrNothingToMerge)
	}

	dir := filepath.Dir(output)
	if _, err := os.Stat(dir); err != nil {
		b.emit(Event{Kind: EventCreateDir, Path: dir})
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result.Failure[Report](newMergeError("mkdir", dir, err))
		}
	}

	w := b.codec.NewWriter()
	appended := 0
	for i, path := range files {
		n, err := w.Append(path)
		if err != nil {
			return result.Failure[Report](newMergeError("append", path, err))
		}
		appended += n
		b.logger.Debug("appended", "file", path, "pages", n, "index", i+1, "total", len(files))
		b.emit(Event{Kind: EventAppend, Path: path, Index: i + 1, Total: len(files), Pages: n})
	}

	b.emit(Event{Kind: EventFinalize, Path: output, Total: len(files), Pages: appended})
	written, err := w.Finalize(output)
	if err != nil {
		return result.Failure[Report](newMergeError("finalize", output, err))
	}
	if written != appended {
		return result.Failure[Report](newMergeError("verify", output,
			fmt.Errorf("page count mismatch: appended %d, written %d", appended, written)))
	}

	b.logger.Debug("merged", "output", output, "files", len(files), "pages", written, "codec", b.codec.Name())
	return result.Success(Report{Output: output, FileCount: len(files), PageCount: written})
}

// Merge merges files into output with a default Burger.
func Merge(files []string, output string) result.Result[Report] {
	return New().Merge(files, output)
}
