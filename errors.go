package pdfburger

import (
	"errors"
	"fmt"
)

// Sentinel errors naming each failure kind. A *PathError or *MergeError
// matches its kind with errors.Is.
var (
	ErrPathNotFound      = errors.New("path not found")
	ErrAccess            = errors.New("cannot access path")
	ErrNotPDF            = errors.New("not a PDF file")
	ErrUnreadable        = errors.New("cannot read PDF")
	ErrNoPages           = errors.New("PDF has no pages")
	ErrNoPDFsInDirectory = errors.New("no PDFs found in directory")
	ErrScanDirectory     = errors.New("cannot scan directory")
	ErrUnsupportedPath   = errors.New("unsupported path type")
	ErrNothingToMerge    = errors.New("no PDF files to merge")
	ErrMergeFailed       = errors.New("merge failed")
)

// PathError reports a problem with one input path. Its message has the form
// "{kind}: {path}" or "{kind}: {path} ({detail})".
type PathError struct {
	Kind   error  // one of the sentinel errors above
	Path   string // the path as the user gave it, or the absolute path for scanned files
	Detail string // underlying cause, may be empty
}

func (e *PathError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s (%s)", e.Kind, e.Path, e.Detail)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Path)
}

func (e *PathError) Unwrap() error {
	return e.Kind
}

func newPathError(kind error, path, detail string) *PathError {
	return &PathError{Kind: kind, Path: path, Detail: detail}
}

// MergeError reports a failure while producing the output document.
type MergeError struct {
	Op   string // "mkdir", "append", "finalize" or "verify"
	Path string // file being processed
	Err  error  // underlying error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMergeFailed, e.Err)
}

// Unwrap exposes both ErrMergeFailed and the underlying cause.
func (e *MergeError) Unwrap() []error {
	return []error{ErrMergeFailed, e.Err}
}

func newMergeError(op, path string, err error) *MergeError {
	return &MergeError{Op: op, Path: path, Err: err}
}
