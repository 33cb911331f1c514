package pdfburger

import (
	"errors"

	"github.com/lvillar/pdfburger/codec"
	"github.com/lvillar/pdfburger/result"
)

// Validate checks that path is a readable PDF with at least one page. The
// success value is path, unchanged.
func Validate(c codec.Codec, path string) result.Result[string] {
	n, err := c.PageCount(path)
	if err != nil {
		return result.Failure[string](newPathError(ErrUnreadable, path, err.Error()))
	}
	if n == 0 {
		return result.Failure[string](newPathError(ErrNoPages, path, ""))
	}
	return result.Success(path)
}

// validationDetail extracts the text to show in parentheses when a
// validation failure is reported against the user's raw input.
func validationDetail(err error) string {
	var pe *PathError
	if errors.As(err, &pe) && pe.Kind == ErrUnreadable {
		return pe.Detail
	}
	return err.Error()
}
