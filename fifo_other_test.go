//go:build !unix

package pdfburger_test

import "errors"

func mkfifo(string) error {
	return errors.New("FIFOs are not supported on this platform")
}
