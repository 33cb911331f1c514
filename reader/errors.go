package reader

import "errors"

// Sentinel errors for the conditions a caller may want to tell apart.
var (
	ErrNotPDF    = errors.New("reader: missing %PDF header")
	ErrEncrypted = errors.New("reader: document is encrypted")
	ErrCorrupted = errors.New("reader: document is corrupted")
)
