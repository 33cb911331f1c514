package pdfburger_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lvillar/pdfburger/codec"
)

// fakeCodec answers page counts from a table keyed by base name, so core
// tests exercise the pipeline without parsing PDFs. Files missing from the
// table have one page.
type fakeCodec struct {
	mu      sync.Mutex
	pages   map[string]int
	fail    map[string]error
	calls   []string
	written int // -1 reports the appended total
	finErr  error
}

func newFakeCodec() *fakeCodec {
	return &fakeCodec{pages: map[string]int{}, fail: map[string]error{}, written: -1}
}

func (f *fakeCodec) Name() string { return "fake" }

func (f *fakeCodec) PageCount(path string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	base := filepath.Base(path)
	if err, ok := f.fail[base]; ok {
		return 0, err
	}
	if n, ok := f.pages[base]; ok {
		return n, nil
	}
	return 1, nil
}

func (f *fakeCodec) NewWriter() codec.Writer { return &fakeWriter{codec: f} }

func (f *fakeCodec) consulted(base string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if filepath.Base(c) == base {
			return true
		}
	}
	return false
}

type fakeWriter struct {
	codec    *fakeCodec
	appended []string
	pages    int
}

func (w *fakeWriter) Append(path string) (int, error) {
	n, err := w.codec.PageCount(path)
	if err != nil {
		return 0, err
	}
	w.appended = append(w.appended, path)
	w.pages += n
	return n, nil
}

func (w *fakeWriter) Finalize(output string) (int, error) {
	if w.codec.finErr != nil {
		return 0, w.codec.finErr
	}
	if len(w.appended) == 0 {
		return 0, codec.ErrNothingAppended
	}
	if err := os.WriteFile(output, []byte("%PDF-1.4\n"), 0o644); err != nil {
		return 0, err
	}
	if w.codec.written >= 0 {
		return w.codec.written, nil
	}
	return w.pages, nil
}

var errBroken = errors.New("broken xref")

// touch creates empty files under dir and returns their paths.
func touch(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		paths[i] = p
	}
	return paths
}

func bases(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
