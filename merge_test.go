package pdfburger_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/pdfburger"
	"github.com/lvillar/pdfburger/codec"
	"github.com/lvillar/pdfburger/internal/pdftest"
	"github.com/lvillar/pdfburger/reader"
)

func TestMergeEvents(t *testing.T) {
	dir := t.TempDir()
	files := touch(t, dir, "a.pdf", "b.pdf")
	fc := newFakeCodec()
	fc.pages["b.pdf"] = 3

	var events []pdfburger.Event
	b := pdfburger.New(
		pdfburger.WithCodec(fc),
		pdfburger.WithProgress(func(e pdfburger.Event) { events = append(events, e) }),
	)
	output := filepath.Join(dir, "out", "nested", "merged.pdf")

	report, err := b.Merge(files, output).Get()
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := pdfburger.Report{Output: output, FileCount: 2, PageCount: 4}
	if report != want {
		t.Errorf("report = %+v, want %+v", report, want)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output not written: %v", err)
	}

	var kinds []pdfburger.EventKind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	wantKinds := []pdfburger.EventKind{
		pdfburger.EventCreateDir, pdfburger.EventAppend, pdfburger.EventAppend, pdfburger.EventFinalize,
	}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("events = %v, want %v", kinds, wantKinds)
	}
	if events[0].Path != filepath.Dir(output) {
		t.Errorf("create-dir path = %q", events[0].Path)
	}
	if e := events[2]; e.Index != 2 || e.Total != 2 || e.Pages != 3 || e.Path != files[1] {
		t.Errorf("second append event = %+v", e)
	}
}

func TestMergeExistingDirectoryNoCreateEvent(t *testing.T) {
	dir := t.TempDir()
	files := touch(t, dir, "a.pdf")
	var created bool
	b := pdfburger.New(
		pdfburger.WithCodec(newFakeCodec()),
		pdfburger.WithProgress(func(e pdfburger.Event) {
			if e.Kind == pdfburger.EventCreateDir {
				created = true
			}
		}),
	)
	if err := b.Merge(files, filepath.Join(dir, "out.pdf")).Err(); err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("create-dir event for an existing directory")
	}
}

func TestMergeNothing(t *testing.T) {
	err := pdfburger.New(pdfburger.WithCodec(newFakeCodec())).Merge(nil, filepath.Join(t.TempDir(), "x.pdf")).Err()
	if !errors.Is(err, pdfburger.ErrNothingToMerge) {
		t.Errorf("err = %v, want ErrNothingToMerge", err)
	}
}

func TestMergeFailures(t *testing.T) {
	dir := t.TempDir()
	files := touch(t, dir, "a.pdf", "b.pdf")
	finalizeErr := errors.New("disk full")

	tests := []struct {
		name   string
		setup  func(*fakeCodec)
		op     string
		detail string
	}{
		{"append", func(fc *fakeCodec) { fc.fail["b.pdf"] = errBroken }, "append", "broken xref"},
		{"finalize", func(fc *fakeCodec) { fc.finErr = finalizeErr }, "finalize", "disk full"},
		{"page count mismatch", func(fc *fakeCodec) { fc.written = 7 }, "verify", "page count mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := newFakeCodec()
			tt.setup(fc)
			err := pdfburger.New(pdfburger.WithCodec(fc)).Merge(files, filepath.Join(t.TempDir(), "out.pdf")).Err()
			if !errors.Is(err, pdfburger.ErrMergeFailed) {
				t.Fatalf("err = %v, want ErrMergeFailed", err)
			}
			var me *pdfburger.MergeError
			if !errors.As(err, &me) || me.Op != tt.op {
				t.Errorf("err = %#v, want op %q", err, tt.op)
			}
			if !strings.HasPrefix(err.Error(), "merge failed: ") || !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("message = %q", err.Error())
			}
		})
	}

	t.Run("cause is preserved", func(t *testing.T) {
		fc := newFakeCodec()
		fc.finErr = finalizeErr
		err := pdfburger.New(pdfburger.WithCodec(fc)).Merge(files, filepath.Join(t.TempDir(), "out.pdf")).Err()
		if !errors.Is(err, finalizeErr) {
			t.Errorf("err = %v does not wrap the codec error", err)
		}
	})
}

func TestMergeUncreatableDirectory(t *testing.T) {
	dir := t.TempDir()
	files := touch(t, dir, "a.pdf", "blocker")
	// A regular file where a directory is needed.
	output := filepath.Join(files[1], "sub", "out.pdf")

	err := pdfburger.New(pdfburger.WithCodec(newFakeCodec())).Merge(files[:1], output).Err()
	var me *pdfburger.MergeError
	if !errors.As(err, &me) || me.Op != "mkdir" {
		t.Errorf("err = %v, want a mkdir MergeError", err)
	}
}

// writeSized renders a single-page PDF of the given width in points, which
// identifies the page after a merge.
func writeSized(t *testing.T, path string, width float64) string {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: 400})
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("creating test PDF: %v", err)
	}
	return path
}

func TestMergeSinglePagesPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	widths := []float64{300, 100, 200}
	var inputs []string
	for i, w := range widths {
		inputs = append(inputs, writeSized(t, filepath.Join(dir, string(rune('a'+i))+".pdf"), w))
	}
	output := filepath.Join(dir, "merged.pdf")

	report, err := pdfburger.Merge(inputs, output).Get()
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.PageCount != len(inputs) || report.FileCount != len(inputs) {
		t.Errorf("report = %+v, want %d files and pages", report, len(inputs))
	}

	doc, err := reader.Open(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	for num, page := range doc.Pages() {
		if got, want := page.MediaBox.Width(), widths[num-1]; got < want-1 || got > want+1 {
			t.Errorf("page %d width = %.1f, want %.1f", num, got, want)
		}
	}
}

func TestCollectAndMergeEndToEnd(t *testing.T) {
	for _, name := range codec.Names() {
		t.Run(name, func(t *testing.T) {
			c, err := codec.ByName(name)
			if err != nil {
				t.Fatal(err)
			}
			dir := t.TempDir()
			pdftest.Write(t, filepath.Join(dir, "in", "10.pdf"), 1)
			pdftest.Write(t, filepath.Join(dir, "in", "2.pdf"), 2)
			pdftest.WriteBytes(t, filepath.Join(dir, "in", "corrupt.pdf"), pdftest.Corrupt())
			pdftest.WriteBytes(t, filepath.Join(dir, "in", "empty.pdf"), pdftest.Empty())
			cover := pdftest.Write(t, filepath.Join(dir, "cover.pdf"), 1)

			b := pdfburger.New(pdfburger.WithCodec(c))
			cr, err := b.Collect([]string{cover, filepath.Join(dir, "in")}, false).Get()
			if err != nil {
				t.Fatalf("Collect: %v", err)
			}
			if got, want := bases(cr.Files), []string{"cover.pdf", "2.pdf", "10.pdf"}; !reflect.DeepEqual(got, want) {
				t.Errorf("files = %v, want %v", got, want)
			}
			if len(cr.Warnings) != 2 {
				t.Errorf("warnings = %v, want 2", cr.Warnings)
			}

			report, err := b.Merge(cr.Files, filepath.Join(dir, "out", "book.pdf")).Get()
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if report.FileCount != 3 || report.PageCount != 4 {
				t.Errorf("report = %+v, want 3 files and 4 pages", report)
			}

			doc, err := reader.Open(report.Output)
			if err != nil {
				t.Fatalf("reading output: %v", err)
			}
			shows := []string{"cover.pdf page 1 of 1", "2.pdf page 1 of 2", "2.pdf page 2 of 2", "10.pdf page 1 of 1"}
			for num := range doc.Pages() {
				content, err := doc.Content(num)
				if err != nil {
					t.Fatalf("Content(%d): %v", num, err)
				}
				if !strings.Contains(string(content), shows[num-1]) {
					t.Errorf("page %d does not show %q", num, shows[num-1])
				}
			}
		})
	}
}

func TestValidateWithReaderCodec(t *testing.T) {
	dir := t.TempDir()
	c := codec.NewGofpdi()

	good := pdftest.Write(t, filepath.Join(dir, "good.pdf"), 2)
	if path, err := pdfburger.Validate(c, good).Get(); err != nil || path != good {
		t.Errorf("Validate(good) = %q, %v", path, err)
	}

	empty := pdftest.WriteBytes(t, filepath.Join(dir, "empty.pdf"), pdftest.Empty())
	err := pdfburger.Validate(c, empty).Err()
	if !errors.Is(err, pdfburger.ErrNoPages) || err.Error() != "PDF has no pages: "+empty {
		t.Errorf("Validate(empty) err = %v", err)
	}

	enc := pdftest.WriteBytes(t, filepath.Join(dir, "locked.pdf"), pdftest.Encrypted())
	err = pdfburger.Validate(c, enc).Err()
	if !errors.Is(err, pdfburger.ErrUnreadable) || !strings.HasPrefix(err.Error(), "cannot read PDF: "+enc+" (") {
		t.Errorf("Validate(encrypted) err = %v", err)
	}
}
