package reader_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/pdfburger/internal/pdftest"
	"github.com/lvillar/pdfburger/reader"
)

// render returns an A4 document with n pages.
func render(t *testing.T, n int) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < n; i++ {
		pdf.AddPage()
		pdf.Text(10, 20, "page")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("rendering: %v", err)
	}
	return buf.Bytes()
}

func read(t *testing.T, data []byte) *reader.Document {
	t.Helper()
	doc, err := reader.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	return doc
}

func TestReadRendered(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		doc := read(t, render(t, n))
		if doc.NumPages() != n {
			t.Errorf("NumPages() = %d, want %d", doc.NumPages(), n)
		}
		if doc.Version == "" {
			t.Error("empty version")
		}
	}
}

func TestPages(t *testing.T) {
	doc := read(t, render(t, 3))

	var seen []int
	for num, page := range doc.Pages() {
		seen = append(seen, num)
		if page.Number != num {
			t.Errorf("page %d has Number %d", num, page.Number)
		}
		// A4 in points.
		if w, h := page.MediaBox.Width(), page.MediaBox.Height(); w < 595 || w > 596 || h < 841 || h > 842 {
			t.Errorf("page %d MediaBox = %+v", num, page.MediaBox)
		}
	}
	if len(seen) != 3 {
		t.Errorf("iterated pages %v", seen)
	}

	visited := 0
	for num := range doc.Pages() {
		visited++
		if num == 2 {
			break
		}
	}
	if visited != 2 {
		t.Errorf("iteration continued after break: %d pages", visited)
	}

	if p, err := doc.Page(3); err != nil || p.Number != 3 {
		t.Errorf("Page(3) = %+v, %v", p, err)
	}
	for _, n := range []int{0, 4, -1} {
		if _, err := doc.Page(n); err == nil {
			t.Errorf("Page(%d) succeeded", n)
		}
	}
}

func TestMetadata(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Test Document", false)
	pdf.SetAuthor("Test Author", false)
	pdf.AddPage()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("generating PDF: %v", err)
	}
	doc, err := reader.ReadFrom(&buf)
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}

	meta := doc.Metadata()
	if meta["Title"] != "Test Document" {
		t.Errorf("Title = %q, want %q", meta["Title"], "Test Document")
	}
	if meta["Author"] != "Test Author" {
		t.Errorf("Author = %q, want %q", meta["Author"], "Test Author")
	}
}

func TestEmptyPageTree(t *testing.T) {
	if doc := read(t, pdftest.Empty()); doc.NumPages() != 0 {
		t.Errorf("expected 0 pages, got %d", doc.NumPages())
	}
}

func TestInheritedMediaBox(t *testing.T) {
	doc := read(t, pdftest.Pages(3))
	if doc.NumPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", doc.NumPages())
	}
	page, _ := doc.Page(2)
	if page.MediaBox.Width() != 200 || page.MediaBox.Height() != 100 {
		t.Errorf("inherited MediaBox = %v, want 200x100", page.MediaBox)
	}
}

func TestCompressedObjectStreams(t *testing.T) {
	doc := read(t, pdftest.Compressed(4))
	if doc.Version != "1.5" {
		t.Errorf("Version = %q, want 1.5", doc.Version)
	}
	if doc.NumPages() != 4 {
		t.Fatalf("expected 4 pages, got %d", doc.NumPages())
	}
	page, _ := doc.Page(4)
	if page.MediaBox.Width() != 300 || page.MediaBox.Height() != 400 {
		t.Errorf("MediaBox = %v, want 300x400", page.MediaBox)
	}
}

func TestRejectsNonPDF(t *testing.T) {
	_, err := reader.ReadFrom(bytes.NewReader(pdftest.Corrupt()))
	if !errors.Is(err, reader.ErrNotPDF) {
		t.Errorf("err = %v, want ErrNotPDF", err)
	}
}

func TestRejectsTruncated(t *testing.T) {
	data := render(t, 1)
	_, err := reader.ReadFrom(bytes.NewReader(data[:len(data)/2]))
	if err == nil {
		t.Fatal("expected error for truncated PDF")
	}
}

func TestRejectsEncrypted(t *testing.T) {
	_, err := reader.ReadFrom(bytes.NewReader(pdftest.Encrypted()))
	if !errors.Is(err, reader.ErrEncrypted) {
		t.Errorf("err = %v, want ErrEncrypted", err)
	}
}

func TestPageCount(t *testing.T) {
	path := pdftest.Write(t, filepath.Join(t.TempDir(), "three.pdf"), 3)
	n, err := reader.PageCount(path)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 3 {
		t.Errorf("PageCount = %d, want 3", n)
	}

	if _, err := reader.PageCount(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
