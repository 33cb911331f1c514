// Package pdftest builds PDF fixtures for tests: real documents rendered with
// gofpdf, and small hand-assembled files for the shapes gofpdf cannot emit
// (zero pages, encryption markers, cross-reference streams).
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Write renders a PDF with numPages labelled A4 pages to path, creating
// parent directories as needed, and returns path.
func Write(t testing.TB, path string, numPages int) string {
	t.Helper()
	return WriteLabelled(t, path, numPages, filepath.Base(path))
}

// WriteLabelled is Write with an explicit label printed on every page, which
// lets tests recognise the source of a page after a merge.
func WriteLabelled(t testing.TB, path string, numPages int, label string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating fixture directory: %v", err)
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 1; i <= numPages; i++ {
		pdf.AddPage()
		pdf.Text(20, 30, fmt.Sprintf("%s page %d of %d", label, i, numPages))
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("creating test PDF %s: %v", path, err)
	}
	return path
}

// WriteBytes writes data to path, creating parent directories, and returns path.
func WriteBytes(t testing.TB, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating fixture directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}

// Assemble builds a PDF with a classic cross-reference table. objects[i] is
// the body of object i+1; object 1 must be the catalog. trailerExtra is
// inserted verbatim into the trailer dictionary.
func Assemble(trailerExtra string, objects ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R %s>>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, trailerExtra, xref)
	return buf.Bytes()
}

// Pages assembles a minimal document with n empty 200x100 pages.
func Pages(n int) []byte {
	kids := make([]string, n)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // filled below
	}
	for i := 0; i < n; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
		objects = append(objects, "<< /Type /Page /Parent 2 0 R >>")
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 200 100] >>",
		strings.Join(kids, " "), n)
	return Assemble("", objects...)
}

// Empty assembles a structurally valid document with no pages.
func Empty() []byte {
	return Pages(0)
}

// Encrypted assembles a one-page document whose trailer names an /Encrypt
// dictionary.
func Encrypted() []byte {
	return Assemble("/Encrypt 4 0 R ",
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 10 10] >>",
		"<< /Filter /Standard /V 1 /R 2 >>",
	)
}

// Corrupt returns bytes that carry a .pdf name in tests but are not a PDF.
func Corrupt() []byte {
	return []byte("this is not a pdf\n")
}

// Compressed assembles a PDF 1.5 document whose catalog, page tree and pages
// live in a Flate-compressed object stream indexed by a cross-reference
// stream encoded with the PNG Up predictor.
func Compressed(numPages int) []byte {
	bodies := []string{"<< /Type /Catalog /Pages 2 0 R >>", ""}
	kids := make([]string, numPages)
	for i := 0; i < numPages; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
		bodies = append(bodies, "<< /Type /Page /Parent 2 0 R >>")
	}
	bodies[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 300 400] >>",
		strings.Join(kids, " "), numPages)

	var header, content strings.Builder
	for i, body := range bodies {
		fmt.Fprintf(&header, "%d %d ", i+1, content.Len())
		content.WriteString(body)
		content.WriteString("\n")
	}
	stm := deflate([]byte(header.String() + content.String()))

	n := len(bodies)
	stmNum, xrefNum := n+1, n+2

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")
	stmOff := buf.Len()
	fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /ObjStm /N %d /First %d /Filter /FlateDecode /Length %d >>\nstream\n",
		stmNum, n, header.Len(), len(stm))
	buf.Write(stm)
	buf.WriteString("\nendstream\nendobj\n")
	xrefOff := buf.Len()

	// Rows: type(1) field2(4) field3(2).
	const cols = 7
	rows := make([][]byte, 0, xrefNum+1)
	rows = append(rows, xrefRow(0, 0, 0xFFFF))
	for i := 0; i < n; i++ {
		rows = append(rows, xrefRow(2, stmNum, i))
	}
	rows = append(rows, xrefRow(1, stmOff, 0), xrefRow(1, xrefOff, 0))

	var raw []byte
	prev := make([]byte, cols)
	for _, row := range rows {
		raw = append(raw, 2) // PNG Up
		for i := range row {
			raw = append(raw, row[i]-prev[i])
		}
		prev = row
	}
	xs := deflate(raw)

	fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] /Root 1 0 R /Filter /FlateDecode /DecodeParms << /Predictor 12 /Columns %d >> /Length %d >>\nstream\n",
		xrefNum, xrefNum+1, cols, len(xs))
	buf.Write(xs)
	fmt.Fprintf(&buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", xrefOff)
	return buf.Bytes()
}

func xrefRow(kind, f2, f3 int) []byte {
	return []byte{
		byte(kind),
		byte(f2 >> 24), byte(f2 >> 16), byte(f2 >> 8), byte(f2),
		byte(f3 >> 8), byte(f3),
	}
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}
