package codec

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/lvillar/pdfburger/reader"
)

// A4 in points, used when an imported page reports no MediaBox.
const (
	a4Width  = 595.28
	a4Height = 841.89
)

// Gofpdi counts pages with the reader package and merges by importing each
// source page as a template onto a page of the same size.
type Gofpdi struct{}

// NewGofpdi returns the gofpdi codec.
func NewGofpdi() *Gofpdi { return &Gofpdi{} }

// Name implements Codec.
func (*Gofpdi) Name() string { return "gofpdi" }

// PageCount implements Codec.
func (*Gofpdi) PageCount(path string) (int, error) {
	return reader.PageCount(path)
}

// NewWriter implements Codec.
func (*Gofpdi) NewWriter() Writer {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	return &gofpdiWriter{pdf: pdf, imp: gofpdi.NewImporter()}
}

// gofpdiWriter shares one importer across all appended files. Template
// names are numbered per importer and the document has a single XObject
// dictionary, so a second importer would reuse names already taken.
type gofpdiWriter struct {
	pdf       *gofpdf.Fpdf
	imp       *gofpdi.Importer
	pages     int
	finalized bool
}

// Append imports all pages of path. The source is parsed with reader first,
// so the importer only sees documents that are known to be well-formed.
func (w *gofpdiWriter) Append(path string) (int, error) {
	if w.finalized {
		return 0, ErrFinalized
	}
	pageCount, err := reader.PageCount(path)
	if err != nil {
		return 0, fmt.Errorf("codec: reading %s: %w", path, err)
	}
	if err := w.appendFile(path, pageCount); err != nil {
		return 0, fmt.Errorf("codec: importing %s: %w", path, err)
	}
	w.pages += pageCount
	return pageCount, nil
}

// appendFile imports pages 1..pageCount of path.
func (w *gofpdiWriter) appendFile(path string, pageCount int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("importer: %v", r)
		}
	}()

	for i := 1; i <= pageCount; i++ {
		tplID, width, height := importPage(w.pdf, w.imp, path, i)
		if width == 0 || height == 0 {
			width, height = a4Width, a4Height
		}
		w.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
		w.imp.UseImportedTemplate(w.pdf, tplID, 0, 0, width, height)
	}
	return w.pdf.Error()
}

// importPage imports a single page and returns its template ID and MediaBox
// dimensions.
func importPage(pdf *gofpdf.Fpdf, imp *gofpdi.Importer, path string, pageNum int) (tplID int, width, height float64) {
	tplID = imp.ImportPage(pdf, path, pageNum, "/MediaBox")
	if dims, ok := imp.GetPageSizes()[pageNum]; ok {
		if mb, ok := dims["/MediaBox"]; ok {
			width, height = mb["w"], mb["h"]
		}
	}
	return tplID, width, height
}

// Finalize writes the document and re-reads it to report the page count
// actually written.
func (w *gofpdiWriter) Finalize(outputPath string) (int, error) {
	if w.finalized {
		return 0, ErrFinalized
	}
	w.finalized = true
	if w.pages == 0 {
		return 0, ErrNothingAppended
	}
	if err := w.pdf.OutputFileAndClose(outputPath); err != nil {
		return 0, fmt.Errorf("codec: writing %s: %w", outputPath, err)
	}
	n, err := reader.PageCount(outputPath)
	if err != nil {
		return 0, fmt.Errorf("codec: reading back %s: %w", outputPath, err)
	}
	return n, nil
}
