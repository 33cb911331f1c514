package pdfburger_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/pdfburger"
)

func ExampleBurger_Merge() {
	dir, err := os.MkdirTemp("", "pdfburger-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	chapters := filepath.Join(dir, "chapters")
	if err := os.Mkdir(chapters, 0o755); err != nil {
		fmt.Println(err)
		return
	}
	for i, name := range []string{"chapter10.pdf", "chapter2.pdf"} {
		pdf := gofpdf.New("P", "mm", "A4", "")
		for p := 0; p <= i; p++ {
			pdf.AddPage()
		}
		if err := pdf.OutputFileAndClose(filepath.Join(chapters, name)); err != nil {
			fmt.Println(err)
			return
		}
	}

	b := pdfburger.New()
	collected, err := b.Collect([]string{chapters}, false).Get()
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, f := range collected.Files {
		fmt.Println(filepath.Base(f))
	}

	report, err := b.Merge(collected.Files, filepath.Join(dir, "book.pdf")).Get()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("merged %d PDFs (%d pages)\n", report.FileCount, report.PageCount)
	// Output:
	// chapter2.pdf
	// chapter10.pdf
	// merged 2 PDFs (3 pages)
}
