package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFCPU delegates page counting and merging to pdfcpu.
type PDFCPU struct {
	conf *model.Configuration
}

// NewPDFCPU returns the pdfcpu codec with relaxed validation.
func NewPDFCPU() *PDFCPU {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPU{conf: conf}
}

// Name implements Codec.
func (*PDFCPU) Name() string { return "pdfcpu" }

// PageCount implements Codec.
func (c *PDFCPU) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("codec: opening %s: %w", path, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, c.conf)
	if err != nil {
		return 0, fmt.Errorf("codec: reading %s: %w", path, err)
	}
	return n, nil
}

// NewWriter implements Codec. pdfcpu merges whole files, so the writer only
// records the inputs and their page counts until Finalize.
func (c *PDFCPU) NewWriter() Writer {
	return &pdfcpuWriter{codec: c}
}

type pdfcpuWriter struct {
	codec     *PDFCPU
	files     []string
	pages     int
	finalized bool
}

func (w *pdfcpuWriter) Append(path string) (int, error) {
	if w.finalized {
		return 0, ErrFinalized
	}
	n, err := w.codec.PageCount(path)
	if err != nil {
		return 0, err
	}
	w.files = append(w.files, path)
	w.pages += n
	return n, nil
}

func (w *pdfcpuWriter) Finalize(outputPath string) (int, error) {
	if w.finalized {
		return 0, ErrFinalized
	}
	w.finalized = true
	if len(w.files) == 0 || w.pages == 0 {
		return 0, ErrNothingAppended
	}

	var err error
	if len(w.files) == 1 {
		err = copyFile(w.files[0], outputPath)
	} else {
		err = api.MergeCreateFile(w.files, outputPath, false, w.codec.conf)
	}
	if err != nil {
		return 0, fmt.Errorf("codec: writing %s: %w", outputPath, err)
	}
	return w.codec.PageCount(outputPath)
}

// copyFile copies src to dst, keeping the source permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
