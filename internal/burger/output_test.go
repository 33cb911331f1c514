package burger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lvillar/pdfburger"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveOutput(t *testing.T) {
	cwd := t.TempDir()
	docs := filepath.Join(cwd, "docs")
	if err := os.Mkdir(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(cwd, "a.pdf"))

	tests := []struct {
		name   string
		output string
		inputs []string
		want   string
	}{
		{"explicit relative", "out/book.pdf", []string{"a.pdf"}, filepath.Join(cwd, "out", "book.pdf")},
		{"explicit absolute", filepath.Join(cwd, "x", "..", "abs.pdf"), []string{"a.pdf"}, filepath.Join(cwd, "abs.pdf")},
		{"single directory", "", []string{"docs/"}, filepath.Join(cwd, "docs.pdf")},
		{"single file", "", []string{"a.pdf"}, filepath.Join(cwd, "merged.pdf")},
		{"several inputs", "", []string{"docs", "a.pdf"}, filepath.Join(cwd, "merged.pdf")},
		{"missing input", "", []string{"nope"}, filepath.Join(cwd, "merged.pdf")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveOutput(tt.output, tt.inputs, cwd); got != tt.want {
				t.Errorf("ResolveOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveOutputDefaultIsUnique(t *testing.T) {
	cwd := t.TempDir()
	touch(t, filepath.Join(cwd, "merged.pdf"))
	want := filepath.Join(cwd, "merged_001.pdf")
	if got := ResolveOutput("", []string{"a.pdf", "b.pdf"}, cwd); got != want {
		t.Errorf("ResolveOutput() = %q, want %q", got, want)
	}

	// An explicit output is never renamed.
	explicit := filepath.Join(cwd, "merged.pdf")
	if got := ResolveOutput(explicit, []string{"a.pdf"}, cwd); got != explicit {
		t.Errorf("ResolveOutput(explicit) = %q", got)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "merged.pdf")
	if got := UniquePath(path); got != path {
		t.Errorf("free path changed to %q", got)
	}

	touch(t, path)
	touch(t, filepath.Join(dir, "merged_001.pdf"))
	if got, want := UniquePath(path), filepath.Join(dir, "merged_002.pdf"); got != want {
		t.Errorf("UniquePath() = %q, want %q", got, want)
	}
}

func TestUniquePathExhausted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.pdf")
	touch(t, path)
	for i := 1; i < 1000; i++ {
		touch(t, filepath.Join(dir, fmt.Sprintf("m_%03d.pdf", i)))
	}
	if got := UniquePath(path); got != path {
		t.Errorf("UniquePath() = %q, want the original path", got)
	}
}

func TestCheckOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "out.pdf")
	touch(t, existing)
	missing := filepath.Join(dir, "new.pdf")

	if err := CheckOverwrite(missing, true, false); err != nil {
		t.Errorf("missing output: %v", err)
	}
	if err := CheckOverwrite(existing, true, true); err != nil {
		t.Errorf("--overwrite: %v", err)
	}
	if err := CheckOverwrite(existing, false, false); err != nil {
		t.Errorf("default output: %v", err)
	}

	err := CheckOverwrite(existing, true, false)
	if !errors.Is(err, ErrOutputExists) {
		t.Fatalf("err = %v, want ErrOutputExists", err)
	}
	want := "output file already exists: " + existing + "\n  use --overwrite to replace it"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestFormatDryRun(t *testing.T) {
	got := FormatDryRun([]string{"/d/a.pdf", "/d/b.pdf"})
	want := "target files (2):\n  /d/a.pdf\n  /d/b.pdf"
	if got != want {
		t.Errorf("FormatDryRun() = %q, want %q", got, want)
	}
	if got := FormatDryRun(nil); got != "target files (0):" {
		t.Errorf("FormatDryRun(nil) = %q", got)
	}
}

func TestFormatReport(t *testing.T) {
	got := FormatReport(pdfburger.Report{Output: "/out/book.pdf", FileCount: 3, PageCount: 12})
	if want := "merged 3 PDFs (12 pages) -> book.pdf"; got != want {
		t.Errorf("FormatReport() = %q, want %q", got, want)
	}
}
