package burger

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func runMain(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	code = Main(append([]string{"pdf-burger"}, args...), "1.2.3", &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestHoistFlags(t *testing.T) {
	tests := []struct {
		in, want []string
	}{
		{
			[]string{"pdf-burger", "a.pdf", "-o", "out.pdf", "docs", "-r"},
			[]string{"pdf-burger", "-o", "out.pdf", "-r", "--", "a.pdf", "docs"},
		},
		{
			[]string{"pdf-burger", "--format=json", "a.pdf", "--dry-run"},
			[]string{"pdf-burger", "--format=json", "--dry-run", "--", "a.pdf"},
		},
		{
			[]string{"pdf-burger", "a.pdf", "--", "-odd.pdf"},
			[]string{"pdf-burger", "--", "a.pdf", "-odd.pdf"},
		},
		{
			[]string{"pdf-burger", "--list-history", "5", "--history", "h.db"},
			[]string{"pdf-burger", "--list-history", "5", "--history", "h.db"},
		},
		{
			[]string{"pdf-burger", "--delete-run", "7", "--history", "h.db"},
			[]string{"pdf-burger", "--delete-run", "7", "--history", "h.db"},
		},
		{
			[]string{"pdf-burger", "-"},
			[]string{"pdf-burger", "--", "-"},
		},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := hoistFlags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("hoistFlags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMainMerge(t *testing.T) {
	dir, inputs := fixtures(t)
	output := filepath.Join(dir, "book.pdf")

	code, _, stderr := runMain(t, inputs[0], "-o", output, inputs[1])
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	if stderr != "merged 2 PDFs (3 pages) -> book.pdf\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestMainFailureExitCode(t *testing.T) {
	dir, _ := fixtures(t)
	missing := filepath.Join(dir, "missing.pdf")
	code, _, stderr := runMain(t, missing)
	if code != ExitFailure {
		t.Errorf("exit = %d, want %d", code, ExitFailure)
	}
	if stderr != "error: path not found: "+missing+"\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestMainUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no inputs", nil},
		{"unknown flag", []string{"--frobnicate", "a.pdf"}},
		{"bad int", []string{"--list-history", "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runMain(t, tt.args...)
			if code != ExitUsage {
				t.Errorf("exit = %d, want %d", code, ExitUsage)
			}
			if !strings.Contains(stderr, "error: ") {
				t.Errorf("stderr = %q", stderr)
			}
		})
	}
}

func TestMainVersion(t *testing.T) {
	for _, flag := range []string{"-V", "--version"} {
		code, stdout, _ := runMain(t, flag)
		if code != ExitOK || stdout != "pdf-burger 1.2.3\n" {
			t.Errorf("%s: exit = %d, stdout = %q", flag, code, stdout)
		}
	}
}

func TestMainConfigFile(t *testing.T) {
	dir, inputs := fixtures(t)
	deep := filepath.Join(dir, "in", "deep")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := copyFile(inputs[0], filepath.Join(deep, "c.pdf")); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfg, []byte("recursive: true\nformat: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runMain(t, "--config", cfg, "--dry-run", filepath.Join(dir, "in"), "-o", filepath.Join(dir, "x.pdf"))
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, `"files"`) || !strings.Contains(stdout, "c.pdf") {
		t.Errorf("stdout = %q, want a recursive JSON listing", stdout)
	}

	// An explicit flag wins over the file.
	code, stdout, stderr = runMain(t, "--config", cfg, "--format", "text", "--dry-run", filepath.Join(dir, "in"), "-o", filepath.Join(dir, "x.pdf"))
	if code != ExitOK || stdout != "" || !strings.HasPrefix(stderr, "target files (3):") {
		t.Errorf("exit = %d, stdout = %q, stderr = %q", code, stdout, stderr)
	}
}

func TestMainMissingConfig(t *testing.T) {
	code, _, stderr := runMain(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "a.pdf")
	if code != ExitUsage || !strings.Contains(stderr, "error: reading config") {
		t.Errorf("exit = %d, stderr = %q", code, stderr)
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
