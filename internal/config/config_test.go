package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
recursive: true
verbose: false
codec: pdfcpu
history: /tmp/runs.db
format: yaml
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !Bool(f.Recursive, false) {
		t.Error("recursive not set")
	}
	if f.Verbose == nil || *f.Verbose {
		t.Errorf("verbose = %v, want explicit false", f.Verbose)
	}
	if f.Overwrite != nil {
		t.Error("overwrite should be unset")
	}
	if f.Codec != "pdfcpu" || f.History != "/tmp/runs.db" || f.Format != "yaml" {
		t.Errorf("file = %+v", f)
	}
}

func TestLoadMissingExplicit(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f != (File{}) {
		t.Errorf("file = %+v, want empty", f)
	}
}

func TestLoadDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	if err := os.MkdirAll(filepath.Join(home, "pdf-burger"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(DefaultPath(), []byte("overwrite: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if DefaultPath() != filepath.Join(home, "pdf-burger", "config.yaml") {
		t.Errorf("DefaultPath() = %q", DefaultPath())
	}
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !Bool(f.Overwrite, false) {
		t.Error("overwrite not read from the default file")
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "recursive: [unclosed\n"))
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("err = %v", err)
	}
}
