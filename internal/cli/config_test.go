package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestConfigInitWritesDefaults(t *testing.T) {
	r := newTestRoot(t, nil, "config", "init")
	if err := r.cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	path := filepath.Join(r.dir, "uvcview.yaml")
	if got := r.stdout.String(); got != fmt.Sprintf("wrote %s\n", path) {
		t.Fatalf("unexpected stdout %q", got)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "device: STM32 uvc") {
		t.Fatalf("expected default device in file:\n%s", data)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	r := newTestRoot(t, nil, "config", "init")
	path := r.writeFile(t, "uvcview.yaml", "device: Mine\n", 0o644)

	err := r.cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "device: Mine\n" {
		t.Fatalf("existing file was modified: %q", data)
	}

	r.cmd.SetArgs([]string{"config", "init", "--force"})
	if err := r.cmd.Execute(); err != nil {
		t.Fatalf("forced init: %v", err)
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "STM32 uvc") {
		t.Fatalf("expected defaults after --force, got %q", data)
	}
}

func TestConfigInitGuardAndWriteShareFilesystem(t *testing.T) {
	r := newTestRoot(t, nil, "config", "init")
	fs := afero.NewMemMapFs()
	r.ctx.fs = fs
	if err := fs.MkdirAll(r.dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(r.dir, "uvcview.yaml")

	if err := r.cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read config from fs: %v", err)
	}
	if !strings.Contains(string(data), "device: STM32 uvc") {
		t.Fatalf("expected default device in file:\n%s", data)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("config written outside the configured filesystem: %v", err)
	}

	r.cmd.SetArgs([]string{"config", "init"})
	err = r.cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
}

func TestConfigLintSuccess(t *testing.T) {
	r := newTestRoot(t, nil, "config", "lint")
	path := r.writeFile(t, "uvcview.yaml", "device: Cam 1\nplayer:\n  stopTimeout: 2s\n", 0o644)

	if err := r.cmd.Execute(); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	want := fmt.Sprintf("%s: OK\n", path)
	if r.stdout.String() != want {
		t.Fatalf("unexpected stdout: got %q want %q", r.stdout.String(), want)
	}
	if r.stderr.String() != "" {
		t.Fatalf("unexpected stderr output: %q", r.stderr.String())
	}
}

func TestConfigLintSchemaViolation(t *testing.T) {
	r := newTestRoot(t, nil, "config", "lint")
	r.writeFile(t, "uvcview.yaml", "device: Cam 1\nplayer:\n  timeout: 2s\n", 0o644)

	if err := r.cmd.Execute(); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if r.stdout.String() != "" {
		t.Fatalf("expected empty stdout, got %q", r.stdout.String())
	}
	stderr := r.stderr.String()
	if !strings.Contains(stderr, "schema validation failed") {
		t.Fatalf("stderr does not mention schema failure: %q", stderr)
	}
	if !strings.Contains(stderr, "player") {
		t.Fatalf("stderr does not mention player path: %q", stderr)
	}
}

func TestConfigLintMissingFile(t *testing.T) {
	r := newTestRoot(t, nil, "config", "lint")

	if err := r.cmd.Execute(); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !strings.Contains(r.stderr.String(), "uvcview.yaml") {
		t.Fatalf("stderr does not mention config path: %q", r.stderr.String())
	}
}
