package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	requireContains(t, out, "Wrote sample configuration")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if !strings.Contains(string(data), "[open_library]") {
		t.Errorf("sample config missing open_library section")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	_, err := runCLI(t, "", "config", "init", "--path", target)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}

	out, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite")
	if err != nil {
		t.Fatalf("config init --overwrite: %v\n%s", err, out)
	}
}
