package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.OpenLibrary.BaseURL != defaultOpenLibraryBaseURL {
		t.Fatalf("unexpected base url: %q", cfg.OpenLibrary.BaseURL)
	}
	if cfg.Enrichment.PauseMilliseconds != defaultEnrichmentPauseMS {
		t.Fatalf("unexpected pause: %d", cfg.Enrichment.PauseMilliseconds)
	}
	if !strings.HasSuffix(cfg.Paths.CacheFile, "enrichment_cache.json") {
		t.Fatalf("cache file not expanded: %q", cfg.Paths.CacheFile)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[open_library]
base_url = "https://mirror.example.org/"
max_results = 3

[enrichment]
pause_ms = 2000

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatal("expected config file to be found")
	}
	if cfg.OpenLibrary.BaseURL != "https://mirror.example.org" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.OpenLibrary.BaseURL)
	}
	if cfg.OpenLibrary.MaxResults != 3 {
		t.Fatalf("max_results not applied: %d", cfg.OpenLibrary.MaxResults)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level not lowercased: %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsSubSecondPause(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[enrichment]\npause_ms = 500\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for pause_ms below 1000")
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unsupported log format")
	}
}

func TestEnvironmentOverridesSourceURL(t *testing.T) {
	t.Setenv("BINDERY_SOURCE_URL", "https://example.com/library.csv")
	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Source.URL != "https://example.com/library.csv" {
		t.Fatalf("env override not applied: %q", cfg.Source.URL)
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if err := CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}
