package testsupport

import (
	"path/filepath"
	"testing"

	"bindery/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheFile = filepath.Join(base, "enrichment_cache.json")
	cfg.Paths.OutputFile = filepath.Join(base, "books.json")
	cfg.Paths.ExportFile = filepath.Join(base, "library_export.csv")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Source.File = filepath.Join(base, "books.csv")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSourceURL points the test config at a remote book list.
func WithSourceURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Source.URL = url
	}
}

// WithOpenLibraryBaseURL points the test config at a stub search server.
func WithOpenLibraryBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.OpenLibrary.BaseURL = url
	}
}
