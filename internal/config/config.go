package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory configuration.
type Paths struct {
	CacheFile  string `toml:"cache_file"`
	OutputFile string `toml:"output_file"`
	ExportFile string `toml:"export_file"`
	LogDir     string `toml:"log_dir"`
}

// Source describes where the raw book list comes from. Exactly one of URL or
// File is used; File wins when both are set.
type Source struct {
	URL  string `toml:"url"`
	File string `toml:"file"`
}

// OpenLibrary contains configuration for the Open Library search API.
type OpenLibrary struct {
	BaseURL        string `toml:"base_url"`
	MaxResults     int    `toml:"max_results"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Enrichment contains pacing and persistence settings for the lookup loop.
type Enrichment struct {
	// PauseMilliseconds is the minimum spacing between consecutive lookups.
	PauseMilliseconds int `toml:"pause_ms"`
	// SaveEvery persists the cache after this many lookups so a crash loses
	// at most one partial batch.
	SaveEvery int `toml:"save_every"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	BuildCompleted bool   `toml:"build_completed"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bindery.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Source        Source        `toml:"source"`
	OpenLibrary   OpenLibrary   `toml:"open_library"`
	Enrichment    Enrichment    `toml:"enrichment"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bindery/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and environment overrides applied.
// A missing file is not an error; defaults are used.
func Load(path string) (*Config, string, bool, error) {
	// Best-effort .env so the source URL and ntfy topic can stay out of the
	// config file.
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("BINDERY_SOURCE_URL")); v != "" {
		c.Source.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("BINDERY_NTFY_TOPIC")); v != "" {
		c.Notifications.NtfyTopic = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENLIBRARY_BASE_URL")); v != "" {
		c.OpenLibrary.BaseURL = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bindery.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.LogDir,
		filepath.Dir(c.Paths.CacheFile),
		filepath.Dir(c.Paths.OutputFile),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath resolves ~ prefixes and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
