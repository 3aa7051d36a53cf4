package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOpenLibrary(); err != nil {
		return err
	}
	if err := c.validateEnrichment(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOpenLibrary() error {
	if !strings.HasPrefix(c.OpenLibrary.BaseURL, "http://") && !strings.HasPrefix(c.OpenLibrary.BaseURL, "https://") {
		return fmt.Errorf("open_library.base_url must be an http(s) URL, got %q", c.OpenLibrary.BaseURL)
	}
	if c.OpenLibrary.MaxResults > 50 {
		return errors.New("open_library.max_results must be 50 or fewer")
	}
	return nil
}

func (c *Config) validateEnrichment() error {
	// The search API allows one request per second; never pace faster.
	if c.Enrichment.PauseMilliseconds < 1000 {
		return errors.New("enrichment.pause_ms must be at least 1000")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
