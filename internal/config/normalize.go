package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOpenLibrary()
	c.normalizeEnrichment()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheFile) == "" {
		c.Paths.CacheFile = defaultCacheFile
	}
	if c.Paths.CacheFile, err = expandPath(c.Paths.CacheFile); err != nil {
		return fmt.Errorf("paths.cache_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputFile) == "" {
		c.Paths.OutputFile = defaultOutputFile
	}
	if c.Paths.OutputFile, err = expandPath(c.Paths.OutputFile); err != nil {
		return fmt.Errorf("paths.output_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportFile) == "" {
		c.Paths.ExportFile = defaultExportFile
	}
	if c.Paths.ExportFile, err = expandPath(c.Paths.ExportFile); err != nil {
		return fmt.Errorf("paths.export_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Source.File) != "" {
		if c.Source.File, err = expandPath(c.Source.File); err != nil {
			return fmt.Errorf("source.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeOpenLibrary() {
	c.OpenLibrary.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenLibrary.BaseURL), "/")
	if c.OpenLibrary.BaseURL == "" {
		c.OpenLibrary.BaseURL = defaultOpenLibraryBaseURL
	}
	if c.OpenLibrary.MaxResults <= 0 {
		c.OpenLibrary.MaxResults = defaultOpenLibraryMaxResult
	}
	if c.OpenLibrary.TimeoutSeconds <= 0 {
		c.OpenLibrary.TimeoutSeconds = defaultOpenLibraryTimeout
	}
}

func (c *Config) normalizeEnrichment() {
	if c.Enrichment.PauseMilliseconds <= 0 {
		c.Enrichment.PauseMilliseconds = defaultEnrichmentPauseMS
	}
	if c.Enrichment.SaveEvery <= 0 {
		c.Enrichment.SaveEvery = defaultEnrichmentSaveEvery
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
