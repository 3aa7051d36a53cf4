package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bindery/internal/config"
	"bindery/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// ensureLogger builds the process logger from the loaded config. Falls back
// to console info logging when configuration failed to load.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		opts := logging.Options{Format: "console", Level: "info", Writer: os.Stderr}
		if cfg, err := c.ensureConfig(); err == nil {
			opts.Format = cfg.Logging.Format
			opts.Level = cfg.Logging.Level
		}
		logger, err := logging.New(opts)
		if err != nil {
			logger = slog.New(logging.NoopHandler{})
		}
		c.logger = logger
	})
	return c.logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
