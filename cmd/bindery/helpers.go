package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bindery/internal/catalog"
	"bindery/internal/config"
	"bindery/internal/source"
)

// loadSourceRecords resolves the book list from a local file when configured,
// otherwise from the source URL. An explicit fileFlag wins over both.
func loadSourceRecords(ctx context.Context, cfg *config.Config, logger *slog.Logger, fileFlag string) ([]catalog.RawRecord, error) {
	var (
		body string
		err  error
	)
	switch {
	case strings.TrimSpace(fileFlag) != "":
		body, err = source.ReadFile(strings.TrimSpace(fileFlag))
	case strings.TrimSpace(cfg.Source.File) != "":
		body, err = source.ReadFile(cfg.Source.File)
	case strings.TrimSpace(cfg.Source.URL) != "":
		body, err = source.Fetch(ctx, cfg.Source.URL)
	default:
		return nil, errors.New("no book list configured: set source.url or source.file, or pass --file")
	}
	if err != nil {
		return nil, err
	}
	return source.Parse(body, logger)
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
