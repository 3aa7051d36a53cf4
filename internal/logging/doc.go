// Package logging configures slog for bindery with a human-oriented console
// handler and a JSON handler for automation, plus helpers for component
// loggers and standardized attribute keys.
package logging
