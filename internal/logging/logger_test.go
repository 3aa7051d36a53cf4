package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleHandlerLiftsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	NewComponentLogger(logger, "enrich").Info("lookup complete", String("title", "Dune"))

	line := buf.String()
	if !strings.Contains(line, "INFO enrich: lookup complete") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "title=Dune") {
		t.Fatalf("expected title attr in line: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be lifted into the prefix: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("parsed", String("title", "The Left Hand of Darkness"))

	if !strings.Contains(buf.String(), `title="The Left Hand of Darkness"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestConsoleHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "WARN emitted") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("goes nowhere", Error(nil))
}
