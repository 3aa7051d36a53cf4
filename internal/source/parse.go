package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"bindery/internal/catalog"
	"bindery/internal/logging"
)

// Parse reads the CSV body into raw records. Rows missing a title or author
// after trimming are skipped with a warning rather than failing the build.
// Columns named read_by_<name> become boolean flags keyed by <name>; a cell
// of TRUE (any case) is true, everything else false.
func Parse(body string, logger *slog.Logger) ([]catalog.RawRecord, error) {
	logger = logging.NewComponentLogger(logger, "source")

	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("source csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["title"]; !ok {
		return nil, errors.New("source csv missing title column")
	}
	if _, ok := columns["author"]; !ok {
		return nil, errors.New("source csv missing author column")
	}

	var records []catalog.RawRecord
	line := 1
	for {
		line++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed csv row",
				logging.Int("line", line),
				logging.Error(err))
			continue
		}

		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		title := cell("title")
		author := cell("author")
		if title == "" || author == "" {
			logger.Warn("skipping row missing title or author",
				logging.Int("line", line))
			continue
		}

		record := catalog.RawRecord{
			Title:        title,
			Author:       author,
			ISBNOverride: cell("isbn_override"),
			GeoRegion:    cell("geo_region"),
			SortYear:     cell("sort_year"),
			SortBasis:    cell("sort_basis"),
		}

		for name, idx := range columns {
			readerName, ok := strings.CutPrefix(name, "read_by_")
			if !ok || readerName == "" || idx >= len(row) {
				continue
			}
			if record.ReadBy == nil {
				record.ReadBy = make(map[string]bool)
			}
			record.ReadBy[readerName] = strings.EqualFold(strings.TrimSpace(row[idx]), "true")
		}

		records = append(records, record)
	}

	logger.Info("parsed source csv", logging.Int("records", len(records)))
	return records, nil
}
