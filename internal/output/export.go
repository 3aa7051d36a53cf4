package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"bindery/internal/catalog"
)

// ExportCSV writes the master book list back out as CSV with resolved
// ISBNs baked into the isbn_override column. Reader columns are emitted
// as read_by_<name> with TRUE/FALSE values, one column per reader seen
// across the dataset, in sorted order.
func ExportCSV(path string, records []catalog.Record) error {
	readers := collectReaders(records)

	header := []string{"title", "author", "isbn_override", "geo_region", "sort_year", "sort_basis"}
	for _, name := range readers {
		header = append(header, "read_by_"+name)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.UserTitle,
			record.UserAuthor,
			record.ISBN,
			record.GeoRegion,
			record.SortYear,
			record.SortBasis,
		}
		for _, name := range readers {
			if record.ReadBy[name] {
				row = append(row, "TRUE")
			} else {
				row = append(row, "FALSE")
			}
		}
		if err := writer.Write(row); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush export: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func collectReaders(records []catalog.Record) []string {
	seen := make(map[string]struct{})
	for _, record := range records {
		for name := range record.ReadBy {
			seen[name] = struct{}{}
		}
	}
	readers := make([]string, 0, len(seen))
	for name := range seen {
		readers = append(readers, name)
	}
	sort.Strings(readers)
	return readers
}
