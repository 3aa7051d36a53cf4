package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"bindery/internal/catalog"
)

// Dataset wraps the merged record list with generation metadata.
type Dataset struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Count       int              `json:"count"`
	Books       []catalog.Record `json:"books"`
}

// WriteDataset writes the dataset JSON atomically (temp file + rename).
func WriteDataset(path string, records []catalog.Record, generatedAt time.Time) error {
	dataset := Dataset{
		GeneratedAt: generatedAt.UTC(),
		Count:       len(records),
		Books:       records,
	}
	if dataset.Books == nil {
		dataset.Books = []catalog.Record{}
	}

	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// ReadDataset loads a previously written dataset.
func ReadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dataset not found at %s (run a build first)", path)
		}
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var dataset Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &dataset, nil
}
