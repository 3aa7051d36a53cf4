package enrichcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bindery/internal/logging"
	"bindery/internal/match"
)

// Result is one cached enrichment outcome. Failed lookups are cached too,
// with Error set, so unresolvable books are not retried on every build.
// A Result is never mutated after creation except by a full re-fetch.
type Result struct {
	OfficialTitle    string           `json:"official_title,omitempty"`
	OfficialAuthor   string           `json:"official_author,omitempty"`
	ISBN             string           `json:"isbn,omitempty"`
	YearPublished    int              `json:"year_published,omitempty"`
	Subjects         []string         `json:"subjects"`
	WorkKey          string           `json:"work_key,omitempty"`
	EditionKey       string           `json:"edition_key,omitempty"`
	MatchConfidence  match.Confidence `json:"match_confidence"`
	FetchedAt        time.Time        `json:"fetched_at"`
	Error            string           `json:"error,omitempty"`
	ISBNOverrideUsed string           `json:"isbn_override_used,omitempty"`
}

// Failed reports whether the lookup that produced this result errored.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Store holds the enrichment cache in memory and persists it on demand.
// Mutations happen on a single goroutine during a build; the lock exists for
// the CLI inspection commands.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
	items  map[string]Result
}

// Open loads the cache at path. A missing file yields an empty cache; an
// unreadable or corrupt file degrades to an empty cache with a warning, which
// costs a full re-enrichment rather than the build.
func Open(path string, logger *slog.Logger) *Store {
	logger = logging.NewComponentLogger(logger, "cache")

	s := &Store{
		path:   path,
		logger: logger,
		items:  make(map[string]Result),
	}

	if err := s.load(); err != nil {
		logger.Warn("failed to load enrichment cache, starting empty",
			logging.Error(err),
			logging.String("path", path))
	}
	return s
}

// Lookup returns the cached result for key if present.
func (s *Store) Lookup(key string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, found := s.items[key]
	return result, found
}

// Put inserts or replaces the result for key in memory only. Call Save to
// persist.
func (s *Store) Put(key string, result Result) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = result
}

// Remove deletes the entry for key in memory.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; !exists {
		return fmt.Errorf("key %q not found in cache", key)
	}
	delete(s.items, key)
	return nil
}

// Clear drops every entry in memory.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]Result)
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Keys returns all cache keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the full mapping for read-only consumers.
func (s *Store) Snapshot() map[string]Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Result, len(s.items))
	for key, result := range s.items {
		out[key] = result
	}
	return out
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Save writes the full mapping atomically: the JSON is written to a temp file
// in the same directory and renamed over the target, so a crash never leaves
// a partial cache on disk. Save failures are fatal to the caller; silently
// losing enrichment work is worse than failing the build.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.items, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.Debug("saved enrichment cache",
		logging.Int("entry_count", s.Len()),
		logging.String("path", s.path))
	return nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items map[string]Result
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	s.items = make(map[string]Result, len(items))
	for key, result := range items {
		if strings.TrimSpace(key) == "" {
			continue
		}
		s.items[key] = result
	}

	s.logger.Debug("loaded enrichment cache",
		logging.Int("entry_count", len(s.items)),
		logging.String("path", s.path))
	return nil
}
