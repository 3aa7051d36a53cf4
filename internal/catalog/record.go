package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// RawRecord is one hand-authored catalog entry. Title and Author are required
// and trimmed upstream; everything else is optional. Records are immutable
// for the duration of a build.
type RawRecord struct {
	Title        string
	Author       string
	ISBNOverride string
	GeoRegion    string
	SortYear     string
	SortBasis    string
	// ReadBy holds the read_by_* flags keyed by reader name.
	ReadBy map[string]bool
}

// CacheKey derives the enrichment identity for this record. Two records with
// the same normalized title and author share one cache entry; distinct books
// that collide here share an enrichment result, a known limitation.
func (r RawRecord) CacheKey() string {
	return Key(r.Title, r.Author)
}

// Key builds the normalized title|author cache key.
func Key(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
}

// ID returns the stable short identifier for this record, used as a rendering
// key downstream. It covers the user-entered title and author plus the ISBN
// override so an override change produces a new identity, and is stable
// across runs otherwise.
func (r RawRecord) ID() string {
	sum := sha256.Sum256([]byte(r.Title + "|" + r.Author + "|" + r.ISBNOverride))
	return hex.EncodeToString(sum[:])[:8]
}
