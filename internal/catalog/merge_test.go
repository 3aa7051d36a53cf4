package catalog

import (
	"reflect"
	"testing"
	"time"

	"bindery/internal/enrichcache"
	"bindery/internal/match"
)

func enriched() enrichcache.Result {
	return enrichcache.Result{
		OfficialTitle:   "The Dispossessed",
		OfficialAuthor:  "Ursula K. Le Guin",
		ISBN:            "9780060512750",
		YearPublished:   1974,
		Subjects:        []string{"Science Fiction", "Fiction"},
		WorkKey:         "/works/OL59911W",
		MatchConfidence: match.ConfidenceHigh,
		FetchedAt:       time.Now().UTC(),
	}
}

func TestMergePrefersOfficialFields(t *testing.T) {
	raw := RawRecord{Title: "the dispossessed", Author: "le guin"}
	cache := map[string]enrichcache.Result{raw.CacheKey(): enriched()}

	out := Merge([]RawRecord{raw}, cache)
	if len(out) != 1 {
		t.Fatalf("Merge returned %d records", len(out))
	}
	rec := out[0]
	if rec.Title != "The Dispossessed" || rec.Author != "Ursula K. Le Guin" {
		t.Fatalf("display fields = %q / %q", rec.Title, rec.Author)
	}
	if rec.UserTitle != "the dispossessed" || rec.UserAuthor != "le guin" {
		t.Fatalf("user fields altered: %q / %q", rec.UserTitle, rec.UserAuthor)
	}
	if rec.ISBN != "9780060512750" {
		t.Fatalf("ISBN = %q", rec.ISBN)
	}
	if rec.CoverURL != "https://covers.openlibrary.org/b/isbn/9780060512750-M.jpg" {
		t.Fatalf("CoverURL = %q", rec.CoverURL)
	}
	if rec.OpenLibraryURL != "https://openlibrary.org/works/OL59911W" {
		t.Fatalf("OpenLibraryURL = %q", rec.OpenLibraryURL)
	}
}

func TestMergeISBNOverrideAlwaysWins(t *testing.T) {
	raw := RawRecord{Title: "Dune", Author: "Frank Herbert", ISBNOverride: "9781234567890"}
	cache := map[string]enrichcache.Result{raw.CacheKey(): enriched()}

	rec := Merge([]RawRecord{raw}, cache)[0]
	if rec.ISBN != "9781234567890" {
		t.Fatalf("ISBN = %q, want the override", rec.ISBN)
	}
}

func TestMergeFallsBackToUserFields(t *testing.T) {
	raw := RawRecord{Title: "Some Obscure Book", Author: "Unknown Author"}
	cache := map[string]enrichcache.Result{
		raw.CacheKey(): {
			Subjects:        []string{},
			MatchConfidence: match.ConfidenceNone,
			Error:           "No results found",
		},
	}

	rec := Merge([]RawRecord{raw}, cache)[0]
	if rec.Title != "Some Obscure Book" || rec.Author != "Unknown Author" {
		t.Fatalf("fallback fields = %q / %q", rec.Title, rec.Author)
	}
	if rec.ISBN != "" || rec.CoverURL != "" || rec.OpenLibraryURL != "" {
		t.Fatalf("expected empty derived fields: %+v", rec)
	}
	if rec.MatchConfidence != match.ConfidenceNone {
		t.Fatalf("MatchConfidence = %q", rec.MatchConfidence)
	}
}

func TestMergeSharedCacheKeyYieldsIdenticalEnrichment(t *testing.T) {
	a := RawRecord{Title: "Dune ", Author: "Frank Herbert", GeoRegion: "us"}
	b := RawRecord{Title: "dune", Author: " frank herbert", SortYear: "1965"}
	if a.CacheKey() != b.CacheKey() {
		t.Fatalf("cache keys differ: %q vs %q", a.CacheKey(), b.CacheKey())
	}
	cache := map[string]enrichcache.Result{a.CacheKey(): enriched()}

	out := Merge([]RawRecord{a, b}, cache)
	first, second := out[0], out[1]
	if first.ISBN != second.ISBN || first.YearPublished != second.YearPublished ||
		first.MatchConfidence != second.MatchConfidence ||
		!reflect.DeepEqual(first.Genres, second.Genres) {
		t.Fatalf("enrichment-derived fields differ:\n%+v\n%+v", first, second)
	}
	if first.GeoRegion == second.GeoRegion {
		t.Fatal("user fields should remain distinct")
	}
}

func TestMergePreservesInputOrder(t *testing.T) {
	records := []RawRecord{
		{Title: "B", Author: "x"},
		{Title: "A", Author: "y"},
		{Title: "C", Author: "z"},
	}
	out := Merge(records, map[string]enrichcache.Result{})
	for i, rec := range out {
		if rec.UserTitle != records[i].Title {
			t.Fatalf("order changed at %d: %q", i, rec.UserTitle)
		}
	}
}

func TestMergeSearchText(t *testing.T) {
	raw := RawRecord{Title: "the dispossessed", Author: "le guin"}
	cache := map[string]enrichcache.Result{raw.CacheKey(): enriched()}

	rec := Merge([]RawRecord{raw}, cache)[0]
	want := "the dispossessed ursula k. le guin science fiction"
	if rec.SearchText != want {
		t.Fatalf("SearchText = %q, want %q", rec.SearchText, want)
	}
}

func TestRecordIDStableAndOverrideSensitive(t *testing.T) {
	a := RawRecord{Title: "Dune", Author: "Frank Herbert"}
	b := RawRecord{Title: "Dune", Author: "Frank Herbert"}
	if a.ID() != b.ID() {
		t.Fatal("ID should be stable for identical records")
	}
	if len(a.ID()) != 8 {
		t.Fatalf("ID length = %d, want 8", len(a.ID()))
	}
	c := RawRecord{Title: "Dune", Author: "Frank Herbert", ISBNOverride: "9780441013593"}
	if a.ID() == c.ID() {
		t.Fatal("ID should change when the ISBN override changes")
	}
}

func TestKeyNormalizes(t *testing.T) {
	if Key("  Dune ", " Frank HERBERT") != "dune|frank herbert" {
		t.Fatalf("Key = %q", Key("  Dune ", " Frank HERBERT"))
	}
}
