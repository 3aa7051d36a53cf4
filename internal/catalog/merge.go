package catalog

import (
	"fmt"
	"strings"

	"bindery/internal/enrichcache"
	"bindery/internal/genres"
	"bindery/internal/match"
)

const coverURLTemplate = "https://covers.openlibrary.org/b/isbn/%s-M.jpg"

// Record is one entry in the final dataset: a raw record merged with its
// enrichment result and override precedence applied.
type Record struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Author          string           `json:"author"`
	UserTitle       string           `json:"user_title"`
	UserAuthor      string           `json:"user_author"`
	ISBN            string           `json:"isbn,omitempty"`
	YearPublished   int              `json:"year_published,omitempty"`
	Genres          []string         `json:"genres"`
	GeoRegion       string           `json:"geo_region,omitempty"`
	SortYear        string           `json:"sort_year,omitempty"`
	SortBasis       string           `json:"sort_basis,omitempty"`
	ReadBy          map[string]bool  `json:"read_by,omitempty"`
	CoverURL        string           `json:"cover_url,omitempty"`
	OpenLibraryURL  string           `json:"open_library_url,omitempty"`
	MatchConfidence match.Confidence `json:"match_confidence"`
	SearchText      string           `json:"search_text"`
}

// Merge combines every raw record with its cached enrichment into one output
// record, in raw input order. Field precedence: isbn_override beats the
// enriched ISBN; official title/author beat the user values for display while
// user_title/user_author always carry the originals for auditability.
// Sorting and filtering are presentation concerns and do not happen here.
func Merge(records []RawRecord, cache map[string]enrichcache.Result) []Record {
	out := make([]Record, 0, len(records))
	for _, raw := range records {
		enrichment := cache[raw.CacheKey()]
		out = append(out, mergeOne(raw, enrichment))
	}
	return out
}

func mergeOne(raw RawRecord, enrichment enrichcache.Result) Record {
	isbn := raw.ISBNOverride
	if isbn == "" {
		isbn = enrichment.ISBN
	}

	title := enrichment.OfficialTitle
	if title == "" {
		title = raw.Title
	}
	author := enrichment.OfficialAuthor
	if author == "" {
		author = raw.Author
	}

	genreList := genres.Clean(enrichment.Subjects)

	confidence := enrichment.MatchConfidence
	if confidence == "" {
		confidence = match.ConfidenceNone
	}

	return Record{
		ID:              raw.ID(),
		Title:           title,
		Author:          author,
		UserTitle:       raw.Title,
		UserAuthor:      raw.Author,
		ISBN:            isbn,
		YearPublished:   enrichment.YearPublished,
		Genres:          genreList,
		GeoRegion:       raw.GeoRegion,
		SortYear:        raw.SortYear,
		SortBasis:       raw.SortBasis,
		ReadBy:          raw.ReadBy,
		CoverURL:        coverURL(isbn),
		OpenLibraryURL:  openLibraryURL(enrichment.WorkKey),
		MatchConfidence: confidence,
		SearchText:      searchText(title, author, genreList),
	}
}

func coverURL(isbn string) string {
	if isbn == "" {
		return ""
	}
	return fmt.Sprintf(coverURLTemplate, isbn)
}

func openLibraryURL(workKey string) string {
	if workKey == "" {
		return ""
	}
	return "https://openlibrary.org" + workKey
}

// searchText prepares the lowercase haystack the presentation layer's search
// index consumes.
func searchText(title, author string, genreList []string) string {
	parts := make([]string, 0, 2+len(genreList))
	parts = append(parts, title, author)
	parts = append(parts, genreList...)
	return strings.ToLower(strings.Join(parts, " "))
}
