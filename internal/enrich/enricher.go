package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bindery/internal/enrichcache"
	"bindery/internal/logging"
	"bindery/internal/match"
	"bindery/internal/openlibrary"
)

const noResultsError = "No results found"

// Enricher converts a single raw record into an enrichment result via one
// outbound search. It is a pure adapter around the Searcher: pacing between
// calls belongs to the Orchestrator.
type Enricher struct {
	searcher openlibrary.Searcher
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithClock overrides the timestamp source, for deterministic tests.
func WithClock(now func() time.Time) EnricherOption {
	return func(e *Enricher) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRetrySleep overrides the wait between a transient failure and its
// single retry.
func WithRetrySleep(sleep func(ctx context.Context, d time.Duration) error) EnricherOption {
	return func(e *Enricher) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// NewEnricher builds an Enricher over the given searcher.
func NewEnricher(searcher openlibrary.Searcher, logger *slog.Logger, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		searcher: searcher,
		logger:   logging.NewComponentLogger(logger, "enrich"),
		now:      func() time.Time { return time.Now().UTC() },
		sleep:    openlibrary.SleepWithContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lookup resolves one record. When an ISBN override is present the edition is
// looked up directly first, falling back to a title/author search when the
// ISBN is unknown to the service. Failures never propagate as errors: they
// come back as a Result with Error set and confidence none, so one obscure
// book cannot abort a build.
func (e *Enricher) Lookup(ctx context.Context, title, author, isbnOverride string) enrichcache.Result {
	if isbn := strings.TrimSpace(isbnOverride); isbn != "" {
		if result, ok := e.lookupISBN(ctx, isbn, title); ok {
			return result
		}
	}
	return e.lookupSearch(ctx, title, author)
}

func (e *Enricher) lookupISBN(ctx context.Context, isbn, title string) (enrichcache.Result, bool) {
	resp, err := e.searcher.SearchISBN(ctx, isbn)
	if err != nil {
		e.logger.Warn("isbn lookup failed, falling back to search",
			logging.String("isbn", isbn),
			logging.Error(err))
		return enrichcache.Result{}, false
	}
	if len(resp.Docs) == 0 {
		e.logger.Debug("isbn not found, falling back to search",
			logging.String("isbn", isbn),
			logging.String("title", title))
		return enrichcache.Result{}, false
	}

	result := e.extract(resp.Docs[0])
	// A direct edition hit is as good as identification gets.
	result.MatchConfidence = match.ConfidenceHigh
	if result.ISBN == "" {
		result.ISBN = isbn
	}
	e.logger.Debug("resolved by isbn",
		logging.String("isbn", isbn),
		logging.String("official_title", result.OfficialTitle))
	return result, true
}

func (e *Enricher) lookupSearch(ctx context.Context, title, author string) enrichcache.Result {
	resp, err := e.searcher.SearchBooks(ctx, title, author)
	if err != nil && openlibrary.IsRetriable(err) {
		// One retry after the standard spacing covers 429s and blips.
		e.logger.Warn("transient search failure, retrying once",
			logging.String("title", title),
			logging.Error(err))
		if sleepErr := e.sleep(ctx, openlibrary.MinInterval); sleepErr == nil {
			resp, err = e.searcher.SearchBooks(ctx, title, author)
		}
	}
	if err != nil {
		e.logger.Warn("search failed",
			logging.String("title", title),
			logging.String("author", author),
			logging.Error(err))
		return e.emptyResult("lookup failed: " + err.Error())
	}
	if len(resp.Docs) == 0 {
		e.logger.Debug("no candidates",
			logging.String("title", title),
			logging.String("author", author))
		return e.emptyResult(noResultsError)
	}

	best := resp.Docs[0]
	bestScore := match.Score(title, author, best.Title, best.AuthorName)
	for _, doc := range resp.Docs[1:] {
		// Strict comparison keeps the first-seen candidate on ties; docs
		// arrive in the service's relevance order.
		if score := match.Score(title, author, doc.Title, doc.AuthorName); score > bestScore {
			best = doc
			bestScore = score
		}
	}

	result := e.extract(best)
	result.MatchConfidence = match.Classify(bestScore)
	e.logger.Debug("selected candidate",
		logging.String("title", title),
		logging.String("official_title", result.OfficialTitle),
		logging.Float64("score", bestScore),
		logging.String("confidence", string(result.MatchConfidence)))
	return result
}

func (e *Enricher) extract(doc openlibrary.Doc) enrichcache.Result {
	subjects := doc.Subject
	if len(subjects) > 10 {
		subjects = subjects[:10]
	}
	if subjects == nil {
		subjects = []string{}
	}

	var editionKey string
	if len(doc.EditionKey) > 0 {
		editionKey = doc.EditionKey[0]
	}

	return enrichcache.Result{
		OfficialTitle:  doc.Title,
		OfficialAuthor: strings.Join(doc.AuthorName, ", "),
		ISBN:           selectISBN(doc.ISBN),
		YearPublished:  doc.FirstPublishYear,
		Subjects:       subjects,
		WorkKey:        doc.Key,
		EditionKey:     editionKey,
		FetchedAt:      e.now(),
	}
}

func (e *Enricher) emptyResult(errMsg string) enrichcache.Result {
	return enrichcache.Result{
		Subjects:        []string{},
		MatchConfidence: match.ConfidenceNone,
		FetchedAt:       e.now(),
		Error:           errMsg,
	}
}

// selectISBN prefers a 13-digit numeric ISBN, falls back to any 10-character
// ISBN, and returns empty when the candidate carries neither.
func selectISBN(isbns []string) string {
	var isbn10 string
	for _, isbn := range isbns {
		if len(isbn) == 13 && isDigits(isbn) {
			return isbn
		}
		if len(isbn) == 10 && isbn10 == "" {
			isbn10 = isbn
		}
	}
	return isbn10
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
