package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"bindery/internal/match"
	"bindery/internal/openlibrary"
)

type fakeSearcher struct {
	booksResp *openlibrary.Response
	booksErr  error
	isbnResp  *openlibrary.Response
	isbnErr   error

	bookCalls int
	isbnCalls int
}

func (f *fakeSearcher) SearchBooks(ctx context.Context, title, author string) (*openlibrary.Response, error) {
	f.bookCalls++
	if f.booksErr != nil {
		return nil, f.booksErr
	}
	if f.booksResp == nil {
		return &openlibrary.Response{Docs: []openlibrary.Doc{}}, nil
	}
	return f.booksResp, nil
}

func (f *fakeSearcher) SearchISBN(ctx context.Context, isbn string) (*openlibrary.Response, error) {
	f.isbnCalls++
	if f.isbnErr != nil {
		return nil, f.isbnErr
	}
	if f.isbnResp == nil {
		return &openlibrary.Response{Docs: []openlibrary.Doc{}}, nil
	}
	return f.isbnResp, nil
}

func fixedClock() func() time.Time {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestLookupZeroCandidates(t *testing.T) {
	enricher := NewEnricher(&fakeSearcher{}, nil, WithClock(fixedClock()))

	result := enricher.Lookup(context.Background(), "Some Obscure Book", "Unknown Author", "")

	if result.OfficialTitle != "" || result.OfficialAuthor != "" || result.ISBN != "" ||
		result.YearPublished != 0 || result.WorkKey != "" || result.EditionKey != "" {
		t.Fatalf("expected all nullable fields empty: %+v", result)
	}
	if result.Subjects == nil || len(result.Subjects) != 0 {
		t.Fatalf("Subjects = %#v, want empty non-nil slice", result.Subjects)
	}
	if result.MatchConfidence != match.ConfidenceNone {
		t.Fatalf("MatchConfidence = %q", result.MatchConfidence)
	}
	if result.Error != "No results found" {
		t.Fatalf("Error = %q", result.Error)
	}
	if result.FetchedAt.IsZero() {
		t.Fatal("FetchedAt must be set")
	}
}

func TestLookupSelectsBestScoredCandidate(t *testing.T) {
	searcher := &fakeSearcher{
		booksResp: &openlibrary.Response{
			NumFound: 2,
			Docs: []openlibrary.Doc{
				{Key: "/works/OL1W", Title: "Dune Messiah", AuthorName: []string{"Frank Herbert"}},
				{Key: "/works/OL2W", Title: "Dune", AuthorName: []string{"Frank Herbert"},
					FirstPublishYear: 1965,
					ISBN:             []string{"0441013597", "9780441013593"},
					Subject:          []string{"Science Fiction", "Desert planets"},
					EditionKey:       []string{"OL123M"}},
			},
		},
	}
	enricher := NewEnricher(searcher, nil, WithClock(fixedClock()))

	result := enricher.Lookup(context.Background(), "Dune", "Frank Herbert", "")

	if result.OfficialTitle != "Dune" {
		t.Fatalf("OfficialTitle = %q, want best-scored candidate", result.OfficialTitle)
	}
	if result.MatchConfidence != match.ConfidenceHigh {
		t.Fatalf("MatchConfidence = %q", result.MatchConfidence)
	}
	if result.ISBN != "9780441013593" {
		t.Fatalf("ISBN = %q, want the ISBN-13", result.ISBN)
	}
	if result.YearPublished != 1965 {
		t.Fatalf("YearPublished = %d", result.YearPublished)
	}
	if result.WorkKey != "/works/OL2W" || result.EditionKey != "OL123M" {
		t.Fatalf("keys = %q / %q", result.WorkKey, result.EditionKey)
	}
	if result.Error != "" {
		t.Fatalf("unexpected error: %q", result.Error)
	}
}

func TestLookupJoinsAuthorsWithCommas(t *testing.T) {
	searcher := &fakeSearcher{
		booksResp: &openlibrary.Response{
			NumFound: 1,
			Docs: []openlibrary.Doc{
				{Title: "Good Omens", AuthorName: []string{"Terry Pratchett", "Neil Gaiman"}},
			},
		},
	}
	enricher := NewEnricher(searcher, nil)

	result := enricher.Lookup(context.Background(), "Good Omens", "Terry Pratchett", "")
	if result.OfficialAuthor != "Terry Pratchett, Neil Gaiman" {
		t.Fatalf("OfficialAuthor = %q", result.OfficialAuthor)
	}
}

func TestLookupTruncatesSubjectsToTen(t *testing.T) {
	subjects := make([]string, 14)
	for i := range subjects {
		subjects[i] = string(rune('a' + i))
	}
	searcher := &fakeSearcher{
		booksResp: &openlibrary.Response{
			NumFound: 1,
			Docs:     []openlibrary.Doc{{Title: "X", AuthorName: []string{"Y"}, Subject: subjects}},
		},
	}
	result := NewEnricher(searcher, nil).Lookup(context.Background(), "X", "Y", "")
	if len(result.Subjects) != 10 {
		t.Fatalf("Subjects length = %d, want 10", len(result.Subjects))
	}
	if result.Subjects[0] != "a" || result.Subjects[9] != "j" {
		t.Fatalf("subject order not preserved: %v", result.Subjects)
	}
}

func TestLookupTransportFailureIsRecoverable(t *testing.T) {
	searcher := &fakeSearcher{booksErr: errors.New("connection refused")}
	enricher := NewEnricher(searcher, nil, WithRetrySleep(noSleep))
	result := enricher.Lookup(context.Background(), "Dune", "Frank Herbert", "")

	if searcher.bookCalls != 2 {
		t.Fatalf("bookCalls = %d, want one retry for a transient failure", searcher.bookCalls)
	}
	if result.Error == "" {
		t.Fatal("expected error recorded in result")
	}
	if result.MatchConfidence != match.ConfidenceNone {
		t.Fatalf("MatchConfidence = %q", result.MatchConfidence)
	}
	if result.OfficialTitle != "" || result.ISBN != "" {
		t.Fatalf("expected empty fields on failure: %+v", result)
	}
}

func TestLookupDoesNotRetryPermanentFailures(t *testing.T) {
	searcher := &fakeSearcher{booksErr: errors.New("open library search returned 404")}
	enricher := NewEnricher(searcher, nil, WithRetrySleep(noSleep))
	result := enricher.Lookup(context.Background(), "Dune", "Frank Herbert", "")

	if searcher.bookCalls != 1 {
		t.Fatalf("bookCalls = %d, want no retry for a permanent failure", searcher.bookCalls)
	}
	if result.Error == "" {
		t.Fatal("expected error recorded in result")
	}
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestLookupISBNOverrideDirectHit(t *testing.T) {
	searcher := &fakeSearcher{
		isbnResp: &openlibrary.Response{
			NumFound: 1,
			Docs: []openlibrary.Doc{
				{Key: "/works/OL2W", Title: "Dune", AuthorName: []string{"Frank Herbert"}},
			},
		},
	}
	enricher := NewEnricher(searcher, nil)

	result := enricher.Lookup(context.Background(), "Dune", "Frank Herbert", "9780441013593")
	if searcher.isbnCalls != 1 || searcher.bookCalls != 0 {
		t.Fatalf("calls = isbn:%d books:%d, want isbn only", searcher.isbnCalls, searcher.bookCalls)
	}
	if result.MatchConfidence != match.ConfidenceHigh {
		t.Fatalf("MatchConfidence = %q, want high for direct isbn hit", result.MatchConfidence)
	}
	if result.ISBN != "9780441013593" {
		t.Fatalf("ISBN = %q, want the queried isbn retained", result.ISBN)
	}
}

func TestLookupISBNOverrideFallsBackToSearch(t *testing.T) {
	searcher := &fakeSearcher{
		isbnResp: &openlibrary.Response{NumFound: 0, Docs: []openlibrary.Doc{}},
		booksResp: &openlibrary.Response{
			NumFound: 1,
			Docs:     []openlibrary.Doc{{Title: "Dune", AuthorName: []string{"Frank Herbert"}}},
		},
	}
	enricher := NewEnricher(searcher, nil)

	result := enricher.Lookup(context.Background(), "Dune", "Frank Herbert", "9999999999999")
	if searcher.isbnCalls != 1 || searcher.bookCalls != 1 {
		t.Fatalf("calls = isbn:%d books:%d, want fallback", searcher.isbnCalls, searcher.bookCalls)
	}
	if result.OfficialTitle != "Dune" {
		t.Fatalf("OfficialTitle = %q", result.OfficialTitle)
	}
}

func TestSelectISBN(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"0441013597"}, "0441013597"},
		{[]string{"0441013597", "9780441013593"}, "9780441013593"},
		{[]string{"978044101359X"}, ""},
		{[]string{"044101359X", "9780441013593"}, "9780441013593"},
	}
	for _, tc := range cases {
		if got := selectISBN(tc.in); got != tc.want {
			t.Errorf("selectISBN(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
