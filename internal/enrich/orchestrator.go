package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bindery/internal/catalog"
	"bindery/internal/enrichcache"
	"bindery/internal/logging"
	"bindery/internal/match"
	"bindery/internal/openlibrary"
)

// ErrFailureRatio signals a systemic outage: more than half of the attempted
// lookups in one run failed, so the run aborts instead of publishing a
// mostly-broken dataset.
var ErrFailureRatio = errors.New("more than half of attempted lookups failed")

// Lookuper resolves one record into an enrichment result.
type Lookuper interface {
	Lookup(ctx context.Context, title, author, isbnOverride string) enrichcache.Result
}

// Outcome aggregates one enrichment run.
type Outcome struct {
	RunID     string
	Total     int
	CacheHits int
	Attempted int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Orchestrator computes the cache-miss set, drives the Lookuper over it with
// enforced spacing, and persists the cache incrementally. Lookups run on a
// single goroutine: the spacing is a global one-request-per-second contract,
// not per key.
type Orchestrator struct {
	lookup    Lookuper
	cache     *enrichcache.Store
	logger    *slog.Logger
	pause     time.Duration
	saveEvery int
	sleep     func(ctx context.Context, d time.Duration) error
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithPause sets the minimum spacing between consecutive lookups.
func WithPause(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pause = d
		}
	}
}

// WithSaveEvery sets how many lookups happen between cache saves.
func WithSaveEvery(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.saveEvery = n
		}
	}
}

// WithSleep overrides the sleep function, for deterministic tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) OrchestratorOption {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// NewOrchestrator builds an Orchestrator over the given lookuper and cache.
func NewOrchestrator(lookup Lookuper, cache *enrichcache.Store, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		lookup:    lookup,
		cache:     cache,
		logger:    logging.NewComponentLogger(logger, "orchestrator"),
		pause:     1100 * time.Millisecond,
		saveEvery: 25,
		sleep:     openlibrary.SleepWithContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// missEntry pairs a cache key with the first record that produced it; that
// record supplies the lookup parameters for every record sharing the key.
type missEntry struct {
	key    string
	record catalog.RawRecord
}

// Run enriches every record absent from the cache, in stable input order,
// and reports the aggregate outcome.
//
// Persistence policy: the cache is saved after every saveEvery lookups and
// once at the end, so a crash mid-run loses at most the last partial batch.
// A record already present in the loaded cache is never re-fetched within the
// same run, even when its cached result carries an error; an entry whose
// recorded ISBN override no longer matches the record's is treated as a miss.
func (o *Orchestrator) Run(ctx context.Context, records []catalog.RawRecord) (Outcome, error) {
	start := time.Now()
	outcome := Outcome{
		RunID: uuid.NewString(),
		Total: len(records),
	}
	logger := o.logger.With(logging.String(logging.FieldRunID, outcome.RunID))

	misses := o.missSet(records, &outcome)
	logger.Info("computed miss set",
		logging.Int("records", len(records)),
		logging.Int("cache_hits", outcome.CacheHits),
		logging.Int("misses", len(misses)))

	sinceSave := 0
	for i, miss := range misses {
		if i > 0 {
			if err := o.sleep(ctx, o.pause); err != nil {
				outcome.Duration = time.Since(start)
				return outcome, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		result := o.lookup.Lookup(ctx, miss.record.Title, miss.record.Author, miss.record.ISBNOverride)
		result.ISBNOverrideUsed = miss.record.ISBNOverride
		o.cache.Put(miss.key, result)
		outcome.Attempted++
		sinceSave++

		switch {
		case result.Failed():
			outcome.Failed++
			logger.Warn("lookup failed",
				logging.String(logging.FieldCacheKey, miss.key),
				logging.String("error", result.Error),
				logging.Int("progress", i+1),
				logging.Int("of", len(misses)))
		default:
			if result.MatchConfidence != match.ConfidenceNone {
				outcome.Succeeded++
			}
			logger.Info("lookup complete",
				logging.String(logging.FieldCacheKey, miss.key),
				logging.String("confidence", string(result.MatchConfidence)),
				logging.Int("progress", i+1),
				logging.Int("of", len(misses)))
		}

		if sinceSave >= o.saveEvery {
			if err := o.abortOnFailureRatio(outcome); err != nil {
				outcome.Duration = time.Since(start)
				return outcome, err
			}
			if err := o.cache.Save(); err != nil {
				outcome.Duration = time.Since(start)
				return outcome, fmt.Errorf("save cache: %w", err)
			}
			sinceSave = 0
		}
	}

	outcome.Duration = time.Since(start)

	if err := o.abortOnFailureRatio(outcome); err != nil {
		return outcome, err
	}

	if outcome.Attempted > 0 {
		if err := o.cache.Save(); err != nil {
			return outcome, fmt.Errorf("save cache: %w", err)
		}
	}

	logger.Info("enrichment run complete",
		logging.Int("attempted", outcome.Attempted),
		logging.Int("succeeded", outcome.Succeeded),
		logging.Int("failed", outcome.Failed),
		logging.Duration("duration", outcome.Duration))
	return outcome, nil
}

// missSet returns the deduplicated cache misses in first-seen input order.
func (o *Orchestrator) missSet(records []catalog.RawRecord, outcome *Outcome) []missEntry {
	seen := make(map[string]struct{}, len(records))
	var misses []missEntry
	for _, record := range records {
		key := record.CacheKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		cached, found := o.cache.Lookup(key)
		if found && cached.ISBNOverrideUsed == record.ISBNOverride {
			outcome.CacheHits++
			continue
		}
		if found {
			o.logger.Info("isbn override changed, re-fetching",
				logging.String(logging.FieldCacheKey, key),
				logging.String("was", cached.ISBNOverrideUsed),
				logging.String("now", record.ISBNOverride))
		}
		misses = append(misses, missEntry{key: key, record: record})
	}
	return misses
}

func (o *Orchestrator) abortOnFailureRatio(outcome Outcome) error {
	if outcome.Attempted == 0 {
		return nil
	}
	if outcome.Failed*2 > outcome.Attempted {
		return fmt.Errorf("%w (%d of %d)", ErrFailureRatio, outcome.Failed, outcome.Attempted)
	}
	return nil
}
