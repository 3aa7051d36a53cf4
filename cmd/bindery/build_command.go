package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bindery/internal/catalog"
	"bindery/internal/enrich"
	"bindery/internal/enrichcache"
	"bindery/internal/logging"
	"bindery/internal/notifications"
	"bindery/internal/openlibrary"
	"bindery/internal/output"
	"bindery/internal/runlog"
)

func newBuildCommand(cmdCtx *commandContext) *cobra.Command {
	var fileFlag string
	var skipExport bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch the book list, enrich cache misses, and write the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := logging.NewComponentLogger(cmdCtx.ensureLogger(), "build")

			lockPath := filepath.Join(cfg.Paths.LogDir, "bindery.lock")
			buildLock := flock.New(lockPath)
			locked, err := buildLock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire build lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another build is already running (lock %s)", lockPath)
			}
			defer func() { _ = buildLock.Unlock() }()

			return runBuild(ctx, cmd, cmdCtx, fileFlag, skipExport, logger)
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the book list from a local CSV instead of the source URL")
	cmd.Flags().BoolVar(&skipExport, "skip-export", false, "Skip writing the CSV export alongside the dataset")
	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, cmdCtx *commandContext, fileFlag string, skipExport bool, logger *slog.Logger) error {
	cfg := cmdCtx.configValue()
	out := cmd.OutOrStdout()
	startedAt := time.Now()

	records, err := loadSourceRecords(ctx, cfg, cmdCtx.ensureLogger(), fileFlag)
	if err != nil {
		return fmt.Errorf("load book list: %w", err)
	}
	logger.Info("book list loaded", logging.Int("records", len(records)))

	store := enrichcache.Open(cfg.Paths.CacheFile, cmdCtx.ensureLogger())

	client, err := openlibrary.New(cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.MaxResults,
		openlibrary.WithTimeout(time.Duration(cfg.OpenLibrary.TimeoutSeconds)*time.Second))
	if err != nil {
		return fmt.Errorf("build search client: %w", err)
	}

	enricher := enrich.NewEnricher(client, cmdCtx.ensureLogger())
	orchestrator := enrich.NewOrchestrator(enricher, store, cmdCtx.ensureLogger(),
		enrich.WithPause(time.Duration(cfg.Enrichment.PauseMilliseconds)*time.Millisecond),
		enrich.WithSaveEvery(cfg.Enrichment.SaveEvery))

	notifier := notifications.NewService(cfg)
	misses := countMisses(records, store)
	if err := notifier.NotifyBuildStarted(ctx, len(records), misses); err != nil {
		logger.Warn("build started notification failed", logging.Error(err))
	}

	ledger, err := runlog.Open(filepath.Join(cfg.Paths.LogDir, "runs.db"))
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer ledger.Close()

	outcome, runErr := orchestrator.Run(ctx, records)
	if runErr != nil {
		recordFailedRun(ctx, ledger, startedAt, outcome, runErr, logger)
		if notifyErr := notifier.NotifyBuildFailed(context.WithoutCancel(ctx), runErr); notifyErr != nil {
			logger.Warn("build failed notification failed", logging.Error(notifyErr))
		}
		return runErr
	}

	merged := catalog.Merge(records, store.Snapshot())
	if err := output.WriteDataset(cfg.Paths.OutputFile, merged, time.Now()); err != nil {
		recordFailedRun(ctx, ledger, startedAt, outcome, err, logger)
		return fmt.Errorf("write dataset: %w", err)
	}
	if !skipExport {
		if err := output.ExportCSV(cfg.Paths.ExportFile, merged); err != nil {
			recordFailedRun(ctx, ledger, startedAt, outcome, err, logger)
			return fmt.Errorf("write export: %w", err)
		}
	}

	run := runlog.Run{
		ID:         outcome.RunID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Status:     runlog.StatusCompleted,
		Total:      outcome.Total,
		CacheHits:  outcome.CacheHits,
		Attempted:  outcome.Attempted,
		Succeeded:  outcome.Succeeded,
		Failed:     outcome.Failed,
	}
	if err := ledger.Record(ctx, run); err != nil {
		logger.Warn("record run failed", logging.Error(err))
	}

	if err := notifier.NotifyBuildCompleted(ctx, outcome.Total, outcome.Succeeded, outcome.Failed, time.Since(startedAt)); err != nil {
		logger.Warn("build completed notification failed", logging.Error(err))
	}

	fmt.Fprintf(out, "Built %d records (%d cache hits, %d looked up, %d failed) in %s\n",
		outcome.Total, outcome.CacheHits, outcome.Attempted, outcome.Failed, time.Since(startedAt).Round(time.Second))
	fmt.Fprintf(out, "Dataset: %s\n", cfg.Paths.OutputFile)
	if !skipExport {
		fmt.Fprintf(out, "Export:  %s\n", cfg.Paths.ExportFile)
	}
	return nil
}

// countMisses mirrors the orchestrator's miss rule so the start notification
// can report how many lookups the run will attempt.
func countMisses(records []catalog.RawRecord, store *enrichcache.Store) int {
	seen := make(map[string]struct{})
	misses := 0
	for _, record := range records {
		key := record.CacheKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cached, ok := store.Lookup(key)
		if !ok || cached.ISBNOverrideUsed != record.ISBNOverride {
			misses++
		}
	}
	return misses
}

func recordFailedRun(ctx context.Context, ledger *runlog.Store, startedAt time.Time, outcome enrich.Outcome, cause error, logger *slog.Logger) {
	status := runlog.StatusFailed
	if errors.Is(cause, enrich.ErrFailureRatio) {
		status = runlog.StatusAborted
	}
	id := outcome.RunID
	if id == "" {
		id = uuid.NewString()
	}
	run := runlog.Run{
		ID:           id,
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
		Status:       status,
		Total:        outcome.Total,
		CacheHits:    outcome.CacheHits,
		Attempted:    outcome.Attempted,
		Succeeded:    outcome.Succeeded,
		Failed:       outcome.Failed,
		ErrorMessage: cause.Error(),
	}
	if err := ledger.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("record run failed", logging.Error(err))
	}
}
