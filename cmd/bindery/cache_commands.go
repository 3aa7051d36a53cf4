package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bindery/internal/enrichcache"
)

func newCacheCommand(cmdCtx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the enrichment cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(cmdCtx))
	cacheCmd.AddCommand(newCacheStatsCommand(cmdCtx))
	cacheCmd.AddCommand(newCacheRemoveCommand(cmdCtx))
	cacheCmd.AddCommand(newCacheClearCommand(cmdCtx))

	return cacheCmd
}

func openCache(cmdCtx *commandContext) (*enrichcache.Store, error) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return enrichcache.Open(cfg.Paths.CacheFile, cmdCtx.ensureLogger()), nil
}

func newCacheListCommand(cmdCtx *commandContext) *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached enrichment entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(cmdCtx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, store.Len())
			for _, key := range store.Keys() {
				entry, _ := store.Lookup(key)
				if failedOnly && !entry.Failed() {
					continue
				}
				status := string(entry.MatchConfidence)
				if entry.Failed() {
					status = "failed: " + entry.Error
				}
				rows = append(rows, []string{
					truncate(key, 40),
					truncate(entry.OfficialTitle, 32),
					formatYear(entry.YearPublished),
					entry.ISBN,
					truncate(status, 36),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			headers := []string{"Key", "Title", "Year", "ISBN", "Status"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "%d entries (%s)\n", len(rows), store.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Show only failed lookups")
	return cmd
}

func newCacheStatsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		Aliases: []string{"count"},
		Short:   "Summarize the enrichment cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(cmdCtx)
			if err != nil {
				return err
			}

			byConfidence := map[string]int{}
			failed := 0
			for _, entry := range store.Snapshot() {
				if entry.Failed() {
					failed++
					continue
				}
				byConfidence[string(entry.MatchConfidence)]++
			}

			rows := [][]string{
				{"Entries", strconv.Itoa(store.Len())},
				{"Failed", strconv.Itoa(failed)},
			}
			for _, tier := range []string{"high", "medium", "low", "none"} {
				rows = append(rows, []string{"Confidence " + tier, strconv.Itoa(byConfidence[tier])})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Metric", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(out, "Cache file: %s\n", store.Path())
			return nil
		},
	}
}

func newCacheRemoveCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove one cache entry so the next build re-fetches it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(cmdCtx)
			if err != nil {
				return err
			}
			key := strings.ToLower(strings.TrimSpace(args[0]))
			if err := store.Remove(key); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return fmt.Errorf("save cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", key)
			return nil
		},
	}
}

func newCacheClearCommand(cmdCtx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to clear the cache without --yes")
			}
			store, err := openCache(cmdCtx)
			if err != nil {
				return err
			}
			count := store.Len()
			store.Clear()
			if err := store.Save(); err != nil {
				return fmt.Errorf("save cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm clearing the cache")
	return cmd
}
