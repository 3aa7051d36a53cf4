package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bindery/internal/runlog"
)

func newRunsCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent build runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			ledger, err := runlog.Open(filepath.Join(cfg.Paths.LogDir, "runs.db"))
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer ledger.Close()

			runs, err := ledger.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				detail := ""
				if run.ErrorMessage != "" {
					detail = truncate(run.ErrorMessage, 40)
				}
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format(time.DateTime),
					run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
					run.Status,
					strconv.Itoa(run.Total),
					strconv.Itoa(run.CacheHits),
					strconv.Itoa(run.Attempted),
					strconv.Itoa(run.Failed),
					detail,
				})
			}

			headers := []string{"Run", "Started", "Took", "Status", "Total", "Hits", "Lookups", "Failed", "Detail"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
