package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bindery/internal/catalog"
	"bindery/internal/output"
)

func newExportCommand(cmdCtx *commandContext) *cobra.Command {
	var fileFlag string
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the CSV export with resolved ISBNs, without any lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			records, err := loadSourceRecords(cmd.Context(), cfg, cmdCtx.ensureLogger(), fileFlag)
			if err != nil {
				return fmt.Errorf("load book list: %w", err)
			}

			store, err := openCache(cmdCtx)
			if err != nil {
				return err
			}
			merged := catalog.Merge(records, store.Snapshot())

			target := cfg.Paths.ExportFile
			if strings.TrimSpace(outputFlag) != "" {
				target = strings.TrimSpace(outputFlag)
			}
			if err := output.ExportCSV(target, merged); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(merged), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the book list from a local CSV instead of the source URL")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination for the CSV export")
	return cmd
}
