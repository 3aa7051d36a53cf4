package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bindery/internal/catalog"
	"bindery/internal/enrich"
	"bindery/internal/enrichcache"
	"bindery/internal/openlibrary"
)

func newLookupCommand(cmdCtx *commandContext) *cobra.Command {
	var isbnFlag string
	var save bool

	cmd := &cobra.Command{
		Use:   "lookup <title> <author>",
		Short: "Look up one book against Open Library without running a build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			title := strings.TrimSpace(args[0])
			author := strings.TrimSpace(args[1])
			if title == "" || author == "" {
				return fmt.Errorf("title and author are required")
			}

			client, err := openlibrary.New(cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.MaxResults,
				openlibrary.WithTimeout(time.Duration(cfg.OpenLibrary.TimeoutSeconds)*time.Second))
			if err != nil {
				return fmt.Errorf("build search client: %w", err)
			}

			enricher := enrich.NewEnricher(client, cmdCtx.ensureLogger())
			result := enricher.Lookup(cmd.Context(), title, author, strings.TrimSpace(isbnFlag))

			out := cmd.OutOrStdout()
			if result.Failed() {
				fmt.Fprintf(out, "Lookup failed: %s\n", result.Error)
			} else {
				rows := [][]string{
					{"Title", result.OfficialTitle},
					{"Author", result.OfficialAuthor},
					{"ISBN", result.ISBN},
					{"Year", formatYear(result.YearPublished)},
					{"Confidence", string(result.MatchConfidence)},
					{"Work", result.WorkKey},
					{"Subjects", truncate(strings.Join(result.Subjects, ", "), 80)},
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			}

			if save {
				store := enrichcache.Open(cfg.Paths.CacheFile, cmdCtx.ensureLogger())
				store.Put(catalog.Key(title, author), result)
				if err := store.Save(); err != nil {
					return fmt.Errorf("save cache: %w", err)
				}
				fmt.Fprintf(out, "Cached under %q\n", catalog.Key(title, author))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&isbnFlag, "isbn", "", "Resolve by ISBN before falling back to title/author search")
	cmd.Flags().BoolVar(&save, "save", false, "Store the result in the enrichment cache")
	return cmd
}

func formatYear(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprintf("%d", year)
}
