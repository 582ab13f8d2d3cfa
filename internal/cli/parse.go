package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/almanac-tables/internal/scraper"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// ParseResult is the extraction of a saved page
type ParseResult struct {
	Year string `json:"year,omitempty"`
	*table.Page
}

func newParseCmd(a *app) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "parse FILE.html",
		Short: "Extract the tables of a saved year page without persisting them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if year == "" {
				year, _ = scraper.YearFromURL(filepath.Base(path))
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening page: %w", err)
			}
			defer f.Close()

			sources, err := scraper.ParsePage(f)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}

			return WriteOutput(a.out, &ParseResult{Year: year, Page: table.ExtractPage(sources)}, a.format)
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "Season label (default: taken from a yrNNNN file name)")

	return cmd
}
