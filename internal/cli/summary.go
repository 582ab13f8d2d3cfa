package cli

import (
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/almanac-tables/internal/report"
)

func newSummaryCmd(a *app) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the standings and leaderboards of one season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseYear(year); err != nil {
				return err
			}

			frames, err := a.loadCleaned()
			if err != nil {
				return err
			}

			s, err := report.Build(year, frames)
			if err != nil {
				return err
			}
			return WriteOutput(a.out, s, a.format)
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "Season to summarize (required)")
	cmd.MarkFlagRequired("year")

	return cmd
}
