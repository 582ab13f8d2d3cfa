package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/almanac-tables/internal/logger"
	"github.com/pfrederiksen/almanac-tables/internal/reconcile"
	"github.com/pfrederiksen/almanac-tables/internal/repair"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Repair the per-kind files and write their cleaned versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleaned, err := a.cleanAll()
			if err != nil {
				return err
			}
			return WriteOutput(a.out, cleaned, a.format)
		},
	}
}

// CleanedResult is the outcome of cleaning one kind's file
type CleanedResult struct {
	Kind   table.Kind      `json:"kind"`
	Path   string          `json:"path"`
	Lines  reconcile.Stats `json:"lines"`
	Report repair.Report   `json:"report"`
}

// expectedColumns is the width a kind's file is reconciled to on reload. Standings are
// cut to their fixed layout; other kinds keep the file's own header.
func expectedColumns(kind table.Kind) []string {
	if kind == table.Standings {
		return repair.StandingsColumns
	}
	return nil
}

// cleanAll runs the repair pipeline of every kind whose file exists
func (a *app) cleanAll() ([]CleanedResult, error) {
	results := []CleanedResult{}

	for _, kind := range table.Kinds {
		src := a.store.RawPath(kind)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			a.log.Debug("No file to clean", logger.Fields{"kind": kind.String(), "path": src})
			continue
		}

		frame, stats, err := reconcile.LoadFile(src, expectedColumns(kind))
		if err != nil {
			return nil, err
		}

		res := repair.Clean(kind, frame)
		path, err := a.store.WriteCleaned(kind, res.Frame)
		if err != nil {
			return nil, fmt.Errorf("writing cleaned %s: %w", kind, err)
		}

		logger.AddCounter("records.dropped."+kind.String(), int64(res.Report.DroppedTotal()))
		a.log.Info("Table cleaned", logger.Fields{
			"kind":     kind.String(),
			"in":       res.Report.In,
			"out":      res.Report.Out,
			"repaired": res.Report.Repaired,
			"dropped":  res.Report.Dropped,
			"padded":   stats.Padded,
		})

		results = append(results, CleanedResult{Kind: kind, Path: path, Lines: stats, Report: res.Report})
	}

	return results, nil
}
