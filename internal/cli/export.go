package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/almanac-tables/internal/config"
	"github.com/pfrederiksen/almanac-tables/internal/export"
	"github.com/pfrederiksen/almanac-tables/internal/logger"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// ExportResult names the written workbook and its sheets
type ExportResult struct {
	Path   string   `json:"path"`
	Sheets []string `json:"sheets"`
}

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cleaned files to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Workbook path (default: <data-dir>/almanac.xlsx)")

	return cmd
}

func (a *app) runExport(out string) error {
	frames, err := a.loadCleaned()
	if err != nil {
		return err
	}

	if out == "" {
		out = filepath.Join(a.store.Dir(), "almanac.xlsx")
	}
	if out, err = config.ExpandPath(out); err != nil {
		return err
	}

	result := ExportResult{Path: out}
	var sheets []export.Sheet
	for _, kind := range table.Kinds {
		if f, ok := frames[kind]; ok {
			sheets = append(sheets, export.Sheet{Name: kind.String(), Frame: f})
			result.Sheets = append(result.Sheets, kind.String())
		}
	}

	if err := export.Workbook(out, sheets); err != nil {
		return err
	}
	a.log.Info("Workbook written", logger.Fields{"path": out, "sheets": len(sheets)})

	return WriteOutput(a.out, result, a.format)
}
