// Package reconcile reloads persisted flat files whose rows may not match their declared
// width.
//
// Files are appended to across many runs and years, so a row can carry more fields than
// the schema (an extra grouping column) or fewer (a short table). Reconcile truncates or
// pads every row to the expected width, and LoadFile labels the result positionally.
package reconcile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/almanac-tables/internal/logger"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// Reconcile returns fields cut or padded with empty strings to exactly width
func Reconcile(fields []string, width int) []string {
	if width < 0 {
		width = 0
	}
	out := make([]string, width)
	copy(out, fields)
	return out
}

// Stats counts what reconciliation did to a file
type Stats struct {
	Lines     int `json:"lines"`
	Truncated int `json:"truncated"`
	Padded    int `json:"padded"`
}

// LoadFile reads a delimited file and reconciles every data line to the given columns.
// The first line is the file's header and is not data; when columns is nil it becomes
// the expected column list.
func LoadFile(path string, columns []string) (table.Frame, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.Frame{}, Stats{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	frame, stats, err := Load(f, columns)
	if err != nil {
		return table.Frame{}, stats, fmt.Errorf("reading %s: %w", path, err)
	}
	return frame, stats, nil
}

// Load is LoadFile over an arbitrary reader
func Load(r io.Reader, columns []string) (table.Frame, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var stats Stats
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table.Frame{Columns: columns}, stats, nil
	}
	if err != nil {
		return table.Frame{}, stats, fmt.Errorf("reading header: %w", err)
	}
	if columns == nil {
		columns = header
	}

	frame := table.Frame{Columns: columns, Rows: make([][]string, 0)}
	width := len(columns)

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return frame, stats, fmt.Errorf("reading row: %w", err)
		}
		stats.Lines++
		line, _ := reader.FieldPos(0)

		switch {
		case len(fields) > width:
			stats.Truncated++
		case len(fields) < width:
			stats.Padded++
			logger.Debug("Padding missing columns", logger.Fields{
				"line":   line,
				"fields": len(fields),
				"width":  width,
			})
		}

		frame.Rows = append(frame.Rows, Reconcile(fields, width))
	}

	return frame, stats, nil
}
