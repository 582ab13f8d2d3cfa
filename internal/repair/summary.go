package repair

import (
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// summaryRequired are the fields a season summary row cannot do without
var summaryRequired = []string{"name", "team"}

// CleanSummary drops batting or pitching summary rows without a name or team and removes
// exact duplicates, keeping the original order
func CleanSummary(kind table.Kind, f table.Frame) (table.Frame, Report) {
	report := newReport(kind, len(f.Rows))
	out := table.Frame{Columns: f.Columns, Rows: make([][]string, 0, len(f.Rows))}

	idIdx := f.Index("id")
	seen := make(deduper)

rows:
	for i, row := range f.Rows {
		for _, name := range summaryRequired {
			if blank(f.Value(i, name)) {
				report.drop(ReasonMissingField)
				continue rows
			}
		}

		key := make([]string, 0, len(row))
		for j, v := range row {
			if j != idIdx {
				key = append(key, v)
			}
		}
		if seen.seen(dedupKey(key...)) {
			report.drop(ReasonDuplicate)
			continue
		}

		out.Rows = append(out.Rows, row)
	}

	report.Out = len(out.Rows)
	return out, report
}
