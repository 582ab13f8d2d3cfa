package repair

import (
	"strings"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// LeaderboardColumns is the fixed flat layout of a team review leaderboard
var LeaderboardColumns = []string{"id", "year", "statistic", "team", "value"}

// Leader is one cleaned leaderboard entry
type Leader struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Year      string `json:"year"`
	Statistic string `json:"statistic"`
	Team      string `json:"team"`
	Value     Number `json:"value"`
}

// Truncate keeps the leading LeaderboardColumns fields of a frame that carries more,
// relabeling them positionally
func Truncate(f table.Frame) table.Frame {
	width := len(LeaderboardColumns)
	if len(f.Columns) <= width {
		return f
	}

	out := table.Frame{Columns: LeaderboardColumns, Rows: make([][]string, len(f.Rows))}
	for i, row := range f.Rows {
		if len(row) > width {
			row = row[:width]
		}
		out.Rows[i] = row
	}
	return out
}

// CleanLeaderboard truncates extra columns, drops entries missing a statistic, team or
// value, coerces the value (keeping entries whose value does not parse), removes
// duplicates and renumbers from zero
func CleanLeaderboard(kind table.Kind, f table.Frame) ([]Leader, Report) {
	report := newReport(kind, len(f.Rows))
	f = Truncate(f)

	seen := make(deduper)
	out := make([]Leader, 0, len(f.Rows))

	for i := range f.Rows {
		statistic := f.Value(i, "statistic")
		team := f.Value(i, "team")
		value := f.Value(i, "value")
		if blank(statistic) || blank(team) || blank(value) {
			report.drop(ReasonMissingField)
			continue
		}

		l := Leader{
			ID:        f.Value(i, "id"),
			Year:      f.Value(i, "year"),
			Statistic: statistic,
			Team:      team,
			Value:     ParseStatValue(value),
		}
		if !l.Value.Valid() {
			report.Nulls++
		}

		if seen.seen(dedupKey(l.Year, l.Statistic, l.Team, valueKey(l.Value, value))) {
			report.drop(ReasonDuplicate)
			continue
		}

		l.Index = len(out)
		out = append(out, l)
	}

	report.Out = len(out)
	return out, report
}

// valueKey identifies a value for deduplication. Parsed values compare by number, so
// "1,547" and "1547" match; unparsable ones compare by their raw token.
func valueKey(n Number, raw string) string {
	if n.Valid() {
		return n.String()
	}
	return "raw:" + strings.TrimSpace(raw)
}

// LeadersFrame flattens cleaned entries back into the leaderboard layout
func LeadersFrame(rows []Leader) table.Frame {
	f := table.Frame{Columns: LeaderboardColumns, Rows: make([][]string, len(rows))}
	for i, l := range rows {
		f.Rows[i] = []string{l.ID, l.Year, l.Statistic, l.Team, l.Value.String()}
	}
	return f
}
