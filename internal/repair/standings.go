package repair

import (
	"unicode"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// StandingsColumns is the flat layout of a standings file
var StandingsColumns = []string{"id", "year", "team_roster", "wins", "losses", "win_percentage", "games_behind"}

// groupLabels are division names that legitimately occupy the team column
var groupLabels = map[string]bool{"East": true, "West": true}

// Standing is one standings row as text, before coercion
type Standing struct {
	ID          string
	Year        string
	Team        string
	Wins        string
	Losses      string
	WinPct      string
	GamesBehind string
}

// StandingRow is a cleaned standings row
type StandingRow struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Year        string `json:"year"`
	Team        string `json:"team_roster"`
	Wins        Number `json:"wins"`
	Losses      Number `json:"losses"`
	WinPct      Number `json:"win_percentage"`
	GamesBehind Number `json:"games_behind"`
}

// Misaligned reports whether the row lost its first column: the team is empty while the
// wins column holds text that is not a number. Division labels are never misaligned.
func (s Standing) Misaligned() bool {
	if groupLabels[s.Team] {
		return false
	}
	return blank(s.Team) && !blank(s.Wins) && !ParseNumber(s.Wins).Valid()
}

// Shift moves every field one column to the left, the inverse of a lost team cell
func (s Standing) Shift() Standing {
	return Standing{
		ID:          s.ID,
		Year:        s.Year,
		Team:        s.Wins,
		Wins:        s.Losses,
		Losses:      s.WinPct,
		WinPct:      s.GamesBehind,
		GamesBehind: "",
	}
}

// StandingsFrom reads the fixed standings shape out of a frame by column name
func StandingsFrom(f table.Frame) []Standing {
	rows := make([]Standing, len(f.Rows))
	for i := range f.Rows {
		rows[i] = Standing{
			ID:          f.Value(i, "id"),
			Year:        f.Value(i, "year"),
			Team:        f.Value(i, "team_roster"),
			Wins:        f.Value(i, "wins"),
			Losses:      f.Value(i, "losses"),
			WinPct:      f.Value(i, "win_percentage"),
			GamesBehind: f.Value(i, "games_behind"),
		}
	}
	return rows
}

// CleanStandings repairs shifted rows, drops rank artifacts and rows whose record does not
// parse, removes duplicates and renumbers from zero
func CleanStandings(f table.Frame) ([]StandingRow, Report) {
	report := newReport(table.Standings, len(f.Rows))
	seen := make(deduper)
	out := make([]StandingRow, 0, len(f.Rows))

	for _, s := range StandingsFrom(f) {
		if s.Misaligned() {
			s = s.Shift()
			report.Repaired++
		}

		if isNumeric(s.Team) {
			report.drop(ReasonNumericTeam)
			continue
		}

		row := StandingRow{
			ID:          s.ID,
			Year:        s.Year,
			Team:        s.Team,
			Wins:        ParseNumber(s.Wins),
			Losses:      ParseNumber(s.Losses),
			WinPct:      ParseNumber(s.WinPct),
			GamesBehind: ParseGamesBehind(s.GamesBehind),
		}
		if !row.Wins.Valid() || !row.Losses.Valid() || !row.WinPct.Valid() {
			report.drop(ReasonNotNumeric)
			continue
		}

		key := dedupKey(row.Year, row.Team, row.Wins.String(), row.Losses.String(),
			row.WinPct.String(), row.GamesBehind.String())
		if seen.seen(key) {
			report.drop(ReasonDuplicate)
			continue
		}

		row.Index = len(out)
		out = append(out, row)
	}

	report.Out = len(out)
	return out, report
}

// StandingsFrame flattens cleaned rows back into the standings layout
func StandingsFrame(rows []StandingRow) table.Frame {
	f := table.Frame{Columns: StandingsColumns, Rows: make([][]string, len(rows))}
	for i, r := range rows {
		f.Rows[i] = []string{
			r.ID, r.Year, r.Team,
			r.Wins.String(), r.Losses.String(), r.WinPct.String(), r.GamesBehind.String(),
		}
	}
	return f
}

// isNumeric reports whether s is non-empty and made only of numeric characters, which
// is how stray rank cells look once they land in the team column
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
