// Package report builds the one-year summary shown by the summary command: the final
// standings, both team review leaderboards, the league leaders, and descriptive statistics
// over the standings.
package report

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/pfrederiksen/almanac-tables/internal/repair"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// Distribution describes a set of values
type Distribution struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes a Distribution. An empty input yields the zero Distribution.
func Describe(values []float64) (Distribution, error) {
	d := Distribution{Count: len(values)}
	if len(values) == 0 {
		return d, nil
	}

	data := stats.Float64Data(values)
	var err error
	if d.Mean, err = stats.Mean(data); err != nil {
		return d, fmt.Errorf("mean: %w", err)
	}
	if d.Median, err = stats.Median(data); err != nil {
		return d, fmt.Errorf("median: %w", err)
	}
	if d.StdDev, err = stats.StandardDeviation(data); err != nil {
		return d, fmt.Errorf("standard deviation: %w", err)
	}
	if d.Min, err = stats.Min(data); err != nil {
		return d, fmt.Errorf("min: %w", err)
	}
	if d.Max, err = stats.Max(data); err != nil {
		return d, fmt.Errorf("max: %w", err)
	}
	return d, nil
}

// Summary is everything known about one season
type Summary struct {
	Year          string               `json:"year"`
	Standings     []repair.StandingRow `json:"standings"`
	HitterReview  []repair.Leader      `json:"hitter_leaderboard"`
	PitcherReview []repair.Leader      `json:"pitcher_leaderboard"`
	Hitters       table.Frame          `json:"hitters"`
	Pitchers      table.Frame          `json:"pitchers"`
	Wins          Distribution         `json:"wins"`
	WinPercentage Distribution         `json:"win_percentage"`
}

// Empty reports whether nothing was found for the year
func (s *Summary) Empty() bool {
	return len(s.Standings) == 0 && len(s.HitterReview) == 0 && len(s.PitcherReview) == 0 &&
		len(s.Hitters.Rows) == 0 && len(s.Pitchers.Rows) == 0
}

// Build assembles the summary of year from cleaned frames keyed by kind. The frames are
// read as they are; missing kinds leave their section empty.
func Build(year string, frames map[table.Kind]table.Frame) (*Summary, error) {
	s := &Summary{
		Year:          year,
		Standings:     standingsOf(ForYear(frames[table.Standings], year)),
		HitterReview:  leadersOf(ForYear(frames[table.HitterLeaderboard], year)),
		PitcherReview: leadersOf(ForYear(frames[table.PitcherLeaderboard], year)),
	}
	s.Hitters = ForYear(frames[table.Hitters], year)
	s.Pitchers = ForYear(frames[table.Pitchers], year)

	var wins, pct []float64
	for _, row := range s.Standings {
		if v, ok := row.Wins.Float64(); ok {
			wins = append(wins, v)
		}
		if v, ok := row.WinPct.Float64(); ok {
			pct = append(pct, v)
		}
	}

	var err error
	if s.Wins, err = Describe(wins); err != nil {
		return nil, fmt.Errorf("describing wins: %w", err)
	}
	if s.WinPercentage, err = Describe(pct); err != nil {
		return nil, fmt.Errorf("describing win percentage: %w", err)
	}
	return s, nil
}

// ForYear returns the rows of f whose year column equals year. A frame without a year
// column yields no rows.
func ForYear(f table.Frame, year string) table.Frame {
	out := table.Frame{Columns: f.Columns}
	col := f.Index("year")
	if col < 0 {
		return out
	}
	for _, row := range f.Rows {
		if col < len(row) && row[col] == year {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func standingsOf(f table.Frame) []repair.StandingRow {
	rows := make([]repair.StandingRow, 0, len(f.Rows))
	for i, st := range repair.StandingsFrom(f) {
		rows = append(rows, repair.StandingRow{
			Index:       i,
			ID:          st.ID,
			Year:        st.Year,
			Team:        st.Team,
			Wins:        repair.ParseNumber(st.Wins),
			Losses:      repair.ParseNumber(st.Losses),
			WinPct:      repair.ParseNumber(st.WinPct),
			GamesBehind: repair.ParseNumber(st.GamesBehind),
		})
	}
	return rows
}

func leadersOf(f table.Frame) []repair.Leader {
	rows := make([]repair.Leader, 0, len(f.Rows))
	for i := range f.Rows {
		rows = append(rows, repair.Leader{
			Index:     i,
			ID:        f.Value(i, "id"),
			Year:      f.Value(i, "year"),
			Statistic: f.Value(i, "statistic"),
			Team:      f.Value(i, "team"),
			Value:     repair.ParseNumber(f.Value(i, "value")),
		})
	}
	return rows
}
