package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

func TestTruncate(t *testing.T) {
	wide := table.Frame{
		Columns: []string{"id", "year", "statistic", "team", "value", "top_25", "extra"},
		Rows: [][]string{
			{"1", "2019", "Hits", "Twins", "1,547", "x", "y"},
			{"2", "2019", "Runs", "Yankees"},
		},
	}

	got := Truncate(wide)
	assert.Equal(t, LeaderboardColumns, got.Columns)
	assert.Equal(t, []string{"1", "2019", "Hits", "Twins", "1,547"}, got.Rows[0])
	assert.Equal(t, []string{"2", "2019", "Runs", "Yankees"}, got.Rows[1])

	narrow := table.Frame{Columns: LeaderboardColumns, Rows: [][]string{{"1"}}}
	assert.Equal(t, narrow, Truncate(narrow))
}

func TestCleanLeaderboard(t *testing.T) {
	f := table.Frame{
		Columns: []string{"id", "year", "statistic", "team", "value", "top_25"},
		Rows: [][]string{
			{"1", "2019", "Hits", "Twins", `"1,547"`, "extra"},
			{"2", "2019", "Batting Average", "Astros", "N/A", "extra"},
			{"3", "2019", "Runs", "", "943", "extra"},
			{"4", "2019", "", "Yankees", "943", "extra"},
			{"5", "2019", "Home Runs", "Twins", "", "extra"},
			{"6", "2019", "Hits", "Twins", "1547", "other"},
		},
	}

	rows, report := CleanLeaderboard(table.HitterLeaderboard, f)
	require.Len(t, rows, 2)

	v, ok := rows[0].Value.Float64()
	require.True(t, ok)
	assert.Equal(t, 1547.0, v)
	assert.Equal(t, "Twins", rows[0].Team)

	// an unparsable value becomes null but keeps the rest of the entry
	assert.Equal(t, "Batting Average", rows[1].Statistic)
	assert.Equal(t, "Astros", rows[1].Team)
	assert.False(t, rows[1].Value.Valid())
	assert.Equal(t, 1, rows[1].Index)

	assert.Equal(t, table.HitterLeaderboard, report.Kind)
	assert.Equal(t, 1, report.Nulls)
	assert.Equal(t, map[string]int{ReasonMissingField: 3, ReasonDuplicate: 1}, report.Dropped)
}

func TestCleanLeaderboard_DistinctUnparsableValuesAreKept(t *testing.T) {
	f := table.Frame{
		Columns: LeaderboardColumns,
		Rows: [][]string{
			{"1", "1944", "Saves", "Browns", "N/A"},
			{"2", "1944", "Saves", "Browns", "unknown"},
			{"3", "1944", "Saves", "Browns", " N/A "},
		},
	}

	rows, report := CleanLeaderboard(table.PitcherLeaderboard, f)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].ID)
	assert.Equal(t, "2", rows[1].ID)
	assert.Equal(t, 3, report.Nulls)
	assert.Equal(t, map[string]int{ReasonDuplicate: 1}, report.Dropped)
}

func TestCleanLeaderboard_Empty(t *testing.T) {
	rows, report := CleanLeaderboard(table.PitcherLeaderboard, table.Frame{Columns: LeaderboardColumns})
	assert.Empty(t, rows)
	assert.Equal(t, 0, report.Out)
}

func TestLeadersFrame(t *testing.T) {
	f := LeadersFrame([]Leader{
		{ID: "1", Year: "2019", Statistic: "Wins", Team: "Yankees", Value: NumberOf(103)},
		{ID: "2", Year: "2019", Statistic: "ERA", Team: "Rays"},
	})
	assert.Equal(t, [][]string{
		{"1", "2019", "Wins", "Yankees", "103"},
		{"2", "2019", "ERA", "Rays", ""},
	}, f.Rows)
}

func TestCleanSummary(t *testing.T) {
	f := table.Frame{
		Columns: []string{"id", "year", "statistic", "name", "team", "value"},
		Rows: [][]string{
			{"1", "1961", "Home Runs", "Roger Maris", "New York", "61"},
			{"2", "1961", "Home Runs", "", "New York", "54"},
			{"3", "1961", "RBI", "Roger Maris", " ", "141"},
			{"4", "1961", "Home Runs", "Roger Maris", "New York", "61"},
			{"5", "1961", "Batting Average", "Norm Cash", "Detroit", ".361"},
		},
	}

	out, report := CleanSummary(table.Hitters, f)
	assert.Equal(t, f.Columns, out.Columns)
	assert.Equal(t, [][]string{
		{"1", "1961", "Home Runs", "Roger Maris", "New York", "61"},
		{"5", "1961", "Batting Average", "Norm Cash", "Detroit", ".361"},
	}, out.Rows)
	assert.Equal(t, map[string]int{ReasonMissingField: 2, ReasonDuplicate: 1}, report.Dropped)
}

func TestCleanSummary_MissingColumnDropsEverything(t *testing.T) {
	f := table.Frame{Columns: []string{"id", "year", "statistic"}, Rows: [][]string{{"1", "1920", "Wins"}}}
	out, report := CleanSummary(table.Pitchers, f)
	assert.Empty(t, out.Rows)
	assert.Equal(t, 1, report.Dropped[ReasonMissingField])
}
