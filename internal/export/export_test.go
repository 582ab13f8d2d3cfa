package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

func TestWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "almanac.xlsx")

	err := Workbook(path, []Sheet{
		{
			Name: "team_standings",
			Frame: table.Frame{
				Columns: []string{"id", "year", "team_roster", "wins", "games_behind"},
				Rows: [][]string{
					{"1", "1949", "Yankees", "97", ""},
					{"2", "1949", "Red Sox", "96", "1"},
				},
			},
		},
		{
			Name: "hitter_leaderboard",
			Frame: table.Frame{
				Columns: []string{"id", "year", "statistic", "team", "value"},
				Rows:    [][]string{{"1", "1949", "Hits", "Red Sox", "1500"}},
			},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"team_standings", "hitter_leaderboard"}, f.GetSheetList())

	rows, err := f.GetRows("team_standings")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "year", "team_roster", "wins", "games_behind"}, rows[0])
	assert.Equal(t, []string{"2", "1949", "Red Sox", "96", "1"}, rows[2])

	// numeric cells add up, text cells would not
	require.NoError(t, f.SetCellFormula("team_standings", "F1", "SUM(D2:D3)"))
	sum, err := f.CalcCellValue("team_standings", "F1")
	require.NoError(t, err)
	assert.Equal(t, "193", sum)

	blank, err := f.GetCellValue("team_standings", "E2")
	require.NoError(t, err)
	assert.Empty(t, blank)
}

func TestWorkbook_NoSheets(t *testing.T) {
	assert.Error(t, Workbook(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{"97", 97.0},
		{" .630 ", 0.63},
		{"", nil},
		{"Yankees", "Yankees"},
		{"NaN", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cellValue(tt.in))
		})
	}
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "hitters", sheetName("hitters"))
	assert.Len(t, sheetName("a_very_long_sheet_name_beyond_the_limit"), maxSheetName)
}
