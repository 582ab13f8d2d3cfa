package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "sports_data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func standings() table.Frame {
	return table.Frame{
		Columns: []string{"id", "year", "team_roster", "wins", "losses", "win_percentage", "games_behind"},
		Rows: [][]string{
			{"1", "1998", "Yankees", "114", "48", "0.704", ""},
			{"2", "1998", "Red Sox", "92", "70", "0.568", "22"},
			{"3", "1998", "Rays", "63", "99", "0.389", "51.5"},
		},
	}
}

func TestInferTypes(t *testing.T) {
	got := InferTypes(standings())
	assert.Equal(t, []ColumnType{Integer, Integer, Text, Integer, Integer, Real, Real}, got)

	empty := InferTypes(table.Frame{Columns: []string{"a"}, Rows: [][]string{{""}}})
	assert.Equal(t, []ColumnType{Text}, empty)
}

func TestImportAndQuery(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	n, err := db.Import(ctx, TableName(table.Standings), standings())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	res, err := db.Query(ctx, "SELECT team_roster, wins, games_behind FROM team_standings ORDER BY wins DESC")
	require.NoError(t, err)
	assert.Equal(t, []string{"team_roster", "wins", "games_behind"}, res.Columns)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "Yankees", res.Rows[0][0])
	assert.EqualValues(t, 114, res.Rows[0][1])
	assert.Nil(t, res.Rows[0][2])
	assert.EqualValues(t, 51.5, res.Rows[2][2])
}

func TestImport_ReplacesTable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.Import(ctx, "team_standings", standings())
	require.NoError(t, err)

	smaller := table.Frame{Columns: []string{"id", "team_roster"}, Rows: [][]string{{"9", "Browns"}}}
	_, err = db.Import(ctx, "team_standings", smaller)
	require.NoError(t, err)

	res, err := db.Query(ctx, "SELECT * FROM team_standings")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "team_roster"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Browns", res.Rows[0][1])

	tables, err := db.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"team_standings"}, tables)
}

func TestImport_QuotesIdentifiers(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	f := table.Frame{Columns: []string{"id", "Top 25", `odd"name`}, Rows: [][]string{{"1", "x", "y"}, {"2"}}}
	_, err := db.Import(ctx, "hitters", f)
	require.NoError(t, err)

	res, err := db.Query(ctx, `SELECT "Top 25" FROM hitters WHERE id = 2`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Nil(t, res.Rows[0][0])
}

func TestQuery_Errors(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Query(context.Background(), "SELECT * FROM missing")
	assert.Error(t, err)
}
