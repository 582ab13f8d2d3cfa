package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

func newStore(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return s
}

func record(headers []string, values ...string) table.Record {
	return table.Record{Headers: headers, Values: values}
}

func TestNew_CreatesDirectory(t *testing.T) {
	s := newStore(t)
	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestState_RoundTrip(t *testing.T) {
	s := newStore(t)

	st, err := s.LoadState()
	require.NoError(t, err)
	assert.Empty(t, st.Years)

	st.AddYear("1999")
	st.AddYear("1927")
	st.AddYear("1999")
	st.NextID["hitters"] = 42
	require.NoError(t, s.SaveState(st))

	loaded, err := s.LoadState()
	require.NoError(t, err)
	assert.Equal(t, []string{"1927", "1999"}, loaded.Years)
	assert.True(t, loaded.HasYear("1927"))
	assert.False(t, loaded.HasYear("1928"))
	assert.Equal(t, 42, loaded.NextID["hitters"])
	assert.NotEmpty(t, loaded.UpdatedAt)
}

func TestLoadState_Corrupt(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), stateFile), []byte("{"), 0644))

	_, err := s.LoadState()
	assert.ErrorContains(t, err, "parsing state")
}

func TestSequencer(t *testing.T) {
	st := NewState()
	st.NextID["team_standings"] = 100

	seq := NewSequencer(st)
	assert.Equal(t, 100, seq.Reserve(table.Standings, 8))
	assert.Equal(t, 108, seq.Reserve(table.Standings, 8))
	assert.Equal(t, 1, seq.Reserve(table.Hitters, 3))
	assert.Equal(t, 4, seq.Peek(table.Hitters))

	out := NewState()
	seq.Record(out)
	assert.Equal(t, 116, out.NextID["team_standings"])
	assert.Equal(t, 4, out.NextID["hitters"])
}

func TestSequencer_Concurrent(t *testing.T) {
	seq := NewSequencer(nil)

	var wg sync.WaitGroup
	firsts := make(chan int, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			firsts <- seq.Reserve(table.Pitchers, 10)
		}()
	}
	wg.Wait()
	close(firsts)

	seen := make(map[int]bool)
	for f := range firsts {
		assert.False(t, seen[f], "id range starting at %d handed out twice", f)
		assert.Equal(t, 1, f%10)
		seen[f] = true
	}
	assert.Equal(t, 501, seq.Peek(table.Pitchers))
}

func TestColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"team_roster", "wins", "losses", "win_percentage", "games_behind", "Division"},
		Columns(table.Standings, []string{"Division", "team_roster", "wins", "losses", "win_percentage", "games_behind"}))

	assert.Equal(t,
		[]string{"statistic", "team", "value", "name", "top_25"},
		Columns(table.HitterLeaderboard, []string{"statistic", "name", "team", "value", "top_25"}))

	assert.Equal(t,
		[]string{"statistic", "name", "team"},
		Columns(table.Hitters, []string{"statistic", "name", "team"}))
}

func TestAppend(t *testing.T) {
	s := newStore(t)
	seq := NewSequencer(nil)
	headers := []string{"Division", "team_roster", "wins", "losses", "win_percentage", "games_behind"}

	first := table.Table{Kind: table.Standings, Headers: headers, Records: []table.Record{
		record(headers, "East", "Yankees", "114", "48", ".704", "--"),
		record(headers, "East", "Red Sox, Boston", "92", "70", ".568", "22"),
	}}
	span, err := s.Append(first, "1998", seq)
	require.NoError(t, err)
	assert.Equal(t, Span{Kind: table.Standings, First: 1, Count: 2}, span)
	assert.Equal(t, 2, span.Last())

	short := []string{"team_roster", "wins"}
	second := table.Table{Kind: table.Standings, Headers: short, Records: []table.Record{
		record(short, "Tigers", "90"),
	}}
	span, err = s.Append(second, "1940", seq)
	require.NoError(t, err)
	assert.Equal(t, 3, span.First)

	data, err := os.ReadFile(s.RawPath(table.Standings))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{
		"id,year,team_roster,wins,losses,win_percentage,games_behind,Division",
		"1,1998,Yankees,114,48,.704,--,East",
		`2,1998,"Red Sox, Boston",92,70,.568,22,East`,
		"3,1940,Tigers,90,,,,",
	}, lines)
}

func TestAppend_KeepsFieldsOfEarlierBanners(t *testing.T) {
	s := newStore(t)
	wide := []string{"statistic", "name", "team", "value"}
	narrow := []string{"statistic", "name", "value"}

	tbl := table.Table{Kind: table.Hitters, Headers: narrow, Records: []table.Record{
		record(wide, "Home Runs", "Babe Ruth", "New York", "60"),
		record(narrow, "Batting Average", "Harry Heilmann", ".398"),
	}}
	_, err := s.Append(tbl, "1927", NewSequencer(nil))
	require.NoError(t, err)

	data, err := os.ReadFile(s.RawPath(table.Hitters))
	require.NoError(t, err)
	assert.Equal(t, "id,year,statistic,name,team,value\n"+
		"1,1927,Home Runs,Babe Ruth,New York,60\n"+
		"2,1927,Batting Average,Harry Heilmann,,.398\n", string(data))
}

func TestAppend_WidensExistingFile(t *testing.T) {
	s := newStore(t)
	seq := NewSequencer(nil)

	first := []string{"statistic", "name", "value"}
	_, err := s.Append(table.Table{Kind: table.Pitchers, Headers: first, Records: []table.Record{
		record(first, "Wins", "Lefty Grove", "31"),
	}}, "1931", seq)
	require.NoError(t, err)

	second := []string{"statistic", "name", "team", "value"}
	_, err = s.Append(table.Table{Kind: table.Pitchers, Headers: second, Records: []table.Record{
		record(second, "Wins", "Denny McLain", "Detroit", "31"),
	}}, "1968", seq)
	require.NoError(t, err)

	data, err := os.ReadFile(s.RawPath(table.Pitchers))
	require.NoError(t, err)
	assert.Equal(t, "id,year,statistic,name,value,team\n"+
		"1,1931,Wins,Lefty Grove,31,\n"+
		"2,1968,Wins,Denny McLain,31,Detroit\n", string(data))
}

func TestWriteCleaned(t *testing.T) {
	s := newStore(t)
	f := table.Frame{Columns: []string{"id", "year", "value"}, Rows: [][]string{{"1", "2019", "1547"}}}

	path, err := s.WriteCleaned(table.HitterLeaderboard, f)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "hitter_leaderboard_data_cleaned.csv"), path)

	// a second write replaces the file
	_, err = s.WriteCleaned(table.HitterLeaderboard, f)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,year,value\n1,2019,1547\n", string(data))
}
