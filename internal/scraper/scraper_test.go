package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestParsePage(t *testing.T) {
	sources, err := ParsePage(openFixture(t, "yr1949a.html"))
	require.NoError(t, err)
	require.Len(t, sources, 4)

	hitting := sources[0]
	assert.Equal(t, "1949 American League Hitting Statistics", hitting.Caption)
	assert.Equal(t, "League Leaderboards", hitting.Subcaption)
	require.Len(t, hitting.Rows, 6)

	first := hitting.Rows[2]
	require.Len(t, first, 4)
	assert.Equal(t, table.Cell{Text: "Home Runs", Styles: []string{"datacolBlue"}, Span: 2}, first[0])
	assert.Equal(t, "Ted Williams", first[1].Text, "non-breaking spaces collapse")
	assert.Len(t, hitting.Rows[3], 3)
	assert.Equal(t, table.BannerRow, table.ClassifyRow(hitting.Rows[1]))

	standings := sources[2]
	assert.Equal(t, "1949 American League Team Standings", standings.Caption)
	assert.Equal(t, "47½", standings.Rows[4][4].Text)

	// caption row without h2 and p falls back to its text
	review := sources[3]
	assert.Equal(t, "1949 Team Review", review.Caption)
	assert.Empty(t, review.Subcaption)
	assert.Len(t, review.Rows, 2)
}

func TestParsePage_Extracts(t *testing.T) {
	sources, err := ParsePage(openFixture(t, "yr1949a.html"))
	require.NoError(t, err)

	page := table.ExtractPage(sources)
	require.Len(t, page.Tables, 3)

	hitters := page.Tables[table.Hitters]
	require.Len(t, hitters.Records, 2)
	assert.Equal(t, map[string]string{
		"statistic": "Home Runs", "name": "Vern Stephens", "team": "Boston", "value": "39",
	}, hitters.Records[1].Map())

	standings := page.Tables[table.Standings]
	assert.Equal(t, []string{"team_roster", "wins", "losses", "win_percentage", "games_behind"}, standings.Headers)
	assert.Len(t, standings.Records, 3)

	require.Len(t, page.Diagnostics, 1)
	assert.Equal(t, "only 2 rows", page.Diagnostics[0].Reason)
}

func TestParsePage_ContainerMissing(t *testing.T) {
	_, err := ParsePage(strings.NewReader("<html><body><table></table></body></html>"))
	assert.ErrorIs(t, err, ErrContainerMissing)
}

func TestParseSpan(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{" 2 ", 2},
		{"", 0},
		{"two", 0},
		{"-1", 0},
		{"1.5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSpan(tt.in))
		})
	}
}

func TestYearFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.baseball-almanac.com/yearly/yr1949a.shtml", "1949", true},
		{"/yearly/yr2001a.shtml", "2001", true},
		{"/yr1900/yearly/yr1999a.shtml", "1999", true},
		{"/yearly/yr19a.shtml", "", false},
		{"/yearly/index.shtml", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := YearFromURL(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseYearMenu(t *testing.T) {
	base, err := url.Parse("https://www.baseball-almanac.com/yearmenu.shtml")
	require.NoError(t, err)

	links, err := ParseYearMenu(openFixture(t, "yearmenu.html"), base, 1)
	require.NoError(t, err)
	assert.Equal(t, []YearLink{
		{Year: "1901", URL: "https://www.baseball-almanac.com/yearly/yr1901a.shtml"},
		{Year: "1902", URL: "https://www.baseball-almanac.com/yearly/yr1902a.shtml"},
	}, links)

	_, err = ParseYearMenu(openFixture(t, "yearmenu.html"), base, 5)
	assert.ErrorIs(t, err, ErrMenuMissing)
}

// fakeFetcher serves pages from memory
type fakeFetcher map[string]string

func (f fakeFetcher) Fetch(_ context.Context, u string) ([]byte, error) {
	body, ok := f[u]
	if !ok {
		return nil, &StatusError{Code: http.StatusNotFound, URL: u}
	}
	return []byte(body), nil
}

func TestScraper_YearLinksAndFetchYear(t *testing.T) {
	menu, err := os.ReadFile("testdata/yearmenu.html")
	require.NoError(t, err)
	page, err := os.ReadFile("testdata/yr1949a.html")
	require.NoError(t, err)

	f := fakeFetcher{
		"http://almanac.test/yearmenu.shtml":       string(menu),
		"http://almanac.test/yearly/yr1901a.shtml": string(page),
	}
	s := New(f, Options{MenuURL: "http://almanac.test/yearmenu.shtml", MenuTable: 1})

	links, err := s.YearLinks(context.Background())
	require.NoError(t, err)
	require.Len(t, links, 2)

	yp, err := s.FetchYear(context.Background(), links[0])
	require.NoError(t, err)
	assert.Equal(t, "1901", yp.Year)
	assert.Len(t, yp.Sources, 4)

	_, err = s.FetchYear(context.Background(), links[1])
	assert.ErrorIs(t, err, ErrStatus)
}

func newTestFetcher(retries int) *HTTPFetcher {
	f := NewHTTPFetcher(HTTPOptions{Retries: retries})
	f.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return f
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "47½" in Latin-1
		w.Write([]byte{'4', '7', 0xbd})
	}))
	defer srv.Close()

	body, err := newTestFetcher(0).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "47½", string(body))
	assert.Equal(t, DefaultUserAgent, agent)
}

func TestHTTPFetcher_Retries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retries   int
		wantCalls int32
	}{
		{"server error retried", http.StatusBadGateway, 2, 3},
		{"rate limited retried", http.StatusTooManyRequests, 1, 2},
		{"not found is permanent", http.StatusNotFound, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestFetcher(tt.retries).Fetch(context.Background(), srv.URL)
			require.Error(t, err)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Code)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestHTTPFetcher_RecoversAfterFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	body, err := newTestFetcher(3).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
