package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/almanac-tables/internal/logger"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

const (
	DefaultMenuURL   = "https://www.baseball-almanac.com/yearmenu.shtml"
	DefaultMenuTable = 1
)

// ErrMenuMissing is returned when the year menu has no table at the configured position
var ErrMenuMissing = errors.New("year menu table not found")

// Options configures a Scraper
type Options struct {
	MenuURL string
	// MenuTable is the position of the league's table among the menu page's tables
	MenuTable int
	// Rate is the number of page requests allowed per second
	Rate float64
}

// Scraper discovers and fetches year pages
type Scraper struct {
	fetcher   Fetcher
	menuURL   string
	menuTable int
	limiter   *rate.Limiter
}

// YearLink is one entry of the year menu
type YearLink struct {
	Year string `json:"year"`
	URL  string `json:"url"`
}

// YearPage is a fetched and parsed year page
type YearPage struct {
	Year    string         `json:"year"`
	URL     string         `json:"url"`
	Sources []table.Source `json:"sources"`
}

// New creates a Scraper backed by f
func New(f Fetcher, opts Options) *Scraper {
	if opts.MenuURL == "" {
		opts.MenuURL = DefaultMenuURL
	}
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	return &Scraper{
		fetcher:   f,
		menuURL:   opts.MenuURL,
		menuTable: opts.MenuTable,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// YearLinks fetches the year menu and returns its links in menu order, one per year
func (s *Scraper) YearLinks(ctx context.Context) ([]YearLink, error) {
	body, err := s.fetch(ctx, s.menuURL)
	if err != nil {
		return nil, fmt.Errorf("fetching year menu: %w", err)
	}

	base, err := url.Parse(s.menuURL)
	if err != nil {
		return nil, fmt.Errorf("parsing menu URL: %w", err)
	}
	return ParseYearMenu(bytes.NewReader(body), base, s.menuTable)
}

// FetchYear fetches and parses one year page
func (s *Scraper) FetchYear(ctx context.Context, link YearLink) (*YearPage, error) {
	start := time.Now()
	body, err := s.fetch(ctx, link.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", link.Year, err)
	}
	logger.RecordTiming("page.fetch", time.Since(start))

	sources, err := ParsePage(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", link.Year, err)
	}

	return &YearPage{Year: link.Year, URL: link.URL, Sources: sources}, nil
}

func (s *Scraper) fetch(ctx context.Context, u string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.fetcher.Fetch(ctx, u)
}

// ParseYearMenu reads the links of the index-th table on the menu page. Relative links
// are resolved against base. Links without a four digit year are skipped.
func ParseYearMenu(r io.Reader, base *url.URL, index int) ([]YearLink, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tables := doc.Find("table")
	if index < 0 || index >= tables.Length() {
		return nil, fmt.Errorf("%w: position %d of %d", ErrMenuMissing, index, tables.Length())
	}

	var links []YearLink
	seen := make(map[string]bool)
	tables.Eq(index).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		ref, err := url.Parse(href)
		if err != nil {
			logger.Warn("Skipping malformed year link", logger.Fields{"href": href})
			return
		}
		abs := ref.String()
		if base != nil {
			abs = base.ResolveReference(ref).String()
		}

		year, ok := YearFromURL(abs)
		if !ok {
			logger.Warn("Skipping link without a year", logger.Fields{"href": href})
			return
		}
		if seen[year] {
			return
		}
		seen[year] = true
		links = append(links, YearLink{Year: year, URL: abs})
	})

	return links, nil
}

// YearFromURL returns the four characters after the last "yr" in u when they are digits
func YearFromURL(u string) (string, bool) {
	i := strings.LastIndex(u, "yr")
	if i < 0 {
		return "", false
	}
	rest := u[i+2:]
	if len(rest) < 4 {
		return "", false
	}
	year := rest[:4]
	for _, r := range year {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return year, true
}
