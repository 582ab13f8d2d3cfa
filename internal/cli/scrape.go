package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/almanac-tables/internal/config"
	"github.com/pfrederiksen/almanac-tables/internal/logger"
	"github.com/pfrederiksen/almanac-tables/internal/scraper"
	"github.com/pfrederiksen/almanac-tables/internal/storage"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

type scrapeOptions struct {
	years   string
	fetcher string
	workers int
	resume  bool
	clean   bool
}

func newScrapeCmd(a *app) *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch year pages and append their tables to the per-kind files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScrape(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.years, "years", "", "Years to scrape, e.g. 1990-1999 or 1927,1961 (default: all)")
	cmd.Flags().StringVar(&opts.fetcher, "fetcher", "", "Page fetcher: http or browser (overrides config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent page fetches (overrides config)")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Skip years already persisted by an earlier run")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "Run the clean step after scraping")

	return cmd
}

// YearResult is what one year contributed to the files
type YearResult struct {
	Year        string             `json:"year"`
	Tables      []storage.Span     `json:"tables"`
	Diagnostics []table.Diagnostic `json:"diagnostics,omitempty"`
}

// FailedYear is a year that could not be fetched or parsed
type FailedYear struct {
	Year  string `json:"year"`
	Error string `json:"error"`
}

// ScrapeResult is the outcome of a scrape run
type ScrapeResult struct {
	RunID   string          `json:"run_id"`
	Years   []YearResult    `json:"years"`
	Skipped []string        `json:"skipped,omitempty"`
	Failed  []FailedYear    `json:"failed,omitempty"`
	Cleaned []CleanedResult `json:"cleaned,omitempty"`
}

func (a *app) newFetcher(mode string) (scraper.Fetcher, error) {
	fc := a.cfg.Fetch
	if mode == "" {
		mode = fc.Mode
	}

	switch mode {
	case config.FetchHTTP:
		return scraper.NewHTTPFetcher(scraper.HTTPOptions{
			Timeout:   fc.Timeout,
			UserAgent: fc.UserAgent,
			Retries:   fc.Retries,
		}), nil
	case config.FetchBrowser:
		return scraper.NewBrowserFetcher(scraper.BrowserOptions{
			Headless:  fc.Headless,
			Timeout:   fc.Timeout,
			UserAgent: fc.UserAgent,
		}), nil
	}
	return nil, fmt.Errorf("invalid fetcher: %s (must be 'http' or 'browser')", mode)
}

func (a *app) runScrape(ctx context.Context, opts *scrapeOptions) error {
	years, err := parseYears(opts.years)
	if err != nil {
		return err
	}

	if opts.workers > 0 {
		a.cfg.Fetch.Workers = opts.workers
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}
	workers := a.cfg.Fetch.Workers

	fetcher, err := a.newFetcher(opts.fetcher)
	if err != nil {
		return err
	}
	if c, ok := fetcher.(io.Closer); ok {
		defer c.Close()
	}

	sc := scraper.New(fetcher, scraper.Options{
		MenuURL:   a.cfg.MenuURL,
		MenuTable: a.cfg.MenuTable,
		Rate:      a.cfg.Fetch.Rate,
	})

	st, err := a.store.LoadState()
	if err != nil {
		return err
	}
	seq := storage.NewSequencer(st)

	a.log.Info("Discovering year pages", logger.Fields{"menu_url": a.cfg.MenuURL})
	links, err := sc.YearLinks(ctx)
	if err != nil {
		return err
	}

	result := &ScrapeResult{RunID: a.runID, Years: []YearResult{}}
	var todo []scraper.YearLink
	for _, link := range links {
		if !years.Contains(link.Year) {
			continue
		}
		if opts.resume && st.HasYear(link.Year) {
			result.Skipped = append(result.Skipped, link.Year)
			continue
		}
		todo = append(todo, link)
	}

	a.log.Info("Scraping years", logger.Fields{
		"years":   len(todo),
		"skipped": len(result.Skipped),
		"workers": workers,
	})
	logger.SetGauge("years.pending", float64(len(todo)))

	pages, errs := fetchAll(ctx, sc, todo, workers)
	if err := ctx.Err(); err != nil {
		return err
	}

	// pages are persisted in menu order so ids grow with the year
	for i, link := range todo {
		if errs[i] != nil {
			a.log.Error("Year failed", logger.Fields{"year": link.Year, "url": link.URL}, errs[i])
			result.Failed = append(result.Failed, FailedYear{Year: link.Year, Error: errs[i].Error()})
			continue
		}

		yr, err := a.persistYear(pages[i], st, seq)
		if err != nil {
			return err
		}
		result.Years = append(result.Years, yr)
	}

	if opts.clean {
		cleaned, err := a.cleanAll()
		if err != nil {
			return err
		}
		result.Cleaned = cleaned
	}

	if err := WriteOutput(a.out, result, a.format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(result.Failed) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrPartial, len(result.Failed), len(todo))
	}
	return nil
}

// fetchAll fetches every link with at most workers requests in flight. A failed year
// does not stop the others; its error is returned at the same position.
func fetchAll(ctx context.Context, sc *scraper.Scraper, links []scraper.YearLink, workers int) ([]*scraper.YearPage, []error) {
	pages := make([]*scraper.YearPage, len(links))
	errs := make([]error, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, link := range links {
		g.Go(func() error {
			logger.Debug("Fetching year page", logger.Fields{"year": link.Year, "url": link.URL})
			page, err := sc.FetchYear(gctx, link)
			if err != nil {
				errs[i] = err
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()

	return pages, errs
}

// persistYear extracts the tables of one page, appends them to their files, and records
// the year in the crawl state
func (a *app) persistYear(page *scraper.YearPage, st *storage.State, seq *storage.Sequencer) (YearResult, error) {
	log := a.log.With(logger.Fields{"year": page.Year})
	yr := YearResult{Year: page.Year, Tables: []storage.Span{}}

	extracted := table.ExtractPage(page.Sources)
	for _, d := range extracted.Diagnostics {
		log.Warn("Table skipped", logger.Fields{
			"ordinal": d.Ordinal,
			"caption": d.Caption,
			"reason":  d.Reason,
		})
		if d.Reason == "unclassified" {
			logger.IncrCounter("tables.unclassified")
		}
	}
	yr.Diagnostics = extracted.Diagnostics

	for _, t := range extracted.Ordered() {
		span, err := a.store.Append(t, page.Year, seq)
		if err != nil {
			return yr, fmt.Errorf("persisting %s %s: %w", page.Year, t.Kind, err)
		}
		logger.IncrCounter("tables.extracted")
		yr.Tables = append(yr.Tables, span)
	}

	st.AddYear(page.Year)
	seq.Record(st)
	if err := a.store.SaveState(st); err != nil {
		return yr, err
	}

	log.Info("Year persisted", logger.Fields{
		"tables":  len(yr.Tables),
		"skipped": len(yr.Diagnostics),
	})
	return yr, nil
}
