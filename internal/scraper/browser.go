package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserOptions configures a BrowserFetcher
type BrowserOptions struct {
	Headless  bool
	Timeout   time.Duration
	UserAgent string
}

// BrowserFetcher renders pages in a shared Chrome instance, one tab per fetch. The
// browser starts on first use; Close shuts it down.
type BrowserFetcher struct {
	opts BrowserOptions

	once        sync.Once
	startErr    error
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelBrows context.CancelFunc
}

// NewBrowserFetcher creates a BrowserFetcher
func NewBrowserFetcher(opts BrowserOptions) *BrowserFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &BrowserFetcher{opts: opts}
}

func (b *BrowserFetcher) start() error {
	b.once.Do(func() {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", b.opts.Headless),
			chromedp.UserAgent(b.opts.UserAgent),
		)

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

		// an empty run launches the browser
		if err := chromedp.Run(browserCtx); err != nil {
			cancelBrowser()
			cancelAlloc()
			b.startErr = fmt.Errorf("starting browser: %w", err)
			return
		}

		b.browserCtx = browserCtx
		b.cancelAlloc = cancelAlloc
		b.cancelBrows = cancelBrowser
	})
	return b.startErr
}

// Fetch navigates a new tab to url and returns the rendered document
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := b.start(); err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	tabCtx, cancel := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("rendering %s: %w", url, err)
	}
	return []byte(html), nil
}

// Close shuts the browser down
func (b *BrowserFetcher) Close() error {
	if b.cancelBrows != nil {
		b.cancelBrows()
	}
	if b.cancelAlloc != nil {
		b.cancelAlloc()
	}
	return nil
}
