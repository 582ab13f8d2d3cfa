package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/html/charset"

	"github.com/pfrederiksen/almanac-tables/internal/logger"
)

const (
	DefaultUserAgent = "almanac-tables/1.0 (github.com/pfrederiksen/almanac-tables)"
	DefaultTimeout   = 30 * time.Second
)

// ErrStatus is returned when a page answers with a non-200 status
var ErrStatus = errors.New("unexpected status code")

// Fetcher retrieves the raw bytes of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPOptions configures an HTTPFetcher
type HTTPOptions struct {
	Timeout   time.Duration
	UserAgent string
	// Retries is the number of extra attempts after a retryable failure
	Retries int
}

// HTTPFetcher fetches pages over plain HTTP. Server errors and 429 responses are retried
// with exponential backoff; other statuses fail immediately.
type HTTPFetcher struct {
	client     *http.Client
	userAgent  string
	retries    int
	newBackOff func() backoff.BackOff
}

// NewHTTPFetcher creates an HTTPFetcher, filling unset options with defaults
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		retries:   opts.Retries,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Fetch retrieves url and returns its body decoded to UTF-8
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0

	op := func() error {
		attempt++
		data, err := f.fetchOnce(ctx, url)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			logger.Debug("Retrying page fetch", logger.Fields{
				"url":     url,
				"attempt": attempt,
				"error":   err.Error(),
			})
			return err
		}
		body = data
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(f.newBackOff(), uint64(f.retries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	return data, nil
}

// StatusError records a non-200 response
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d (%s)", ErrStatus, e.Code, e.URL)
}

// Unwrap lets errors.Is match ErrStatus
func (e *StatusError) Unwrap() error {
	return ErrStatus
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
