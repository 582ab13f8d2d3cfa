// Package scraper fetches baseball-almanac year pages and turns them into table sources.
//
// Fetching is split from parsing. A Fetcher retrieves raw page bytes, either over plain
// HTTP (with retries and charset decoding) or through a headless browser for pages that
// need script execution. The Scraper discovers year links from the year menu, rate limits
// page requests, and hands each page to ParsePage, which walks the page's boxed tables and
// exposes every row as cells with their text, style tags, and declared rowspan.
//
// ParsePage knows nothing about table semantics; classification and row assembly live in
// the table package.
package scraper
