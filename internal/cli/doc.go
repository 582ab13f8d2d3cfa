// Package cli implements the almanac-tables command-line interface.
//
// The root command loads configuration, sets up the run's structured logger (every line
// tagged with a run_id), and opens the data directory. Subcommands cover the whole
// pipeline: scrape fetches year pages and appends their tables to per-kind files, clean
// repairs those files, import loads the cleaned files into SQLite, query and export read
// them back out, summary reports on a single season, and parse runs the extractor over a
// saved page.
package cli
