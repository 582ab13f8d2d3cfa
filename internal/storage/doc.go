// Package storage persists extracted tables as per-kind CSV files.
//
// Each table kind appends to its own file (hitters_data.csv, team_standings_data.csv, ...)
// with the layout id, year, <fields>. Ids are contiguous per kind and handed out by a
// Sequencer; the next id of every kind and the years already persisted are kept in a JSON
// crawl state (state.json) so that later runs continue the sequence and can skip finished
// years. Cleaned files are written next to the raw ones with a _cleaned suffix. The
// default storage location is ~/.local/share/almanac-tables/.
package storage
