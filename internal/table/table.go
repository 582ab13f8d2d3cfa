package table

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the semantic classification of a table on a year page
type Kind int

const (
	Unclassified Kind = iota
	Hitters
	Pitchers
	Standings
	HitterLeaderboard
	PitcherLeaderboard
)

// Kinds lists every classified kind in persistence order
var Kinds = []Kind{Hitters, Pitchers, Standings, HitterLeaderboard, PitcherLeaderboard}

var kindNames = map[Kind]string{
	Unclassified:       "unclassified",
	Hitters:            "hitters",
	Pitchers:           "pitchers",
	Standings:          "team_standings",
	HitterLeaderboard:  "hitter_leaderboard",
	PitcherLeaderboard: "pitcher_leaderboard",
}

// String returns the kind's storage name (e.g. "team_standings")
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a storage name back to its Kind
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name && k != Unclassified {
			return k, nil
		}
	}
	return Unclassified, fmt.Errorf("unknown table kind: %q", name)
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Schema returns the declared field order for kinds with a fixed shape.
// Summary tables have no declared shape and return nil.
func (k Kind) Schema() []string {
	switch k {
	case Standings:
		return []string{"team_roster", "wins", "losses", "win_percentage", "games_behind"}
	case HitterLeaderboard, PitcherLeaderboard:
		return []string{"statistic", "team", "value"}
	}
	return nil
}

// IsLeaderboard reports whether the kind is one of the team review leaderboards
func (k Kind) IsLeaderboard() bool {
	return k == HitterLeaderboard || k == PitcherLeaderboard
}

// Cell is one physical table cell as exposed by the DOM
type Cell struct {
	Text   string   `json:"text"`
	Styles []string `json:"styles,omitempty"`
	// Span is the declared rowspan; 0 when the cell declares none
	Span int `json:"span,omitempty"`
}

// HasStyle reports whether the cell carries the given style tag
func (c Cell) HasStyle(tag string) bool {
	for _, s := range c.Styles {
		if s == tag {
			return true
		}
	}
	return false
}

// Row is an ordered sequence of physical cells
type Row []Cell

// Source is one table as handed over by the DOM collaborator. Rows includes the caption
// row and the two footer rows; the extractor excludes them itself.
type Source struct {
	Caption    string `json:"caption"`
	Subcaption string `json:"subcaption"`
	Rows       []Row  `json:"rows"`
}

// Record maps canonical header names to values, in header order
type Record struct {
	Headers []string
	Values  []string
}

// Get returns the value stored under name
func (r Record) Get(name string) (string, bool) {
	for i, h := range r.Headers {
		if h == name {
			return r.Values[i], true
		}
	}
	return "", false
}

// Len returns the number of fields in the record
func (r Record) Len() int {
	return len(r.Headers)
}

// Map returns the record as a plain map
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.Headers))
	for i, h := range r.Headers {
		m[h] = r.Values[i]
	}
	return m
}

// MarshalJSON renders the record as a JSON object with keys in header order
func (r Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, h := range r.Headers {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Table is one extracted table
type Table struct {
	Kind       Kind     `json:"kind"`
	Caption    string   `json:"caption"`
	Subcaption string   `json:"subcaption"`
	Headers    []string `json:"headers"`
	Records    []Record `json:"records"`
}

// AllHeaders returns every header the table's records carry, in first-seen order, then
// any header only the final banner declared. Records assembled under different banners
// carry different headers.
func (t Table) AllHeaders() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(headers []string) {
		for _, h := range headers {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	for _, rec := range t.Records {
		add(rec.Headers)
	}
	add(t.Headers)
	return out
}

// Frame is a rectangular set of flat rows labeled by column name. It is the shape of
// persisted data once reloaded.
type Frame struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Index returns the position of the named column, or -1
func (f Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the named column of row i, or "" when the column is absent
func (f Frame) Value(i int, name string) string {
	idx := f.Index(name)
	if idx < 0 || idx >= len(f.Rows[i]) {
		return ""
	}
	return f.Rows[i][idx]
}

// Diagnostic describes a non-fatal irregularity found while extracting a page
type Diagnostic struct {
	Ordinal int    `json:"ordinal"`
	Caption string `json:"caption"`
	Reason  string `json:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("table %d (%q): %s", d.Ordinal, d.Caption, d.Reason)
}
