package repair

import (
	"strings"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// Drop reasons recorded in a Report
const (
	ReasonMissingField = "missing_field"
	ReasonNumericTeam  = "numeric_team"
	ReasonNotNumeric   = "not_numeric"
	ReasonDuplicate    = "duplicate"
)

// Report summarizes what a pipeline did to one table
type Report struct {
	Kind     table.Kind     `json:"kind"`
	In       int            `json:"in"`
	Out      int            `json:"out"`
	Repaired int            `json:"repaired,omitempty"`
	Nulls    int            `json:"nulls,omitempty"`
	Dropped  map[string]int `json:"dropped,omitempty"`
}

func newReport(kind table.Kind, in int) Report {
	return Report{Kind: kind, In: in, Dropped: make(map[string]int)}
}

func (r *Report) drop(reason string) {
	r.Dropped[reason]++
}

// DroppedTotal returns the number of records removed for any reason
func (r Report) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// Result is a cleaned table ready to be written back out
type Result struct {
	Frame  table.Frame
	Report Report
}

// Clean runs the pipeline of the given kind over a reloaded frame
func Clean(kind table.Kind, f table.Frame) Result {
	switch kind {
	case table.Standings:
		rows, report := CleanStandings(f)
		return Result{Frame: StandingsFrame(rows), Report: report}
	case table.HitterLeaderboard, table.PitcherLeaderboard:
		rows, report := CleanLeaderboard(kind, f)
		return Result{Frame: LeadersFrame(rows), Report: report}
	case table.Hitters, table.Pitchers:
		out, report := CleanSummary(kind, f)
		return Result{Frame: out, Report: report}
	}

	report := newReport(kind, len(f.Rows))
	report.Out = len(f.Rows)
	return Result{Frame: f, Report: report}
}

// dedupKey identifies a record by everything but its persistence id, which is unique
// per row by construction
func dedupKey(fields ...string) string {
	return strings.Join(fields, "\x1f")
}

type deduper map[string]struct{}

// seen reports whether key was already recorded, recording it otherwise
func (d deduper) seen(key string) bool {
	if _, ok := d[key]; ok {
		return true
	}
	d[key] = struct{}{}
	return false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
