package table

import (
	"strconv"
	"strings"
)

// DivisionHeader is the synthetic header of the grouping column declared by a banner row
const DivisionHeader = "Division"

// headerMap normalizes the site's banner labels to canonical column names.
// Labels missing from the map are kept as they appear.
var headerMap = map[string]string{
	"Statistic":     "statistic",
	"Name(s)":       "name",
	"Team(s)":       "team",
	"#":             "value",
	"Top 25":        "top_25",
	"Team | Roster": "team_roster",
	"W":             "wins",
	"L":             "losses",
	"WP":            "win_percentage",
	"GB":            "games_behind",
}

// groupVocabulary holds the lowercase substrings that mark a grouping (division) label
var groupVocabulary = []string{"east", "west"}

// NormalizeHeader maps a raw banner label to its canonical name
func NormalizeHeader(label string) string {
	label = strings.TrimSpace(label)
	if canonical, ok := headerMap[label]; ok {
		return canonical
	}
	return label
}

// RowClass is the result of classifying a raw row
type RowClass int

const (
	DataRow RowClass = iota
	BannerRow
)

func (c RowClass) String() string {
	if c == BannerRow {
		return "banner"
	}
	return "data"
}

// ClassifyRow reports whether a row declares headers or carries data.
// A row is a banner as soon as one of its cells carries a banner style.
func ClassifyRow(row Row) RowClass {
	for _, cell := range row {
		if isBannerCell(cell) {
			return BannerRow
		}
	}
	return DataRow
}

func isBannerCell(c Cell) bool {
	for _, s := range c.Styles {
		if strings.Contains(s, "banner") {
			return true
		}
	}
	return false
}

// isMiddleBanner reports whether a banner cell is a row-spanning middle banner. Such a
// cell covers the rows below it, so no physical cell is read at its position.
func isMiddleBanner(c Cell) bool {
	return isBannerCell(c) && c.HasStyle("middle") && c.Span > 0
}

// isGroupLabel reports whether text names a division
func isGroupLabel(text string) bool {
	text = strings.ToLower(text)
	for _, word := range groupVocabulary {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// Banner rebuilds the header list and group label from a banner row. Rowspan carries
// and the previous record survive; banner rows produce no record.
func (s State) Banner(row Row) State {
	next := s.clone()
	next.Headers = make([]string, 0, len(row))
	next.Group = ""

	for _, cell := range row {
		switch {
		case isMiddleBanner(cell):
			// a label outside the vocabulary (e.g. Central) declares no column
			if isGroupLabel(cell.Text) {
				next.Group = strings.TrimSpace(cell.Text)
				next.Headers = appendUnique(next.Headers, DivisionHeader)
			}
		case isBannerCell(cell):
			next.Headers = appendUnique(next.Headers, NormalizeHeader(cell.Text))
		}
	}

	return next
}

// appendUnique appends name, suffixing it when the list already holds it so that every
// header position keeps its own physical column
func appendUnique(headers []string, name string) []string {
	candidate := name
	for n := 2; contains(headers, candidate); n++ {
		candidate = name + "_" + strconv.Itoa(n)
	}
	return append(headers, candidate)
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}
