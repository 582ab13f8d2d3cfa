package table

import "strings"

// PositionRule maps the Nth table of a page to a kind when its caption does not
// identify it. Contains, when set, must also appear in caption+subcaption.
type PositionRule struct {
	Ordinal  int
	Kind     Kind
	Contains string
}

// DefaultPositionRules encode the year page layout: batting summary first, pitching
// summary second, standings third.
var DefaultPositionRules = []PositionRule{
	{Ordinal: 0, Kind: Hitters},
	{Ordinal: 1, Kind: Pitchers},
	{Ordinal: 2, Kind: Standings, Contains: "team standings"},
}

// Classifier assigns kinds to tables. The zero value uses DefaultPositionRules.
type Classifier struct {
	Positions []PositionRule
}

// ClassifyTable classifies a table with the default rules
func ClassifyTable(caption, subcaption string, ordinal int) Kind {
	return Classifier{}.Classify(caption, subcaption, ordinal)
}

// Classify returns the table's kind. Captions are checked before position: a team review
// leaderboard is recognized wherever it appears on the page.
func (c Classifier) Classify(caption, subcaption string, ordinal int) Kind {
	title := strings.ToLower(caption)
	sub := strings.ToLower(subcaption)

	if strings.Contains(title, "team review") {
		switch {
		case strings.Contains(sub, "hitting"):
			return HitterLeaderboard
		case strings.Contains(sub, "pitching"):
			return PitcherLeaderboard
		}
		return Unclassified
	}

	rules := c.Positions
	if rules == nil {
		rules = DefaultPositionRules
	}
	for _, rule := range rules {
		if rule.Ordinal != ordinal {
			continue
		}
		if rule.Contains != "" && !strings.Contains(title+sub, strings.ToLower(rule.Contains)) {
			continue
		}
		return rule.Kind
	}

	return Unclassified
}
