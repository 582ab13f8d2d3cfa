package cli

import (
	"fmt"
	"strconv"
	"strings"
)

type yearRange struct {
	from, to int
}

// yearSet is a list of inclusive year ranges; the empty set matches every year
type yearSet []yearRange

// parseYears reads a comma separated list of years and ranges, e.g. "1901,1920-1929"
func parseYears(s string) (yearSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var set yearSet
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")

		lo, err := parseYear(from)
		if err != nil {
			return nil, err
		}
		hi := lo
		if isRange {
			if hi, err = parseYear(to); err != nil {
				return nil, err
			}
		}
		if hi < lo {
			return nil, fmt.Errorf("invalid year range %q: end before start", part)
		}
		set = append(set, yearRange{from: lo, to: hi})
	}
	return set, nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, fmt.Errorf("invalid year %q: expected four digits", s)
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", s, err)
	}
	return y, nil
}

// Contains reports whether year falls in the set
func (ys yearSet) Contains(year string) bool {
	if len(ys) == 0 {
		return true
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	for _, r := range ys {
		if y >= r.from && y <= r.to {
			return true
		}
	}
	return false
}
