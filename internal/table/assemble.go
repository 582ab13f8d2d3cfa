package table

import "strings"

// Carry is a value that a row-spanning cell still owes to the rows below it
type Carry struct {
	Value     string
	Remaining int
}

// State is the traversal state of one table. It is threaded through Banner and Assemble
// by value and must not be shared between tables.
type State struct {
	Headers []string
	// Group is the current division label, set only by a banner row
	Group string
	// Carry is keyed by header position
	Carry    map[int]Carry
	Previous Record
}

// NewState returns the state a table traversal starts from
func NewState() State {
	return State{Carry: make(map[int]Carry)}
}

func (s State) clone() State {
	next := s
	next.Carry = make(map[int]Carry, len(s.Carry))
	for pos, c := range s.Carry {
		next.Carry[pos] = c
	}
	return next
}

// Assemble builds the record of one data row and returns the state for the next row.
//
// Header positions are walked left to right with a separate cursor over physical cells:
// the Division column is filled from the group label, a live carry is reused without
// consuming a cell, a row that ran out of cells borrows from the previous record, and
// otherwise the next cell is consumed (installing a carry when it spans rows).
func Assemble(row Row, s State) (Record, State) {
	next := s.clone()
	rec := Record{
		Headers: s.Headers,
		Values:  make([]string, len(s.Headers)),
	}

	cell := 0
	for pos, header := range s.Headers {
		if header == DivisionHeader && next.Group != "" {
			rec.Values[pos] = next.Group
			continue
		}

		if c, ok := next.Carry[pos]; ok && c.Remaining > 0 {
			rec.Values[pos] = c.Value
			c.Remaining--
			if c.Remaining == 0 {
				delete(next.Carry, pos)
			} else {
				next.Carry[pos] = c
			}
			continue
		}

		if cell >= len(row) {
			rec.Values[pos], _ = s.Previous.Get(header)
			continue
		}

		text := strings.TrimSpace(row[cell].Text)
		rec.Values[pos] = text
		if span := row[cell].Span; span > 1 {
			next.Carry[pos] = Carry{Value: text, Remaining: span - 1}
		}
		cell++
	}

	next.Previous = rec
	return rec, next
}
