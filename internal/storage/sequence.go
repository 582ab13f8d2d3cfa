package storage

import (
	"sync"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// Sequencer hands out contiguous ids per table kind. It is safe for concurrent use.
type Sequencer struct {
	mu   sync.Mutex
	next map[table.Kind]int
}

// NewSequencer starts every kind at the offset recorded in st, or at 1
func NewSequencer(st *State) *Sequencer {
	seq := &Sequencer{next: make(map[table.Kind]int)}
	for _, k := range table.Kinds {
		seq.next[k] = 1
		if st != nil {
			if n, ok := st.NextID[k.String()]; ok && n > 0 {
				seq.next[k] = n
			}
		}
	}
	return seq
}

// Reserve claims n ids for kind and returns the first one
func (s *Sequencer) Reserve(kind table.Kind, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	first, ok := s.next[kind]
	if !ok {
		first = 1
	}
	s.next[kind] = first + n
	return first
}

// Peek returns the next id of kind without reserving it
func (s *Sequencer) Peek(kind table.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.next[kind]; ok {
		return n
	}
	return 1
}

// Record copies the next ids into st
func (s *Sequencer) Record(st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, n := range s.next {
		st.NextID[k.String()] = n
	}
}
