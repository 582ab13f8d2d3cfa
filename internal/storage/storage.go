package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pfrederiksen/almanac-tables/internal/config"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

const stateFile = "state.json"

// Storage handles persistence of tables and crawl state
type Storage struct {
	dataDir string
	mu      sync.Mutex
}

// State is the crawl state carried between runs
type State struct {
	NextID    map[string]int `json:"next_id"` // keyed by kind name
	Years     []string       `json:"years"`   // years fully persisted, sorted
	UpdatedAt string         `json:"updated_at"`
}

// NewState creates an empty state
func NewState() *State {
	return &State{
		NextID: make(map[string]int),
		Years:  make([]string, 0),
	}
}

// HasYear reports whether the year was already persisted
func (st *State) HasYear(year string) bool {
	i := sort.SearchStrings(st.Years, year)
	return i < len(st.Years) && st.Years[i] == year
}

// AddYear records a persisted year, keeping Years sorted and unique
func (st *State) AddYear(year string) {
	if st.HasYear(year) {
		return
	}
	st.Years = append(st.Years, year)
	sort.Strings(st.Years)
}

// New creates a new Storage instance rooted at dataDir
func New(dataDir string) (*Storage, error) {
	dataDir, err := config.ExpandPath(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the storage root
func (s *Storage) Dir() string {
	return s.dataDir
}

// RawPath returns the append-only file of a kind
func (s *Storage) RawPath(kind table.Kind) string {
	return filepath.Join(s.dataDir, kind.String()+"_data.csv")
}

// CleanedPath returns the cleaned file of a kind
func (s *Storage) CleanedPath(kind table.Kind) string {
	return filepath.Join(s.dataDir, kind.String()+"_data_cleaned.csv")
}

// LoadState loads the crawl state from disk
func (s *Storage) LoadState() (*State, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			// No previous run, start from scratch
			return NewState(), nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}

	if st.NextID == nil {
		st.NextID = make(map[string]int)
	}
	if st.Years == nil {
		st.Years = make([]string, 0)
	}
	sort.Strings(st.Years)

	return &st, nil
}

// SaveState saves the crawl state to disk
func (s *Storage) SaveState(st *State) error {
	st.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dataDir, stateFile), data, 0644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	return nil
}
