package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// Span is the id range assigned to one appended table
type Span struct {
	Kind  table.Kind `json:"kind"`
	First int        `json:"first"`
	Count int        `json:"count"`
}

// Last returns the last id of the span, or First-1 when it is empty
func (s Span) Last() int {
	return s.First + s.Count - 1
}

// Columns returns the persisted field order of a table: the kind's declared schema
// first, then every other header in the order the table declared it
func Columns(kind table.Kind, headers []string) []string {
	schema := kind.Schema()
	cols := make([]string, 0, len(schema)+len(headers))
	cols = append(cols, schema...)

	declared := make(map[string]bool, len(schema))
	for _, c := range schema {
		declared[c] = true
	}
	for _, h := range headers {
		if !declared[h] {
			cols = append(cols, h)
		}
	}
	return cols
}

// Append writes the records of t to the kind's file, numbering them from the sequencer
// and labeling them with year. A new file gets a header line; an existing file whose
// header lacks some of the table's columns is widened first.
func (s *Storage) Append(t table.Table, year string, seq *Sequencer) (Span, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	span := Span{Kind: t.Kind, Count: len(t.Records)}
	path := s.RawPath(t.Kind)

	cols := Columns(t.Kind, t.AllHeaders())
	existing, err := readHeader(path)
	if err != nil {
		return span, err
	}
	isNew := existing == nil
	if !isNew {
		merged := mergeColumns(existing, cols)
		if len(merged) > len(existing) {
			if err := widen(path, merged); err != nil {
				return span, err
			}
		}
		cols = merged
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return span, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if isNew {
		if err := w.Write(append([]string{"id", "year"}, cols...)); err != nil {
			return span, fmt.Errorf("writing header: %w", err)
		}
	}

	span.First = seq.Reserve(t.Kind, len(t.Records))
	for i, rec := range t.Records {
		line := make([]string, 0, len(cols)+2)
		line = append(line, strconv.Itoa(span.First+i), year)
		for _, c := range cols {
			v, _ := rec.Get(c)
			line = append(line, v)
		}
		if err := w.Write(line); err != nil {
			return span, fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return span, fmt.Errorf("flushing %s: %w", path, err)
	}

	return span, nil
}

// readHeader returns the field columns (without id and year) of an existing file, or nil
// when the file does not exist or is empty
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	if len(header) < 2 || header[0] != "id" || header[1] != "year" {
		return nil, fmt.Errorf("unexpected header in %s: %v", path, header)
	}
	return header[2:], nil
}

// mergeColumns keeps the existing order and appends the columns it lacks
func mergeColumns(existing, cols []string) []string {
	merged := append([]string(nil), existing...)
	for _, c := range cols {
		if !contains(merged, c) {
			merged = append(merged, c)
		}
	}
	return merged
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

// widen rewrites the file under a wider header, padding the stored rows with empty fields
func widen(path string, cols []string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	in.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	width := len(cols) + 2
	f := table.Frame{Columns: append([]string{"id", "year"}, cols...)}
	for _, row := range rows[1:] {
		for len(row) < width {
			row = append(row, "")
		}
		f.Rows = append(f.Rows, row)
	}

	tmp := path + ".tmp"
	if err := WriteFrame(tmp, f); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// WriteFrame replaces the file at path with the frame's header and rows
func WriteFrame(path string, f table.Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(f.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(f.Rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}

	return out.Close()
}

// WriteCleaned writes a cleaned frame to the kind's cleaned file
func (s *Storage) WriteCleaned(kind table.Kind, f table.Frame) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.CleanedPath(kind)
	return path, WriteFrame(path, f)
}
