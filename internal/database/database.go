// Package database loads cleaned tables into SQLite and runs ad hoc queries against them.
//
// Each table kind becomes one SQL table named after the kind. Imports replace the table
// wholesale. Column types are inferred from the data: a column whose non-empty values all
// parse as integers is INTEGER, one whose values all parse as numbers is REAL, anything
// else is TEXT. Empty strings are stored as NULL.
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// DB is a SQLite database holding imported tables
type DB struct {
	db   *sqlx.DB
	path string
}

// Open opens (creating if needed) the database at path
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &DB{db: db, path: path}, nil
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

// ColumnType is the SQLite storage class inferred for a column
type ColumnType string

const (
	Integer ColumnType = "INTEGER"
	Real    ColumnType = "REAL"
	Text    ColumnType = "TEXT"
)

// InferTypes returns the column types of a frame
func InferTypes(f table.Frame) []ColumnType {
	types := make([]ColumnType, len(f.Columns))
	for i := range f.Columns {
		types[i] = inferColumn(f, i)
	}
	return types
}

func inferColumn(f table.Frame, i int) ColumnType {
	kind := Integer
	seen := false
	for _, row := range f.Rows {
		if i >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[i])
		if v == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			kind = Real
			continue
		}
		return Text
	}
	if !seen {
		return Text
	}
	return kind
}

// Import replaces the SQL table name with the frame's contents and returns the number of
// rows written
func (d *DB) Import(ctx context.Context, name string, f table.Frame) (int, error) {
	types := InferTypes(f)

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import of %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(name)); err != nil {
		return 0, fmt.Errorf("dropping %s: %w", name, err)
	}

	defs := make([]string, len(f.Columns))
	marks := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		defs[i] = quote(c) + " " + string(types[i])
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quote(name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("creating %s: %w", name, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quote(name), strings.Join(marks, ", "))
	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("preparing insert into %s: %w", name, err)
	}
	defer stmt.Close()

	for n, row := range f.Rows {
		args := make([]interface{}, len(f.Columns))
		for i := range f.Columns {
			if i < len(row) {
				args[i] = convert(row[i], types[i])
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return n, fmt.Errorf("inserting row %d into %s: %w", n+1, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s: %w", name, err)
	}
	return len(f.Rows), nil
}

func convert(v string, t ColumnType) interface{} {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	switch t {
	case Integer:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case Real:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}

// Tables lists the tables in the database
func (d *DB) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := d.db.SelectContext(ctx, &names,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return names, nil
}

// Result is the outcome of an ad hoc query
type Result struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Query runs a statement and collects every row it returns. Statements that return no
// rows yield an empty result.
func (d *DB) Query(ctx context.Context, query string) (*Result, error) {
	rows, err := d.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	res := &Result{Columns: cols, Rows: [][]interface{}{}}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return res, nil
}

// TableName returns the SQL table that holds kind
func TableName(kind table.Kind) string {
	return kind.String()
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
