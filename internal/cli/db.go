package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/almanac-tables/internal/config"
	"github.com/pfrederiksen/almanac-tables/internal/database"
	"github.com/pfrederiksen/almanac-tables/internal/logger"
	"github.com/pfrederiksen/almanac-tables/internal/reconcile"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// loadCleaned reads every cleaned file present in the data directory
func (a *app) loadCleaned() (map[table.Kind]table.Frame, error) {
	frames := make(map[table.Kind]table.Frame)
	for _, kind := range table.Kinds {
		path := a.store.CleanedPath(kind)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		frame, _, err := reconcile.LoadFile(path, nil)
		if err != nil {
			return nil, err
		}
		frames[kind] = frame
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no cleaned files in %s (run clean first)", a.store.Dir())
	}
	return frames, nil
}

func (a *app) openDB(override string) (*database.DB, error) {
	path := a.cfg.Database
	if override != "" {
		path = override
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return database.Open(path)
}

// ImportResult is one table loaded into the database
type ImportResult struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

func newImportCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the cleaned files into SQLite, replacing existing tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), dbPath)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Database file (overrides config)")

	return cmd
}

func (a *app) runImport(ctx context.Context, dbPath string) error {
	frames, err := a.loadCleaned()
	if err != nil {
		return err
	}

	db, err := a.openDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	results := []ImportResult{}
	for _, kind := range table.Kinds {
		frame, ok := frames[kind]
		if !ok {
			continue
		}
		name := database.TableName(kind)
		n, err := db.Import(ctx, name, frame)
		if err != nil {
			return err
		}
		a.log.Info("Table imported", logger.Fields{"table": name, "rows": n, "database": db.Path()})
		results = append(results, ImportResult{Table: name, Rows: n})
	}

	return WriteOutput(a.out, results, a.format)
}

func newQueryCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the database; without an argument, read statements from stdin until 'exit'",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if len(args) > 0 {
				res, err := db.Query(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return WriteOutput(a.out, res, a.format)
			}
			return a.queryLoop(cmd.Context(), db)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Database file (overrides config)")

	return cmd
}

// queryLoop runs one statement per input line. A failing statement is reported and the
// loop goes on; "exit" or end of input stops it.
func (a *app) queryLoop(ctx context.Context, db *database.DB) error {
	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if strings.EqualFold(q, "exit") {
			break
		}

		res, err := db.Query(ctx, q)
		if err != nil {
			a.log.Warn("Query failed", logger.Fields{"query": q, "error": err.Error()})
			fmt.Fprintf(a.out, "Error: %v\n", err)
			continue
		}
		if err := WriteOutput(a.out, res, a.format); err != nil {
			return err
		}
	}
	return scanner.Err()
}
