package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/almanac-tables/internal/config"
	"github.com/pfrederiksen/almanac-tables/internal/logger"
	"github.com/pfrederiksen/almanac-tables/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitPartial = 2
)

// ErrPartial marks a run that finished but could not process every year
var ErrPartial = errors.New("some years failed")

type rootOptions struct {
	configPath string
	dataDir    string
	format     string
	verbose    bool
}

// app is the state shared by every subcommand of one run
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *storage.Storage
	format OutputFormat
	runID  string
	out    io.Writer
	in     io.Reader
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	cmd := &cobra.Command{
		Use:   "almanac-tables",
		Short: "Extract and repair baseball-almanac season tables",
		Long: `A CLI tool that scrapes the irregular HTML tables of baseball-almanac year pages,
turns them into flat per-kind files, repairs the damage done by row spans and ragged
rows, and loads the result into SQLite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose && a.log != nil {
				a.log.Debug("Run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Data directory (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(
		newScrapeCmd(a),
		newParseCmd(a),
		newCleanCmd(a),
		newImportCmd(a),
		newQueryCmd(a),
		newExportCmd(a),
		newSummaryCmd(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command, opts *rootOptions) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	a.runID = uuid.NewString()
	a.log = logger.New(level, cmd.ErrOrStderr()).With(logger.Fields{"run_id": a.runID})
	logger.SetDefault(a.log)

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	a.cfg = cfg
	a.store = store
	a.format = format
	a.out = cmd.OutOrStdout()
	a.in = cmd.InOrStdin()

	a.log.Debug("Configuration loaded", logger.Fields{
		"data_dir": store.Dir(),
		"command":  cmd.Name(),
	})
	return nil
}

// ExitCode maps a command error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrPartial):
		return ExitPartial
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(ExitCode(err))
}
