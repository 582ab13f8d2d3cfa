// Package config loads almanac-tables settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then a .env file
// and the process environment (prefix ALMANAC_, e.g. ALMANAC_FETCH_WORKERS=4). The result
// is validated before use; command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "ALMANAC"

const (
	FetchHTTP    = "http"
	FetchBrowser = "browser"
)

// Config is the complete application configuration
type Config struct {
	DataDir  string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	Database string `yaml:"database" envconfig:"DATABASE" validate:"required"`
	MenuURL  string `yaml:"menu_url" envconfig:"MENU_URL" validate:"required,url"`
	// MenuTable is the position of the league's table among the year menu's tables
	MenuTable int         `yaml:"menu_table" envconfig:"MENU_TABLE" validate:"gte=0"`
	Fetch     FetchConfig `yaml:"fetch" envconfig:"FETCH"`
	Log       LogConfig   `yaml:"log" envconfig:"LOG"`
}

// FetchConfig controls how year pages are retrieved
type FetchConfig struct {
	Mode      string        `yaml:"mode" envconfig:"MODE" validate:"oneof=http browser"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	UserAgent string        `yaml:"user_agent" envconfig:"USER_AGENT" validate:"required"`
	Retries   int           `yaml:"retries" envconfig:"RETRIES" validate:"gte=0,lte=10"`
	// Rate is the number of page requests per second across all workers
	Rate     float64 `yaml:"rate" envconfig:"RATE" validate:"gt=0"`
	Workers  int     `yaml:"workers" envconfig:"WORKERS" validate:"gte=1,lte=16"`
	Headless bool    `yaml:"headless" envconfig:"HEADLESS"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataDir:   "~/.local/share/almanac-tables",
		Database:  "~/.local/share/almanac-tables/sports_data.db",
		MenuURL:   "https://www.baseball-almanac.com/yearmenu.shtml",
		MenuTable: 1,
		Fetch: FetchConfig{
			Mode:      FetchHTTP,
			Timeout:   30 * time.Second,
			UserAgent: "almanac-tables/1.0 (github.com/pfrederiksen/almanac-tables)",
			Retries:   3,
			Rate:      1,
			Workers:   2,
			Headless:  true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration. path may be empty, in which case only defaults and the
// environment apply; a named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks every field constraint
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
