// Package config loads organizex settings from defaults, an optional TOML
// file and ORGANIZEX_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	"github.com/jeffanddom/organizex/internal/checksum"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/quest"
)

const envPrefix = "ORGANIZEX_"

// Config holds application configuration
type Config struct {
	Database DatabaseConfig    `toml:"database"`
	Server   ServerConfig      `toml:"server"`
	Scanner  ScannerConfig     `toml:"scanner"`
	Quests   QuestConfig       `toml:"quests"`
	Log      LogConfig         `toml:"log"`
	Folders  map[string]string `toml:"folders"` // alias -> path overrides
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// ScannerConfig holds scanner settings
type ScannerConfig struct {
	ChecksumAlgorithm string `toml:"checksum_algorithm"`
	Workers           int    `toml:"workers"`
	MaxConcurrentOps  int    `toml:"max_concurrent_ops"`
}

// QuestConfig holds quest generation settings
type QuestConfig struct {
	DailyCount    int    `toml:"daily_count"`
	WeeklyCount   int    `toml:"weekly_count"`
	SweepSchedule string `toml:"sweep_schedule"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{URL: "sqlite://organizex.db"},
		Server:   ServerConfig{ListenAddr: ":5000"},
		Scanner: ScannerConfig{
			ChecksumAlgorithm: string(checksum.DefaultAlgorithm),
			Workers:           4,
			MaxConcurrentOps:  3,
		},
		Quests: QuestConfig{
			DailyCount:    4,
			WeeklyCount:   3,
			SweepSchedule: quest.DefaultSweepSchedule,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path when it is non-empty, then applies environment overrides
// and validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		if err := cfg.Decode(f); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays TOML from r onto cfg. Keys absent from r keep their
// current values.
func (c *Config) Decode(r io.Reader) error {
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return nil
}

// Encode writes cfg as TOML
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		value, ok := lookup(envPrefix + key)
		if !ok || value == "" {
			return "", false
		}
		return value, true
	}
	getInt := func(key string, dst *int) error {
		value, ok := get(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s%s must be an integer: %w", envPrefix, key, err)
		}
		*dst = n
		return nil
	}

	text := map[string]*string{
		"DATABASE_URL":       &c.Database.URL,
		"LISTEN_ADDR":        &c.Server.ListenAddr,
		"CHECKSUM_ALGORITHM": &c.Scanner.ChecksumAlgorithm,
		"SWEEP_SCHEDULE":     &c.Quests.SweepSchedule,
		"LOG_LEVEL":          &c.Log.Level,
		"LOG_FORMAT":         &c.Log.Format,
	}
	for key, dst := range text {
		if value, ok := get(key); ok {
			*dst = value
		}
	}

	ints := map[string]*int{
		"WORKERS":            &c.Scanner.Workers,
		"MAX_CONCURRENT_OPS": &c.Scanner.MaxConcurrentOps,
		"DAILY_QUESTS":       &c.Quests.DailyCount,
		"WEEKLY_QUESTS":      &c.Quests.WeeklyCount,
	}
	for key, dst := range ints {
		if err := getInt(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs *multierror.Error

	if strings.TrimSpace(c.Database.URL) == "" {
		errs = multierror.Append(errs, errors.New("database url is required"))
	}
	if err := checksum.ValidateAlgorithm(checksum.Algorithm(c.Scanner.ChecksumAlgorithm)); err != nil {
		errs = multierror.Append(errs, err)
	}
	if c.Scanner.Workers <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("workers must be positive, got %d", c.Scanner.Workers))
	}
	if c.Scanner.MaxConcurrentOps <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("max concurrent ops must be positive, got %d", c.Scanner.MaxConcurrentOps))
	}
	if c.Quests.DailyCount <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("daily quest count must be positive, got %d", c.Quests.DailyCount))
	}
	if c.Quests.WeeklyCount <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("weekly quest count must be positive, got %d", c.Quests.WeeklyCount))
	}
	if err := quest.ValidateSchedule(c.Quests.SweepSchedule); err != nil {
		errs = multierror.Append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = multierror.Append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown log format: %s", c.Log.Format))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
