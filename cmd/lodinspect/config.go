package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/lodsnap"
	"github.com/arloliu/lodsnap/format"
	"github.com/arloliu/lodsnap/scheduler"
)

// Config is the lodinspect configuration file.
type Config struct {
	Database    string    `yaml:"database"`
	DetailLevel string    `yaml:"detail_level,omitempty"`
	Decode      bool      `yaml:"decode"`
	Workers     int       `yaml:"workers,omitempty"`
	Budget      string    `yaml:"budget,omitempty"`
	TopBlocks   int       `yaml:"top_blocks,omitempty"`
	Metrics     bool      `yaml:"metrics,omitempty"`
	Log         LogConfig `yaml:"log,omitempty"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Budget:    scheduler.DefaultBudget.String(),
		TopBlocks: 10,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ParseConfig parses YAML on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid YAML: %w", err)
	}

	return cfg, nil
}

// LoadConfig reads and parses the file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	return ParseConfig(data)
}

// Validate checks the configuration for missing or malformed values.
func (c *Config) Validate() error {
	var errList []error

	if c.Database == "" {
		errList = append(errList, errors.New("database path is required"))
	}
	if _, _, err := c.detailLevel(); err != nil {
		errList = append(errList, err)
	}
	if c.Workers < 0 {
		errList = append(errList, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if d, err := c.budget(); err != nil {
		errList = append(errList, err)
	} else if d <= 0 {
		errList = append(errList, fmt.Errorf("budget must be positive, got %s", d))
	}
	if c.TopBlocks < 0 {
		errList = append(errList, fmt.Errorf("top_blocks must not be negative, got %d", c.TopBlocks))
	}
	if _, err := c.Log.level(); err != nil {
		errList = append(errList, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errList = append(errList, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if len(errList) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errList...))
	}

	return nil
}

// detailLevel returns the configured level filter. ok is false when every
// level is selected.
func (c *Config) detailLevel() (level format.DetailLevel, ok bool, err error) {
	if c.DetailLevel == "" {
		return 0, false, nil
	}

	for l := format.MinDetailLevel; l <= format.MaxDetailLevel; l++ {
		if strings.EqualFold(l.String(), c.DetailLevel) {
			return l, true, nil
		}
	}

	return 0, false, fmt.Errorf("unknown detail level %q", c.DetailLevel)
}

func (c *Config) budget() (time.Duration, error) {
	d, err := time.ParseDuration(c.Budget)
	if err != nil {
		return 0, fmt.Errorf("invalid budget %q: %w", c.Budget, err)
	}

	return d, nil
}

func (c *Config) schedulerOptions() []scheduler.Option {
	budget, _ := c.budget()
	opts := []scheduler.Option{scheduler.WithBudget(budget)}
	if c.Workers > 0 {
		opts = append(opts, scheduler.WithWorkers(c.Workers))
	}

	return opts
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}

	return level, nil
}

func (l LogConfig) logger() *lodsnap.Logger {
	level, _ := l.level()
	if l.Format == "json" {
		return lodsnap.NewJSONLogger(level)
	}

	return lodsnap.NewTextLogger(level)
}
