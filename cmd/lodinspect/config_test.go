package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lodsnap/format"
	"github.com/arloliu/lodsnap/scheduler"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
database: /data/DistantHorizons.sqlite
detail_level: region
decode: true
workers: 3
budget: 40ms
log:
  level: debug
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "/data/DistantHorizons.sqlite", cfg.Database)
	require.True(t, cfg.Decode)
	require.Equal(t, 3, cfg.Workers)
	require.Equal(t, 10, cfg.TopBlocks, "defaults are kept")
	require.Equal(t, "text", cfg.Log.Format)

	level, ok, err := cfg.detailLevel()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, format.Region, level)

	budget, err := cfg.budget()
	require.NoError(t, err)
	require.Equal(t, 40*time.Millisecond, budget)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, scheduler.DefaultBudget.String(), cfg.Budget)

	_, ok, err := cfg.detailLevel()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.Database = "" }, wantErr: "database path is required"},
		{name: "unknown level", mutate: func(c *Config) { c.DetailLevel = "Galaxy" }, wantErr: `unknown detail level "Galaxy"`},
		{name: "bad budget", mutate: func(c *Config) { c.Budget = "soon" }, wantErr: `invalid budget "soon"`},
		{name: "zero budget", mutate: func(c *Config) { c.Budget = "0s" }, wantErr: "budget must be positive"},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, wantErr: "workers must not be negative"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: `invalid log level "loud"`},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: `unknown log format "xml"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Database = "db.sqlite"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseArgs(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "lodinspect.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("database: from-config.sqlite\nworkers: 2\ntop_blocks: 3\n"), 0o600))

	t.Run("config file", func(t *testing.T) {
		cfg, err := parseArgs([]string{"-config", configPath})
		require.NoError(t, err)
		require.Equal(t, "from-config.sqlite", cfg.Database)
		require.Equal(t, 2, cfg.Workers)
		require.Equal(t, 3, cfg.TopBlocks)
	})

	t.Run("flags override config", func(t *testing.T) {
		cfg, err := parseArgs([]string{"-config", configPath, "-workers", "6", "-decode", "-json", "override.sqlite"})
		require.NoError(t, err)
		require.Equal(t, "override.sqlite", cfg.Database)
		require.Equal(t, 6, cfg.Workers)
		require.Equal(t, 3, cfg.TopBlocks)
		require.True(t, cfg.Decode)
		require.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("db flag", func(t *testing.T) {
		cfg, err := parseArgs([]string{"-db", "flag.sqlite", "-level", "Chunk4"})
		require.NoError(t, err)
		require.Equal(t, "flag.sqlite", cfg.Database)
		require.Equal(t, "Chunk4", cfg.DetailLevel)
	})

	t.Run("missing database", func(t *testing.T) {
		_, err := parseArgs(nil)
		require.ErrorContains(t, err, "database path is required")
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, err := parseArgs([]string{"a.sqlite", "b.sqlite"})
		require.Error(t, err)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := parseArgs([]string{"-config", filepath.Join(dir, "nope.yaml")})
		require.ErrorContains(t, err, "cannot read")
	})
}
