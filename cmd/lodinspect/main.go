// Command lodinspect prints statistics about a Distant Horizons database.
//
// Usage:
//
//	lodinspect [flags] [database]
//
// Settings come from an optional YAML file (-config); flags override it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/lodsnap"
	"github.com/arloliu/lodsnap/fulldata"
	"github.com/arloliu/lodsnap/intern"
	"github.com/arloliu/lodsnap/repo"
	"github.com/arloliu/lodsnap/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := parseArgs(args)
	if err != nil {
		return err
	}

	return inspect(ctx, cfg, stdout)
}

func parseArgs(args []string) (Config, error) {
	fs := flag.NewFlagSet("lodinspect", flag.ContinueOnError)
	configPath := fs.String("config", "", "Optional YAML configuration file")
	db := fs.String("db", "", "Path of the SQLite database")
	level := fs.String("level", "", "Only inspect sections at this detail level (e.g. Region)")
	decode := fs.Bool("decode", false, "Decode every section and report its contents")
	workers := fs.Int("workers", 0, "Decode workers (0 = GOMAXPROCS)")
	budget := fs.String("budget", "", "Soft time budget of one decode pass (e.g. 15ms)")
	top := fs.Int("top", 0, "Number of most frequent blocks to print")
	metrics := fs.Bool("metrics", false, "Print decode metrics")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	jsonLogs := fs.Bool("json", false, "Write JSON logs")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			return Config{}, err
		}
	}

	if fs.NArg() > 1 {
		return Config{}, fmt.Errorf("expected at most one database argument, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		cfg.Database = fs.Arg(0)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.Database = *db
		case "level":
			cfg.DetailLevel = *level
		case "decode":
			cfg.Decode = *decode
		case "workers":
			cfg.Workers = *workers
		case "budget":
			cfg.Budget = *budget
		case "top":
			cfg.TopBlocks = *top
		case "metrics":
			cfg.Metrics = *metrics
		case "log-level":
			cfg.Log.Level = *logLevel
		case "json":
			if *jsonLogs {
				cfg.Log.Format = "json"
			} else {
				cfg.Log.Format = "text"
			}
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func inspect(ctx context.Context, cfg Config, w io.Writer) error {
	logger := cfg.Log.logger()
	pool := intern.NewPool()

	store, err := lodsnap.Open(ctx, cfg.Database,
		fulldata.WithReadOnly(true),
		fulldata.WithLogger(logger.Logger),
		fulldata.WithPool(pool),
		fulldata.WithSizeHint(true),
	)
	if err != nil {
		return err
	}
	defer store.Close()

	sections, err := loadSections(ctx, store, &cfg)
	var rowErrs *repo.RowErrors
	if errors.As(err, &rowErrs) {
		logger.WarnContext(ctx, "skipped unreadable rows", "table", rowErrs.Table, "count", len(rowErrs.Rows))
	} else if err != nil {
		return err
	}

	stats := NewStats()
	for _, s := range sections {
		stats.AddSection(s)
	}

	reg := prometheus.NewRegistry()
	if cfg.Decode {
		if err := decodeAll(ctx, &cfg, logger, reg, sections, stats); err != nil {
			return err
		}
	}

	stats.Write(w, cfg.TopBlocks)

	if cfg.Decode {
		fmt.Fprintf(w, "intern pool: %s\n", pool.Stats())
		logger.LogInternStats(ctx, pool)
	}

	if cfg.Metrics {
		return writeMetrics(w, reg)
	}

	return nil
}

func loadSections(ctx context.Context, store *fulldata.Store, cfg *Config) ([]*fulldata.Section, error) {
	level, ok, err := cfg.detailLevel()
	if err != nil {
		return nil, err
	}
	if ok {
		return store.ByDetailLevel(ctx, level)
	}

	return store.All(ctx)
}

// decodeAll runs decode passes until every section is decoded or has failed.
func decodeAll(ctx context.Context, cfg *Config, logger *lodsnap.Logger, reg prometheus.Registerer,
	sections []*fulldata.Section, stats *Stats,
) error {
	opts := append(cfg.schedulerOptions(),
		scheduler.WithLogger(logger.Logger),
		scheduler.WithMetrics(scheduler.NewMetrics(reg)),
	)

	decoder, err := lodsnap.NewDecoder(opts...)
	if err != nil {
		return err
	}

	pending := sections
	for pass := 1; len(pending) > 0; pass++ {
		report := decoder.Run(ctx, pending)
		logger.LogDecodeReport(ctx, &report)

		for _, s := range report.Completed {
			if err := stats.AddDecoded(s); err != nil {
				return err
			}
			s.DropCaches()
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if report.Decoded == 0 && report.Deferred > 0 {
			return fmt.Errorf("decode pass %d made no progress; increase the budget", pass)
		}

		next := make([]*fulldata.Section, 0, len(pending))
		for _, s := range pending {
			switch {
			case decoder.Failed(s):
				stats.Failed++
			case !s.IsDecompressed():
				next = append(next, s)
			}
		}
		pending = next
	}

	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%gs\n", mf.GetName(), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}

	return nil
}
