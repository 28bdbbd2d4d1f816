package fulldata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
	"github.com/arloliu/lodsnap/intern"
	"github.com/arloliu/lodsnap/internal/options"
	"github.com/arloliu/lodsnap/pos"
	"github.com/arloliu/lodsnap/repo"
)

const (
	defaultBusyTimeout  = 5 * time.Second
	defaultMaxOpenConns = 4
)

// orderByDistance lists sections farthest from the origin first.
const orderByDistance = "(PosX*PosX + PosZ*PosZ) DESC"

const schema = `
CREATE TABLE IF NOT EXISTS FullData (
	DetailLevel TINYINT NOT NULL,
	PosX INT NOT NULL,
	PosZ INT NOT NULL,
	MinY INT NOT NULL,
	DataChecksum INT NOT NULL,
	Data BLOB NULL,
	ColumnGenerationStep BLOB NULL,
	ColumnWorldCompressionMode BLOB NULL,
	Mapping BLOB NULL,
	DataFormatVersion TINYINT NULL,
	CompressionMode TINYINT NULL,
	ApplyToParent BIT NULL,
	ApplyToChildren BIT NULL,
	LastModifiedUnixDateTime BIGINT NOT NULL,
	CreatedUnixDateTime BIGINT NOT NULL,
	PRIMARY KEY (DetailLevel, PosX, PosZ)
)`

type storeConfig struct {
	logger       *slog.Logger
	pool         *intern.Pool
	readOnly     bool
	busyTimeout  time.Duration
	maxOpenConns int
	sizeHint     bool
}

// Option configures a Store.
type Option = options.Option[*storeConfig]

// WithLogger sets the logger for the store and its repository.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *storeConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithPool sets the intern pool used when decoding mappings.
func WithPool(pool *intern.Pool) Option {
	return options.NoError(func(c *storeConfig) {
		c.pool = pool
	})
}

// WithReadOnly opens the database read-only. EnsureSchema and Insert fail on a
// read-only store.
func WithReadOnly(readOnly bool) Option {
	return options.NoError(func(c *storeConfig) {
		c.readOnly = readOnly
	})
}

// WithBusyTimeout sets how long a connection waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return options.New(func(c *storeConfig) error {
		if d < 0 {
			return fmt.Errorf("busy timeout must not be negative, got %s", d)
		}
		c.busyTimeout = d

		return nil
	})
}

// WithMaxOpenConns limits the number of open connections.
func WithMaxOpenConns(n int) Option {
	return options.New(func(c *storeConfig) error {
		if n <= 0 {
			return fmt.Errorf("max open connections must be positive, got %d", n)
		}
		c.maxOpenConns = n

		return nil
	})
}

// WithSizeHint makes selections count matching rows first to preallocate.
func WithSizeHint(enabled bool) Option {
	return options.NoError(func(c *storeConfig) {
		c.sizeHint = enabled
	})
}

// Store reads and writes sections of a Distant Horizons SQLite database.
type Store struct {
	db       *sql.DB
	cfg      storeConfig
	sections *repo.Repository[*Section]
}

func newConfig(opts []Option) (storeConfig, error) {
	cfg := storeConfig{
		logger:       slog.Default(),
		busyTimeout:  defaultBusyTimeout,
		maxOpenConns: defaultMaxOpenConns,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return storeConfig{}, err
	}

	return cfg, nil
}

func dsn(path string, cfg storeConfig) string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.busyTimeout.Milliseconds()))
	if cfg.readOnly {
		params.Set("mode", "ro")
		params.Add("_pragma", "query_only(1)")
	}

	return "file:" + path + "?" + params.Encode()
}

// Open opens the SQLite database at path and verifies the connection.
//
// The FullData table is not created; call EnsureSchema for a new database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn(path, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(cfg.maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", path, err)
	}

	s, err := newStore(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	cfg.logger.Debug("opened store", "path", path, "read_only", cfg.readOnly)

	return s, nil
}

// NewStore wraps an already open database. Closing the Store closes db.
func NewStore(db *sql.DB, opts ...Option) (*Store, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newStore(db, cfg)
}

func newStore(db *sql.DB, cfg storeConfig) (*Store, error) {
	sections, err := repo.New[*Section](db, Mapper{Pool: cfg.pool},
		repo.WithLogger(cfg.logger),
		repo.WithSizeHint(cfg.sizeHint),
	)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, cfg: cfg, sections: sections}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Sections returns the repository over the FullData table for custom queries.
func (s *Store) Sections() *repo.Repository[*Section] {
	return s.sections
}

// EnsureSchema creates the FullData table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", TableName, err)
	}

	return nil
}

// All returns every section, farthest from the origin first.
//
// Rows that fail to map are skipped; the returned error is then a
// *repo.RowErrors alongside the sections that did map.
func (s *Store) All(ctx context.Context) ([]*Section, error) {
	return s.sections.Select(ctx, repo.Ordered(repo.All(), orderByDistance))
}

// ByDetailLevel returns the sections stored at level.
func (s *Store) ByDetailLevel(ctx context.Context, level format.DetailLevel) ([]*Section, error) {
	stored, err := storedDetailLevel(level)
	if err != nil {
		return nil, err
	}

	return s.sections.Select(ctx, repo.Where(ColDetailLevel+" = ?", stored))
}

// Get returns the section at p, or nil if there is none.
func (s *Store) Get(ctx context.Context, p pos.SectionPos) (*Section, error) {
	stored, err := storedDetailLevel(p.DetailLevel())
	if err != nil {
		return nil, err
	}

	q := repo.Where(ColDetailLevel+" = ? AND "+ColPosX+" = ? AND "+ColPosZ+" = ?", stored, p.X(), p.Z())
	found, err := s.sections.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}

	return found[0], nil
}

// Count returns the number of stored sections.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.sections.Count(ctx, repo.All())
}

// Insert writes sec as a new row. Its payloads must be compressed.
func (s *Store) Insert(ctx context.Context, sec *Section) error {
	if err := s.sections.Insert(ctx, sec); err != nil {
		return fmt.Errorf("failed to insert section %s: %w", sec.Pos, err)
	}

	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func storedDetailLevel(level format.DetailLevel) (int64, error) {
	if !level.IsValid() {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidDetailLevel, level)
	}
	if level < pos.SectionMinimumDetailLevel {
		return 0, fmt.Errorf("%w: %s is below the minimum stored level %s",
			errs.ErrInvalidDetailLevel, level, pos.SectionMinimumDetailLevel)
	}

	return int64(level - pos.SectionMinimumDetailLevel), nil
}
