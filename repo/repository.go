package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/internal/options"
)

// Mapper converts between rows of one table and values of type T.
type Mapper[T any] interface {
	// Table is the table name used in generated statements.
	Table() string
	// FromRow maps the current row. The result may borrow the row's bytes.
	FromRow(row *Row) (T, error)
	// Owned detaches v from any borrowed row bytes.
	Owned(v T) T
	// InsertColumns lists the columns written by Insert, in order.
	InsertColumns() []string
	// InsertValues returns the values for InsertColumns.
	InsertValues(v T) ([]any, error)
}

type config struct {
	logger   *slog.Logger
	sizeHint bool
}

// Option configures a Repository.
type Option = options.Option[*config]

// WithLogger sets the logger used for per-row mapping failures.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithSizeHint makes Select count matching rows first and preallocate its
// result. It is off by default because the count costs a second query.
func WithSizeHint(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.sizeHint = enabled
	})
}

// Repository reads and writes values of type T through a Mapper.
//
// It is safe for concurrent use as long as the Mapper is.
type Repository[T any] struct {
	db     *sql.DB
	mapper Mapper[T]
	cfg    config
}

// New creates a Repository over db.
func New[T any](db *sql.DB, mapper Mapper[T], opts ...Option) (*Repository[T], error) {
	if db == nil {
		return nil, errors.New("repo: nil database")
	}

	cfg := config{logger: slog.Default()}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Repository[T]{db: db, mapper: mapper, cfg: cfg}, nil
}

func (r *Repository[T]) selectSQL(q Query) string {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(r.mapper.Table())
	sb.WriteString(" WHERE ")
	sb.WriteString(q.Where())
	if order := q.OrderBy(); order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order)
	}

	return sb.String()
}

// Count returns the number of rows matching q.
func (r *Repository[T]) Count(ctx context.Context, q Query) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", r.mapper.Table(), q.Where())

	var n int
	if err := r.db.QueryRowContext(ctx, query, q.Args()...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", r.mapper.Table(), err)
	}

	return n, nil
}

// Select returns every row matching q, mapped and detached with Mapper.Owned.
//
// A row that fails to map is skipped and recorded; the others are still
// returned, together with a *RowErrors describing the failures. Query and
// driver errors abort and return no values.
func (r *Repository[T]) Select(ctx context.Context, q Query) ([]T, error) {
	var out []T
	if r.cfg.sizeHint {
		n, err := r.Count(ctx, q)
		if err != nil {
			return nil, err
		}
		out = make([]T, 0, n)
	}

	err := r.Each(ctx, q, func(v T) error {
		out = append(out, r.mapper.Owned(v))
		return nil
	})

	var rowErrs *RowErrors
	if err != nil && !errors.As(err, &rowErrs) {
		return nil, err
	}

	return out, err
}

// Each streams every row matching q through fn.
//
// Values passed to fn borrow the row's bytes and are only valid during the
// call. Mapping failures are collected like in Select; an error from fn stops
// the iteration and is returned as is.
func (r *Repository[T]) Each(ctx context.Context, q Query, fn func(v T) error) error {
	table := r.mapper.Table()

	rows, err := r.db.QueryContext(ctx, r.selectSQL(q), q.Args()...)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read %s columns: %w", table, err)
	}

	row := newRow(columns)
	dest := row.dest()
	failures := &RowErrors{Table: table}

	for index := 0; rows.Next(); index++ {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("failed to scan %s row %d: %w", table, index, err)
		}

		v, err := r.mapper.FromRow(row)
		if err != nil {
			r.cfg.logger.Debug("skipping row", "table", table, "row", index, "error", err)
			failures.add(index, err)

			continue
		}

		if err := fn(v); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}

	if len(failures.Rows) > 0 {
		r.cfg.logger.Warn("rows failed to map", "table", table, "failed", len(failures.Rows))
		return failures
	}

	return nil
}

// Insert writes v as one row. It fails with errs.ErrUnexpectedRowCount unless
// exactly one row was changed.
func (r *Repository[T]) Insert(ctx context.Context, v T) error {
	table := r.mapper.Table()
	columns := r.mapper.InsertColumns()

	values, err := r.mapper.InsertValues(v)
	if err != nil {
		return fmt.Errorf("failed to bind %s row: %w", table, err)
	}
	if len(values) != len(columns) {
		return fmt.Errorf("repo: %s mapper returned %d values for %d columns", table, len(values), len(columns))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)

	res, err := r.db.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read %s affected rows: %w", table, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: insert into %s changed %d rows", errs.ErrUnexpectedRowCount, table, n)
	}

	return nil
}
