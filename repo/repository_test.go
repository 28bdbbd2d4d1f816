package repo

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/arloliu/lodsnap/errs"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type point struct {
	ID      int64
	X, Z    int32
	Kind    uint8
	Payload []byte
	Flag    *bool
}

type pointMapper struct {
	requireColumn string
}

func (pointMapper) Table() string { return "Points" }

func (m pointMapper) FromRow(row *Row) (point, error) {
	var p point
	var err error

	if m.requireColumn != "" {
		if _, err := row.Bytes(m.requireColumn); err != nil {
			return p, err
		}
	}

	if p.ID, err = row.Int64("Id"); err != nil {
		return p, err
	}
	if p.X, err = row.Int32("X"); err != nil {
		return p, err
	}
	if p.Z, err = row.Int32("Z"); err != nil {
		return p, err
	}
	if p.Kind, err = row.Uint8("Kind"); err != nil {
		return p, err
	}
	if p.Payload, err = row.Bytes("Payload"); err != nil {
		return p, err
	}
	if p.Flag, err = row.OptionalBool("Flag"); err != nil {
		return p, err
	}

	return p, nil
}

func (pointMapper) Owned(p point) point {
	p.Payload = append([]byte(nil), p.Payload...)
	return p
}

func (pointMapper) InsertColumns() []string {
	return []string{"Id", "X", "Z", "Kind", "Payload", "Flag"}
}

func (pointMapper) InsertValues(p point) ([]any, error) {
	var flag any
	if p.Flag != nil {
		flag = *p.Flag
	}

	return []any{p.ID, p.X, p.Z, p.Kind, p.Payload, flag}, nil
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "repo.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE Points (
		Id INTEGER PRIMARY KEY,
		X INTEGER NOT NULL,
		Z INTEGER NOT NULL,
		Kind INTEGER NOT NULL,
		Payload BLOB,
		Flag INTEGER NULL
	)`)
	require.NoError(t, err)

	return db
}

func newTestRepo(t *testing.T, db *sql.DB, opts ...Option) *Repository[point] {
	t.Helper()

	r, err := New[point](db, pointMapper{}, opts...)
	require.NoError(t, err)

	return r
}

func boolPtr(b bool) *bool { return &b }

func seed(t *testing.T, r *Repository[point]) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, point{ID: 1, X: 1, Z: 1, Kind: 3, Payload: []byte("a")}))
	require.NoError(t, r.Insert(ctx, point{ID: 2, X: -5, Z: 2, Kind: 0, Payload: []byte("bb"), Flag: boolPtr(true)}))
	require.NoError(t, r.Insert(ctx, point{ID: 3, X: 3, Z: -4, Kind: 3, Payload: []byte("ccc"), Flag: boolPtr(false)}))
}

func TestQueries(t *testing.T) {
	require.Equal(t, "1", All().Where())
	require.Empty(t, All().OrderBy())
	require.Empty(t, All().Args())

	q := Where("Kind = ? AND X > ?", 3, 0)
	require.Equal(t, "Kind = ? AND X > ?", q.Where())
	require.Equal(t, []any{3, 0}, q.Args())

	ordered := Ordered(q, "Id DESC")
	require.Equal(t, q.Where(), ordered.Where())
	require.Equal(t, q.Args(), ordered.Args())
	require.Equal(t, "Id DESC", ordered.OrderBy())

	reordered := Ordered(ordered, "Id ASC")
	require.Equal(t, "Id ASC", reordered.OrderBy())
	require.Equal(t, q.Where(), reordered.Where())
}

func TestRepository_Select(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	r := newTestRepo(t, db)
	seed(t, r)

	t.Run("all ordered", func(t *testing.T) {
		points, err := r.Select(ctx, Ordered(All(), "X*X + Z*Z DESC"))
		require.NoError(t, err)
		require.Len(t, points, 3)
		require.Equal(t, []int64{2, 3, 1}, []int64{points[0].ID, points[1].ID, points[2].ID})

		require.Equal(t, int32(-5), points[0].X)
		require.Equal(t, []byte("bb"), points[0].Payload)
		require.NotNil(t, points[0].Flag)
		require.True(t, *points[0].Flag)
		require.NotNil(t, points[1].Flag)
		require.False(t, *points[1].Flag)
		require.Nil(t, points[2].Flag)
	})

	t.Run("where with args", func(t *testing.T) {
		points, err := r.Select(ctx, Ordered(Where("Kind = ?", 3), "Id"))
		require.NoError(t, err)
		require.Len(t, points, 2)
		require.Equal(t, int64(1), points[0].ID)
		require.Equal(t, int64(3), points[1].ID)
	})

	t.Run("size hint", func(t *testing.T) {
		hinted := newTestRepo(t, db, WithSizeHint(true))
		points, err := hinted.Select(ctx, Where("Kind = ?", 3))
		require.NoError(t, err)
		require.Len(t, points, 2)
		require.Equal(t, 2, cap(points))
	})

	t.Run("no rows", func(t *testing.T) {
		points, err := r.Select(ctx, Where("Id > ?", 100))
		require.NoError(t, err)
		require.Empty(t, points)
	})

	t.Run("count", func(t *testing.T) {
		n, err := r.Count(ctx, All())
		require.NoError(t, err)
		require.Equal(t, 3, n)
	})
}

func TestRepository_SelectCollectsRowErrors(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	r := newTestRepo(t, db)
	seed(t, r)

	// Kind 300 does not fit uint8.
	_, err := db.Exec(`INSERT INTO Points (Id, X, Z, Kind, Payload) VALUES (4, 0, 0, 300, x'00')`)
	require.NoError(t, err)

	points, err := r.Select(ctx, Ordered(All(), "Id"))
	require.Len(t, points, 3)
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)

	var rowErrs *RowErrors
	require.True(t, errors.As(err, &rowErrs))
	require.Len(t, rowErrs.Rows, 1)
	require.Equal(t, 3, rowErrs.Rows[0].Index)
	require.Equal(t, "Points", rowErrs.Table)
}

func TestRepository_MissingColumn(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seed(t, newTestRepo(t, db))

	r, err := New[point](db, pointMapper{requireColumn: "Missing"})
	require.NoError(t, err)

	points, err := r.Select(ctx, All())
	require.Empty(t, points)
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
	require.ErrorContains(t, err, `missing column "Missing"`)
}

func TestRepository_OwnedDetachesRows(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	r := newTestRepo(t, db)
	seed(t, r)

	points, err := r.Select(ctx, Ordered(All(), "Id"))
	require.NoError(t, err)
	require.Equal(t, []byte("a"), points[0].Payload)
	require.Equal(t, []byte("bb"), points[1].Payload)
	require.Equal(t, []byte("ccc"), points[2].Payload)
}

func TestRepository_Each(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	r := newTestRepo(t, db)
	seed(t, r)

	var total int
	err := r.Each(ctx, All(), func(p point) error {
		total += len(p.Payload)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 6, total)

	stop := errors.New("stop")
	calls := 0
	err = r.Each(ctx, All(), func(point) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}

func TestRepository_Insert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	r := newTestRepo(t, db)

	require.NoError(t, r.Insert(ctx, point{ID: 1, Payload: []byte{1}}))

	t.Run("constraint violation", func(t *testing.T) {
		err := r.Insert(ctx, point{ID: 1})
		require.Error(t, err)
	})

	t.Run("no row changed", func(t *testing.T) {
		_, err := db.Exec(`CREATE TRIGGER skip_negative BEFORE INSERT ON Points
			WHEN NEW.X < 0 BEGIN SELECT RAISE(IGNORE); END`)
		require.NoError(t, err)

		err = r.Insert(ctx, point{ID: 9, X: -1})
		require.ErrorIs(t, err, errs.ErrUnexpectedRowCount)
	})
}

func TestNew_NilDB(t *testing.T) {
	_, err := New[point](nil, pointMapper{})
	require.Error(t, err)
}
