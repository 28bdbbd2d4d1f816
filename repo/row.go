package repo

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"

	"github.com/arloliu/lodsnap/errs"
)

// Row gives typed access by column name to the current row of a result set.
//
// Values are borrowed from the driver and are only valid until the next row
// is read. Mappers must copy anything they keep; see Mapper.Owned.
type Row struct {
	index  map[string]int
	values []sql.RawBytes
}

func newRow(columns []string) *Row {
	r := &Row{
		index:  make(map[string]int, len(columns)),
		values: make([]sql.RawBytes, len(columns)),
	}
	for i, c := range columns {
		r.index[c] = i
	}

	return r
}

func (r *Row) dest() []any {
	dest := make([]any, len(r.values))
	for i := range r.values {
		dest[i] = &r.values[i]
	}

	return dest
}

// Has reports whether the result set has column name.
func (r *Row) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

func (r *Row) raw(name string) (sql.RawBytes, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", errs.ErrSchemaMismatch, name)
	}

	return r.values[i], nil
}

// IsNull reports whether column name is NULL. A missing column is an error.
func (r *Row) IsNull(name string) (bool, error) {
	v, err := r.raw(name)
	if err != nil {
		return false, err
	}

	return v == nil, nil
}

// Bytes returns the borrowed contents of column name.
func (r *Row) Bytes(name string) ([]byte, error) {
	return r.raw(name)
}

// Int64 parses column name as an integer. NULL is an error.
func (r *Row) Int64(name string) (int64, error) {
	v, err := r.raw(name)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("%w: column %q is NULL", errs.ErrSchemaMismatch, name)
	}

	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: column %q is not an integer: %w", errs.ErrSchemaMismatch, name, err)
	}

	return n, nil
}

// Int32 parses column name as a 32-bit integer.
func (r *Row) Int32(name string) (int32, error) {
	v, err := r.Int64(name)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: column %q value %d does not fit int32", errs.ErrSchemaMismatch, name, v)
	}

	return int32(v), nil
}

// Uint8 parses column name as an unsigned byte.
func (r *Row) Uint8(name string) (uint8, error) {
	v, err := r.Int64(name)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > math.MaxUint8 {
		return 0, fmt.Errorf("%w: column %q value %d does not fit uint8", errs.ErrSchemaMismatch, name, v)
	}

	return uint8(v), nil
}

// OptionalBool returns nil when column name is absent or NULL, and otherwise
// interprets it as an integer or textual boolean.
func (r *Row) OptionalBool(name string) (*bool, error) {
	if !r.Has(name) {
		return nil, nil
	}

	v, err := r.raw(name)
	if err != nil || v == nil {
		return nil, err
	}

	b, err := strconv.ParseBool(string(v))
	if err != nil {
		return nil, fmt.Errorf("%w: column %q is not a boolean: %w", errs.ErrSchemaMismatch, name, err)
	}

	return &b, nil
}
