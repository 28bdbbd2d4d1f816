package repo

import "fmt"

// RowError is the mapping failure of one row.
type RowError struct {
	// Index is the position of the row in the result set.
	Index int
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// RowErrors collects the rows of one query that could not be mapped.
type RowErrors struct {
	Table string
	Rows  []RowError
}

func (e *RowErrors) add(index int, err error) {
	e.Rows = append(e.Rows, RowError{Index: index, Err: err})
}

func (e *RowErrors) Error() string {
	if len(e.Rows) == 1 {
		return fmt.Sprintf("%s: 1 row failed to map: %v", e.Table, e.Rows[0])
	}

	return fmt.Sprintf("%s: %d rows failed to map, first: %v", e.Table, len(e.Rows), e.Rows[0])
}

// Unwrap exposes every row error to errors.Is and errors.As.
func (e *RowErrors) Unwrap() []error {
	out := make([]error, len(e.Rows))
	for i, r := range e.Rows {
		out[i] = r
	}

	return out
}
