package section

import (
	"fmt"
	"iter"

	"github.com/arloliu/lodsnap/errs"
)

const (
	// Width is the number of columns along each side of a section.
	Width = 64
	// Cells is the number of columns in a section.
	Cells = Width * Width
)

// ArityError reports a grid built from the wrong number of cells.
//
// Delta is negative when cells were missing and positive when there were too
// many. It matches errs.ErrGridArityMismatch with errors.Is.
type ArityError struct {
	Delta int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %+d cells", errs.ErrGridArityMismatch, e.Delta)
}

func (e *ArityError) Unwrap() error {
	return errs.ErrGridArityMismatch
}

// Columns is an immutable 64×64 grid of cells indexed by (x, z).
//
// The zero Columns holds no cells; every constructor either fills all Cells
// cells or fails.
type Columns[C any] struct {
	cells *[Cells]C
}

// NewColumns builds a grid by calling fill for every (x, z).
func NewColumns[C any](fill func(x, z int) C) Columns[C] {
	cells := new([Cells]C)
	for i := range cells {
		cells[i] = fill(i%Width, i/Width)
	}

	return Columns[C]{cells: cells}
}

// ColumnsFromSlice builds a grid from exactly Cells values in row-major order.
//
// The length is known up front, so a mismatch fails immediately with an
// *ArityError whose Delta is len(values)-Cells. values is copied.
func ColumnsFromSlice[C any](values []C) (Columns[C], error) {
	if len(values) != Cells {
		return Columns[C]{}, &ArityError{Delta: len(values) - Cells}
	}

	cells := new([Cells]C)
	copy(cells[:], values)

	return Columns[C]{cells: cells}, nil
}

// ColumnsFromSeq builds a grid from a sequence of unknown length.
//
// Cells are filled in order. If the sequence ends early the *ArityError Delta
// is minus the number of unfilled cells. If it has more than Cells values the
// remainder is drained and counted, and Delta is 1 plus that excess.
func ColumnsFromSeq[C any](seq iter.Seq[C]) (Columns[C], error) {
	cells := new([Cells]C)
	filled, excess := 0, 0

	for c := range seq {
		if filled < Cells {
			cells[filled] = c
			filled++

			continue
		}
		excess++
	}

	if filled < Cells {
		return Columns[C]{}, &ArityError{Delta: -(Cells - filled)}
	}

	if excess > 0 {
		return Columns[C]{}, &ArityError{Delta: 1 + excess}
	}

	return Columns[C]{cells: cells}, nil
}

// IsZero reports whether the grid holds no cells.
func (c Columns[C]) IsZero() bool {
	return c.cells == nil
}

// Len returns Cells for a constructed grid and 0 for the zero value.
func (c Columns[C]) Len() int {
	if c.cells == nil {
		return 0
	}

	return Cells
}

// Index returns the row-major index of (x, z).
func Index(x, z int) int {
	return z*Width + x
}

// At returns the cell at (x, z). It panics if either coordinate is outside
// [0, Width) or the grid is zero.
func (c Columns[C]) At(x, z int) C {
	if x < 0 || x >= Width || z < 0 || z >= Width {
		panic(fmt.Sprintf("section: column (%d, %d) out of range", x, z))
	}

	return c.cells[Index(x, z)]
}

// Cell returns the cell at row-major index i.
func (c Columns[C]) Cell(i int) C {
	return c.cells[i]
}

// All iterates over every cell in row-major order with its index.
func (c Columns[C]) All() iter.Seq2[int, C] {
	return func(yield func(int, C) bool) {
		if c.cells == nil {
			return
		}
		for i := range c.cells {
			if !yield(i, c.cells[i]) {
				return
			}
		}
	}
}

// Values iterates over every cell in row-major order.
func (c Columns[C]) Values() iter.Seq[C] {
	return func(yield func(C) bool) {
		for _, v := range c.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// With returns a copy of the grid with the cell at (x, z) replaced.
// Like At, it panics on a zero grid.
func (c Columns[C]) With(x, z int, v C) Columns[C] {
	if x < 0 || x >= Width || z < 0 || z >= Width {
		panic(fmt.Sprintf("section: column (%d, %d) out of range", x, z))
	}

	cells := new([Cells]C)
	*cells = *c.cells
	cells[Index(x, z)] = v

	return Columns[C]{cells: cells}
}
