package section

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/internal/pool"
)

// MaxColumnLen is the largest number of data points a column can encode.
const MaxColumnLen = math.MaxUint16

// DecodeDataColumns parses a Data payload into its 4096 columns.
//
// Empty columns decode as nil. The returned columns never alias data.
//
// Returns:
//   - Columns[Column]: The decoded grid
//   - error: errs.ErrCorruptStream when data is short or has trailing bytes
func DecodeDataColumns(data []byte) (Columns[Column], error) {
	cells := new([Cells]Column)
	offset := 0

	for i := range cells {
		if len(data) < offset+2 {
			return Columns[Column]{}, fmt.Errorf("%w: column %d: cannot read point count at offset %d (have %d bytes)",
				errs.ErrCorruptStream, i, offset, len(data))
		}

		count := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2

		if count == 0 {
			continue
		}

		if len(data) < offset+count*DataPointSize {
			return Columns[Column]{}, fmt.Errorf("%w: column %d: %d data points need %d bytes at offset %d (have %d)",
				errs.ErrCorruptStream, i, count, count*DataPointSize, offset, len(data)-offset)
		}

		col := make(Column, count)
		for j := range col {
			col[j] = DataPointFromBytes(data[offset:])
			offset += DataPointSize
		}
		cells[i] = col
	}

	if offset != len(data) {
		return Columns[Column]{}, fmt.Errorf("%w: %d bytes left after %d columns", errs.ErrCorruptStream, len(data)-offset, Cells)
	}

	return Columns[Column]{cells: cells}, nil
}

// EncodeDataColumns writes the Data payload for cols.
func EncodeDataColumns(cols Columns[Column]) ([]byte, error) {
	if cols.IsZero() {
		return nil, fmt.Errorf("%w: cannot encode an empty grid", errs.ErrGridArityMismatch)
	}

	size := 0
	for i, col := range cols.All() {
		if len(col) > MaxColumnLen {
			return nil, fmt.Errorf("column %d: %d data points exceed maximum %d", i, len(col), MaxColumnLen)
		}
		size += 2 + len(col)*DataPointSize
	}

	buf := pool.GetColumnBuffer()
	defer pool.PutColumnBuffer(buf)
	buf.Grow(size)

	for _, col := range cols.All() {
		buf.AppendUint16(uint16(len(col))) //nolint: gosec
		for _, dp := range col {
			buf.AppendUint64(uint64(dp))
		}
	}

	return buf.Detach(), nil
}
