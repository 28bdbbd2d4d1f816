package section

import (
	"fmt"
	"iter"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
	"github.com/arloliu/lodsnap/internal/pool"
)

// DecodeWorldGenSteps parses a ColumnGenerationStep payload, one byte per column.
func DecodeWorldGenSteps(data []byte) (Columns[format.WorldGenStep], error) {
	return decodeByteGrid(data, format.ParseWorldGenStep)
}

// EncodeWorldGenSteps writes a ColumnGenerationStep payload.
func EncodeWorldGenSteps(cols Columns[format.WorldGenStep]) ([]byte, error) {
	return encodeByteGrid(cols)
}

// DecodeWorldCompression parses a ColumnWorldCompressionMode payload, one byte per column.
func DecodeWorldCompression(data []byte) (Columns[format.WorldCompressionMode], error) {
	return decodeByteGrid(data, format.ParseWorldCompressionMode)
}

// EncodeWorldCompression writes a ColumnWorldCompressionMode payload.
func EncodeWorldCompression(cols Columns[format.WorldCompressionMode]) ([]byte, error) {
	return encodeByteGrid(cols)
}

func decodeByteGrid[C ~uint8](data []byte, parse func(uint8) (C, error)) (Columns[C], error) {
	var parseErr error

	var seq iter.Seq[C] = func(yield func(C) bool) {
		for i, b := range data {
			c, err := parse(b)
			if err != nil {
				parseErr = fmt.Errorf("%w: column %d: %w", errs.ErrCorruptStream, i, err)
				return
			}
			if !yield(c) {
				return
			}
		}
	}

	cols, err := ColumnsFromSeq(seq)
	if parseErr != nil {
		return Columns[C]{}, parseErr
	}
	if err != nil {
		return Columns[C]{}, fmt.Errorf("%w: %w", errs.ErrCorruptStream, err)
	}

	return cols, nil
}

func encodeByteGrid[C ~uint8](cols Columns[C]) ([]byte, error) {
	if cols.IsZero() {
		return nil, fmt.Errorf("%w: cannot encode an empty grid", errs.ErrGridArityMismatch)
	}

	buf := pool.GetTableBuffer()
	defer pool.PutTableBuffer(buf)
	buf.Grow(Cells)

	for _, c := range cols.All() {
		buf.AppendByte(uint8(c))
	}

	return buf.Detach(), nil
}
