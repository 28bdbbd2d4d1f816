package mutf8

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/lodsnap/errs"
)

// DecodeTable walks a string table laid out as
// [Count: uint32 BE] [Len1: uint16 BE][Str1] [Len2: uint16 BE][Str2] ...
//
// fn is called once per string in order; an error from fn stops the walk and
// is returned unchanged. The table must consume data exactly: bytes left after
// the last string are reported as errs.ErrCorruptStream.
//
// Returns:
//   - int: The declared string count
//   - error: Decode, trailing-byte or callback error
func DecodeTable(data []byte, fn func(i int, s string) error) (int, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: cannot read table count (need 4 bytes, have %d)", errs.ErrCorruptStream, len(data))
	}

	count := binary.BigEndian.Uint32(data)
	offset := 4

	for i := 0; i < int(count); i++ {
		s, next, err := ReadString(data, offset)
		if err != nil {
			return int(count), fmt.Errorf("table string %d: %w", i, err)
		}
		offset = next

		if err := fn(i, s); err != nil {
			return int(count), err
		}
	}

	if offset != len(data) {
		return int(count), fmt.Errorf("%w: %d bytes left after %d table strings", errs.ErrCorruptStream, len(data)-offset, count)
	}

	return int(count), nil
}

// PeekCount returns the declared string count of a table, bounded by what the
// payload could possibly hold. It is meant for preallocation only.
func PeekCount(data []byte) int {
	if len(data) < 4 {
		return 0
	}

	count := int(binary.BigEndian.Uint32(data))

	return min(count, (len(data)-4)/2)
}

// AppendTable appends strs as a table to dst.
func AppendTable(dst []byte, strs []string) ([]byte, error) {
	if uint64(len(strs)) > math.MaxUint32 {
		return dst, fmt.Errorf("table of %d strings exceeds maximum count", len(strs))
	}

	dst = binary.BigEndian.AppendUint32(dst, uint32(len(strs))) //nolint: gosec

	var err error
	for i, s := range strs {
		dst, err = AppendString(dst, s)
		if err != nil {
			return dst, fmt.Errorf("table string %d: %w", i, err)
		}
	}

	return dst, nil
}
