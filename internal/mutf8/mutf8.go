// Package mutf8 implements Java's modified UTF-8 string encoding and the
// length-prefixed string tables written by java.io.DataOutput.
//
// Modified UTF-8 differs from standard UTF-8 in two ways: U+0000 is written as
// the two-byte sequence 0xC0 0x80, and characters outside the Basic Multilingual
// Plane are written as a UTF-16 surrogate pair, each half encoded as three bytes.
package mutf8

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/arloliu/lodsnap/errs"
)

// MaxStringLen is the largest encoded string that fits a u16 length prefix.
const MaxStringLen = 0xFFFF

// EncodedLen returns the number of bytes s occupies in modified UTF-8.
func EncodedLen(s string) int {
	n := 0
	for _, r := range s {
		n += runeLen(r)
	}

	return n
}

func runeLen(r rune) int {
	switch {
	case r == 0:
		return 2
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 6
	}
}

// Append appends the modified UTF-8 encoding of s to dst.
//
// Invalid UTF-8 in s is encoded as U+FFFD, matching how the string would have
// been stored by a Java writer.
func Append(dst []byte, s string) []byte {
	for _, r := range s {
		switch {
		case r == 0:
			dst = append(dst, 0xC0, 0x80)
		case r < 0x80:
			dst = append(dst, byte(r))
		case r < 0x800:
			dst = append(dst, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			dst = append3(dst, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			dst = append3(dst, hi)
			dst = append3(dst, lo)
		}
	}

	return dst
}

func append3(dst []byte, r rune) []byte {
	return append(dst, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}

// Encode returns the modified UTF-8 encoding of s.
func Encode(s string) []byte {
	return Append(make([]byte, 0, EncodedLen(s)), s)
}

// Decode converts modified UTF-8 bytes into a Go string.
//
// Malformed sequences, truncated sequences and unpaired surrogates are reported
// as errs.ErrCorruptStream. A raw zero byte is accepted, as java.io.DataInput does.
func Decode(b []byte) (string, error) {
	if isASCII(b) {
		return string(b), nil
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			out = append(out, c)
			i++

		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", malformed(i)
			}
			r := rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			if r != 0 && r < 0x80 {
				return "", malformed(i)
			}
			out = utf8.AppendRune(out, r)
			i += 2

		case c&0xF0 == 0xE0:
			r, ok := decode3(b, i)
			if !ok {
				return "", malformed(i)
			}
			i += 3

			if utf16.IsSurrogate(r) {
				lo, ok := decode3(b, i)
				if r >= 0xDC00 || !ok || lo < 0xDC00 || lo > 0xDFFF {
					return "", fmt.Errorf("%w: unpaired surrogate at byte %d", errs.ErrCorruptStream, i-3)
				}
				r = utf16.DecodeRune(r, lo)
				i += 3
			}
			out = utf8.AppendRune(out, r)

		default:
			return "", malformed(i)
		}
	}

	return string(out), nil
}

func decode3(b []byte, i int) (rune, bool) {
	if i+2 >= len(b) || b[i]&0xF0 != 0xE0 || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
		return 0, false
	}

	r := rune(b[i]&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)

	return r, r >= 0x800
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}

	return true
}

func malformed(offset int) error {
	return fmt.Errorf("%w: malformed modified UTF-8 at byte %d", errs.ErrCorruptStream, offset)
}

// ReadString reads one u16 big-endian length-prefixed modified UTF-8 string
// starting at data[offset], the layout of java.io.DataInput.readUTF.
//
// Returns:
//   - string: The decoded string
//   - int: The offset just past the string
//   - error: errs.ErrCorruptStream when data is truncated or malformed
func ReadString(data []byte, offset int) (string, int, error) {
	if len(data) < offset+2 {
		return "", offset, fmt.Errorf("%w: cannot read string length at offset %d (have %d bytes)",
			errs.ErrCorruptStream, offset, len(data))
	}

	n := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2

	if len(data) < offset+n {
		return "", offset, fmt.Errorf("%w: string of %d bytes at offset %d exceeds payload of %d bytes",
			errs.ErrCorruptStream, n, offset, len(data))
	}

	s, err := Decode(data[offset : offset+n])
	if err != nil {
		return "", offset, err
	}

	return s, offset + n, nil
}

// AppendString appends s with its u16 big-endian length prefix, the layout of
// java.io.DataOutput.writeUTF.
func AppendString(dst []byte, s string) ([]byte, error) {
	n := EncodedLen(s)
	if n > MaxStringLen {
		return dst, fmt.Errorf("string of %d encoded bytes exceeds maximum length %d", n, MaxStringLen)
	}

	dst = binary.BigEndian.AppendUint16(dst, uint16(n)) //nolint: gosec

	return Append(dst, s), nil
}
