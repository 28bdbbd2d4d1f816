// Package lazy provides Value, a container that keeps a payload compressed until
// it is first needed and remembers the compressed form for as long as it remains
// valid.
//
// A Value is always in exactly one of three states:
//
//	Raw      compressed bytes only
//	Decoded  decoded value only
//	Cached   decoded value plus the compressed bytes it was decoded from
//
// Transitions:
//
//	Raw     --Decompress-->  Cached
//	Cached  --DropCache--->  Decoded
//	Cached  --Mutable----->  Decoded
//	Decoded --Recompress-->  Cached
//
// Persisting requires compressed bytes, so Bytes fails with
// errs.ErrNeedsRecompression in the Decoded state.
//
// A Value is not safe for concurrent use. Distinct Values may be decoded
// concurrently.
package lazy

import (
	"fmt"

	"github.com/arloliu/lodsnap/compress"
	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
)

// State identifies which representations a Value currently holds.
type State uint8

const (
	// Raw holds only the compressed bytes.
	Raw State = iota
	// Decoded holds only the decoded value.
	Decoded
	// Cached holds both, and the bytes encode the value.
	Cached
)

func (s State) String() string {
	switch s {
	case Raw:
		return "Raw"
	case Decoded:
		return "Decoded"
	case Cached:
		return "Cached"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ParseFunc turns decompressed bytes into a value.
//
// The input may alias the container's compressed bytes (for the identity codec)
// or a caller-owned buffer, so implementations must copy anything they retain.
type ParseFunc[T any] func(data []byte) (T, error)

// EncodeFunc turns a value back into uncompressed bytes.
type EncodeFunc[T any] func(value T) ([]byte, error)

// Value is a lazily decompressed payload of type T.
//
// The zero Value is Raw with an empty uncompressed payload.
type Value[T any] struct {
	state       State
	compression format.CompressionType
	raw         []byte
	value       T
}

// NewRaw wraps compressed bytes without decoding them.
//
// raw is borrowed, not copied; use Owned to detach the Value from a buffer that
// will be reused.
func NewRaw[T any](compression format.CompressionType, raw []byte) Value[T] {
	return Value[T]{state: Raw, compression: compression, raw: raw}
}

// NewDecoded wraps an already decoded value. The Value must be recompressed
// before it can be persisted.
func NewDecoded[T any](compression format.CompressionType, value T) Value[T] {
	return Value[T]{state: Decoded, compression: compression, value: value}
}

// State returns the current state.
func (v *Value[T]) State() State {
	return v.state
}

// Compression returns the codec tag used for the compressed form.
func (v *Value[T]) Compression() format.CompressionType {
	return v.compression
}

// IsCompressed reports whether compressed bytes are available.
func (v *Value[T]) IsCompressed() bool {
	return v.state == Raw || v.state == Cached
}

// IsDecompressed reports whether a decoded value is available.
func (v *Value[T]) IsDecompressed() bool {
	return v.state == Decoded || v.state == Cached
}

// Decompress decodes the payload with the Value's codec and parse, moving a Raw
// Value to Cached.
//
// If a decoded value already exists it is returned without any work, so calling
// Decompress repeatedly decodes at most once. On failure the Value stays Raw.
func (v *Value[T]) Decompress(parse ParseFunc[T]) (T, error) {
	return v.DecompressWith(func(raw []byte) (T, error) {
		data, err := compress.Decompress(v.compression, raw)
		if err != nil {
			var zero T
			return zero, err
		}

		return parse(data)
	})
}

// DecompressWith is like Decompress but hands the compressed bytes straight to
// decode, which is responsible for both decompression and parsing.
func (v *Value[T]) DecompressWith(decode ParseFunc[T]) (T, error) {
	if v.state != Raw {
		return v.value, nil
	}

	value, err := decode(v.raw)
	if err != nil {
		var zero T
		return zero, err
	}

	v.value = value
	v.state = Cached

	return v.value, nil
}

// DropCache releases the compressed bytes of a Cached Value, leaving it Decoded.
// It does nothing in any other state.
func (v *Value[T]) DropCache() {
	if v.state != Cached {
		return
	}

	v.raw = nil
	v.state = Decoded
}

// Mutable returns a pointer to the decoded value for in-place modification.
//
// The cached compressed bytes no longer describe the value once it changes, so
// they are dropped first. A Raw Value returns errs.ErrNotDecoded instead of
// decoding implicitly.
func (v *Value[T]) Mutable() (*T, error) {
	if v.state == Raw {
		return nil, errs.ErrNotDecoded
	}

	v.DropCache()

	return &v.value, nil
}

// Set replaces the decoded value, leaving the Value Decoded.
func (v *Value[T]) Set(value T) {
	v.raw = nil
	v.value = value
	v.state = Decoded
}

// Get returns the decoded value if one exists.
func (v *Value[T]) Get() (T, bool) {
	if v.state == Raw {
		var zero T
		return zero, false
	}

	return v.value, true
}

// Bytes returns the compressed bytes for persistence.
//
// Returns errs.ErrNeedsRecompression when only a decoded value exists.
func (v *Value[T]) Bytes() ([]byte, error) {
	if v.state == Decoded {
		return nil, errs.ErrNeedsRecompression
	}

	return v.raw, nil
}

// Recompress encodes and compresses a Decoded value, moving it to Cached.
// Raw and Cached Values already hold valid bytes and are left untouched.
func (v *Value[T]) Recompress(encode EncodeFunc[T]) error {
	if v.state != Decoded {
		return nil
	}

	data, err := encode(v.value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	raw, err := compress.Compress(v.compression, data)
	if err != nil {
		return fmt.Errorf("failed to compress value: %w", err)
	}

	v.raw = raw
	v.state = Cached

	return nil
}

// Owned returns a copy of v whose compressed bytes no longer alias any
// external buffer. The decoded value is shared, not deep-copied.
func (v *Value[T]) Owned() Value[T] {
	out := *v
	if v.raw != nil {
		out.raw = make([]byte, len(v.raw))
		copy(out.raw, v.raw)
	}

	return out
}

// Field names one pending decode job of an aggregate, for use by schedulers.
type Field struct {
	// Name identifies the payload within its aggregate, e.g. "mapping".
	Name string
	// Decompress decodes the payload in place.
	Decompress func() error
}
