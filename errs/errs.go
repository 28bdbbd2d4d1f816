// Package errs defines the sentinel errors shared by all lodsnap packages.
//
// Errors returned by lodsnap are wrapped with context using fmt.Errorf and %w,
// so callers should match them with errors.Is:
//
//	if errors.Is(err, errs.ErrCorruptStream) {
//	    // payload is malformed; skip this section
//	}
package errs

import "errors"

// Decode path errors.
var (
	// ErrCorruptStream indicates a malformed or truncated binary payload.
	ErrCorruptStream = errors.New("corrupt stream")
	// ErrUnsupportedCodec indicates an unknown or removed compression tag.
	ErrUnsupportedCodec = errors.New("unsupported codec")
	// ErrGridArityMismatch indicates a grid built from the wrong number of cells.
	ErrGridArityMismatch = errors.New("grid arity mismatch")
	// ErrMissingSeparator indicates a mapping entry without the biome/block separator.
	ErrMissingSeparator = errors.New("missing separator after biome")
	// ErrMalformedState indicates a mapping entry with a malformed block state blob.
	ErrMalformedState = errors.New("malformed block state")
	// ErrInvalidWorldGenStep indicates an unknown world generation step identifier.
	ErrInvalidWorldGenStep = errors.New("invalid world generation step")
	// ErrInvalidWorldCompression indicates an unknown world compression mode.
	ErrInvalidWorldCompression = errors.New("invalid world compression mode")
	// ErrInvalidLightLevel indicates a light value outside 0..15.
	ErrInvalidLightLevel = errors.New("invalid light level")
	// ErrInvalidDataPoint indicates a data point field that does not fit its bit width.
	ErrInvalidDataPoint = errors.New("invalid data point")
)

// Lazy value lifecycle errors.
var (
	// ErrNotDecoded is returned when a decoded value is requested from a raw container.
	ErrNotDecoded = errors.New("value not yet decoded")
	// ErrNeedsRecompression is returned when persisting a value that only exists decoded.
	ErrNeedsRecompression = errors.New("value needs to be compressed first")
)

// Spatial key errors.
var (
	// ErrInvalidDetailLevel is returned for a detail level outside the supported range.
	ErrInvalidDetailLevel = errors.New("invalid detail level")
	// ErrInvalidPosition is returned when a coordinate does not fit its packed field.
	ErrInvalidPosition = errors.New("position out of range")
)

// Storage errors.
var (
	// ErrSchemaMismatch indicates a row missing an expected column or holding the wrong type.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnexpectedRowCount indicates a statement that changed a number of rows other than expected.
	ErrUnexpectedRowCount = errors.New("unexpected affected row count")
)
