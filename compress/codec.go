package compress

import (
	"fmt"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
)

// Compressor compresses a complete payload for persistence.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is owned by the caller unless documented otherwise
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a complete payload read from storage.
//
// Implementations must either produce the full original payload or fail; a
// partially decoded payload is never returned.
//
// Thread Safety: Decompressor implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns errs.ErrCorruptStream if input data is corrupted, truncated or
	//     followed by trailing bytes
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone:  NewNoOpCompressor(),
	format.CompressionLZMA2: NewXZCompressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
//
// Returns:
//   - Codec: shared, stateless codec instance
//   - error: errs.ErrUnsupportedCodec for reserved, deprecated or unknown tags
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s (tag %d)", errs.ErrUnsupportedCodec, compressionType, uint8(compressionType))
}

// Decompress decompresses data with the codec selected by compressionType.
func Decompress(compressionType format.CompressionType, data []byte) ([]byte, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	return codec.Decompress(data)
}

// Compress compresses data with the codec selected by compressionType.
func Compress(compressionType format.CompressionType, data []byte) ([]byte, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	return codec.Compress(data)
}
