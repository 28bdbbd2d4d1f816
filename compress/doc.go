// Package compress provides the compression codecs selected by a section's compression tag.
//
// Every payload column of a FullData row is compressed as a whole with the codec named
// by the row's CompressionMode byte. This package maps that tag to a Codec:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Tags
//
// **None** (format.CompressionNone, tag 0)
//
//	codec := compress.NewNoOpCompressor()
//	original, _ := codec.Decompress(payload) // returns payload unchanged
//
// **LZMA2** (format.CompressionLZMA2, tag 3)
//
//	codec := compress.NewXZCompressor()
//	original, err := codec.Decompress(payload)
//
// Payloads are complete XZ container streams. Decompression must consume the
// whole payload; a truncated stream, a failed integrity check or trailing bytes
// are reported as errs.ErrCorruptStream. Compression always uses the same writer
// configuration so that re-encoded payloads are stable.
//
// # Unsupported Tags
//
// LZ4 (tag 1) is reserved and Zstd (tag 2) is deprecated. GetCodec returns
// errs.ErrUnsupportedCodec for both; the row itself can still be mapped, only
// decoding its payloads fails.
//
// # Thread Safety
//
// All codec implementations are stateless and safe for concurrent use.
package compress
