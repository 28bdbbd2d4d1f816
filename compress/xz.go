package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/arloliu/lodsnap/errs"
)

// xzDictCap is the fixed LZMA2 dictionary capacity used for every re-encoded payload.
// Section payloads are far smaller than this, so the whole payload fits in one window.
const xzDictCap = 8 << 20

// xzReaderConfig accepts exactly one stream; a payload is never a concatenation.
var xzReaderConfig = xz.ReaderConfig{SingleStream: true}

// xzWriterConfig is the fixed quality setting used for persistence.
var xzWriterConfig = xz.WriterConfig{
	DictCap:  xzDictCap,
	CheckSum: xz.CRC64,
}

// XZCompressor handles LZMA2 payloads stored in the XZ container format
// (format.CompressionLZMA2).
type XZCompressor struct{}

var _ Codec = (*XZCompressor)(nil)

// NewXZCompressor creates a new XZ/LZMA2 codec.
//
// Returns:
//   - XZCompressor: New XZ codec instance
func NewXZCompressor() XZCompressor {
	return XZCompressor{}
}

// Compress compresses data into a single XZ stream.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: Compressed XZ stream
//   - error: Writer configuration or encoding error
func (c XZCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 64)

	w, err := xzWriterConfig.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress xz payload: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish xz payload: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses a complete XZ payload.
//
// The whole input must be consumed. A stream that ends before its declared end,
// fails its integrity check or is followed by any further bytes, including a
// second stream or stream padding, is reported as errs.ErrCorruptStream.
//
// Parameters:
//   - data: Compressed data to decompress
//
// Returns:
//   - []byte: Decompressed data (nil if input is empty)
//   - error: errs.ErrCorruptStream wrapping the decoder error
func (c XZCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	src := bytes.NewReader(data)

	r, err := xzReaderConfig.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read xz header: %w", errs.ErrCorruptStream, err)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress xz payload: %w", errs.ErrCorruptStream, err)
	}

	if remaining := src.Len(); remaining != 0 {
		return nil, fmt.Errorf("%w: %d bytes left after xz stream", errs.ErrCorruptStream, remaining)
	}

	return out, nil
}
