package compress

import (
	"bytes"
	"testing"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
	"github.com/stretchr/testify/require"
)

func samplePayload() []byte {
	// Repetitive data resembling a column payload: small counts and repeated words.
	var buf bytes.Buffer
	for i := 0; i < 4096; i++ {
		buf.Write([]byte{0x00, 0x01})
		buf.Write([]byte{0x00, 0x00, 0x10, 0x80, 0xF0, 0x00, 0x00, byte(i % 7)})
	}

	return buf.Bytes()
}

func TestGetCodec(t *testing.T) {
	tests := []struct {
		name      string
		cType     format.CompressionType
		supported bool
	}{
		{name: "none", cType: format.CompressionNone, supported: true},
		{name: "lz4 reserved", cType: format.CompressionLZ4, supported: false},
		{name: "zstd deprecated", cType: format.CompressionZstd, supported: false},
		{name: "lzma2", cType: format.CompressionLZMA2, supported: true},
		{name: "unknown", cType: format.CompressionType(0xFF), supported: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := GetCodec(tt.cType)
			if !tt.supported {
				require.ErrorIs(t, err, errs.ErrUnsupportedCodec)
				require.Nil(t, codec)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, codec)
		})
	}
}

func TestNoOpCompressor(t *testing.T) {
	data := []byte("uncompressed payload")
	codec := NewNoOpCompressor()

	compressed, err := codec.Compress(data)
	require.NoError(t, err)
	require.Equal(t, data, compressed)

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestXZCompressor_RoundTrip(t *testing.T) {
	data := samplePayload()
	codec := NewXZCompressor()

	compressed, err := codec.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data))

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestXZCompressor_Deterministic(t *testing.T) {
	data := samplePayload()
	codec := NewXZCompressor()

	first, err := codec.Compress(data)
	require.NoError(t, err)
	second, err := codec.Compress(data)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestXZCompressor_Corrupt(t *testing.T) {
	codec := NewXZCompressor()
	compressed, err := codec.Compress(samplePayload())
	require.NoError(t, err)

	t.Run("Truncated", func(t *testing.T) {
		_, err := codec.Decompress(compressed[:len(compressed)/2])
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})

	t.Run("Trailing garbage", func(t *testing.T) {
		data := append(bytes.Clone(compressed), 0xDE, 0xAD, 0xBE, 0xEF)
		_, err := codec.Decompress(data)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})

	t.Run("Concatenated streams", func(t *testing.T) {
		data := append(bytes.Clone(compressed), compressed...)
		_, err := codec.Decompress(data)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})

	t.Run("Stream padding", func(t *testing.T) {
		data := append(bytes.Clone(compressed), 0, 0, 0, 0)
		_, err := codec.Decompress(data)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})

	t.Run("Not xz", func(t *testing.T) {
		_, err := codec.Decompress([]byte("definitely not an xz stream"))
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})

	t.Run("Flipped payload byte", func(t *testing.T) {
		data := bytes.Clone(compressed)
		data[len(data)/2] ^= 0xFF
		_, err := codec.Decompress(data)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
	})
}

func TestDecompress_UnsupportedTag(t *testing.T) {
	_, err := Decompress(format.CompressionZstd, []byte{1, 2, 3})
	require.ErrorIs(t, err, errs.ErrUnsupportedCodec)

	_, err = Compress(format.CompressionLZ4, []byte{1, 2, 3})
	require.ErrorIs(t, err, errs.ErrUnsupportedCodec)
}

func TestDecompress_ByTag(t *testing.T) {
	data := samplePayload()

	compressed, err := Compress(format.CompressionLZMA2, data)
	require.NoError(t, err)

	decompressed, err := Decompress(format.CompressionLZMA2, compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)

	raw, err := Decompress(format.CompressionNone, data)
	require.NoError(t, err)
	require.Equal(t, data, raw)
}
