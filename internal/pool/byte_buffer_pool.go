// Package pool provides pooled byte buffers for the section payload encoders.
package pool

import (
	"encoding/binary"
	"sync"
)

// Default and maximum retained sizes of pooled buffers.
//
// A data column payload is 4096 length prefixes plus 8 bytes per data point,
// so column buffers start larger than mapping table buffers.
const (
	ColumnBufferDefaultSize  = 1024 * 64   // 64KiB
	ColumnBufferMaxThreshold = 1024 * 1024 // 1MiB
	TableBufferDefaultSize   = 1024 * 4    // 4KiB
	TableBufferMaxThreshold  = 1024 * 256  // 256KiB
)

// ByteBuffer is an append-only big-endian byte sink.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice. It is only valid until the buffer
// is reset or returned to its pool.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Detach returns a copy of the buffer contents that outlives the buffer.
func (bb *ByteBuffer) Detach() []byte {
	out := make([]byte, len(bb.B))
	copy(out, bb.B)

	return out
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by a whole table buffer to minimize reallocations; larger
// buffers grow by 25% of their current capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := TableBufferDefaultSize
	if cap(bb.B) > 4*TableBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// AppendUint16 appends v in big-endian order.
func (bb *ByteBuffer) AppendUint16(v uint16) {
	bb.B = binary.BigEndian.AppendUint16(bb.B, v)
}

// AppendUint32 appends v in big-endian order.
func (bb *ByteBuffer) AppendUint32(v uint32) {
	bb.B = binary.BigEndian.AppendUint32(bb.B, v)
}

// AppendUint64 appends v in big-endian order.
func (bb *ByteBuffer) AppendUint64(v uint64) {
	bb.B = binary.BigEndian.AppendUint64(bb.B, v)
}

// AppendByte appends a single byte.
func (bb *ByteBuffer) AppendByte(v byte) {
	bb.B = append(bb.B, v)
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// Buffers whose capacity grew beyond maxThreshold are dropped instead of being
// retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	columnDefaultPool = NewByteBufferPool(ColumnBufferDefaultSize, ColumnBufferMaxThreshold)
	tableDefaultPool  = NewByteBufferPool(TableBufferDefaultSize, TableBufferMaxThreshold)
)

// GetColumnBuffer retrieves a ByteBuffer sized for data column payloads.
func GetColumnBuffer() *ByteBuffer {
	return columnDefaultPool.Get()
}

// PutColumnBuffer returns a ByteBuffer to the column pool.
func PutColumnBuffer(bb *ByteBuffer) {
	columnDefaultPool.Put(bb)
}

// GetTableBuffer retrieves a ByteBuffer sized for mapping tables and byte grids.
func GetTableBuffer() *ByteBuffer {
	return tableDefaultPool.Get()
}

// PutTableBuffer returns a ByteBuffer to the table pool.
func PutTableBuffer(bb *ByteBuffer) {
	tableDefaultPool.Put(bb)
}
