package format

import (
	"fmt"

	"github.com/arloliu/lodsnap/errs"
)

// DetailLevel selects the side length of a grid cell as a power of two blocks.
type DetailLevel uint8

// Detail levels from single blocks up to 512 regions per cell.
const (
	Block DetailLevel = iota
	Block2
	Block4
	Block8
	Chunk
	Chunk2
	Chunk4
	Chunk8
	Chunk16
	Region
	Region2
	Region4
	Region8
	Region16
	Region32
	Region64
	Region128
	Region256
	Region512
)

// Bounds of the detail level scale.
const (
	MinDetailLevel = Block
	MaxDetailLevel = Region512
)

var detailLevelNames = [...]string{
	"Block", "Block2", "Block4", "Block8",
	"Chunk", "Chunk2", "Chunk4", "Chunk8", "Chunk16",
	"Region", "Region2", "Region4", "Region8", "Region16",
	"Region32", "Region64", "Region128", "Region256", "Region512",
}

// ParseDetailLevel validates a detail level ordinal.
func ParseDetailLevel(v uint8) (DetailLevel, error) {
	if v > uint8(MaxDetailLevel) {
		return 0, fmt.Errorf("%w: %d exceeds %d", errs.ErrInvalidDetailLevel, v, MaxDetailLevel)
	}

	return DetailLevel(v), nil
}

// BlockWidth returns the number of blocks covered by one cell at this level.
func (d DetailLevel) BlockWidth() int32 {
	return 1 << d
}

// Add returns d+o. It panics if the result exceeds MaxDetailLevel.
func (d DetailLevel) Add(o DetailLevel) DetailLevel {
	sum := uint16(d) + uint16(o)
	if sum > uint16(MaxDetailLevel) {
		panic(fmt.Sprintf("detail level overflow: %d + %d", d, o))
	}

	return DetailLevel(sum)
}

// Sub returns d-o, saturating at MinDetailLevel.
func (d DetailLevel) Sub(o DetailLevel) DetailLevel {
	if o >= d {
		return MinDetailLevel
	}

	return d - o
}

// IsValid reports whether d is within MinDetailLevel..MaxDetailLevel.
func (d DetailLevel) IsValid() bool {
	return d <= MaxDetailLevel
}

func (d DetailLevel) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("DetailLevel(%d)", uint8(d))
	}

	return detailLevelNames[d]
}
