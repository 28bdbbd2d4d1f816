// Package pos implements the bit-packed spatial key identifying one LOD section.
//
// A SectionPos packs three fields into a single int64:
//
//	bits  0..7   detail level (unsigned)
//	bits  8..35  x (28-bit two's complement)
//	bits 36..63  z (28-bit two's complement)
package pos

import (
	"fmt"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
)

// Field widths and offsets, in bits, of the packed position.
const (
	DetailLevelWidth = 8
	XWidth           = 28
	ZWidth           = 28

	DetailLevelOffset = 0
	XOffset           = DetailLevelOffset + DetailLevelWidth
	ZOffset           = XOffset + XWidth

	detailLevelMask = (1 << DetailLevelWidth) - 1
	xMask           = (1 << XWidth) - 1
	zMask           = (1 << ZWidth) - 1

	// MaxCoordinate is the largest magnitude (exclusive) a coordinate may have.
	MaxCoordinate = 1 << (XWidth - 1)
)

// SectionMinimumDetailLevel is the detail level stored as zero in the FullData table.
const SectionMinimumDetailLevel = format.Chunk4

// SectionPos is a packed (detail level, x, z) key.
type SectionPos int64

// New packs a position, rejecting coordinates that do not fit in 28 signed bits.
func New(level format.DetailLevel, x, z int32) (SectionPos, error) {
	if !level.IsValid() {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidDetailLevel, level)
	}
	if !inRange(x) || !inRange(z) {
		return 0, fmt.Errorf("%w: (%d, %d) must be within ±%d", errs.ErrInvalidPosition, x, z, MaxCoordinate)
	}

	return pack(level, x, z), nil
}

// MustNew is like New but panics on invalid input.
func MustNew(level format.DetailLevel, x, z int32) SectionPos {
	p, err := New(level, x, z)
	if err != nil {
		panic(err)
	}

	return p
}

// FromInt64 reinterprets a packed key, validating its detail level.
func FromInt64(v int64) (SectionPos, error) {
	p := SectionPos(v)
	if !p.DetailLevel().IsValid() {
		return 0, fmt.Errorf("%w: packed key 0x%016x", errs.ErrInvalidDetailLevel, uint64(v))
	}

	return p, nil
}

func inRange(v int32) bool {
	return v > -MaxCoordinate && v < MaxCoordinate
}

func pack(level format.DetailLevel, x, z int32) SectionPos {
	var data int64
	data |= int64(level) & detailLevelMask
	data |= (int64(x) & xMask) << XOffset
	data |= (int64(z) & zMask) << ZOffset

	return SectionPos(data)
}

// Int64 returns the packed representation.
func (p SectionPos) Int64() int64 {
	return int64(p)
}

// DetailLevel returns the packed detail level.
func (p SectionPos) DetailLevel() format.DetailLevel {
	return format.DetailLevel((int64(p) >> DetailLevelOffset) & detailLevelMask)
}

// X returns the sign-extended x grid coordinate.
func (p SectionPos) X() int32 {
	x := int32((int64(p) >> XOffset) & xMask)
	return (x << (32 - XWidth)) >> (32 - XWidth)
}

// Z returns the sign-extended z grid coordinate.
func (p SectionPos) Z() int32 {
	z := int32((int64(p) >> ZOffset) & zMask)
	return (z << (32 - ZWidth)) >> (32 - ZWidth)
}

// BlockWidth returns the block width of the detail level.
func (p SectionPos) BlockWidth() int32 {
	return p.DetailLevel().BlockWidth()
}

// CenterBlockX returns the block-space x coordinate of the section center.
func (p SectionPos) CenterBlockX() int32 {
	return center(p.X(), p.DetailLevel())
}

// CenterBlockZ returns the block-space z coordinate of the section center.
func (p SectionPos) CenterBlockZ() int32 {
	return center(p.Z(), p.DetailLevel())
}

// MinCornerBlockX returns the block-space x coordinate of the section's minimum corner.
func (p SectionPos) MinCornerBlockX() int32 {
	return corner(p.CenterBlockX(), p.DetailLevel())
}

// MinCornerBlockZ returns the block-space z coordinate of the section's minimum corner.
func (p SectionPos) MinCornerBlockZ() int32 {
	return corner(p.CenterBlockZ(), p.DetailLevel())
}

func center(c int32, level format.DetailLevel) int32 {
	switch level {
	case format.Block:
		return c
	case format.Block2:
		return c * 2
	default:
		return (c << level) + (1 << (level - 1))
	}
}

func corner(center int32, level format.DetailLevel) int32 {
	if level == format.Block2 {
		return center
	}

	return center - level.BlockWidth()/2
}

// String formats the key as "<level>*<x>,<z>".
func (p SectionPos) String() string {
	return fmt.Sprintf("%s*%d,%d", p.DetailLevel(), p.X(), p.Z())
}
