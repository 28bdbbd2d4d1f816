package section

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
)

// Bit layout of a DataPoint, counted from the least significant bit.
const (
	idWidth         = 32
	heightWidth     = 12
	minYWidth       = 12
	skyLightWidth   = 4
	blockLightWidth = 4

	idOffset         = 0
	heightOffset     = idOffset + idWidth
	minYOffset       = heightOffset + heightWidth
	skyLightOffset   = minYOffset + minYWidth
	blockLightOffset = skyLightOffset + skyLightWidth

	idMask         = 1<<idWidth - 1
	heightMask     = 1<<heightWidth - 1
	minYMask       = 1<<minYWidth - 1
	skyLightMask   = 1<<skyLightWidth - 1
	blockLightMask = 1<<blockLightWidth - 1
)

// DataPointSize is the encoded size of one DataPoint in bytes.
const DataPointSize = 8

// Largest values the packed fields can hold.
const (
	MaxHeight = heightMask
	MaxMinY   = minYMask
)

// DataPoint is one vertical run of identical blocks within a column.
type DataPoint uint64

// NewDataPoint packs the given fields.
//
// Returns errs.ErrInvalidDataPoint when height or minY exceed 12 bits and
// errs.ErrInvalidLightLevel when a light value exceeds 15.
func NewDataPoint(id uint32, height, minY uint16, skyLight, blockLight format.LightLevel) (DataPoint, error) {
	if height > MaxHeight {
		return 0, fmt.Errorf("%w: height %d exceeds %d", errs.ErrInvalidDataPoint, height, MaxHeight)
	}
	if minY > MaxMinY {
		return 0, fmt.Errorf("%w: min_y %d exceeds %d", errs.ErrInvalidDataPoint, minY, MaxMinY)
	}
	if skyLight > format.LightSun {
		return 0, fmt.Errorf("%w: sky light %d", errs.ErrInvalidLightLevel, skyLight)
	}
	if blockLight > format.LightSun {
		return 0, fmt.Errorf("%w: block light %d", errs.ErrInvalidLightLevel, blockLight)
	}

	return DataPoint(uint64(id)<<idOffset |
		uint64(height)<<heightOffset |
		uint64(minY)<<minYOffset |
		uint64(skyLight)<<skyLightOffset |
		uint64(blockLight)<<blockLightOffset), nil
}

// DataPointFromBytes reads a big-endian DataPoint from the first 8 bytes of b.
func DataPointFromBytes(b []byte) DataPoint {
	return DataPoint(binary.BigEndian.Uint64(b))
}

// AppendBytes appends the big-endian encoding of d to dst.
func (d DataPoint) AppendBytes(dst []byte) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(d))
}

// ID is the index of this point's Entry in the section Mapping.
func (d DataPoint) ID() uint32 {
	return uint32(uint64(d) >> idOffset & idMask)
}

// Height returns the number of blocks the point spans upward from MinY.
func (d DataPoint) Height() uint16 {
	return uint16(uint64(d) >> heightOffset & heightMask)
}

// MinY returns the bottom of the point relative to the section's MinY.
func (d DataPoint) MinY() uint16 {
	return uint16(uint64(d) >> minYOffset & minYMask)
}

// SkyLight returns the sky light level. A stored 0 is format.LightMin.
func (d DataPoint) SkyLight() format.LightLevel {
	return format.LightMin + format.LightLevel(uint64(d)>>skyLightOffset&skyLightMask)
}

// BlockLight returns the block light level. A stored 0 is format.LightMin.
func (d DataPoint) BlockLight() format.LightLevel {
	return format.LightMin + format.LightLevel(uint64(d)>>blockLightOffset&blockLightMask)
}

func (d DataPoint) String() string {
	return fmt.Sprintf("DataPoint{id: %d, height: %d, min_y: %d, sky_light: %d, block_light: %d}",
		d.ID(), d.Height(), d.MinY(), d.SkyLight(), d.BlockLight())
}

// Column is the stack of data points of one grid cell, top to bottom.
type Column []DataPoint
