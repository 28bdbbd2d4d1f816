// Package format defines the small enumerated values persisted alongside LOD payloads.
package format

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/lodsnap/errs"
)

type (
	CompressionType      uint8
	WorldGenStep         uint8
	WorldCompressionMode uint8
	LightLevel           uint8
)

const (
	CompressionNone  CompressionType = 0x0 // CompressionNone represents uncompressed payloads.
	CompressionLZ4   CompressionType = 0x1 // CompressionLZ4 is reserved and not supported.
	CompressionZstd  CompressionType = 0x2 // CompressionZstd is deprecated and not supported.
	CompressionLZMA2 CompressionType = 0x3 // CompressionLZMA2 represents XZ/LZMA2 streams.
)

// ParseCompressionType converts a persisted compression tag.
//
// The deprecated zstd tag is accepted with a warning so the row can still be
// mapped; any later attempt to decompress its payloads fails.
func ParseCompressionType(v uint8) (CompressionType, error) {
	switch c := CompressionType(v); c {
	case CompressionNone, CompressionLZ4, CompressionLZMA2:
		return c, nil
	case CompressionZstd:
		slog.Warn("database contains unsupported zstd-compressed data")
		return c, nil
	default:
		return 0, fmt.Errorf("%w: compression tag %d", errs.ErrUnsupportedCodec, v)
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZMA2:
		return "LZMA2"
	default:
		return "Unknown"
	}
}

// Generation steps in the order a column passes through them.
const (
	WorldGenEmpty              WorldGenStep = 0
	WorldGenStructureStart     WorldGenStep = 1
	WorldGenStructureReference WorldGenStep = 2
	WorldGenBiomes             WorldGenStep = 3
	WorldGenNoise              WorldGenStep = 4
	WorldGenSurface            WorldGenStep = 5
	WorldGenCarvers            WorldGenStep = 6
	WorldGenLiquidCarvers      WorldGenStep = 7
	WorldGenFeatures           WorldGenStep = 8
	WorldGenLight              WorldGenStep = 9
	WorldGenDownSampled        WorldGenStep = 254
)

// ParseWorldGenStep validates a persisted world generation step byte.
func ParseWorldGenStep(v uint8) (WorldGenStep, error) {
	if v <= uint8(WorldGenLight) || v == uint8(WorldGenDownSampled) {
		return WorldGenStep(v), nil
	}

	return 0, fmt.Errorf("%w: %d", errs.ErrInvalidWorldGenStep, v)
}

func (s WorldGenStep) String() string {
	switch s {
	case WorldGenEmpty:
		return "empty"
	case WorldGenStructureStart:
		return "structure_start"
	case WorldGenStructureReference:
		return "structure_reference"
	case WorldGenBiomes:
		return "biomes"
	case WorldGenNoise:
		return "noise"
	case WorldGenSurface:
		return "surface"
	case WorldGenCarvers:
		return "carvers"
	case WorldGenLiquidCarvers:
		return "liquid_carvers"
	case WorldGenFeatures:
		return "features"
	case WorldGenLight:
		return "light"
	case WorldGenDownSampled:
		return "down_sampled"
	default:
		return "unknown"
	}
}

// Ways a column was merged when it was down-sampled.
const (
	WorldCompressionMergeSameBlock WorldCompressionMode = 0
	WorldCompressionVisuallyEqual  WorldCompressionMode = 1
)

// ParseWorldCompressionMode validates a persisted world compression mode byte.
func ParseWorldCompressionMode(v uint8) (WorldCompressionMode, error) {
	switch m := WorldCompressionMode(v); m {
	case WorldCompressionMergeSameBlock, WorldCompressionVisuallyEqual:
		return m, nil
	default:
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidWorldCompression, v)
	}
}

func (m WorldCompressionMode) String() string {
	switch m {
	case WorldCompressionMergeSameBlock:
		return "merge_same_block"
	case WorldCompressionVisuallyEqual:
		return "visually_equal"
	default:
		return "unknown"
	}
}

const (
	LightMin LightLevel = 0  // LightMin is the darkest light level.
	LightSun LightLevel = 15 // LightSun is full sky light.
)

// ParseLightLevel validates a light value.
func ParseLightLevel(v uint8) (LightLevel, error) {
	if v > uint8(LightSun) {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidLightLevel, v)
	}

	return LightLevel(v), nil
}
