package section

import (
	"image/color"
	"strings"
)

// DefaultNamespace is assumed for block identifiers without a namespace.
const DefaultNamespace = "minecraft"

// AirBlock is the identifier used for empty space.
const AirBlock Block = "AIR"

// Block is a namespaced block identifier such as "minecraft:stone".
type Block string

// Namespace returns the part before ':' or DefaultNamespace if there is none.
func (b Block) Namespace() string {
	ns, _, ok := strings.Cut(string(b), ":")
	if !ok {
		return DefaultNamespace
	}

	return ns
}

// Name returns the identifier without its namespace.
func (b Block) Name() string {
	_, name, ok := strings.Cut(string(b), ":")
	if !ok {
		return string(b)
	}

	return name
}

// IsAir reports whether b is air in any letter case.
func (b Block) IsAir() bool {
	return strings.EqualFold(b.Name(), "air")
}

var transparentBlocks = map[string]struct{}{
	"AIR":           {},
	"torch":         {},
	"wall_torch":    {},
	"rail":          {},
	"powered_rail":  {},
	"lever":         {},
	"ladder":        {},
	"glass":         {},
	"repeater":      {},
	"iron_bars":     {},
	"redstone_wire": {},
	"end_rod":       {},
}

// IsTransparent reports whether light and sight pass through b.
// Only vanilla blocks are known to be transparent.
func (b Block) IsTransparent() bool {
	if b.Namespace() != DefaultNamespace {
		return false
	}

	name := b.Name()
	if _, ok := transparentBlocks[name]; ok {
		return true
	}

	return strings.HasPrefix(name, "potted_")
}

type colorRule struct {
	match func(id string) bool
	color color.RGBA
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

func containsAny(id string, parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(id, p) {
			return true
		}
	}

	return false
}

// colorRules are checked in order; the first match wins.
var colorRules = []colorRule{
	{func(id string) bool { return strings.Contains(id, "grass_block") }, rgb(127, 178, 56)},
	{func(id string) bool { return id == "minecraft:cherry_leaves" }, rgb(242, 127, 165)},
	{func(id string) bool {
		return containsAny(id, "grass", "leave", "leaf", "vine", "cactus", "fern", "lily_pad", "sugar_cane",
			"flower", "seed", "wheat", "carrot", "potato", "sweet_berry_bush", "petal", "sapling")
	}, rgb(0, 124, 0)},
	{func(id string) bool {
		return (strings.Contains(id, "dark") && strings.Contains(id, "oak")) || strings.Contains(id, "soul")
	}, rgb(102, 76, 51)},
	{func(id string) bool {
		return (strings.Contains(id, "sand") && !strings.Contains(id, "red")) || strings.Contains(id, "birch")
	}, rgb(247, 233, 163)},
	{func(id string) bool { return strings.Contains(id, "wool") }, rgb(199, 199, 199)},
	{func(id string) bool { return containsAny(id, "tnt", "fire", "lava") }, rgb(255, 0, 0)},
	{func(id string) bool { return strings.Contains(id, "ice") }, rgb(160, 160, 255)},
	{func(id string) bool { return strings.Contains(id, "iron") }, rgb(167, 167, 167)},
	{func(id string) bool { return strings.Contains(id, "snow") }, rgb(255, 255, 255)},
	{func(id string) bool { return strings.Contains(id, "clay") }, rgb(164, 168, 184)},
	{func(id string) bool { return containsAny(id, "dirt", "farmland", "granite", "jungle") }, rgb(151, 109, 77)},
	{func(id string) bool { return containsAny(id, "stone", "andesite", "ore", "gravel") }, rgb(112, 112, 112)},
	{func(id string) bool { return containsAny(id, "water", "seagrass", "kelp") }, rgb(64, 64, 255)},
	{func(id string) bool { return containsAny(id, "oak", "chest") }, rgb(143, 119, 72)},
	{func(id string) bool { return containsAny(id, "diorite", "quartz") }, rgb(255, 252, 245)},
	{func(id string) bool {
		return strings.Contains(id, "acacia") || (strings.Contains(id, "red") && strings.Contains(id, "sand")) ||
			strings.Contains(id, "copper")
	}, rgb(216, 127, 51)},
	{func(id string) bool { return containsAny(id, "mycelium", "amethyst", "chorus") }, rgb(127, 63, 178)},
	{func(id string) bool { return containsAny(id, "podzol", "spruce", "mangrove") }, rgb(129, 86, 49)},
	{func(id string) bool { return strings.Contains(id, "bamboo") }, rgb(229, 229, 51)},
	{func(id string) bool { return containsAny(id, "calcite", "cherry") }, rgb(209, 177, 161)},
}

// MapColor returns an approximate top-down map colour for b.
// The second result is false for blocks with no known colour.
func (b Block) MapColor() (color.RGBA, bool) {
	id := string(b)
	for _, rule := range colorRules {
		if rule.match(id) {
			return rule.color, true
		}
	}

	return color.RGBA{}, false
}
