package section

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/intern"
)

const (
	// BlockStateSeparator separates the biome from the block in a mapping string.
	BlockStateSeparator = "_DH-BSW_"
	// StateSeparator separates the block from its state blob.
	StateSeparator = "_STATE_"

	// DefaultBiome is the biome of DefaultEntry.
	DefaultBiome = "minecraft:plains"
)

// StateProperty is one key/value pair of a block state.
type StateProperty struct {
	Key   string
	Value string
}

// Entry is one row of a Mapping: a block in a biome, with its state.
//
// Properties are sorted by key and keys are unique. Entries compare by biome,
// then block, then properties.
type Entry struct {
	Biome      string
	Block      Block
	Properties []StateProperty
}

// DefaultEntry returns air in the default biome.
func DefaultEntry() Entry {
	return Entry{Biome: DefaultBiome, Block: AirBlock}
}

// NewEntry builds an entry, sorting props by key. When a key repeats, the
// last value wins.
func NewEntry(biome string, block Block, props ...StateProperty) Entry {
	return Entry{Biome: biome, Block: block, Properties: normalizeProperties(slices.Clone(props))}
}

func normalizeProperties(props []StateProperty) []StateProperty {
	if len(props) == 0 {
		return nil
	}

	// Stable so that the last duplicate is the last of its run.
	slices.SortStableFunc(props, func(a, b StateProperty) int { return strings.Compare(a.Key, b.Key) })

	out := props[:0]
	for i, p := range props {
		if i+1 < len(props) && props[i+1].Key == p.Key {
			continue
		}
		out = append(out, p)
	}

	return out
}

// ParseEntry parses one mapping string of the form
//
//	<biome>_DH-BSW_<block>[_STATE_{key:value}{key:value}...]
//
// interning every component in p. A nil p uses intern.Default().
//
// Errors match errs.ErrCorruptStream and either errs.ErrMissingSeparator or
// errs.ErrMalformedState.
func ParseEntry(s string, p *intern.Pool) (Entry, error) {
	if p == nil {
		p = intern.Default()
	}

	biome, blockState, ok := strings.Cut(s, BlockStateSeparator)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %w: %q", errs.ErrCorruptStream, errs.ErrMissingSeparator, s)
	}

	block, stateBlob, _ := strings.Cut(blockState, StateSeparator)

	entry := Entry{
		Biome: p.Biomes.Intern(biome),
		Block: Block(p.Blocks.Intern(block)),
	}

	if stateBlob == "" {
		return entry, nil
	}

	// e.g. {distance:1}{persistent:false}{waterlogged:false}
	var props []StateProperty
	for group := range strings.SplitSeq(stateBlob, "}") {
		if group == "" {
			continue
		}

		body, ok := strings.CutPrefix(group, "{")
		if !ok {
			return Entry{}, fmt.Errorf("%w: %w: missing opening brace in %q", errs.ErrCorruptStream, errs.ErrMalformedState, s)
		}

		key, value, ok := strings.Cut(body, ":")
		if !ok {
			return Entry{}, fmt.Errorf("%w: %w: missing ':' in %q", errs.ErrCorruptStream, errs.ErrMalformedState, s)
		}

		props = append(props, StateProperty{
			Key:   p.StateKeys.Intern(key),
			Value: p.StateValues.Intern(value),
		})
	}
	entry.Properties = normalizeProperties(props)

	return entry, nil
}

// String formats e in the mapping string form accepted by ParseEntry.
func (e Entry) String() string {
	var sb strings.Builder
	sb.Grow(len(e.Biome) + len(BlockStateSeparator) + len(e.Block) + 16*len(e.Properties))

	sb.WriteString(e.Biome)
	sb.WriteString(BlockStateSeparator)
	sb.WriteString(string(e.Block))

	if len(e.Properties) > 0 {
		sb.WriteString(StateSeparator)
		for _, p := range e.Properties {
			sb.WriteByte('{')
			sb.WriteString(p.Key)
			sb.WriteByte(':')
			sb.WriteString(p.Value)
			sb.WriteByte('}')
		}
	}

	return sb.String()
}

// Property returns the value of the state property key.
func (e Entry) Property(key string) (string, bool) {
	i, ok := slices.BinarySearchFunc(e.Properties, key, func(p StateProperty, k string) int {
		return strings.Compare(p.Key, k)
	})
	if !ok {
		return "", false
	}

	return e.Properties[i].Value, true
}

// IsAir reports whether the entry's block is air.
func (e Entry) IsAir() bool {
	return e.Block.IsAir()
}

// CompareEntries orders entries by biome, block and then properties.
func CompareEntries(a, b Entry) int {
	return cmp.Or(
		strings.Compare(a.Biome, b.Biome),
		strings.Compare(string(a.Block), string(b.Block)),
		slices.CompareFunc(a.Properties, b.Properties, func(x, y StateProperty) int {
			return cmp.Or(strings.Compare(x.Key, y.Key), strings.Compare(x.Value, y.Value))
		}),
	)
}

// Equal reports whether e and o describe the same block.
func (e Entry) Equal(o Entry) bool {
	return CompareEntries(e, o) == 0
}
