package section

import (
	"fmt"
	"iter"
	"slices"

	"github.com/arloliu/lodsnap/intern"
	"github.com/arloliu/lodsnap/internal/mutf8"
	"github.com/arloliu/lodsnap/internal/pool"
)

// Mapping resolves DataPoint ids to entries. It is immutable once built.
type Mapping struct {
	entries []Entry
}

// NewMapping builds a Mapping whose id i resolves to entries[i].
func NewMapping(entries ...Entry) Mapping {
	return Mapping{entries: slices.Clone(entries)}
}

// DecodeMapping parses a Mapping payload, interning all strings in p.
// A nil p uses intern.Default().
//
// Any malformed entry fails the whole table; the error names the entry index.
func DecodeMapping(data []byte, p *intern.Pool) (Mapping, error) {
	if p == nil {
		p = intern.Default()
	}

	entries := make([]Entry, 0, mutf8.PeekCount(data))

	_, err := mutf8.DecodeTable(data, func(i int, s string) error {
		entry, err := ParseEntry(s, p)
		if err != nil {
			return fmt.Errorf("mapping entry %d: %w", i, err)
		}
		entries = append(entries, entry)

		return nil
	})
	if err != nil {
		return Mapping{}, err
	}

	return Mapping{entries: entries}, nil
}

// EncodeMapping writes the Mapping payload for m.
func EncodeMapping(m Mapping) ([]byte, error) {
	buf := pool.GetTableBuffer()
	defer pool.PutTableBuffer(buf)

	strs := make([]string, len(m.entries))
	for i, e := range m.entries {
		strs[i] = e.String()
	}

	out, err := mutf8.AppendTable(buf.B, strs)
	buf.B = out
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping: %w", err)
	}

	return buf.Detach(), nil
}

// Len returns the number of entries.
func (m Mapping) Len() int {
	return len(m.entries)
}

// Entry returns the entry with the given id.
//
// An id outside the table means the payload and its mapping disagree; it
// panics rather than returning a substitute entry.
func (m Mapping) Entry(id uint32) Entry {
	if uint64(id) >= uint64(len(m.entries)) {
		panic(fmt.Sprintf("section: mapping id %d out of range (len %d)", id, len(m.entries)))
	}

	return m.entries[id]
}

// Lookup returns the entry referenced by dp.
func (m Mapping) Lookup(dp DataPoint) Entry {
	return m.Entry(dp.ID())
}

// All iterates over entries in id order.
func (m Mapping) All() iter.Seq2[uint32, Entry] {
	return func(yield func(uint32, Entry) bool) {
		for i, e := range m.entries {
			if !yield(uint32(i), e) { //nolint: gosec
				return
			}
		}
	}
}

// Equal reports whether both mappings hold equal entries in the same order.
func (m Mapping) Equal(o Mapping) bool {
	return slices.EqualFunc(m.entries, o.entries, Entry.Equal)
}
