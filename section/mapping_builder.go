package section

import (
	"slices"

	"github.com/arloliu/lodsnap/internal/dedup"
)

// MappingBuilder assembles a Mapping, giving each distinct entry one id.
//
// Entries are identified by their mapping string, so two entries that format
// identically share an id.
type MappingBuilder struct {
	tracker *dedup.Tracker
	entries []Entry
}

// NewMappingBuilder creates an empty builder.
func NewMappingBuilder() *MappingBuilder {
	return &MappingBuilder{tracker: dedup.NewTracker()}
}

// Add returns the id of e, appending it if it was not seen before.
func (b *MappingBuilder) Add(e Entry) (uint32, error) {
	e.Properties = normalizeProperties(slices.Clone(e.Properties))

	id, added, err := b.tracker.Track(e.String())
	if err != nil {
		return 0, err
	}

	if added {
		b.entries = append(b.entries, e)
	}

	return id, nil
}

// Len returns the number of distinct entries added so far.
func (b *MappingBuilder) Len() int {
	return len(b.entries)
}

// Collisions returns how many distinct entries shared a hash bucket with an
// earlier one. Colliding entries still get their own ids.
func (b *MappingBuilder) Collisions() int {
	return b.tracker.Collisions()
}

// Build returns the Mapping built so far. The builder can keep adding
// entries; later Builds include them.
func (b *MappingBuilder) Build() Mapping {
	return NewMapping(b.entries...)
}

// Reset clears the builder for reuse.
func (b *MappingBuilder) Reset() {
	b.tracker.Reset()
	b.entries = b.entries[:0]
}
