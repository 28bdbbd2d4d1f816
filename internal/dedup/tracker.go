// Package dedup assigns dense ids to distinct keys while a mapping table is built.
package dedup

import (
	"fmt"
	"math"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/internal/hash"
)

// MaxID is the largest id a data point can reference.
const MaxID = math.MaxUint32

// Tracker assigns ids to keys in first-seen order.
//
// Keys are indexed by their xxHash64. Distinct keys sharing a hash are kept in
// the same bucket and compared by value, so a collision never merges two
// different entries; it is only counted.
type Tracker struct {
	buckets    map[uint64][]uint32 // hash → ids of keys with that hash
	keys       []string            // id → key
	collisions int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		buckets: make(map[uint64][]uint32),
	}
}

// Track returns the id of key, assigning the next id if key is new.
//
// Returns:
//   - uint32: The dense id of key
//   - bool: true if key was added by this call
//   - error: errs.ErrInvalidDataPoint when the id space is exhausted
func (t *Tracker) Track(key string) (uint32, bool, error) {
	h := hash.ID(key)

	bucket := t.buckets[h]
	for _, id := range bucket {
		if t.keys[id] == key {
			return id, false, nil
		}
	}

	if uint64(len(t.keys)) > MaxID {
		return 0, false, fmt.Errorf("%w: more than %d distinct mapping entries", errs.ErrInvalidDataPoint, uint64(MaxID)+1)
	}

	if len(bucket) > 0 {
		t.collisions++
	}

	id := uint32(len(t.keys)) //nolint: gosec
	t.keys = append(t.keys, key)
	t.buckets[h] = append(bucket, id)

	return id, true, nil
}

// Lookup returns the id previously assigned to key.
func (t *Tracker) Lookup(key string) (uint32, bool) {
	for _, id := range t.buckets[hash.ID(key)] {
		if t.keys[id] == key {
			return id, true
		}
	}

	return 0, false
}

// Count returns the number of distinct keys.
func (t *Tracker) Count() int {
	return len(t.keys)
}

// Collisions returns how many distinct keys landed in an occupied hash bucket.
func (t *Tracker) Collisions() int {
	return t.collisions
}

// Reset clears the tracker, keeping allocated capacity for reuse.
func (t *Tracker) Reset() {
	clear(t.buckets)
	t.keys = t.keys[:0]
	t.collisions = 0
}
