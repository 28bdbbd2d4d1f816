// Package intern deduplicates the highly repetitive strings found in mapping
// tables (biome names, block identifiers, block state keys and values).
//
// A Set hands out one canonical copy of each distinct string so that identical
// substrings parsed from many sections share a single backing allocation.
// State keys and values are mostly a handful of bytes long and repeat in
// nearly every entry, so every string is pooled regardless of length.
package intern

import (
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/arloliu/lodsnap/internal/hash"
)

// shardCount must be a power of two.
const shardCount = 32

type shard struct {
	mu     sync.RWMutex
	values map[string]string
}

// Set is a concurrent set of canonical strings.
//
// Lookups take a shard read lock; only a miss escalates to the write lock, which
// re-checks for a racing insert before adding. The zero Set is ready to use and
// must not be copied after first use.
type Set struct {
	shards [shardCount]shard
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Intern returns the canonical copy of v.
//
// The returned string never aliases v's memory, so v may come from a buffer
// that is reused afterwards.
func (s *Set) Intern(v string) string {
	sh := &s.shards[hash.Shard(v, shardCount)]

	sh.mu.RLock()
	canonical, ok := sh.values[v]
	sh.mu.RUnlock()
	if ok {
		return canonical
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if canonical, ok := sh.values[v]; ok {
		return canonical
	}

	if sh.values == nil {
		sh.values = make(map[string]string)
	}

	canonical = strings.Clone(v)
	sh.values[canonical] = canonical

	return canonical
}

// Contains reports whether v is held by the pool.
func (s *Set) Contains(v string) bool {
	sh := &s.shards[hash.Shard(v, shardCount)]
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	_, ok := sh.values[v]

	return ok
}

// Len returns the number of pooled strings.
func (s *Set) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.values)
		sh.mu.RUnlock()
	}

	return n
}

// All returns the pooled strings in sorted order.
func (s *Set) All() iter.Seq[string] {
	var all []string
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for v := range sh.values {
			all = append(all, v)
		}
		sh.mu.RUnlock()
	}
	slices.Sort(all)

	return slices.Values(all)
}

// Reset drops every pooled string. Strings handed out earlier stay valid.
func (s *Set) Reset() {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		sh.values = nil
		sh.mu.Unlock()
	}
}
