// Package hash provides the xxHash64 helpers used to spread interned strings
// across shards and to bucket mapping entries.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Shard maps data onto one of n shards. n must be a power of two.
func Shard(data string, n int) int {
	return int(ID(data) & uint64(n-1))
}
