// Package lodsnap reads, decodes and rewrites the level-of-detail terrain
// snapshots that Distant Horizons stores in its FullData SQLite table.
//
// Every stored section covers a 64×64 grid of columns. Each column is a short
// list of packed data points whose ids resolve through a per-section mapping
// table to a biome, a block and its block state. The four payloads of a
// section are compressed independently and stay compressed until first used.
//
// # Core Features
//
//   - Lazy, cache-preserving payload decoding (lazy.Value)
//   - Fixed 64×64 grid with row-major indexing (section.Columns)
//   - Bit-packed data points and modified UTF-8 mapping tables
//   - Sharded string interning for biome, block and state names
//   - Parallel batch decoding under a soft time budget (scheduler)
//   - XZ/LZMA2 and uncompressed payloads
//
// # Basic Usage
//
// Opening a database and decoding every section within a frame budget:
//
//	store, err := lodsnap.Open(ctx, "DistantHorizons.sqlite", fulldata.WithReadOnly(true))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	sections, err := store.All(ctx)
//	decoder, _ := lodsnap.NewDecoder()
//	for {
//	    report := decoder.Run(ctx, sections)
//	    if report.Done() {
//	        break
//	    }
//	}
//
// Reading one column:
//
//	points, err := sections[0].Points(10, 20)
//	for dp, entry := range points {
//	    fmt.Println(dp.Height(), entry.Block)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers. For fine-grained control
// use the fulldata, section, lazy and scheduler packages directly.
package lodsnap

import (
	"context"

	"github.com/arloliu/lodsnap/format"
	"github.com/arloliu/lodsnap/fulldata"
	"github.com/arloliu/lodsnap/pos"
	"github.com/arloliu/lodsnap/scheduler"
)

// Decoder decodes batches of sections.
type Decoder = scheduler.Scheduler[*fulldata.Section]

// Open opens the Distant Horizons database at path.
//
// Parameters:
//   - ctx: Context for the initial connection check
//   - path: Path of the SQLite database file
//   - opts: Store options (see fulldata.Option)
//
// Returns:
//   - *fulldata.Store: The opened store
//   - error: An error if the database cannot be opened or reached
func Open(ctx context.Context, path string, opts ...fulldata.Option) (*fulldata.Store, error) {
	return fulldata.Open(ctx, path, opts...)
}

// NewDecoder creates a scheduler for sections.
//
// The default budget is scheduler.DefaultBudget and the default worker count
// is GOMAXPROCS.
func NewDecoder(opts ...scheduler.Option) (*Decoder, error) {
	return scheduler.New[*fulldata.Section](opts...)
}

// SectionPos packs a section position, rejecting out-of-range coordinates.
func SectionPos(level format.DetailLevel, x, z int32) (pos.SectionPos, error) {
	return pos.New(level, x, z)
}
