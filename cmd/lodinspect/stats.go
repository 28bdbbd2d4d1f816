package main

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/arloliu/lodsnap/format"
	"github.com/arloliu/lodsnap/fulldata"
	"github.com/arloliu/lodsnap/section"
)

// BlockCount is the number of data points referring to one block.
type BlockCount struct {
	Block section.Block
	Count int
}

// Stats accumulates figures over the inspected sections.
type Stats struct {
	Sections int
	PerLevel map[format.DetailLevel]int

	MinCenterX, MaxCenterX int32
	MinCenterZ, MaxCenterZ int32

	Decoded      int
	Failed       int
	DataPoints   int
	AirPoints    int
	DanglingIDs  int
	Steps        map[format.WorldGenStep]int
	Blocks       map[section.Block]int
	MappingsSize int

	// entries collects the distinct mapping entries seen across sections.
	entries *section.MappingBuilder
}

// NewStats returns empty stats.
func NewStats() *Stats {
	return &Stats{
		PerLevel:   make(map[format.DetailLevel]int),
		MinCenterX: math.MaxInt32,
		MaxCenterX: math.MinInt32,
		MinCenterZ: math.MaxInt32,
		MaxCenterZ: math.MinInt32,
		Steps:      make(map[format.WorldGenStep]int),
		Blocks:     make(map[section.Block]int),
		entries:    section.NewMappingBuilder(),
	}
}

// AddSection records the position of s. Its payloads are not touched.
func (st *Stats) AddSection(s *fulldata.Section) {
	st.Sections++
	st.PerLevel[s.DetailLevel()]++

	x, z := s.Pos.CenterBlockX(), s.Pos.CenterBlockZ()
	st.MinCenterX = min(st.MinCenterX, x)
	st.MaxCenterX = max(st.MaxCenterX, x)
	st.MinCenterZ = min(st.MinCenterZ, z)
	st.MaxCenterZ = max(st.MaxCenterZ, z)
}

// AddDecoded records the payload contents of a fully decoded section.
func (st *Stats) AddDecoded(s *fulldata.Section) error {
	cols, err := s.Columns()
	if err != nil {
		return err
	}
	mapping, err := s.Mapping()
	if err != nil {
		return err
	}
	steps, err := s.WorldGenSteps()
	if err != nil {
		return err
	}

	for _, e := range mapping.All() {
		if _, err := st.entries.Add(e); err != nil {
			return err
		}
	}

	st.Decoded++
	st.MappingsSize += mapping.Len()

	for step := range steps.Values() {
		st.Steps[step]++
	}

	for col := range cols.Values() {
		for _, dp := range col {
			st.DataPoints++
			if int(dp.ID()) >= mapping.Len() {
				st.DanglingIDs++
				continue
			}

			entry := mapping.Lookup(dp)
			if entry.IsAir() {
				st.AirPoints++
				continue
			}
			st.Blocks[entry.Block]++
		}
	}

	return nil
}

// TopBlocks returns the n most frequent non-air blocks, most frequent first.
func (st *Stats) TopBlocks(n int) []BlockCount {
	counts := make([]BlockCount, 0, len(st.Blocks))
	for b, c := range st.Blocks {
		counts = append(counts, BlockCount{Block: b, Count: c})
	}

	slices.SortFunc(counts, func(a, b BlockCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Block, b.Block))
	})

	return counts[:min(n, len(counts))]
}

// Write prints the stats. Decode figures are only printed when at least one
// section was decoded or failed.
func (st *Stats) Write(w io.Writer, topBlocks int) {
	fmt.Fprintf(w, "sections: %d\n", st.Sections)
	if st.Sections == 0 {
		return
	}

	levels := slices.Sorted(maps.Keys(st.PerLevel))
	fmt.Fprintf(w, "detail levels: %s..%s\n", levels[0], levels[len(levels)-1])
	for _, l := range levels {
		fmt.Fprintf(w, "  %-10s %d\n", l.String()+":", st.PerLevel[l])
	}
	fmt.Fprintf(w, "center x: %d..%d\n", st.MinCenterX, st.MaxCenterX)
	fmt.Fprintf(w, "center z: %d..%d\n", st.MinCenterZ, st.MaxCenterZ)

	if st.Decoded == 0 && st.Failed == 0 {
		return
	}

	fmt.Fprintf(w, "decoded: %d, failed: %d\n", st.Decoded, st.Failed)
	fmt.Fprintf(w, "data points: %d (air: %d, dangling ids: %d)\n", st.DataPoints, st.AirPoints, st.DanglingIDs)
	if st.Decoded > 0 {
		fmt.Fprintf(w, "mapping entries per section: %.1f\n", float64(st.MappingsSize)/float64(st.Decoded))
		fmt.Fprintf(w, "distinct mapping entries: %d (hash collisions: %d)\n",
			st.entries.Len(), st.entries.Collisions())
	}

	if len(st.Steps) > 0 {
		fmt.Fprintln(w, "world generation steps:")
		for _, step := range slices.Sorted(maps.Keys(st.Steps)) {
			fmt.Fprintf(w, "  %-20s %d\n", step.String()+":", st.Steps[step])
		}
	}

	if top := st.TopBlocks(topBlocks); len(top) > 0 {
		fmt.Fprintln(w, "top blocks:")
		for _, bc := range top {
			fmt.Fprintf(w, "  %-40s %d\n", string(bc.Block)+":", bc.Count)
		}
	}
}
