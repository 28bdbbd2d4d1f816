package intern

import "fmt"

// Pool groups the four sets used when parsing mapping entries.
//
// A Pool is owned by whoever creates it. Default returns a process-scoped Pool
// whose lifetime is that of the process unless it is explicitly Reset.
type Pool struct {
	Biomes      Set
	Blocks      Set
	StateKeys   Set
	StateValues Set
}

// Stats reports how many strings each set of a Pool holds.
type Stats struct {
	Biomes      int
	Blocks      int
	StateKeys   int
	StateValues int
}

func (s Stats) String() string {
	return fmt.Sprintf("biomes: %d, blocks: %d, state keys: %d, state values: %d",
		s.Biomes, s.Blocks, s.StateKeys, s.StateValues)
}

var defaultPool = NewPool()

// NewPool creates an empty Pool.
func NewPool() *Pool {
	return &Pool{}
}

// Default returns the process-scoped Pool.
func Default() *Pool {
	return defaultPool
}

// Stats returns the current set sizes.
func (p *Pool) Stats() Stats {
	return Stats{
		Biomes:      p.Biomes.Len(),
		Blocks:      p.Blocks.Len(),
		StateKeys:   p.StateKeys.Len(),
		StateValues: p.StateValues.Len(),
	}
}

// Reset empties all four sets. Strings already handed out stay valid; later
// calls simply stop sharing storage with them.
func (p *Pool) Reset() {
	p.Biomes.Reset()
	p.Blocks.Reset()
	p.StateKeys.Reset()
	p.StateValues.Reset()
}
