package intern

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

const longBlock = "minecraft:polished_blackstone_brick_stairs"

func TestSet_Intern(t *testing.T) {
	s := NewSet()

	a := s.Intern(string([]byte(longBlock)))
	b := s.Intern(string([]byte(longBlock)))

	require.Equal(t, longBlock, a)
	require.Equal(t, a, b)
	require.Same(t, unsafe.StringData(a), unsafe.StringData(b))
	require.Equal(t, 1, s.Len())
	require.True(t, s.Contains(longBlock))
}

func TestSet_InternsShortStrings(t *testing.T) {
	s := NewSet()

	for _, v := range []string{"y", "axis", "false", "minecraft:stone"} {
		a := s.Intern(string([]byte(v)))
		b := s.Intern(string([]byte(v)))

		require.Equal(t, v, a)
		require.Same(t, unsafe.StringData(a), unsafe.StringData(b))
		require.True(t, s.Contains(v))
	}
	require.Equal(t, 4, s.Len())

	empty := s.Intern("")
	require.Empty(t, empty)
	require.Equal(t, 5, s.Len())
}

func TestSet_DoesNotAliasInput(t *testing.T) {
	s := NewSet()

	buf := []byte(longBlock)
	got := s.Intern(unsafe.String(&buf[0], len(buf)))
	buf[0] = 'X'

	require.Equal(t, longBlock, got)
}

func TestSet_Reset(t *testing.T) {
	s := NewSet()
	before := s.Intern(longBlock)
	s.Reset()

	require.Zero(t, s.Len())
	require.Equal(t, longBlock, before)

	after := s.Intern(longBlock)
	require.Equal(t, before, after)
	require.Equal(t, 1, s.Len())
}

func TestSet_All(t *testing.T) {
	s := NewSet()
	s.Intern("minecraft:zzzzzzzzzzzzzzzzzzzzzzz")
	s.Intern("minecraft:aaaaaaaaaaaaaaaaaaaaaaa")
	s.Intern("short")

	require.Equal(t, []string{
		"minecraft:aaaaaaaaaaaaaaaaaaaaaaa",
		"minecraft:zzzzzzzzzzzzzzzzzzzzzzz",
		"short",
	}, slices.Collect(s.All()))
}

func TestSet_Concurrent(t *testing.T) {
	s := NewSet()
	const goroutines = 16
	const distinct = 200

	results := make([][]string, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			out := make([]string, distinct)
			for i := 0; i < distinct; i++ {
				out[i] = s.Intern(fmt.Sprintf("minecraft:concurrent_block_number_%04d", i))
			}
			results[g] = out
		}(g)
	}
	wg.Wait()

	require.Equal(t, distinct, s.Len())
	for g := 1; g < goroutines; g++ {
		for i := 0; i < distinct; i++ {
			require.Same(t, unsafe.StringData(results[0][i]), unsafe.StringData(results[g][i]))
		}
	}
}

func TestPool(t *testing.T) {
	p := NewPool()
	p.Biomes.Intern("minecraft:snowy_taiga_mountains_long")
	p.Blocks.Intern(longBlock)
	p.Blocks.Intern(longBlock)
	p.StateKeys.Intern("waterlogged_is_a_long_state_key")
	p.StateValues.Intern("short")

	stats := p.Stats()
	require.Equal(t, Stats{Biomes: 1, Blocks: 1, StateKeys: 1, StateValues: 1}, stats)
	require.Equal(t, "biomes: 1, blocks: 1, state keys: 1, state values: 1", stats.String())

	p.Reset()
	require.Equal(t, Stats{}, p.Stats())
}

func TestDefault(t *testing.T) {
	require.Same(t, Default(), Default())
}
