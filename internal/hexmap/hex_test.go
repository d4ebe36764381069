package hexmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceAndNeighbors(t *testing.T) {
	center := Hex{Q: 3, R: 3}
	neighbors := Neighbors(center)
	assert.Len(t, neighbors, 6)
	for _, n := range neighbors {
		assert.Equal(t, 1, Distance(center, n))
		assert.True(t, IsNeighbor(center, n))
	}
	assert.Equal(t, 0, Distance(center, center))
}

func TestRingAndRadius(t *testing.T) {
	center := Hex{Q: 5, R: 5}
	ring1 := RingHexes(center, 1)
	assert.Len(t, ring1, 6)

	all := HexesInRadius(center, 2)
	assert.Len(t, all, 1+6+12)
}

func flatMap(width, height int, impassable map[int]bool) *Map {
	return NewMap(width, height, false, func(idx int) (int, bool) {
		if impassable[idx] {
			return 0, true
		}
		return 1, false
	})
}

func TestMovementRangeEmptyWhenSurroundedByImpassable(t *testing.T) {
	m := flatMap(5, 5, nil)
	start := Hex{Q: 2, R: 2}
	impassable := map[int]bool{}
	for _, n := range m.Neighbors(start) {
		impassable[m.Index(n)] = true
	}
	m = flatMap(5, 5, impassable)

	ctx := &PathContext{
		Map:       m,
		EnterCost: m.EnterCost,
		Occupied:  func(int) bool { return false },
		ZoC:       func(int) bool { return false },
	}
	rng := MovementRange(ctx, start, 3)
	require.Len(t, rng, 1)
	assert.Equal(t, 0, rng[m.Index(start)])
}

func TestShortestPathAvoidsOccupiedTiles(t *testing.T) {
	m := flatMap(3, 1, nil)
	occupied := map[int]bool{m.Index(Hex{Q: 1, R: 0}): true}
	ctx := &PathContext{
		Map:       m,
		EnterCost: m.EnterCost,
		Occupied:  func(i int) bool { return occupied[i] },
		ZoC:       func(int) bool { return false },
	}
	_, ok := ShortestPath(ctx, Hex{Q: 0, R: 0}, Hex{Q: 2, R: 0})
	assert.False(t, ok, "middle tile occupied and not the goal, so no path in a width-3 row")
}

func TestWrapNormalization(t *testing.T) {
	m := NewMap(4, 4, true, func(int) (int, bool) { return 1, false })
	h := m.NormalizeHex(Hex{Q: -1, R: 0})
	assert.Equal(t, int32(3), h.Q)
	assert.True(t, m.InBounds(Hex{Q: 5, R: 0}))
}
