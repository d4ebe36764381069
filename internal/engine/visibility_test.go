package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

func TestRecomputeVisibilityRevealsAroundAUnitOnly(t *testing.T) {
	gs := NewGame(newTestOpts())
	gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 4, R: 4}, HP: 10, MaxHP: 10, MovesLeft: 1})

	var events []Event
	recomputeVisibility(gs, ids.PlayerId(0), &events)

	vis := gs.Visibility[ids.PlayerId(0)]
	centerIdx := gs.Map.Index(hexmap.Hex{Q: 4, R: 4})
	assert.True(t, vis.Visible[centerIdx])
	assert.True(t, vis.Explored[centerIdx])

	// A tile far outside sightRadius must not be visible.
	farIdx := gs.Map.Index(hexmap.Hex{Q: 0, R: 0})
	assert.False(t, vis.Visible[farIdx])

	// Player 1 never acted, so its visibility must be untouched.
	otherVis := gs.Visibility[ids.PlayerId(1)]
	for _, v := range otherVis.Visible {
		assert.False(t, v)
	}
}

func TestRecomputeVisibilityExploredIsMonotonic(t *testing.T) {
	gs := NewGame(newTestOpts())
	unitID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 4, R: 4}, HP: 10, MaxHP: 10, MovesLeft: 1})

	var events []Event
	recomputeVisibility(gs, ids.PlayerId(0), &events)
	exploredIdx := gs.Map.Index(hexmap.Hex{Q: 4, R: 4})

	// Move the unit far away; the old tile drops out of Visible but must
	// stay in Explored (§8 invariant 3: explored only ever grows).
	u, _ := gs.Units.Get(unitID)
	u.Position = hexmap.Hex{Q: 0, R: 0}
	gs.Units.Set(unitID, u)

	events = nil
	recomputeVisibility(gs, ids.PlayerId(0), &events)

	vis := gs.Visibility[ids.PlayerId(0)]
	assert.False(t, vis.Visible[exploredIdx])
	assert.True(t, vis.Explored[exploredIdx], "a tile that leaves sight must remain explored")

	var sawHidden bool
	for _, ev := range events {
		if _, ok := ev.(TileHidden); ok {
			sawHidden = true
		}
	}
	assert.True(t, sawHidden)
}
