package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

func TestTickImprovementOrdersIncrementsFortifiedTurnsUpToCap(t *testing.T) {
	gs := NewGame(newTestOpts())
	unitID := gs.Units.Insert(Unit{
		TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0},
		HP: 10, MaxHP: 10, MovesLeft: 1, Orders: OrdersFortify{},
	})

	var events []Event
	for i := 0; i < fortifyTurnsCap+3; i++ {
		tickImprovementOrders(gs, ids.PlayerId(0), &events)
	}

	u, ok := gs.Units.Get(unitID)
	require.True(t, ok)
	assert.Equal(t, fortifyTurnsCap, u.FortifiedTurns, "FortifiedTurns must clamp at the cap, not grow unbounded")
}

func TestHandleMoveUnitResetsFortifiedTurns(t *testing.T) {
	gs := NewGame(newTestOpts())
	unitID := gs.Units.Insert(Unit{
		TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0},
		HP: 10, MaxHP: 10, MovesLeft: 1, Orders: OrdersFortify{}, FortifiedTurns: fortifyTurnsCap,
	})

	_, err := handleMoveUnit(gs, ids.PlayerId(0), MoveUnit{
		Unit: ids.UnitId(unitID), Path: []hexmap.Hex{{Q: 0, R: 0}, {Q: 1, R: 0}},
	})
	require.NoError(t, err)

	u, ok := gs.Units.Get(unitID)
	require.True(t, ok)
	assert.Equal(t, 0, u.FortifiedTurns, "moving must forfeit accumulated fortification")
}

func TestHandleFortifyPreservesFortifiedTurnsOnReissue(t *testing.T) {
	gs := NewGame(newTestOpts())
	unitID := gs.Units.Insert(Unit{
		TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0},
		HP: 10, MaxHP: 10, MovesLeft: 1, Orders: OrdersFortify{}, FortifiedTurns: 1,
	})

	_, err := handleFortify(gs, ids.PlayerId(0), Fortify{Unit: ids.UnitId(unitID)})
	require.NoError(t, err)

	u, ok := gs.Units.Get(unitID)
	require.True(t, ok)
	assert.Equal(t, 1, u.FortifiedTurns, "re-issuing fortify while already fortified must not reset progress")
}
