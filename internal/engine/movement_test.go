package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

func TestHandleMoveUnitRejectsWrongOwner(t *testing.T) {
	gs := NewGame(newTestOpts())
	unitID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(1), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})

	_, err := handleMoveUnit(gs, ids.PlayerId(0), MoveUnit{
		Unit: ids.UnitId(unitID), Path: []hexmap.Hex{{Q: 0, R: 0}, {Q: 1, R: 0}},
	})
	require.Error(t, err)
}

func TestHandleMoveUnitRejectsPathNotStartingAtUnit(t *testing.T) {
	gs := NewGame(newTestOpts())
	unitID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})

	_, err := handleMoveUnit(gs, ids.PlayerId(0), MoveUnit{
		Unit: ids.UnitId(unitID), Path: []hexmap.Hex{{Q: 5, R: 5}, {Q: 6, R: 5}},
	})
	require.Error(t, err)
}

func TestHandleMoveUnitSpendsMovementBudget(t *testing.T) {
	gs := NewGame(newTestOpts())
	unitID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})

	events, err := handleMoveUnit(gs, ids.PlayerId(0), MoveUnit{
		Unit: ids.UnitId(unitID), Path: []hexmap.Hex{{Q: 0, R: 0}, {Q: 1, R: 0}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)

	u, ok := gs.Units.Get(unitID)
	require.True(t, ok)
	assert.Equal(t, hexmap.Hex{Q: 1, R: 0}, u.Position)
	assert.Equal(t, 0, u.MovesLeft, "a 1-move warrior entering a 1-cost plains tile spends its whole budget")
}

func TestHandleMoveUnitStopsWhenMovesExhausted(t *testing.T) {
	gs := NewGame(newTestOpts())
	unitID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})

	events, err := handleMoveUnit(gs, ids.PlayerId(0), MoveUnit{
		Unit: ids.UnitId(unitID),
		Path: []hexmap.Hex{{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 2, R: 0}, {Q: 3, R: 0}},
	})
	require.NoError(t, err)

	u, ok := gs.Units.Get(unitID)
	require.True(t, ok)
	assert.Equal(t, hexmap.Hex{Q: 1, R: 0}, u.Position, "only one step fits in a one-point movement budget")

	var sawStop bool
	for _, ev := range events {
		if ms, ok := ev.(MovementStopped); ok {
			assert.Equal(t, StoppedMovesExhausted, ms.Reason)
			sawStop = true
		}
	}
	assert.True(t, sawStop)
}

func TestHandleFortifyRequiresCanFortifyUnitType(t *testing.T) {
	gs := NewGame(newTestOpts())
	// Settler (type 1) cannot fortify per the default catalog.
	settlerID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(1), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 1, MaxHP: 1, MovesLeft: 2})

	_, err := handleFortify(gs, ids.PlayerId(0), Fortify{Unit: ids.UnitId(settlerID)})
	require.Error(t, err)

	warriorID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 1, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})
	events, err := handleFortify(gs, ids.PlayerId(0), Fortify{Unit: ids.UnitId(warriorID)})
	require.NoError(t, err)
	require.Len(t, events, 1)

	u, ok := gs.Units.Get(warriorID)
	require.True(t, ok)
	_, fortified := u.Orders.(OrdersFortify)
	assert.True(t, fortified)
}
