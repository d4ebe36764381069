package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

func TestHandleFoundCityRecordsOriginalCapitalOnce(t *testing.T) {
	gs := NewGame(newTestOpts())
	settler1 := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(1), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 1, R: 1}, HP: 1, MaxHP: 1, MovesLeft: 2})

	_, err := handleFoundCity(gs, ids.PlayerId(0), FoundCity{Settler: ids.UnitId(settler1), Name: "Capital"})
	require.NoError(t, err)
	require.Len(t, gs.Victory.OriginalCapitals, 1)
	assert.Equal(t, ids.PlayerId(0), gs.Victory.OriginalCapitals[0].OriginalOwner)
	require.NotNil(t, gs.Victory.OriginalCapitals[0].CurrentOwner)
	assert.Equal(t, ids.PlayerId(0), *gs.Victory.OriginalCapitals[0].CurrentOwner)

	settler2 := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(1), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 5, R: 5}, HP: 1, MaxHP: 1, MovesLeft: 2})
	_, err = handleFoundCity(gs, ids.PlayerId(0), FoundCity{Settler: ids.UnitId(settler2), Name: "Second City"})
	require.NoError(t, err)
	assert.Len(t, gs.Victory.OriginalCapitals, 1, "a player's second city must not register as another original capital")
}

func TestCheckDominationRequiresAllCapitalsUnderOneOwner(t *testing.T) {
	gs := NewGame(newTestOpts())
	ownerA, ownerB := ids.PlayerId(0), ids.PlayerId(1)
	gs.Victory.OriginalCapitals = []OriginalCapital{
		{OriginalOwner: ownerA, CurrentOwner: &ownerA},
		{OriginalOwner: ownerB, CurrentOwner: &ownerB},
	}

	var events []Event
	assert.False(t, checkDomination(gs, &events), "no single player holds every capital yet")
	assert.False(t, gs.Victory.GameEnded)

	captured := ownerA
	gs.Victory.OriginalCapitals[1].CurrentOwner = &captured

	events = nil
	assert.True(t, checkDomination(gs, &events), "ownerA now holds both original capitals")
	require.NotNil(t, gs.Victory.Winner)
	assert.Equal(t, ownerA, *gs.Victory.Winner)
	assert.Equal(t, "domination", gs.Victory.Reason)
}

func TestCheckDominationFalseWithNoCapitalsFounded(t *testing.T) {
	gs := NewGame(newTestOpts())
	var events []Event
	assert.False(t, checkDomination(gs, &events))
}
