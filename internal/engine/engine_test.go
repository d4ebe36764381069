package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/rules"
)

func newTestOpts() NewGameOptions {
	return NewGameOptions{
		Catalog: rules.DefaultCatalog(), MapWidth: 8, MapHeight: 8, HorizWrap: true,
		NumPlayers: 2, PlayerNames: []string{"Atlas", "Borea"}, Seed: 11,
		TurnLimit: 100, CultureThresholdPct: 50, DefaultTerrain: ids.TerrainId(1),
	}
}

func TestApplyCommandCheckedRejectsOutOfTurnActor(t *testing.T) {
	gs := NewGame(newTestOpts())
	e := NewEngine(gs)

	_, err := e.ApplyCommandChecked(ids.PlayerId(1), DeclareWar{Target: ids.PlayerId(0)})
	require.Error(t, err)
	assert.Equal(t, gs, e.State(), "a rejected command must leave the live state untouched")
}

func TestApplyCommandCheckedDiscardsScratchOnError(t *testing.T) {
	gs := NewGame(newTestOpts())
	e := NewEngine(gs)

	before := e.State().Turn
	_, err := e.ApplyCommandChecked(ids.PlayerId(0), MoveUnit{
		Unit: ids.UnitId(999), Path: []hexmap.Hex{{Q: 0, R: 0}, {Q: 1, R: 0}},
	})
	require.Error(t, err)
	assert.Equal(t, before, e.State().Turn, "a failed command must not advance any state")
}

func TestForkCommitAtomicBatch(t *testing.T) {
	gs := NewGame(newTestOpts())
	e := NewEngine(gs)
	live := e.State()

	fork := e.Fork()
	_, err := fork.ApplyCommandChecked(ids.PlayerId(0), EndTurn{})
	require.NoError(t, err)

	assert.Same(t, live, e.State(), "the live engine must be untouched until Commit")

	e.Commit(fork)
	assert.Equal(t, ids.PlayerId(1), e.State().CurrentPlayer())
}

func TestForkCommitDiscardsOnPartialFailure(t *testing.T) {
	gs := NewGame(newTestOpts())
	e := NewEngine(gs)
	beforeTurn := e.State().Turn

	fork := e.Fork()
	_, err1 := fork.ApplyCommandChecked(ids.PlayerId(0), EndTurn{})
	require.NoError(t, err1)
	_, err2 := fork.ApplyCommandChecked(ids.PlayerId(1), MoveUnit{
		Unit: ids.UnitId(12345), Path: []hexmap.Hex{{Q: 0, R: 0}, {Q: 1, R: 0}},
	})
	require.Error(t, err2)

	// Caller never commits on a partial-batch failure, so the live engine
	// must still reflect nothing from the fork's first, successful command.
	assert.Equal(t, beforeTurn, e.State().Turn)
	assert.Equal(t, ids.PlayerId(0), e.State().CurrentPlayer())
}

func TestNewGameIsDeterministic(t *testing.T) {
	opts := newTestOpts()
	gs1 := NewGame(opts)
	gs2 := NewGame(opts)

	assert.Equal(t, gs1.Turn, gs2.Turn)
	assert.Equal(t, gs1.PlayerOrder, gs2.PlayerOrder)
	assert.Equal(t, gs1.Rng.State(), gs2.Rng.State())
}

func TestCloneIsIndependent(t *testing.T) {
	gs := NewGame(newTestOpts())
	clone := gs.Clone()

	unitID := clone.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})

	_, ok := gs.Units.Get(unitID)
	assert.False(t, ok, "mutating a clone must never be visible on the original state")
}

func TestEndTurnAdvancesPlayerThenWrapsTurn(t *testing.T) {
	gs := NewGame(newTestOpts())
	e := NewEngine(gs)

	_, err := e.ApplyCommandChecked(ids.PlayerId(0), EndTurn{})
	require.NoError(t, err)
	assert.Equal(t, ids.PlayerId(1), e.State().CurrentPlayer())
	assert.Equal(t, 0, e.State().Turn)

	_, err = e.ApplyCommandChecked(ids.PlayerId(1), EndTurn{})
	require.NoError(t, err)
	assert.Equal(t, ids.PlayerId(0), e.State().CurrentPlayer())
	assert.Equal(t, 1, e.State().Turn, "turn counter increments once the player order wraps")
}
