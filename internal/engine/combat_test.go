package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

func TestHandleAttackUnitRejectsNonAdjacentTarget(t *testing.T) {
	gs := NewGame(newTestOpts())
	attackerID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})
	defenderID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(1), Position: hexmap.Hex{Q: 5, R: 5}, HP: 10, MaxHP: 10, MovesLeft: 1})

	_, err := handleAttackUnit(gs, ids.PlayerId(0), AttackUnit{Attacker: ids.UnitId(attackerID), Target: ids.UnitId(defenderID)})
	require.Error(t, err)
}

func TestHandleAttackUnitDeclaresWarIfNotAlreadyAtWar(t *testing.T) {
	gs := NewGame(newTestOpts())
	attackerID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(4), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})
	defenderID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(1), Position: hexmap.Hex{Q: 1, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})

	require.False(t, gs.Diplomacy.AtWarBetween(ids.PlayerId(0), ids.PlayerId(1)))

	events, err := handleAttackUnit(gs, ids.PlayerId(0), AttackUnit{Attacker: ids.UnitId(attackerID), Target: ids.UnitId(defenderID)})
	require.NoError(t, err)

	assert.True(t, gs.Diplomacy.AtWarBetween(ids.PlayerId(0), ids.PlayerId(1)))

	var sawWarDeclared, sawCombatEnded bool
	for _, ev := range events {
		switch ev.(type) {
		case WarDeclared:
			sawWarDeclared = true
		case CombatEnded:
			sawCombatEnded = true
		}
	}
	assert.True(t, sawWarDeclared)
	assert.True(t, sawCombatEnded)
}

func TestHandleAttackUnitStrongerAttackerWinsAndRelocates(t *testing.T) {
	gs := NewGame(newTestOpts())
	// Warrior (attack 2) attacking an unarmed worker (defense 0) on open
	// plains always wins: defenseStrength(0) < attackStrength(2).
	attackerID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})
	defenderID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(2), Owner: ids.PlayerId(1), Position: hexmap.Hex{Q: 1, R: 0}, HP: 1, MaxHP: 1, MovesLeft: 2})

	events, err := handleAttackUnit(gs, ids.PlayerId(0), AttackUnit{Attacker: ids.UnitId(attackerID), Target: ids.UnitId(defenderID)})
	require.NoError(t, err)

	_, stillThere := gs.Units.Get(defenderID)
	assert.False(t, stillThere, "the defeated defender must be removed")

	attacker, ok := gs.Units.Get(attackerID)
	require.True(t, ok)
	assert.Equal(t, hexmap.Hex{Q: 1, R: 0}, attacker.Position, "the winning attacker occupies the defender's tile")
	assert.Equal(t, 0, attacker.MovesLeft)

	var sawDied bool
	for _, ev := range events {
		if ud, ok := ev.(UnitDied); ok && ud.Unit == ids.UnitId(defenderID) {
			sawDied = true
		}
	}
	assert.True(t, sawDied)
}

func TestHandleAttackUnitFortifiedDefenderCanSurvive(t *testing.T) {
	gs := NewGame(newTestOpts())
	attackerID := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})
	defenderID := gs.Units.Insert(Unit{
		TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(1), Position: hexmap.Hex{Q: 1, R: 0},
		HP: 10, MaxHP: 10, MovesLeft: 1, Orders: OrdersFortify{},
	})

	// Warrior attack(2) vs a warrior fortified for 0 turns (defense 2*1.0=2):
	// equal strengths go to the defender.
	_, err := handleAttackUnit(gs, ids.PlayerId(0), AttackUnit{Attacker: ids.UnitId(attackerID), Target: ids.UnitId(defenderID)})
	require.NoError(t, err)

	_, attackerAlive := gs.Units.Get(attackerID)
	assert.False(t, attackerAlive, "the losing attacker must be removed")
	_, defenderAlive := gs.Units.Get(defenderID)
	assert.True(t, defenderAlive)
}

func TestHandleAttackUnitRejectsAttackingOwnUnit(t *testing.T) {
	gs := NewGame(newTestOpts())
	a := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 0, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})
	b := gs.Units.Insert(Unit{TypeID: ids.UnitTypeId(3), Owner: ids.PlayerId(0), Position: hexmap.Hex{Q: 1, R: 0}, HP: 10, MaxHP: 10, MovesLeft: 1})

	_, err := handleAttackUnit(gs, ids.PlayerId(0), AttackUnit{Attacker: ids.UnitId(a), Target: ids.UnitId(b)})
	require.Error(t, err)
}
