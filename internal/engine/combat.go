package engine

import (
	gameerrors "github.com/backbay/imperium/internal/errors"
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

// warWearinessPerRound is the fixed war-weariness cost to both combatants'
// owners after a single combat resolution (§4.D combat).
const warWearinessPerRound = 2

// fortifyTurnsCap is the number of turns spent fortified before the bonus
// maxes out (§8 testable property 15: fortified_turns>=2 reaches the top
// tier).
const fortifyTurnsCap = 2

// fortifyStrengthMult maps fortified_turns (0..=2) to its defense
// multiplier: unfortified, fortifying, and dug in.
var fortifyStrengthMult = [fortifyTurnsCap + 1]float64{1.0, 1.25, 1.50}

func handleAttackUnit(gs *GameState, actor ids.PlayerId, c AttackUnit) ([]Event, error) {
	attacker, ok := findUnit(gs, c.Attacker)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "attacker")
	}
	if attacker.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "")
	}
	defender, ok := findUnit(gs, c.Target)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "target")
	}
	if defender.Owner == actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "cannot attack own unit")
	}
	if !hexmap.IsNeighbor(attacker.Position, defender.Position) {
		return nil, gameerrors.NewGameError(gameerrors.ErrInvalidPath, "target not adjacent")
	}
	if attacker.MovesLeft <= 0 {
		return nil, gameerrors.NewGameError(gameerrors.ErrInvalidPath, "no moves left to attack")
	}

	atkDef, ok := gs.Catalog.UnitTypes[attacker.TypeID]
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "attacker type")
	}
	defDef, ok := gs.Catalog.UnitTypes[defender.TypeID]
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "defender type")
	}

	var events []Event
	if !gs.Diplomacy.AtWarBetween(actor, defender.Owner) {
		gs.Diplomacy.SetAtWar(actor, defender.Owner, true)
		events = append(events, WarDeclared{Declarer: actor, Target: defender.Owner})
		gs.Chronicle.Append(gs.Turn, ChronicleWarDeclared, actor, ptrPlayer(defender.Owner), "")
	}
	events = append(events, CombatStarted{
		Attacker: c.Attacker, Defender: c.Target,
		AttackerOwner: actor, DefenderOwner: defender.Owner,
	})

	attackStrength := float64(atkDef.Attack) * VeteranStrengthMult[clampVeteran(attacker.VeteranLevel)]

	defenseStrength := float64(defDef.Defense) * VeteranStrengthMult[clampVeteran(defender.VeteranLevel)]
	if tile := gs.TileAt(defender.Position); tile != nil {
		if terrainDef, ok := gs.Catalog.Terrains[tile.Terrain]; ok {
			defenseStrength *= 1.0 + terrainDef.DefenseBonus
		}
	}
	if _, fortified := defender.Orders.(OrdersFortify); fortified {
		defenseStrength *= fortifyStrengthMult[clampFortifyTurns(defender.FortifiedTurns)]
	}

	result := AttackerWins
	if defenseStrength >= attackStrength {
		result = DefenderWins
	}
	events = append(events, CombatRound{Attacker: c.Attacker, Defender: c.Target, Result: result})

	attacker.MovesLeft--

	if result == AttackerWins {
		gs.Units.Remove(uint64(c.Target))
		events = append(events, UnitDied{Unit: c.Target, Owner: defender.Owner})
		attacker.Experience++
		if lvl, promoted := maybePromote(&attacker); promoted {
			events = append(events, UnitPromoted{Unit: c.Attacker, VeteranLevel: lvl})
		}
		attacker.Position = defender.Position
		gs.Units.Set(uint64(c.Attacker), attacker)
	} else {
		gs.Units.Remove(uint64(c.Attacker))
		events = append(events, UnitDied{Unit: c.Attacker, Owner: actor})
		defender.Experience++
		if lvl, promoted := maybePromote(&defender); promoted {
			events = append(events, UnitPromoted{Unit: c.Target, VeteranLevel: lvl})
		}
		gs.Units.Set(uint64(c.Target), defender)
	}

	if p, ok := gs.Players[actor]; ok {
		p.WarWeariness += warWearinessPerRound
	}
	if p, ok := gs.Players[defender.Owner]; ok {
		p.WarWeariness += warWearinessPerRound
	}

	events = append(events, CombatEnded{
		Attacker: c.Attacker, Defender: c.Target,
		AttackerOwner: actor, DefenderOwner: defender.Owner,
		Result: result,
	})
	recomputeVisibility(gs, actor, &events)
	return events, nil
}

func clampFortifyTurns(turns int) int {
	if turns < 0 {
		return 0
	}
	if turns > fortifyTurnsCap {
		return fortifyTurnsCap
	}
	return turns
}

func clampVeteran(level int) int {
	if level < 0 {
		return 0
	}
	if level > 3 {
		return 3
	}
	return level
}

// promotionThresholds is the experience needed to reach each veteran level
// past 0 (§3 Unit invariant: veteran_level in 0..=3).
var promotionThresholds = [3]int{2, 5, 9}

func maybePromote(u *Unit) (int, bool) {
	if u.VeteranLevel >= 3 {
		return u.VeteranLevel, false
	}
	threshold := promotionThresholds[u.VeteranLevel]
	if u.Experience >= threshold {
		u.VeteranLevel++
		return u.VeteranLevel, true
	}
	return u.VeteranLevel, false
}

func ptrPlayer(p ids.PlayerId) *ids.PlayerId { return &p }
