package server

import (
	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

// RecipientsFor classifies event e per §4.I's fog-of-war routing table and
// returns the players who should see it. gs is the engine's post-commit
// state, used to resolve owners for events that only carry an entity id.
// For events whose owning entity no longer exists (UnitDied,
// TradeRoutePillaged), the event itself already carries the pre-apply
// owner, matching the spec's note about using a pre-apply owner map.
func RecipientsFor(gs *engine.GameState, e engine.Event, allPlayers []ids.PlayerId) []ids.PlayerId {
	switch ev := e.(type) {
	// Public: game flow.
	case engine.TurnStarted, engine.TurnEnded, engine.GameEnded,
		engine.WarDeclared, engine.PeaceDeclared, engine.CombatRound:
		return allPlayers

	// Party-private.
	case engine.RelationChanged:
		return []ids.PlayerId{ev.A, ev.B}
	case engine.CombatStarted:
		return []ids.PlayerId{ev.AttackerOwner, ev.DefenderOwner}
	case engine.CombatEnded:
		return []ids.PlayerId{ev.AttackerOwner, ev.DefenderOwner}
	case engine.TreatySigned:
		return []ids.PlayerId{ev.Treaty.PartyA, ev.Treaty.PartyB}
	case engine.TreatyCancelled:
		return []ids.PlayerId{ev.Treaty.PartyA, ev.Treaty.PartyB}

	// Owner-private: unit events.
	case engine.UnitDied:
		return []ids.PlayerId{ev.Owner}
	case engine.UnitMoved:
		return ownerOfUnit(gs, ev.Unit)
	case engine.MovementStopped:
		return ownerOfUnit(gs, ev.Unit)
	case engine.UnitUpdated:
		return ownerOfUnit(gs, ev.Unit)
	case engine.UnitPromoted:
		return ownerOfUnit(gs, ev.Unit)
	case engine.UnitCreated:
		return []ids.PlayerId{ev.Owner}
	case engine.OrdersCompleted:
		return ownerOfUnit(gs, ev.Unit)
	case engine.OrdersInterrupted:
		return ownerOfUnit(gs, ev.Unit)

	// Owner-private: city/production events.
	case engine.CityFounded:
		return []ids.PlayerId{ev.Owner}
	case engine.BordersExpanded:
		return ownerOfCity(gs, ev.City)
	case engine.CityGrew:
		return ownerOfCity(gs, ev.City)
	case engine.CityProduced:
		return ownerOfCity(gs, ev.City)

	// Improvement events: a matured improvement routes to the current tile
	// owner, a built one to the building unit's owner, a pillaged one to
	// the owner named on the event.
	case engine.ImprovementMatured:
		return ownerOfTile(gs, ev.Position)
	case engine.ImprovementBuilt:
		return ownerOfUnit(gs, ev.Unit)
	case engine.ImprovementPillaged:
		return []ids.PlayerId{ev.Owner}

	// Owner-private: trade events route to the route owner.
	case engine.TradeRoutePillaged:
		return []ids.PlayerId{ev.Owner}
	case engine.TradeRouteEstablished:
		return []ids.PlayerId{ev.Owner}
	case engine.TradeRouteCancelled:
		return []ids.PlayerId{ev.Owner}

	// Owner-private: research/policy/government/economy.
	case engine.SupplyUpdated:
		return []ids.PlayerId{ev.Player}
	case engine.TechResearched:
		return []ids.PlayerId{ev.Player}
	case engine.PolicyAdopted:
		return []ids.PlayerId{ev.Player}
	case engine.GovernmentReformed:
		return []ids.PlayerId{ev.Player}

	// Visibility: attach to the acting player only.
	case engine.TileRevealed:
		return []ids.PlayerId{ev.Player}
	case engine.TileHidden:
		return []ids.PlayerId{ev.Player}

	// Chronicle: filtered by its own relevance predicate, per player.
	case engine.ChronicleRecorded:
		var out []ids.PlayerId
		for _, p := range allPlayers {
			if engine.RelevantTo(ev.Entry, p) {
				out = append(out, p)
			}
		}
		return out

	default:
		return allPlayers
	}
}

func ownerOfUnit(gs *engine.GameState, id ids.UnitId) []ids.PlayerId {
	u, ok := gs.Units.Get(uint64(id))
	if !ok {
		return nil
	}
	return []ids.PlayerId{u.Owner}
}

func ownerOfCity(gs *engine.GameState, id ids.CityId) []ids.PlayerId {
	c, ok := gs.Cities.Get(uint64(id))
	if !ok {
		return nil
	}
	return []ids.PlayerId{c.Owner}
}

func ownerOfTile(gs *engine.GameState, h hexmap.Hex) []ids.PlayerId {
	t := gs.TileAt(h)
	if t == nil || t.Owner == nil {
		return nil
	}
	return []ids.PlayerId{*t.Owner}
}

// SpottedUnit/SpottedCity are redacted views of an enemy entity a player can
// currently see — enemy units carry no intent (§4.I fog: "orders=None,
// automated=false, moves_left reset to base").
type SpottedUnit struct {
	ID        uint64
	TypeID    ids.UnitTypeId
	Owner     ids.PlayerId
	Q, R      int32
	HP        int
	MaxHP     int
	MovesLeft int
}

type SpottedCity struct {
	ID         uint64
	Name       string
	Owner      ids.PlayerId
	Q, R       int32
	Population int
}

// VisibilityDiff is what changed in a player's view of enemy entities and
// tiles between two ticks, used to emit synthesized UnitSpotted/UnitHidden/
// CitySpotted/CityHidden/TileSpotted events (§4.I).
type VisibilityDiff struct {
	UnitsSpotted []SpottedUnit
	UnitsHidden  []uint64
	CitiesSpotted []SpottedCity
	CitiesHidden  []uint64
}

func baseMovesLeft(gs *engine.GameState, u engine.Unit) int {
	def, ok := gs.Catalog.UnitTypes[u.TypeID]
	if !ok {
		return 0
	}
	return def.Moves
}

// visibleEnemies computes, for viewer p, the set of enemy unit/city ids
// currently inside p's visible bitset.
func visibleEnemies(gs *engine.GameState, p ids.PlayerId) (units map[uint64]SpottedUnit, cities map[uint64]SpottedCity) {
	units = map[uint64]SpottedUnit{}
	cities = map[uint64]SpottedCity{}
	vis, ok := gs.Visibility[p]
	if !ok {
		return units, cities
	}
	gs.Units.IterOrdered(func(id uint64, u engine.Unit) {
		if u.Owner == p {
			return
		}
		if !gs.Map.InBounds(u.Position) {
			return
		}
		idx := gs.Map.Index(u.Position)
		if idx >= len(vis.Visible) || !vis.Visible[idx] {
			return
		}
		units[id] = SpottedUnit{ID: id, TypeID: u.TypeID, Owner: u.Owner, Q: u.Position.Q, R: u.Position.R, HP: u.HP, MaxHP: u.MaxHP, MovesLeft: baseMovesLeft(gs, u)}
	})
	gs.Cities.IterOrdered(func(id uint64, c engine.City) {
		if c.Owner == p {
			return
		}
		if !gs.Map.InBounds(c.Position) {
			return
		}
		idx := gs.Map.Index(c.Position)
		if idx >= len(vis.Visible) || !vis.Visible[idx] {
			return
		}
		cities[id] = SpottedCity{ID: id, Name: c.Name, Owner: c.Owner, Q: c.Position.Q, R: c.Position.R, Population: c.Population}
	})
	return units, cities
}

// DiffVisibility compares the previous tick's visible-enemy sets against
// the current state for player p, producing the spotted/hidden synthesis
// the server appends to that player's StateDelta (§4.I).
func DiffVisibility(gs *engine.GameState, p ids.PlayerId, prevUnits map[uint64]SpottedUnit, prevCities map[uint64]SpottedCity) (VisibilityDiff, map[uint64]SpottedUnit, map[uint64]SpottedCity) {
	curUnits, curCities := visibleEnemies(gs, p)
	var diff VisibilityDiff

	for id, su := range curUnits {
		if _, was := prevUnits[id]; !was {
			diff.UnitsSpotted = append(diff.UnitsSpotted, su)
		}
	}
	for id := range prevUnits {
		if _, still := curUnits[id]; !still {
			diff.UnitsHidden = append(diff.UnitsHidden, id)
		}
	}
	for id, sc := range curCities {
		if _, was := prevCities[id]; !was {
			diff.CitiesSpotted = append(diff.CitiesSpotted, sc)
		}
	}
	for id := range prevCities {
		if _, still := curCities[id]; !still {
			diff.CitiesHidden = append(diff.CitiesHidden, id)
		}
	}
	return diff, curUnits, curCities
}
