package engine

import (
	gameerrors "github.com/backbay/imperium/internal/errors"
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

func handleFoundCity(gs *GameState, actor ids.PlayerId, c FoundCity) ([]Event, error) {
	settler, ok := findUnit(gs, c.Settler)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "")
	}
	if settler.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "")
	}
	def, ok := gs.Catalog.UnitTypes[settler.TypeID]
	if !ok || !def.CanFoundCity {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotFoundCity, "unit cannot found cities")
	}
	tile := gs.TileAt(settler.Position)
	if tile == nil {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotFoundCity, "off map")
	}
	if terrainDef, ok := gs.Catalog.Terrains[tile.Terrain]; !ok || terrainDef.Impassable {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotFoundCity, "impassable terrain")
	}
	if tile.CityID != nil {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotFoundCity, "tile already has a city")
	}

	ring := hexmap.HexesInRadius(settler.Position, 1)
	claimed := make([]int, 0, len(ring))
	for _, h := range ring {
		if gs.Map.InBounds(h) {
			claimed = append(claimed, gs.Map.Index(h))
		}
	}

	city := City{
		Name:         c.Name,
		Owner:        actor,
		Position:     settler.Position,
		Population:   1,
		Buildings:    map[ids.BuildingId]struct{}{},
		ClaimedTiles: claimed,
		WorkedTiles:  []int{gs.Map.Index(settler.Position)},
	}
	cityID := gs.Cities.Insert(city)

	if !hasOriginalCapital(gs, actor) {
		owner := actor
		id := cityID
		gs.Victory.OriginalCapitals = append(gs.Victory.OriginalCapitals, OriginalCapital{
			OriginalOwner: actor, Position: settler.Position, CityID: &id, CurrentOwner: &owner,
		})
	}

	for _, idx := range claimed {
		t := &gs.Tiles[idx]
		t.Owner = ptrPlayer(actor)
	}
	selfTile := gs.TileAt(settler.Position)
	selfTile.SetCity(cityID, actor)

	gs.Units.Remove(uint64(c.Settler))

	events := []Event{
		CityFounded{City: ids.CityId(cityID), Owner: actor, Position: settler.Position, Name: c.Name},
		BordersExpanded{City: ids.CityId(cityID), NewTiles: claimed},
	}
	gs.Chronicle.Append(gs.Turn, ChronicleCityFounded, actor, nil, c.Name)
	recomputeVisibility(gs, actor, &events)
	return events, nil
}

func findCity(gs *GameState, id ids.CityId) (City, bool) {
	return gs.Cities.Get(uint64(id))
}

// hasOriginalCapital reports whether owner already founded their capital
// (§4.D victory: domination tracks each player's first city, not every
// city they ever found).
func hasOriginalCapital(gs *GameState, owner ids.PlayerId) bool {
	for _, cap := range gs.Victory.OriginalCapitals {
		if cap.OriginalOwner == owner {
			return true
		}
	}
	return false
}

func handleSetProduction(gs *GameState, actor ids.PlayerId, c SetProduction) ([]Event, error) {
	city, ok := findCity(gs, c.City)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownCity, "")
	}
	if city.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "not your city")
	}
	if c.Item.UnitType != nil {
		if _, ok := gs.Catalog.UnitTypes[*c.Item.UnitType]; !ok {
			return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "unit type")
		}
	}
	if c.Item.Building != nil {
		if _, ok := gs.Catalog.Buildings[*c.Item.Building]; !ok {
			return nil, gameerrors.NewGameError(gameerrors.ErrUnknownCity, "building")
		}
	}
	item := c.Item
	city.Producing = &item
	gs.Cities.Set(uint64(c.City), city)
	return nil, nil
}

// BuyProduction is accepted and validated but intentionally a no-op: no
// gold-to-production conversion rate has been decided on yet.
func handleBuyProduction(gs *GameState, actor ids.PlayerId, c BuyProduction) ([]Event, error) {
	city, ok := findCity(gs, c.City)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownCity, "")
	}
	if city.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "not your city")
	}
	return nil, nil
}

// AssignCitizen/UnassignCitizen are accepted and validated but intentionally
// no-ops: worked-tile reassignment is driven entirely by the world tick's
// automatic citizen placement today.
func handleAssignCitizen(gs *GameState, actor ids.PlayerId, c AssignCitizen) ([]Event, error) {
	city, ok := findCity(gs, c.City)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownCity, "")
	}
	if city.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "not your city")
	}
	return nil, nil
}

func handleUnassignCitizen(gs *GameState, actor ids.PlayerId, c UnassignCitizen) ([]Event, error) {
	city, ok := findCity(gs, c.City)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownCity, "")
	}
	if city.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "not your city")
	}
	return nil, nil
}
