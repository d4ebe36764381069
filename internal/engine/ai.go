package engine

import "github.com/backbay/imperium/internal/ids"

// RunAITurn drives one AI-controlled player's turn deterministically and
// synchronously (§4.D AI, §9: no wall-clock, no goroutines, no randomness
// outside gs.Rng). It is intentionally simple: fortify idle military units,
// automate idle workers, and set research/production to the cheapest
// available option, then end the turn through the normal command path so
// it is bound by the same validation and event emission as a human player.
func RunAITurn(e *Engine, actor ids.PlayerId) ([]Event, error) {
	gs := e.state
	p, ok := gs.Players[actor]
	if !ok || !p.IsAI {
		return nil, nil
	}

	var allEvents []Event

	var idleUnits []ids.UnitId
	gs.Units.IterOrdered(func(id uint64, u Unit) {
		if u.Owner == actor && u.Orders == nil {
			idleUnits = append(idleUnits, ids.UnitId(id))
		}
	})
	for _, uid := range idleUnits {
		u, ok := findUnit(gs, uid)
		if !ok {
			continue
		}
		def, ok := gs.Catalog.UnitTypes[u.TypeID]
		if !ok {
			continue
		}
		if def.IsWorker {
			if ev, err := e.ApplyCommandChecked(actor, SetWorkerAutomation{Unit: uid, Enabled: true}); err == nil {
				allEvents = append(allEvents, ev...)
			}
		} else if def.CanFortify {
			if ev, err := e.ApplyCommandChecked(actor, Fortify{Unit: uid}); err == nil {
				allEvents = append(allEvents, ev...)
			}
		}
	}

	if p.Researching == nil {
		if tech, ok := cheapestAvailableTech(gs, p); ok {
			if ev, err := e.ApplyCommandChecked(actor, SetResearch{Tech: tech}); err == nil {
				allEvents = append(allEvents, ev...)
			}
		}
	}

	gs.Cities.IterOrdered(func(id uint64, c City) {
		if c.Owner != actor || c.Producing != nil {
			return
		}
		if ut, ok := cheapestBuildableUnit(gs); ok {
			item := ProductionItem{UnitType: &ut}
			if ev, err := e.ApplyCommandChecked(actor, SetProduction{City: ids.CityId(id), Item: item}); err == nil {
				allEvents = append(allEvents, ev...)
			}
		}
	})

	ev, err := e.ApplyCommandChecked(actor, EndTurn{})
	if err != nil {
		return allEvents, err
	}
	return append(allEvents, ev...), nil
}

func cheapestAvailableTech(gs *GameState, p *Player) (ids.TechId, bool) {
	best := ids.TechId(0)
	bestCost := -1
	found := false
	for id, def := range gs.Catalog.Techs {
		if _, known := p.KnownTechs[id]; known {
			continue
		}
		ready := true
		for prereq := range def.Prerequisites {
			if _, ok := p.KnownTechs[prereq]; !ok {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}
		if !found || def.Cost < bestCost || (def.Cost == bestCost && id < best) {
			best, bestCost, found = id, def.Cost, true
		}
	}
	return best, found
}

func cheapestBuildableUnit(gs *GameState) (ids.UnitTypeId, bool) {
	best := ids.UnitTypeId(0)
	bestCost := -1
	found := false
	for id, def := range gs.Catalog.UnitTypes {
		if def.TechRequired != nil {
			continue
		}
		if !found || def.Cost() < bestCost || (def.Cost() == bestCost && id < best) {
			best, bestCost, found = id, def.Cost(), true
		}
	}
	return best, found
}
