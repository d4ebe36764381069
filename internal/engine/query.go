package engine

import "github.com/backbay/imperium/internal/ids"

// PromiseEntry is one row of a player's promise strip: something already in
// motion that will resolve in a known number of turns (glossary "promise
// strip"; fields grounded on the original's research/production/border/
// worker-task summary, not specified by the distilled spec).
type PromiseEntry struct {
	Kind           string
	Label          string
	TurnsRemaining int
}

// PromiseStrip computes actor's imminent-completion summary: research,
// city production, border growth, and worker task completion.
func PromiseStrip(gs *GameState, actor ids.PlayerId) []PromiseEntry {
	var out []PromiseEntry

	if p, ok := gs.Players[actor]; ok && p.Researching != nil {
		if def, ok := gs.Catalog.Techs[*p.Researching]; ok {
			remaining := turnsRemaining(def.Cost-p.ResearchProgress, estimatedSciencePerTurn(gs, actor))
			out = append(out, PromiseEntry{Kind: "research", Label: def.Name, TurnsRemaining: remaining})
		}
	}

	gs.Cities.IterOrdered(func(id uint64, c City) {
		if c.Owner != actor {
			return
		}
		if c.Producing != nil {
			cost, label := productionCostAndLabel(gs, *c.Producing)
			prodPerTurn := cityYields(gs, &c).Prod
			out = append(out, PromiseEntry{
				Kind:           "production",
				Label:          label,
				TurnsRemaining: turnsRemaining(cost-c.ProductionStockpile, prodPerTurn),
			})
		}
		const borderExpansionThreshold = 100
		culturePerTurn := cityYields(gs, &c).Culture
		out = append(out, PromiseEntry{
			Kind:           "borders",
			Label:          c.Name,
			TurnsRemaining: turnsRemaining(borderExpansionThreshold-c.BorderProgress, culturePerTurn),
		})
	})

	gs.Units.IterOrdered(func(id uint64, u Unit) {
		if u.Owner != actor {
			return
		}
		switch o := u.Orders.(type) {
		case OrdersBuildImprovement:
			out = append(out, PromiseEntry{Kind: "worker_task", Label: "build", TurnsRemaining: o.TurnsRemaining})
		case OrdersRepairImprovement:
			out = append(out, PromiseEntry{Kind: "worker_task", Label: "repair", TurnsRemaining: o.TurnsRemaining})
		}
	})

	return out
}

func turnsRemaining(remaining, perTurn int) int {
	if perTurn <= 0 {
		if remaining <= 0 {
			return 0
		}
		return -1
	}
	if remaining <= 0 {
		return 0
	}
	n := remaining / perTurn
	if remaining%perTurn != 0 {
		n++
	}
	return n
}

func estimatedSciencePerTurn(gs *GameState, actor ids.PlayerId) int {
	total := 0
	gs.Cities.IterOrdered(func(_ uint64, c City) {
		if c.Owner == actor {
			total += cityYields(gs, &c).Science
		}
	})
	return total
}

func productionCostAndLabel(gs *GameState, item ProductionItem) (int, string) {
	if item.UnitType != nil {
		if def, ok := gs.Catalog.UnitTypes[*item.UnitType]; ok {
			return def.Cost(), def.Name
		}
	}
	if item.Building != nil {
		if def, ok := gs.Catalog.Buildings[*item.Building]; ok {
			return def.Cost, def.Name
		}
	}
	return 0, ""
}

// QueryCombatWhy returns a flat contribution breakdown for a hypothetical
// attacker-vs-defender matchup, named in §4.I without a payload shape;
// grounded on the original's combat breakdown struct.
func QueryCombatWhy(gs *GameState, attacker, defender ids.UnitId) map[string]float64 {
	out := map[string]float64{}
	a, ok := findUnit(gs, attacker)
	if !ok {
		return out
	}
	d, ok := findUnit(gs, defender)
	if !ok {
		return out
	}
	atkDef, ok := gs.Catalog.UnitTypes[a.TypeID]
	if !ok {
		return out
	}
	defDef, ok := gs.Catalog.UnitTypes[d.TypeID]
	if !ok {
		return out
	}

	out["base_attack"] = float64(atkDef.Attack)
	out["veteran_mult"] = VeteranStrengthMult[clampVeteran(a.VeteranLevel)]
	out["base_defense"] = float64(defDef.Defense)
	out["defender_veteran_mult"] = VeteranStrengthMult[clampVeteran(d.VeteranLevel)]
	if tile := gs.TileAt(d.Position); tile != nil {
		if terrainDef, ok := gs.Catalog.Terrains[tile.Terrain]; ok {
			out["terrain_bonus"] = terrainDef.DefenseBonus
		}
	}
	if _, fortified := d.Orders.(OrdersFortify); fortified {
		out["fortify_bonus"] = fortifyStrengthMult[clampFortifyTurns(d.FortifiedTurns)] - 1.0
	}
	return out
}

// QueryMaintenanceWhy returns a flat contribution breakdown for a city's
// upkeep/admin pressure, named in §4.I without a payload shape; grounded on
// the original's maintenance breakdown struct.
func QueryMaintenanceWhy(gs *GameState, cityID ids.CityId) map[string]float64 {
	out := map[string]float64{}
	city, ok := findCity(gs, cityID)
	if !ok {
		return out
	}
	p, ok := gs.Players[city.Owner]
	if !ok {
		return out
	}

	maintenance := 0.0
	for b := range city.Buildings {
		if def, ok := gs.Catalog.Buildings[b]; ok {
			maintenance += float64(def.Maintenance)
		}
	}
	out["building_maintenance"] = maintenance
	out["distance_to_capital"] = float64(distanceToCapital(gs, city))
	out["admin_deficit"] = adminDeficit(gs, p)
	out["war_weariness"] = float64(p.WarWeariness)
	return out
}

func distanceToCapital(gs *GameState, city City) int {
	capital, ok := capitalOf(gs, city.Owner)
	if !ok {
		return 0
	}
	return int(abs32(capital.Position.Q-city.Position.Q) + abs32(capital.Position.R-city.Position.R))
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

func capitalOf(gs *GameState, owner ids.PlayerId) (City, bool) {
	var found City
	var foundID uint64
	ok := false
	gs.Cities.IterOrdered(func(id uint64, c City) {
		if ok || c.Owner != owner {
			return
		}
		if !ok || id < foundID {
			found, foundID, ok = c, id, true
		}
	})
	return found, ok
}

func adminDeficit(gs *GameState, p *Player) float64 {
	capacity := 0.0
	if p.Government != nil {
		if def, ok := gs.Catalog.Governments[*p.Government]; ok {
			capacity = float64(def.AdminRating)
		}
	}
	cityCount := 0.0
	gs.Cities.IterOrdered(func(_ uint64, c City) {
		if c.Owner == p.ID {
			cityCount++
		}
	})
	deficit := cityCount - capacity
	if deficit < 0 {
		deficit = 0
	}
	return deficit
}
