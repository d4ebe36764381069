package engine

import (
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/rules"
)

// cultureMilestoneCost is the lifetime culture needed to unlock the next
// policy pick (§4.D culture), a fixed per-milestone cost rather than a
// curve — kept simple until the Open Question on curves is resolved.
const cultureMilestoneCost = 50

func handleEndTurn(gs *GameState, actor ids.PlayerId, _ EndTurn) ([]Event, error) {
	var events []Event

	runWorldTickForPlayer(gs, actor, &events)
	recomputeVisibility(gs, actor, &events)

	events = append(events, TurnEnded{Player: actor, Turn: gs.Turn})
	advanceTurn(gs, &events)
	checkVictory(gs, &events)
	return events, nil
}

// advanceTurn moves to the next player in PlayerOrder, skipping eliminated
// players, and increments Turn once the order wraps. When every player is
// eliminated it moves to the next seat in order without skipping.
func advanceTurn(gs *GameState, events *[]Event) {
	n := len(gs.PlayerOrder)
	startIdx, startTurn := gs.CurrentPlayerIndex, gs.Turn
	for i := 0; i < n; i++ {
		gs.CurrentPlayerIndex++
		if gs.CurrentPlayerIndex >= n {
			gs.CurrentPlayerIndex = 0
			gs.Turn++
		}
		next := gs.PlayerOrder[gs.CurrentPlayerIndex]
		if p, ok := gs.Players[next]; ok && !p.Eliminated {
			*events = append(*events, TurnStarted{Player: next})
			return
		}
	}
	gs.CurrentPlayerIndex, gs.Turn = startIdx+1, startTurn
	if gs.CurrentPlayerIndex >= n {
		gs.CurrentPlayerIndex = 0
		gs.Turn++
	}
	*events = append(*events, TurnStarted{Player: gs.PlayerOrder[gs.CurrentPlayerIndex]})
}

// runWorldTickForPlayer executes the per-player half of the §4.D world tick
// for actor's cities and units: war weariness decay toward zero pressure,
// city economy/growth/production/borders/improvement maturation, trade
// income, supply, gold, research progress, and culture accumulation.
func runWorldTickForPlayer(gs *GameState, actor ids.PlayerId, events *[]Event) {
	p, ok := gs.Players[actor]
	if !ok {
		return
	}

	tickWarWeariness(p)
	tickSupply(gs, actor, p, events)

	gs.Cities.IterOrdered(func(id uint64, city City) {
		if city.Owner != actor {
			return
		}
		tickCityEconomy(gs, ids.CityId(id), &city, events)
		gs.Cities.Set(id, city)
	})

	tickTradeIncome(gs, actor, p)
	tickResearch(gs, p, events)
	tickCulture(gs, actor, p, events)
	tickImprovementOrders(gs, actor, events)
}

func tickWarWeariness(p *Player) {
	if p.WarWeariness > 0 {
		p.WarWeariness--
	}
}

func tickSupply(gs *GameState, actor ids.PlayerId, p *Player, events *[]Event) {
	used := 0
	gs.Units.IterOrdered(func(_ uint64, u Unit) {
		if u.Owner == actor {
			if def, ok := gs.Catalog.UnitTypes[u.TypeID]; ok {
				used += def.SupplyCost
			}
		}
	})
	p.SupplyUsed = used
	*events = append(*events, SupplyUpdated{Player: actor, Used: p.SupplyUsed, Cap: p.SupplyCap})
}

// tickCityEconomy applies one turn of yields, growth, production, and
// border/improvement progress to city (§4.D economy).
func tickCityEconomy(gs *GameState, cityID ids.CityId, city *City, events *[]Event) {
	yields := cityYields(gs, city)

	city.FoodStockpile += yields.Food - (city.Population * 2)
	growthThreshold := city.Population * 10
	if city.FoodStockpile >= growthThreshold {
		city.FoodStockpile -= growthThreshold
		city.Population++
		*events = append(*events, CityGrew{City: cityID, Population: city.Population})
	} else if city.FoodStockpile < 0 {
		city.FoodStockpile = 0
	}

	maintenance := 0
	for b := range city.Buildings {
		if def, ok := gs.Catalog.Buildings[b]; ok {
			maintenance += def.Maintenance
		}
	}
	netProd := yields.Prod - maintenance
	if netProd < 0 {
		netProd = 0
	}
	city.ProductionStockpile += netProd

	if city.Producing != nil {
		completeProduction(gs, cityID, city, events)
	}

	city.BorderProgress += yields.Culture
	const borderExpansionThreshold = 100
	if city.BorderProgress >= borderExpansionThreshold {
		city.BorderProgress -= borderExpansionThreshold
		expandBorders(gs, cityID, city, events)
	}

	matureImprovements(gs, city, events)
}

func cityYields(gs *GameState, city *City) rules.Yields {
	var total rules.Yields
	for _, idx := range city.WorkedTiles {
		if idx < 0 || idx >= len(gs.Tiles) {
			continue
		}
		t := gs.Tiles[idx]
		if def, ok := gs.Catalog.Terrains[t.Terrain]; ok {
			total.Food += def.Yields.Food
			total.Prod += def.Yields.Prod
			total.Gold += def.Yields.Gold
			total.Science += def.Yields.Science
			total.Culture += def.Yields.Culture
		}
		if t.Improvement != nil && !t.Improvement.Pillaged {
			if impDef, ok := gs.Catalog.Improvements[t.Improvement.ID]; ok {
				tier := int(t.Improvement.Tier)
				if tier < len(impDef.Tiers) {
					ty := impDef.Tiers[tier].Yields
					total.Food += ty.Food
					total.Prod += ty.Prod
					total.Gold += ty.Gold
					total.Science += ty.Science
					total.Culture += ty.Culture
				}
			}
		}
	}
	for b := range city.Buildings {
		if def, ok := gs.Catalog.Buildings[b]; ok {
			for _, eff := range def.Effects {
				if yb, ok := eff.(rules.EffectYieldBonus); ok {
					addYield(&total, yb.Yield, yb.Amount)
				}
			}
		}
	}
	return total
}

func addYield(y *rules.Yields, name string, amount float64) {
	switch name {
	case "food":
		y.Food += int(amount)
	case "prod", "production":
		y.Prod += int(amount)
	case "gold":
		y.Gold += int(amount)
	case "science":
		y.Science += int(amount)
	case "culture":
		y.Culture += int(amount)
	}
}

func completeProduction(gs *GameState, cityID ids.CityId, city *City, events *[]Event) {
	if city.Producing.UnitType != nil {
		def, ok := gs.Catalog.UnitTypes[*city.Producing.UnitType]
		if !ok || city.ProductionStockpile < def.Cost() {
			return
		}
		city.ProductionStockpile -= def.Cost()
		maxHP := def.HP
		u := Unit{TypeID: *city.Producing.UnitType, Owner: city.Owner, Position: city.Position, HP: maxHP, MaxHP: maxHP, MovesLeft: def.Moves}
		id := gs.Units.Insert(u)
		*events = append(*events, UnitCreated{Unit: ids.UnitId(id), Owner: city.Owner, TypeID: *city.Producing.UnitType, Position: city.Position})
		city.Producing = nil
	} else if city.Producing.Building != nil {
		def, ok := gs.Catalog.Buildings[*city.Producing.Building]
		if !ok || city.ProductionStockpile < def.Cost {
			return
		}
		city.ProductionStockpile -= def.Cost
		city.Buildings[*city.Producing.Building] = struct{}{}
		*events = append(*events, CityProduced{City: cityID, Item: *city.Producing})
		city.Producing = nil
	}
}

func expandBorders(gs *GameState, cityID ids.CityId, city *City, events *[]Event) {
	claimedSet := map[int]bool{}
	for _, idx := range city.ClaimedTiles {
		claimedSet[idx] = true
	}
	var newTiles []int
	for _, idx := range city.ClaimedTiles {
		h := gs.Map.HexAt(idx)
		for _, n := range gs.Map.Neighbors(h) {
			nIdx := gs.Map.Index(n)
			if claimedSet[nIdx] {
				continue
			}
			if gs.Tiles[nIdx].Owner != nil {
				continue
			}
			claimedSet[nIdx] = true
			newTiles = append(newTiles, nIdx)
			gs.Tiles[nIdx].Owner = ptrPlayer(city.Owner)
		}
	}
	if len(newTiles) == 0 {
		return
	}
	city.ClaimedTiles = append(city.ClaimedTiles, newTiles...)
	*events = append(*events, BordersExpanded{City: cityID, NewTiles: newTiles})
}

func matureImprovements(gs *GameState, city *City, events *[]Event) {
	for _, idx := range city.WorkedTiles {
		if idx < 0 || idx >= len(gs.Tiles) {
			continue
		}
		t := &gs.Tiles[idx]
		if t.Improvement == nil || t.Improvement.Pillaged {
			continue
		}
		impDef, ok := gs.Catalog.Improvements[t.Improvement.ID]
		if !ok {
			continue
		}
		tier := int(t.Improvement.Tier)
		if tier+1 >= len(impDef.Tiers) {
			continue
		}
		t.Improvement.WorkedTurns++
		if t.Improvement.WorkedTurns >= impDef.Tiers[tier].WorkedTurnsToMature {
			t.Improvement.WorkedTurns = 0
			t.Improvement.Tier++
			*events = append(*events, ImprovementMatured{Position: gs.Map.HexAt(idx), Tier: t.Improvement.Tier})
		}
	}
}

func tickTradeIncome(gs *GameState, actor ids.PlayerId, p *Player) {
	gs.TradeRoutes.IterOrdered(func(_ uint64, r TradeRoute) {
		if r.Owner != actor {
			return
		}
		p.Gold += len(r.Path)
	})
}

func tickResearch(gs *GameState, p *Player, events *[]Event) {
	if p.Researching == nil {
		return
	}
	techDef, ok := gs.Catalog.Techs[*p.Researching]
	if !ok {
		return
	}
	p.ResearchProgress += p.ResearchOverflow
	p.ResearchOverflow = 0

	science := 0
	gs.Cities.IterOrdered(func(_ uint64, c City) {
		if c.Owner != p.ID {
			return
		}
		science += cityYields(gs, &c).Science
	})
	p.ResearchProgress += science

	if p.ResearchProgress >= techDef.Cost {
		overflow := p.ResearchProgress - techDef.Cost
		tech := *p.Researching
		p.KnownTechs[tech] = struct{}{}
		p.Researching = nil
		p.ResearchProgress = 0
		p.ResearchOverflow = overflow
		gs.Chronicle.Append(gs.Turn, ChronicleTechResearched, p.ID, nil, "")
		*events = append(*events, TechResearched{Player: p.ID, Tech: tech})
	}
}

func tickCulture(gs *GameState, actor ids.PlayerId, p *Player, events *[]Event) {
	culture := 0
	gs.Cities.IterOrdered(func(_ uint64, c City) {
		if c.Owner != actor {
			return
		}
		culture += cityYields(gs, &c).Culture
	})
	p.Culture += culture
	gs.Victory.LifetimeCulture[actor] += culture

	for p.Culture >= cultureMilestoneCost*(p.CultureMilestonesReached+1) {
		p.CultureMilestonesReached++
		p.AvailablePolicyPicks++
	}
}

// tickImprovementOrders advances units standing on Goto/BuildImprovement/
// RepairImprovement orders one step (§4.D orders processing). Goto resumes
// the remaining path under the fresh per-turn ZoC/occupancy context; the
// build/repair orders count down and materialize the improvement on
// completion.
func tickImprovementOrders(gs *GameState, actor ids.PlayerId, events *[]Event) {
	ctx := PathContextFor(gs, actor)
	gs.Units.IterOrdered(func(id uint64, u Unit) {
		if u.Owner != actor || u.Orders == nil {
			return
		}
		switch o := u.Orders.(type) {
		case OrdersGoto:
			if len(o.Path) < 2 {
				u.Orders = nil
				gs.Units.Set(id, u)
				*events = append(*events, OrdersCompleted{Unit: ids.UnitId(id)})
				return
			}
			preview := hexmap.SimulateThisTurn(ctx, o.Path, u.MovesLeft)
			if len(preview.ThisTurnPath) < 2 {
				return
			}
			last := preview.ThisTurnPath[len(preview.ThisTurnPath)-1]
			u.Position = last
			if last == o.Path[len(o.Path)-1] {
				u.Orders = nil
				*events = append(*events, OrdersCompleted{Unit: ids.UnitId(id)})
			} else {
				remaining := o.Path[len(preview.ThisTurnPath)-1:]
				u.Orders = OrdersGoto{Path: remaining}
			}
			gs.Units.Set(id, u)
		case OrdersBuildImprovement:
			o.TurnsRemaining--
			if o.TurnsRemaining <= 0 {
				tile := gs.TileAt(o.At)
				if tile != nil {
					tile.Improvement = &Improvement{ID: o.Improvement, Tier: 0}
					*events = append(*events, ImprovementBuilt{Unit: ids.UnitId(id), Position: o.At, Improvement: o.Improvement})
				}
				u.Orders = nil
				*events = append(*events, OrdersCompleted{Unit: ids.UnitId(id)})
			} else {
				u.Orders = o
			}
			gs.Units.Set(id, u)
		case OrdersRepairImprovement:
			o.TurnsRemaining--
			if o.TurnsRemaining <= 0 {
				tile := gs.TileAt(o.At)
				if tile != nil && tile.Improvement != nil {
					tile.Improvement.Pillaged = false
				}
				u.Orders = nil
				*events = append(*events, OrdersCompleted{Unit: ids.UnitId(id)})
			} else {
				u.Orders = o
			}
			gs.Units.Set(id, u)
		case OrdersFortify:
			if u.FortifiedTurns < fortifyTurnsCap {
				u.FortifiedTurns++
				gs.Units.Set(id, u)
			}
		}
	})
}
