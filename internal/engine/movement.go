package engine

import (
	gameerrors "github.com/backbay/imperium/internal/errors"
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

// PathContextFor builds a hexmap.PathContext reflecting the live occupancy
// and ZoC of gs from actor's perspective (§4.A). Enemy units with attack>0
// or defense>0 exert ZoC on their neighboring tiles. Exported for reuse by
// the network server's path-preview query, which must not duplicate ZoC
// rules (§4.I Queries).
func PathContextFor(gs *GameState, actor ids.PlayerId) *hexmap.PathContext {
	occupied := map[int]bool{}
	zocTiles := map[int]bool{}
	var enemyZocHexes []hexmap.Hex

	gs.Units.IterOrdered(func(_ uint64, u Unit) {
		idx := gs.Map.Index(u.Position)
		occupied[idx] = true
		if u.Owner == actor {
			return
		}
		def, ok := gs.Catalog.UnitTypes[u.TypeID]
		if !ok {
			return
		}
		if def.Attack > 0 || def.Defense > 0 {
			enemyZocHexes = append(enemyZocHexes, u.Position)
		}
	})
	zocSet := hexmap.ZocSet(gs.Map, enemyZocHexes)
	for _, h := range enemyZocHexes {
		zocTiles[gs.Map.Index(h)] = true
	}

	return &hexmap.PathContext{
		Map: gs.Map,
		EnterCost: func(idx int) (int, bool) {
			return gs.Map.EnterCost(idx)
		},
		Occupied: func(idx int) bool { return occupied[idx] },
		ZoC:      func(idx int) bool { return zocSet(idx) },
	}
}

func findUnit(gs *GameState, id ids.UnitId) (Unit, bool) {
	u, ok := gs.Units.Get(uint64(id))
	return u, ok
}

func handleMoveUnit(gs *GameState, actor ids.PlayerId, c MoveUnit) ([]Event, error) {
	u, ok := findUnit(gs, c.Unit)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "")
	}
	if u.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "")
	}
	if len(c.Path) < 2 || c.Path[0] != u.Position {
		return nil, gameerrors.NewGameError(gameerrors.ErrInvalidPath, "path must start at unit position")
	}

	ctx := PathContextFor(gs, actor)
	preview := hexmap.SimulateThisTurn(ctx, c.Path, u.MovesLeft)
	if len(preview.ThisTurnPath) < 2 {
		return nil, gameerrors.NewGameError(gameerrors.ErrInvalidPath, "no movement possible along path")
	}

	last := preview.ThisTurnPath[len(preview.ThisTurnPath)-1]
	remainingBudget := u.MovesLeft
	for i := 1; i < len(preview.ThisTurnPath); i++ {
		idx := gs.Map.Index(preview.ThisTurnPath[i])
		cost, _ := gs.Map.EnterCost(idx)
		remainingBudget -= cost
	}
	if remainingBudget < 0 {
		remainingBudget = 0
	}

	u.Position = last
	u.MovesLeft = remainingBudget
	u.Orders = nil
	u.FortifiedTurns = 0
	gs.Units.Set(uint64(c.Unit), u)

	events := []Event{UnitMoved{Unit: c.Unit, Path: preview.ThisTurnPath, MovesLeft: u.MovesLeft}}
	recomputeVisibility(gs, actor, &events)

	switch preview.Stop {
	case hexmap.StopBlocked:
		events = append(events, MovementStopped{Unit: c.Unit, Reason: StoppedBlocked})
	case hexmap.StopMovesExhausted:
		if last != c.Path[len(c.Path)-1] {
			events = append(events, MovementStopped{Unit: c.Unit, Reason: StoppedMovesExhausted})
		}
	}
	return events, nil
}

func handleFortify(gs *GameState, actor ids.PlayerId, c Fortify) ([]Event, error) {
	u, ok := findUnit(gs, c.Unit)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "")
	}
	if u.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "")
	}
	def, ok := gs.Catalog.UnitTypes[u.TypeID]
	if !ok || !def.CanFortify {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotFortify, "")
	}
	if _, alreadyFortified := u.Orders.(OrdersFortify); !alreadyFortified {
		u.FortifiedTurns = 0
	}
	u.Orders = OrdersFortify{}
	gs.Units.Set(uint64(c.Unit), u)
	return []Event{UnitUpdated{Unit: c.Unit, State: u}}, nil
}

func handleSetOrders(gs *GameState, actor ids.PlayerId, c SetOrders) ([]Event, error) {
	u, ok := findUnit(gs, c.Unit)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "")
	}
	if u.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "")
	}
	if _, fortify := c.Orders.(OrdersFortify); !fortify {
		u.FortifiedTurns = 0
	}
	u.Orders = c.Orders
	gs.Units.Set(uint64(c.Unit), u)
	return []Event{UnitUpdated{Unit: c.Unit, State: u}}, nil
}

func handleCancelOrders(gs *GameState, actor ids.PlayerId, c CancelOrders) ([]Event, error) {
	u, ok := findUnit(gs, c.Unit)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "")
	}
	if u.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "")
	}
	u.Orders = nil
	u.FortifiedTurns = 0
	gs.Units.Set(uint64(c.Unit), u)
	return []Event{OrdersInterrupted{Unit: c.Unit, Reason: InterruptedInvalidTarget}}, nil
}

func handleSetWorkerAutomation(gs *GameState, actor ids.PlayerId, c SetWorkerAutomation) ([]Event, error) {
	u, ok := findUnit(gs, c.Unit)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "")
	}
	if u.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "")
	}
	def, ok := gs.Catalog.UnitTypes[u.TypeID]
	if !ok || !def.IsWorker {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotAWorker, "")
	}
	u.Automated = c.Enabled
	gs.Units.Set(uint64(c.Unit), u)
	return []Event{UnitUpdated{Unit: c.Unit, State: u}}, nil
}

func handlePillageImprovement(gs *GameState, actor ids.PlayerId, c PillageImprovement) ([]Event, error) {
	u, ok := findUnit(gs, c.Unit)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownUnit, "")
	}
	if u.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "")
	}
	tile := gs.TileAt(u.Position)
	if tile == nil || tile.Improvement == nil {
		return nil, gameerrors.NewGameError(gameerrors.ErrNoImprovementToPillage, "")
	}
	if tile.Owner != nil && *tile.Owner == actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotPillageFriendly, "")
	}
	var owner ids.PlayerId
	if tile.Owner != nil {
		owner = *tile.Owner
	}
	tile.Improvement.Pillaged = true
	return []Event{ImprovementPillaged{Position: u.Position, By: c.Unit, Owner: owner}}, nil
}
