package server

import (
	"fmt"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/rules"
)

// handleQuery answers one read-only Query* request (§4.I Queries). Queries
// never mutate the engine and are always pre-filtered by the asking
// player's ownership/visibility: they must not leak information fog would
// otherwise hide.
func (h *Hub) handleQuery(c *Connection, q QueryPayload) {
	p, ok := c.Player()
	if !ok {
		return
	}
	gs := h.engine.State()

	switch q.Kind {
	case QueryPromiseStrip:
		h.sendToClient(c.ClientID(), encode(TypePromiseStrip, PromiseStripPayload{Entries: engine.PromiseStrip(gs, p)}))

	case QueryCityUI:
		if q.CityID == nil {
			return
		}
		city, ok := gs.Cities.Get(*q.CityID)
		if !ok || city.Owner != p {
			return
		}
		h.sendToClient(c.ClientID(), encode(TypeCityUI, cityUIPayload(gs, city)))

	case QueryProductionOptions:
		if q.CityID == nil {
			return
		}
		city, ok := gs.Cities.Get(*q.CityID)
		if !ok || city.Owner != p {
			return
		}
		h.sendToClient(c.ClientID(), encode(TypeProductionOptions, productionOptionsPayload(gs, city)))

	case QueryCombatPreview, QueryCombatWhyKind:
		if q.AttackerID == nil || q.DefenderID == nil {
			return
		}
		attacker, ok := gs.Units.Get(*q.AttackerID)
		if !ok || attacker.Owner != p {
			return
		}
		if !tileVisibleToPlayer(gs, p, attacker.Position) {
			return
		}
		defender, ok := gs.Units.Get(*q.DefenderID)
		if !ok || !tileVisibleToPlayer(gs, p, defender.Position) {
			return
		}
		why := engine.QueryCombatWhy(gs, ids.UnitId(*q.AttackerID), ids.UnitId(*q.DefenderID))
		msgType := TypeCombatPreview
		if q.Kind == QueryCombatWhyKind {
			msgType = TypeWhyPanel
		}
		h.sendToClient(c.ClientID(), encode(msgType, why))

	case QueryMaintenanceWhyKind:
		if q.CityID == nil {
			return
		}
		city, ok := gs.Cities.Get(*q.CityID)
		if !ok || city.Owner != p {
			return
		}
		why := engine.QueryMaintenanceWhy(gs, ids.CityId(*q.CityID))
		h.sendToClient(c.ClientID(), encode(TypeWhyPanel, why))

	case QueryPathPreview:
		if q.UnitID == nil || len(q.Path) == 0 {
			return
		}
		unit, ok := gs.Units.Get(*q.UnitID)
		if !ok || unit.Owner != p {
			return
		}
		ctx := engine.PathContextFor(gs, p)
		preview := hexmap.SimulateThisTurn(ctx, toHexes(q.Path), unit.MovesLeft)
		h.sendToClient(c.ClientID(), encode(TypePathPreview, pathPreviewPayload(preview)))
	}
}

func tileVisibleToPlayer(gs *engine.GameState, p ids.PlayerId, h hexmap.Hex) bool {
	vis, ok := gs.Visibility[p]
	if !ok || !gs.Map.InBounds(h) {
		return false
	}
	idx := gs.Map.Index(h)
	return idx < len(vis.Visible) && vis.Visible[idx]
}

func pathPreviewPayload(preview hexmap.PathPreview) map[string]interface{} {
	path := make([]wireHex, len(preview.ThisTurnPath))
	for i, hx := range preview.ThisTurnPath {
		path[i] = wireHex{Q: hx.Q, R: hx.R}
	}
	return map[string]interface{}{
		"path":      path,
		"stop":      int(preview.Stop),
		"attempted": wireHex{Q: preview.Attempted.Q, R: preview.Attempted.R},
	}
}

func cityUIPayload(gs *engine.GameState, city engine.City) map[string]interface{} {
	buildings := make([]ids.BuildingId, 0, len(city.Buildings))
	for b := range city.Buildings {
		buildings = append(buildings, b)
	}
	return map[string]interface{}{
		"name":                 city.Name,
		"population":           city.Population,
		"production_stockpile": city.ProductionStockpile,
		"producing":            city.Producing,
		"buildings":            buildings,
		"border_progress":      city.BorderProgress,
	}
}

// productionOptionsPayload lists every unit type and building this city
// could start producing: tech-gated items whose prerequisite the owner has
// not yet researched are omitted (§4.D production).
func productionOptionsPayload(gs *engine.GameState, city engine.City) map[string]interface{} {
	owner := gs.Players[city.Owner]

	var units []ids.UnitTypeId
	for id, def := range gs.Catalog.UnitTypes {
		if techKnown(owner, def.TechRequired) {
			units = append(units, id)
		}
	}

	var buildings []ids.BuildingId
	for id, def := range gs.Catalog.Buildings {
		if _, already := city.Buildings[id]; already {
			continue
		}
		if techKnown(owner, def.TechRequired) {
			buildings = append(buildings, id)
		}
	}

	return map[string]interface{}{"unit_types": units, "buildings": buildings}
}

func techKnown(p *engine.Player, required *ids.TechId) bool {
	if required == nil {
		return true
	}
	if p == nil {
		return false
	}
	_, ok := p.KnownTechs[*required]
	return ok
}

// rulesNames builds a flat "kind:id" -> display-name lookup so clients can
// label entities without holding the full RulesCatalog in memory.
func rulesNames(cat *rules.Catalog) map[string]string {
	out := map[string]string{}
	for id, def := range cat.Terrains {
		out[fmt.Sprintf("terrain:%d", id)] = def.Name
	}
	for id, def := range cat.UnitTypes {
		out[fmt.Sprintf("unit_type:%d", id)] = def.Name
	}
	for id, def := range cat.Buildings {
		out[fmt.Sprintf("building:%d", id)] = def.Name
	}
	for id, def := range cat.Techs {
		out[fmt.Sprintf("tech:%d", id)] = def.Name
	}
	for id, def := range cat.Improvements {
		out[fmt.Sprintf("improvement:%d", id)] = def.Name
	}
	for id, def := range cat.Policies {
		out[fmt.Sprintf("policy:%d", id)] = def.Name
	}
	for id, def := range cat.Governments {
		out[fmt.Sprintf("government:%d", id)] = def.Name
	}
	return out
}
