package engine

import (
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

// sightRadius is the fixed per-unit and per-city vision range (§4.A, §8
// invariant 3).
const sightRadius = 2

// recomputeVisibility rebuilds owner's visible set from scratch off every
// unit and city it currently controls, appending TileRevealed for tiles
// seen for the first time and TileHidden for tiles that drop out of sight.
// Explored only ever grows (§8 invariant 3: visible ⇒ explored).
func recomputeVisibility(gs *GameState, owner ids.PlayerId, events *[]Event) {
	vis, ok := gs.Visibility[owner]
	if !ok {
		return
	}

	wasVisible := append([]bool(nil), vis.Visible...)
	for i := range vis.Visible {
		vis.Visible[i] = false
	}

	see := func(h hexmap.Hex) {
		if !gs.Map.InBounds(h) {
			return
		}
		idx := gs.Map.Index(h)
		wasExplored := vis.Explored[idx]
		vis.SetVisible(idx)
		if !wasExplored {
			*events = append(*events, TileRevealed{Player: owner, Hex: h, Terrain: gs.Tiles[idx].Terrain})
		}
	}

	gs.Units.IterOrdered(func(_ uint64, u Unit) {
		if u.Owner != owner {
			return
		}
		for _, h := range hexmap.HexesInRadius(u.Position, sightRadius) {
			see(h)
		}
	})
	gs.Cities.IterOrdered(func(_ uint64, c City) {
		if c.Owner != owner {
			return
		}
		for _, h := range hexmap.HexesInRadius(c.Position, sightRadius) {
			see(h)
		}
	})

	for idx, was := range wasVisible {
		if was && !vis.Visible[idx] {
			*events = append(*events, TileHidden{Player: owner, Hex: gs.Map.HexAt(idx)})
		}
	}
}
