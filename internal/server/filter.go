package server

import (
	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/snapshot"
)

// FilterSnapshotForPlayer redacts a full snapshot down to what player p is
// allowed to see, for GameState full resyncs (§4.I Snapshot filtering).
// vis is p's own visibility bitset; it is never nil for a seated player.
func FilterSnapshotForPlayer(s snapshot.Snapshot, p ids.PlayerId, vis *engine.Visibility) snapshot.Snapshot {
	out := s
	out.RngState = [32]byte{}

	out.Tiles = make([]snapshot.TileSnapshot, len(s.Tiles))
	for i, t := range s.Tiles {
		switch {
		case i >= len(vis.Explored) || !vis.Explored[i]:
			out.Tiles[i] = snapshot.TileSnapshot{Index: t.Index, Terrain: ids.UnknownTerrain}
		case i >= len(vis.Visible) || !vis.Visible[i]:
			// Explored but not currently visible: keep the terrain and drop
			// owner, city and improvement, which could have changed since.
			out.Tiles[i] = snapshot.TileSnapshot{Index: t.Index, Terrain: t.Terrain}
		default:
			out.Tiles[i] = t
		}
	}

	out.Players = make([]snapshot.PlayerSnapshot, len(s.Players))
	for i, ps := range s.Players {
		if ps.ID == p {
			out.Players[i] = ps
			continue
		}
		out.Players[i] = snapshot.PlayerSnapshot{
			ID: ps.ID, Name: ps.Name, IsAI: ps.IsAI, Eliminated: ps.Eliminated,
		}
	}

	out.Units = out.Units[:0]
	for _, u := range s.Units {
		if u.Owner == p {
			out.Units = append(out.Units, u)
			continue
		}
		if !tileVisible(vis, s, u.Q, u.R) {
			continue
		}
		// Visible enemy unit: no intent leakage (§4.I).
		redacted := u
		redacted.MovesLeft = 0
		out.Units = append(out.Units, redacted)
	}

	out.Cities = out.Cities[:0]
	for _, c := range s.Cities {
		if c.Owner == p {
			out.Cities = append(out.Cities, c)
			continue
		}
		if !tileVisible(vis, s, c.Q, c.R) {
			continue
		}
		out.Cities = append(out.Cities, c)
	}

	out.TradeRoutes = out.TradeRoutes[:0]
	for _, r := range s.TradeRoutes {
		if r.Owner == p {
			out.TradeRoutes = append(out.TradeRoutes, r)
		}
	}

	out.Chronicle = out.Chronicle[:0]
	for _, entry := range s.Chronicle {
		if chronicleSnapshotRelevant(entry, p) {
			out.Chronicle = append(out.Chronicle, entry)
		}
	}

	return out
}

func tileVisible(vis *engine.Visibility, s snapshot.Snapshot, q, r int32) bool {
	idx := int(r)*s.MapWidth + int(q)
	return idx >= 0 && idx < len(vis.Visible) && vis.Visible[idx]
}

// chronicleSnapshotRelevant mirrors engine.RelevantTo over the redacted
// ChronicleSnapshot shape, since the filter works after FromEngine has
// already flattened entries out of the live engine.ChronicleEntry type.
func chronicleSnapshotRelevant(e snapshot.ChronicleSnapshot, p ids.PlayerId) bool {
	switch engine.ChronicleRelevance(engine.ChronicleKind(e.Kind)) {
	case engine.RoutePublic:
		return true
	case engine.RouteOwnerOnly, engine.RouteTileOwner:
		return e.Subject == p
	case engine.RoutePartyOnly:
		return e.Subject == p || (e.Party != nil && *e.Party == p)
	default:
		return false
	}
}
