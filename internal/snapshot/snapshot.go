// Package snapshot implements the byte-stable projection of engine state
// (§4.E): a compact binary encoding, a JSON mirror, and the deterministic
// checksum clients use to detect desync.
package snapshot

import (
	"sort"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/ids"
)

// Snapshot is the value-typed projection fed to checksum and to clients.
// Field order here is load-bearing: it is exactly the order Encode writes.
type Snapshot struct {
	Turn          int
	CurrentPlayer ids.PlayerId
	MapWidth      int
	MapHeight     int
	HorizWrap     bool
	Tiles         []TileSnapshot
	Players       []PlayerSnapshot
	Units         []UnitSnapshot
	Cities        []CitySnapshot
	TradeRoutes   []TradeRouteSnapshot
	Chronicle     []ChronicleSnapshot
	RngState      [32]byte
	RulesHash     uint64
}

type TileSnapshot struct {
	Index       int
	Terrain     ids.TerrainId
	Owner       *ids.PlayerId
	CityID      *uint64
	Improvement *ImprovementSnapshot
}

type ImprovementSnapshot struct {
	ID          ids.ImprovementId
	Tier        uint8
	WorkedTurns int
	Pillaged    bool
}

type PlayerSnapshot struct {
	ID                   ids.PlayerId
	Name                 string
	IsAI                 bool
	Gold                 int
	SupplyUsed           int
	SupplyCap            int
	WarWeariness         int
	Culture              int
	AvailablePolicyPicks int
	Policies             []ids.PolicyId
	Government           *ids.GovernmentId
	Researching          *ids.TechId
	ResearchProgress     int
	KnownTechs           []ids.TechId
	Eliminated           bool
}

type UnitSnapshot struct {
	ID           uint64
	TypeID       ids.UnitTypeId
	Owner        ids.PlayerId
	Q, R         int32
	HP           int
	MaxHP        int
	MovesLeft    int
	VeteranLevel int
}

type CitySnapshot struct {
	ID         uint64
	Name       string
	Owner      ids.PlayerId
	Q, R       int32
	Population int
	Buildings  []ids.BuildingId
}

type TradeRouteSnapshot struct {
	ID    uint64
	Owner ids.PlayerId
	From  uint64
	To    uint64
}

type ChronicleSnapshot struct {
	ID      uint64
	Turn    int
	Kind    int
	Subject ids.PlayerId
	Party   *ids.PlayerId
	Detail  string
}

// FromEngine builds a Snapshot from the engine's live state. It never
// mutates gs.
func FromEngine(gs *engine.GameState) Snapshot {
	s := Snapshot{
		Turn:          gs.Turn,
		CurrentPlayer: gs.CurrentPlayer(),
		MapWidth:      gs.Map.Width,
		MapHeight:     gs.Map.Height,
		HorizWrap:     gs.Map.HorizWrap,
		RngState:      gs.Rng.State(),
		RulesHash:     gs.RulesHash,
	}

	s.Tiles = make([]TileSnapshot, len(gs.Tiles))
	for i, t := range gs.Tiles {
		ts := TileSnapshot{Index: i, Terrain: t.Terrain, Owner: t.Owner, CityID: t.CityID}
		if t.Improvement != nil {
			ts.Improvement = &ImprovementSnapshot{ID: t.Improvement.ID, Tier: t.Improvement.Tier, WorkedTurns: t.Improvement.WorkedTurns, Pillaged: t.Improvement.Pillaged}
		}
		s.Tiles[i] = ts
	}

	for _, pid := range gs.PlayerOrder {
		p := gs.Players[pid]
		var techs []ids.TechId
		for t := range p.KnownTechs {
			techs = append(techs, t)
		}
		sort.Slice(techs, func(i, j int) bool { return techs[i] < techs[j] })
		s.Players = append(s.Players, PlayerSnapshot{
			ID: p.ID, Name: p.Name, IsAI: p.IsAI, Gold: p.Gold,
			SupplyUsed: p.SupplyUsed, SupplyCap: p.SupplyCap, WarWeariness: p.WarWeariness,
			Culture: p.Culture, AvailablePolicyPicks: p.AvailablePolicyPicks,
			Policies: append([]ids.PolicyId(nil), p.Policies...), Government: p.Government,
			Researching: p.Researching, ResearchProgress: p.ResearchProgress,
			KnownTechs: techs, Eliminated: p.Eliminated,
		})
	}

	gs.Units.IterOrdered(func(id uint64, u engine.Unit) {
		s.Units = append(s.Units, UnitSnapshot{
			ID: id, TypeID: u.TypeID, Owner: u.Owner, Q: u.Position.Q, R: u.Position.R,
			HP: u.HP, MaxHP: u.MaxHP, MovesLeft: u.MovesLeft, VeteranLevel: u.VeteranLevel,
		})
	})
	gs.Cities.IterOrdered(func(id uint64, c engine.City) {
		buildings := make([]ids.BuildingId, 0, len(c.Buildings))
		for b := range c.Buildings {
			buildings = append(buildings, b)
		}
		sort.Slice(buildings, func(i, j int) bool { return buildings[i] < buildings[j] })
		s.Cities = append(s.Cities, CitySnapshot{
			ID: id, Name: c.Name, Owner: c.Owner, Q: c.Position.Q, R: c.Position.R,
			Population: c.Population, Buildings: buildings,
		})
	})
	gs.TradeRoutes.IterOrdered(func(id uint64, r engine.TradeRoute) {
		s.TradeRoutes = append(s.TradeRoutes, TradeRouteSnapshot{ID: id, Owner: r.Owner, From: r.From, To: r.To})
	})
	for _, e := range gs.Chronicle.Entries() {
		s.Chronicle = append(s.Chronicle, ChronicleSnapshot{ID: e.ID, Turn: e.Turn, Kind: int(e.Kind), Subject: e.Subject, Party: e.Party, Detail: e.Detail})
	}

	return s
}
