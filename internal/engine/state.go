package engine

import (
	"github.com/backbay/imperium/internal/entitystore"
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/rng"
	"github.com/backbay/imperium/internal/rules"
)

// GameState is the entire mutable world the engine advances. It is built to
// be cloned cheaply and explicitly (§5, §9): ApplyCommandChecked clones it,
// mutates the clone, and only swaps it in on success.
type GameState struct {
	Catalog *rules.Catalog
	Map     *hexmap.Map
	Tiles   []Tile

	Units       *entitystore.Store[Unit]
	Cities      *entitystore.Store[City]
	TradeRoutes *entitystore.Store[TradeRoute]

	Players      map[ids.PlayerId]*Player
	PlayerOrder  []ids.PlayerId

	Diplomacy  *Diplomacy
	Visibility VisibilityMap
	Chronicle  *Chronicle
	Victory    *Victory
	Rng        *rng.GameRng

	Turn               int
	CurrentPlayerIndex int

	RulesHash uint64
	Seed      uint64
}

// NewGameOptions configures a fresh game (§8 invariant 4: identical inputs
// must yield identical pre-command snapshots).
type NewGameOptions struct {
	Catalog             *rules.Catalog
	MapWidth, MapHeight int
	HorizWrap           bool
	NumPlayers          int
	PlayerNames         []string
	Seed                uint64
	TurnLimit           int
	CultureThresholdPct int
	DefaultTerrain      ids.TerrainId
}

// NewGame constructs the deterministic initial state. Map generation proper
// (terrain placement from the seeded PRNG) is an opaque, out-of-scope
// collaborator per §1/§2 Non-goals; NewGame lays opts.DefaultTerrain on
// every tile and takes no terrain-generation hook.
func NewGame(opts NewGameOptions) *GameState {
	tileCount := opts.MapWidth * opts.MapHeight
	tiles := make([]Tile, tileCount)
	for i := range tiles {
		tiles[i] = Tile{Terrain: opts.DefaultTerrain}
	}

	gs := &GameState{
		Catalog: opts.Catalog,
		Tiles:   tiles,

		Units:       entitystore.New[Unit](),
		Cities:      entitystore.New[City](),
		TradeRoutes: entitystore.New[TradeRoute](),

		Players:     map[ids.PlayerId]*Player{},
		Diplomacy:   NewDiplomacy(),
		Visibility:  VisibilityMap{},
		Chronicle:   NewChronicle(),
		Victory:     NewVictory(opts.TurnLimit, opts.CultureThresholdPct),
		Rng:         rng.NewGameRng(opts.Seed),
		RulesHash:   opts.Catalog.Hash(),
		Seed:        opts.Seed,
	}

	gs.Map = hexmap.NewMap(opts.MapWidth, opts.MapHeight, opts.HorizWrap, func(idx int) (int, bool) {
		t := gs.Tiles[idx]
		def, ok := gs.Catalog.Terrains[t.Terrain]
		if !ok || def.Impassable {
			return 0, true
		}
		cost := def.MoveCost
		if cost < 1 {
			cost = 1
		}
		return cost, false
	})

	for i := 0; i < opts.NumPlayers; i++ {
		name := "Player"
		if i < len(opts.PlayerNames) {
			name = opts.PlayerNames[i]
		}
		pid := ids.PlayerId(i)
		gs.Players[pid] = NewPlayer(pid, name, false)
		gs.PlayerOrder = append(gs.PlayerOrder, pid)
		gs.Visibility[pid] = NewVisibility(tileCount)
		gs.Victory.ScienceProgress[pid] = NewBitset(int(scienceStageCount))
	}

	return gs
}

// Clone deep-copies the entire world so command application can happen on
// a disposable scratch copy (§5, §9 scratch-clone atomicity).
func (gs *GameState) Clone() *GameState {
	tiles := make([]Tile, len(gs.Tiles))
	for i, t := range gs.Tiles {
		tiles[i] = t.Clone()
	}

	players := make(map[ids.PlayerId]*Player, len(gs.Players))
	for k, v := range gs.Players {
		players[k] = v.Clone()
	}

	rngState := gs.Rng.State()

	c := &GameState{
		Catalog:            gs.Catalog, // immutable for a game's lifetime
		Tiles:              tiles,
		Units:              gs.Units.Clone(),
		Cities:             gs.Cities.Clone(),
		TradeRoutes:        gs.TradeRoutes.Clone(),
		Players:            players,
		PlayerOrder:        append([]ids.PlayerId(nil), gs.PlayerOrder...),
		Diplomacy:          gs.Diplomacy.Clone(),
		Visibility:         gs.Visibility.Clone(),
		Chronicle:          gs.Chronicle.Clone(),
		Victory:            gs.Victory.Clone(),
		Rng:                rng.RestoreState(rngState),
		Turn:               gs.Turn,
		CurrentPlayerIndex: gs.CurrentPlayerIndex,
		RulesHash:          gs.RulesHash,
		Seed:               gs.Seed,
	}
	c.Map = hexmap.NewMap(gs.Map.Width, gs.Map.Height, gs.Map.HorizWrap, func(idx int) (int, bool) {
		t := c.Tiles[idx]
		def, ok := c.Catalog.Terrains[t.Terrain]
		if !ok || def.Impassable {
			return 0, true
		}
		cost := def.MoveCost
		if cost < 1 {
			cost = 1
		}
		return cost, false
	})
	return c
}

func (gs *GameState) CurrentPlayer() ids.PlayerId {
	return gs.PlayerOrder[gs.CurrentPlayerIndex]
}

func (gs *GameState) TileAt(h hexmap.Hex) *Tile {
	if !gs.Map.InBounds(h) {
		return nil
	}
	return &gs.Tiles[gs.Map.Index(h)]
}

// UnitAt returns the (at most one, §3 invariant) unit occupying h.
func (gs *GameState) UnitAt(h hexmap.Hex) (uint64, *Unit, bool) {
	var foundID uint64
	var found Unit
	ok := false
	gs.Units.IterOrdered(func(id uint64, u Unit) {
		if ok {
			return
		}
		if u.Position == h {
			foundID, found, ok = id, u, true
		}
	})
	return foundID, &found, ok
}
