// Package engine implements the deterministic simulation core (§4.D):
// command validation, event emission, state advancement, the turn cycle,
// economy/yields/maintenance, research/culture/policies/government, combat,
// trade, diplomacy, victory, chronicle and per-player visibility.
package engine

import (
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

// VeteranStrengthMult maps veteran_level (0..=3) to its combat multiplier
// (§3 Unit invariant).
var VeteranStrengthMult = [4]float64{1.0, 1.5, 1.75, 2.0}

// Orders is a tagged union of the standing orders a unit can carry (§4.D
// Orders). Concrete variants keep engine dispatch a type switch, not
// subclass polymorphism, per §9.
type Orders interface{ isOrders() }

type OrdersGoto struct{ Path []hexmap.Hex }

func (OrdersGoto) isOrders() {}

type OrdersBuildImprovement struct {
	Improvement    ids.ImprovementId
	At             hexmap.Hex
	TurnsRemaining int
}

func (OrdersBuildImprovement) isOrders() {}

type OrdersRepairImprovement struct {
	At             hexmap.Hex
	TurnsRemaining int
}

func (OrdersRepairImprovement) isOrders() {}

type OrdersFortify struct{}

func (OrdersFortify) isOrders() {}

// Unit is §3's Unit entity.
type Unit struct {
	TypeID        ids.UnitTypeId
	Owner         ids.PlayerId
	Position      hexmap.Hex
	HP            int
	MaxHP         int
	MovesLeft     int
	VeteranLevel  int
	Experience    int
	FortifiedTurns int
	Orders        Orders
	Automated     bool
}

// Clone deep-copies a Unit for the entitystore scratch-clone strategy.
// Orders values are treated as immutable and replaced wholesale, so a
// shallow copy of the interface value is safe.
func (u Unit) Clone() Unit { return u }

// Improvement is the per-tile improvement state (§3 Map).
type Improvement struct {
	ID          ids.ImprovementId
	Tier        uint8
	WorkedTurns int
	Pillaged    bool
}

// Tile is one row-major map cell (§3 Map).
type Tile struct {
	Terrain     ids.TerrainId
	Owner       *ids.PlayerId
	CityID      *uint64
	Improvement *Improvement
	Resource    *string
}

// City is §3's City entity.
type City struct {
	Name               string
	Owner              ids.PlayerId
	Position           hexmap.Hex
	Population         int
	FoodStockpile      int
	ProductionStockpile int
	Buildings          map[ids.BuildingId]struct{}
	Producing          *ProductionItem
	ClaimedTiles       []int // ordered<tile_index>
	BorderProgress     int
	WorkedTiles        []int
}

// Clone deep-copies a City, including its maps and slices, so a scratch
// clone never aliases the live city's mutable state.
func (c City) Clone() City {
	out := c
	out.Buildings = make(map[ids.BuildingId]struct{}, len(c.Buildings))
	for k := range c.Buildings {
		out.Buildings[k] = struct{}{}
	}
	out.ClaimedTiles = append([]int(nil), c.ClaimedTiles...)
	out.WorkedTiles = append([]int(nil), c.WorkedTiles...)
	if c.Producing != nil {
		p := *c.Producing
		out.Producing = &p
	}
	return out
}

// ProductionItem is a tagged union: either a unit type or a building.
type ProductionItem struct {
	UnitType *ids.UnitTypeId
	Building *ids.BuildingId
}

// TradeRoute is §3's TradeRoute entity.
type TradeRoute struct {
	Owner ids.PlayerId
	From  uint64
	To    uint64
	Path  []hexmap.Hex
}

// Clone deep-copies a TradeRoute's path slice.
func (t TradeRoute) Clone() TradeRoute {
	out := t
	out.Path = append([]hexmap.Hex(nil), t.Path...)
	return out
}

// Player is §3's Player aggregate.
type Player struct {
	ID                       ids.PlayerId
	Name                     string
	IsAI                     bool
	Gold                     int
	SupplyUsed               int
	SupplyCap                int
	WarWeariness             int
	Culture                  int
	CultureMilestonesReached int
	AvailablePolicyPicks     int
	Policies                 []ids.PolicyId
	PolicyAdoptedEra         map[ids.PolicyId]string
	Government               *ids.GovernmentId
	Researching              *ids.TechId
	ResearchProgress         int
	ResearchOverflow         int
	KnownTechs               map[ids.TechId]struct{}
	Eliminated               bool
}

func NewPlayer(id ids.PlayerId, name string, isAI bool) *Player {
	return &Player{
		ID:               id,
		Name:             name,
		IsAI:             isAI,
		PolicyAdoptedEra: map[ids.PolicyId]string{},
		KnownTechs:       map[ids.TechId]struct{}{},
	}
}

func (p *Player) Clone() *Player {
	c := *p
	c.Policies = append([]ids.PolicyId(nil), p.Policies...)
	c.PolicyAdoptedEra = make(map[ids.PolicyId]string, len(p.PolicyAdoptedEra))
	for k, v := range p.PolicyAdoptedEra {
		c.PolicyAdoptedEra[k] = v
	}
	c.KnownTechs = make(map[ids.TechId]struct{}, len(p.KnownTechs))
	for k := range p.KnownTechs {
		c.KnownTechs[k] = struct{}{}
	}
	if p.Government != nil {
		g := *p.Government
		c.Government = &g
	}
	if p.Researching != nil {
		r := *p.Researching
		c.Researching = &r
	}
	return &c
}
