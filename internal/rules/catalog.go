// Package rules holds the immutable, content-addressed rules bundle (§4.B):
// terrain/unit/building/tech/improvement/policy/government definitions and
// the deterministic rules_hash over their canonical encoding.
package rules

import "github.com/backbay/imperium/internal/ids"

type Yields struct {
	Food    int
	Prod    int
	Gold    int
	Science int
	Culture int
}

type TerrainDef struct {
	Name          string
	Yields        Yields
	MoveCost      int
	DefenseBonus  float64
	Impassable    bool
}

type UnitTypeDef struct {
	Name         string
	Class        string
	ProdCost     int
	Attack       int
	Defense      int
	Moves        int
	HP           int
	Firepower    int
	SupplyCost   int
	TechRequired *ids.TechId
	CanFoundCity bool
	IsWorker     bool
	CanFortify   bool
}

// Cost returns the production points a city must stockpile to complete
// this unit type (§4.D production).
func (u UnitTypeDef) Cost() int { return u.ProdCost }

type BuildingDef struct {
	Name         string
	Cost         int
	Maintenance  int
	Admin        int
	Effects      []Effect
	Requirements []Requirement
	TechRequired *ids.TechId
}

type TechDef struct {
	Name          string
	Cost          int
	Era           string
	Prerequisites map[ids.TechId]struct{}
}

type ImprovementTier struct {
	Yields              Yields
	WorkedTurnsToMature int
}

type ImprovementDef struct {
	Name            string
	AllowedTerrains []ids.TerrainId
	BuildTurns      int
	RepairTurns     int
	Tiers           []ImprovementTier
}

type PolicyDef struct {
	Name         string
	Effects      []Effect
	Requirements []Requirement
}

type GovernmentDef struct {
	Name        string
	AdminRating int
}

// Catalog is the full immutable rules bundle for one game. It is built once
// (by an embedded default or an operator-supplied bytes blob per §6) and
// never mutated afterward; the engine holds a pointer to it.
type Catalog struct {
	Terrains     map[ids.TerrainId]TerrainDef
	UnitTypes    map[ids.UnitTypeId]UnitTypeDef
	Buildings    map[ids.BuildingId]BuildingDef
	Techs        map[ids.TechId]TechDef
	Improvements map[ids.ImprovementId]ImprovementDef
	Policies     map[ids.PolicyId]PolicyDef
	Governments  map[ids.GovernmentId]GovernmentDef
}

func NewCatalog() *Catalog {
	return &Catalog{
		Terrains:     map[ids.TerrainId]TerrainDef{},
		UnitTypes:    map[ids.UnitTypeId]UnitTypeDef{},
		Buildings:    map[ids.BuildingId]BuildingDef{},
		Techs:        map[ids.TechId]TechDef{},
		Improvements: map[ids.ImprovementId]ImprovementDef{},
		Policies:     map[ids.PolicyId]PolicyDef{},
		Governments:  map[ids.GovernmentId]GovernmentDef{},
	}
}
