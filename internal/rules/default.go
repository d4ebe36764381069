package rules

import "github.com/backbay/imperium/internal/ids"

// DefaultCatalog builds the small embedded rules bundle the server falls
// back to when no operator-supplied bundle path is configured (§6
// CLI/environment). It is intentionally modest: enough terrains, a settler
// and a handful of military units, one government, and a first era of
// techs/buildings/policies to exercise every engine operation end to end.
// Rules authoring itself is an opaque, out-of-scope collaborator (§1); this
// is a fixture, not a design for real content.
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.Terrains[1] = TerrainDef{Name: "plains", Yields: Yields{Food: 2, Prod: 1}, MoveCost: 1}
	c.Terrains[2] = TerrainDef{Name: "grassland", Yields: Yields{Food: 3}, MoveCost: 1}
	c.Terrains[3] = TerrainDef{Name: "hills", Yields: Yields{Prod: 2}, MoveCost: 2, DefenseBonus: 0.25}
	c.Terrains[4] = TerrainDef{Name: "forest", Yields: Yields{Food: 1, Prod: 1}, MoveCost: 2, DefenseBonus: 0.25}
	c.Terrains[5] = TerrainDef{Name: "mountains", MoveCost: 1, Impassable: true}
	c.Terrains[6] = TerrainDef{Name: "ocean", MoveCost: 1, Impassable: true}
	c.Terrains[7] = TerrainDef{Name: "desert", Yields: Yields{Gold: 1}, MoveCost: 1}

	tech1 := ids.TechId(1)
	tech2 := ids.TechId(2)
	c.Techs[tech1] = TechDef{Name: "bronze working", Cost: 20, Era: "ancient", Prerequisites: map[ids.TechId]struct{}{}}
	c.Techs[tech2] = TechDef{Name: "the wheel", Cost: 30, Era: "ancient", Prerequisites: map[ids.TechId]struct{}{1: {}}}

	c.UnitTypes[1] = UnitTypeDef{Name: "settler", Class: "civilian", ProdCost: 30, Moves: 2, HP: 1, CanFoundCity: true}
	c.UnitTypes[2] = UnitTypeDef{Name: "worker", Class: "civilian", ProdCost: 20, Moves: 2, HP: 1, IsWorker: true}
	c.UnitTypes[3] = UnitTypeDef{Name: "warrior", Class: "military", ProdCost: 15, Attack: 2, Defense: 2, Moves: 1, HP: 10, Firepower: 1, SupplyCost: 1, CanFortify: true}
	c.UnitTypes[4] = UnitTypeDef{Name: "spearman", Class: "military", ProdCost: 25, Attack: 2, Defense: 3, Moves: 1, HP: 10, Firepower: 1, SupplyCost: 1, TechRequired: &tech1, CanFortify: true}

	c.Buildings[1] = BuildingDef{Name: "monument", Cost: 40, Maintenance: 0, Admin: 0,
		Effects: []Effect{EffectYieldBonus{Yield: "culture", Amount: 2}}}
	c.Buildings[2] = BuildingDef{Name: "granary", Cost: 60, Maintenance: 1, Admin: 0,
		Effects: []Effect{EffectYieldBonus{Yield: "food", Amount: 1}}}

	c.Improvements[1] = ImprovementDef{
		Name:            "farm",
		AllowedTerrains: []ids.TerrainId{1, 2},
		BuildTurns:      4,
		RepairTurns:     2,
		Tiers: []ImprovementTier{
			{Yields: Yields{Food: 1}, WorkedTurnsToMature: 0},
			{Yields: Yields{Food: 2}, WorkedTurnsToMature: 10},
		},
	}
	c.Improvements[2] = ImprovementDef{
		Name:            "mine",
		AllowedTerrains: []ids.TerrainId{3},
		BuildTurns:      5,
		RepairTurns:     2,
		Tiers: []ImprovementTier{
			{Yields: Yields{Prod: 1}, WorkedTurnsToMature: 0},
			{Yields: Yields{Prod: 2}, WorkedTurnsToMature: 12},
		},
	}

	c.Policies[1] = PolicyDef{Name: "tradition", Effects: []Effect{EffectAdminBonus{Amount: 1}}}
	c.Policies[2] = PolicyDef{Name: "liberty", Effects: []Effect{EffectYieldBonus{Yield: "culture", Amount: 1}}}

	c.Governments[1] = GovernmentDef{Name: "despotism", AdminRating: 1}
	c.Governments[2] = GovernmentDef{Name: "monarchy", AdminRating: 3}

	return c
}
