package rules

import "github.com/backbay/imperium/internal/ids"

// Effect is a tagged union of building/policy effects (§4.D). New variants
// are expected over a game's lifetime; canonical.go handles unenumerated
// variants with a stable debug-form fallback (§4.B) rather than panicking,
// so adding a variant here never breaks rules_hash compatibility for
// bundles that don't use it.
type Effect interface{ effectTag() uint8 }

type EffectYieldBonus struct {
	Yield  string
	Amount float64
}

func (EffectYieldBonus) effectTag() uint8 { return 1 }

type EffectUnlockUnit struct{ UnitType ids.UnitTypeId }

func (EffectUnlockUnit) effectTag() uint8 { return 2 }

type EffectUnlockImprovement struct{ Improvement ids.ImprovementId }

func (EffectUnlockImprovement) effectTag() uint8 { return 3 }

type EffectAdminBonus struct{ Amount int }

func (EffectAdminBonus) effectTag() uint8 { return 4 }

type EffectWarWearinessReduction struct{ Amount int }

func (EffectWarWearinessReduction) effectTag() uint8 { return 5 }

// Requirement is a tagged union of adoption/build prerequisites.
type Requirement interface{ requirementTag() uint8 }

type RequireTech struct{ Tech ids.TechId }

func (RequireTech) requirementTag() uint8 { return 1 }

type RequirePolicy struct{ Policy ids.PolicyId }

func (RequirePolicy) requirementTag() uint8 { return 2 }

type RequireGovernment struct{ Government ids.GovernmentId }

func (RequireGovernment) requirementTag() uint8 { return 3 }

type RequireBuildingInCity struct{ Building ids.BuildingId }

func (RequireBuildingInCity) requirementTag() uint8 { return 4 }
