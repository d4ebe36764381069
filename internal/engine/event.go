package engine

import (
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

// Event is a tagged union over everything the engine emits (§4.D). Like
// Command, it is a Go interface with one concrete struct per variant so
// routing (§4.I fog) stays a pure function over a type switch.
type Event interface{ isEvent() }

type UnitMoved struct {
	Unit      ids.UnitId
	Path      []hexmap.Hex
	MovesLeft int
}

func (UnitMoved) isEvent() {}

type MovementStoppedReason int

const (
	StoppedMovesExhausted MovementStoppedReason = iota
	StoppedBlocked
	StoppedEnteredEnemyZoc
)

type MovementStopped struct {
	Unit   ids.UnitId
	Reason MovementStoppedReason
}

func (MovementStopped) isEvent() {}

type UnitUpdated struct {
	Unit  ids.UnitId
	State Unit
}

func (UnitUpdated) isEvent() {}

type UnitDied struct {
	Unit  ids.UnitId
	Owner ids.PlayerId
}

func (UnitDied) isEvent() {}

type CombatResult int

const (
	AttackerWins CombatResult = iota
	DefenderWins
)

type CombatStarted struct {
	Attacker      ids.UnitId
	Defender      ids.UnitId
	AttackerOwner ids.PlayerId
	DefenderOwner ids.PlayerId
}

func (CombatStarted) isEvent() {}

type CombatRound struct {
	Attacker ids.UnitId
	Defender ids.UnitId
	Result   CombatResult
}

func (CombatRound) isEvent() {}

type CombatEnded struct {
	Attacker      ids.UnitId
	Defender      ids.UnitId
	AttackerOwner ids.PlayerId
	DefenderOwner ids.PlayerId
	Result        CombatResult
}

func (CombatEnded) isEvent() {}

type UnitPromoted struct {
	Unit         ids.UnitId
	VeteranLevel int
}

func (UnitPromoted) isEvent() {}

type WarDeclared struct {
	Declarer ids.PlayerId
	Target   ids.PlayerId
}

func (WarDeclared) isEvent() {}

type PeaceDeclared struct {
	A ids.PlayerId
	B ids.PlayerId
}

func (PeaceDeclared) isEvent() {}

type RelationChanged struct {
	A, B  ids.PlayerId
	Total int
}

func (RelationChanged) isEvent() {}

type TreatySigned struct{ Treaty Treaty }

func (TreatySigned) isEvent() {}

type TreatyCancelled struct{ Treaty Treaty }

func (TreatyCancelled) isEvent() {}

type CityFounded struct {
	City  ids.CityId
	Owner ids.PlayerId
	Position hexmap.Hex
	Name  string
}

func (CityFounded) isEvent() {}

type BordersExpanded struct {
	City     ids.CityId
	NewTiles []int
}

func (BordersExpanded) isEvent() {}

type CityGrew struct {
	City       ids.CityId
	Population int
}

func (CityGrew) isEvent() {}

type CityProduced struct {
	City ids.CityId
	Item ProductionItem
}

func (CityProduced) isEvent() {}

type UnitCreated struct {
	Unit  ids.UnitId
	Owner ids.PlayerId
	TypeID ids.UnitTypeId
	Position hexmap.Hex
}

func (UnitCreated) isEvent() {}

type ImprovementMatured struct {
	Position hexmap.Hex
	Tier     uint8
}

func (ImprovementMatured) isEvent() {}

type ImprovementBuilt struct {
	Unit     ids.UnitId
	Position hexmap.Hex
	Improvement ids.ImprovementId
}

func (ImprovementBuilt) isEvent() {}

type ImprovementPillaged struct {
	Position hexmap.Hex
	By       ids.UnitId
	Owner    ids.PlayerId
}

func (ImprovementPillaged) isEvent() {}

type TradeRoutePillaged struct {
	Route ids.TradeRouteId
	Owner ids.PlayerId
}

func (TradeRoutePillaged) isEvent() {}

type TradeRouteEstablished struct {
	Route ids.TradeRouteId
	Owner ids.PlayerId
}

func (TradeRouteEstablished) isEvent() {}

type TradeRouteCancelled struct {
	Route ids.TradeRouteId
	Owner ids.PlayerId
}

func (TradeRouteCancelled) isEvent() {}

type SupplyUpdated struct {
	Player ids.PlayerId
	Used   int
	Cap    int
}

func (SupplyUpdated) isEvent() {}

type TechResearched struct {
	Player ids.PlayerId
	Tech   ids.TechId
}

func (TechResearched) isEvent() {}

type PolicyAdopted struct {
	Player ids.PlayerId
	Policy ids.PolicyId
}

func (PolicyAdopted) isEvent() {}

type GovernmentReformed struct {
	Player     ids.PlayerId
	Government ids.GovernmentId
}

func (GovernmentReformed) isEvent() {}

type OrdersCompleted struct{ Unit ids.UnitId }

func (OrdersCompleted) isEvent() {}

type OrdersInterruptedReason int

const (
	InterruptedBlocked OrdersInterruptedReason = iota
	InterruptedEnemyZoc
	InterruptedInvalidTarget
)

type OrdersInterrupted struct {
	Unit   ids.UnitId
	Reason OrdersInterruptedReason
}

func (OrdersInterrupted) isEvent() {}

type TileRevealed struct {
	Player  ids.PlayerId
	Hex     hexmap.Hex
	Terrain ids.TerrainId
}

func (TileRevealed) isEvent() {}

type TileHidden struct {
	Player ids.PlayerId
	Hex    hexmap.Hex
}

func (TileHidden) isEvent() {}

type TurnStarted struct{ Player ids.PlayerId }

func (TurnStarted) isEvent() {}

type TurnEnded struct {
	Player ids.PlayerId
	Turn   int
}

func (TurnEnded) isEvent() {}

type GameEnded struct {
	Winner *ids.PlayerId
	Reason string
}

func (GameEnded) isEvent() {}

type ChronicleRecorded struct{ Entry ChronicleEntry }

func (ChronicleRecorded) isEvent() {}
