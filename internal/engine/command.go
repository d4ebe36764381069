package engine

import (
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

// Command is a tagged union over the exhaustive command set in §4.D — a
// Go interface with one concrete struct per variant, dispatched in
// Engine.ApplyCommandChecked via a type switch, never subclass
// polymorphism (§9).
type Command interface{ isCommand() }

type MoveUnit struct {
	Unit ids.UnitId
	Path []hexmap.Hex
}

func (MoveUnit) isCommand() {}

type AttackUnit struct {
	Attacker ids.UnitId
	Target   ids.UnitId
}

func (AttackUnit) isCommand() {}

type Fortify struct{ Unit ids.UnitId }

func (Fortify) isCommand() {}

type SetOrders struct {
	Unit   ids.UnitId
	Orders Orders
}

func (SetOrders) isCommand() {}

type CancelOrders struct{ Unit ids.UnitId }

func (CancelOrders) isCommand() {}

type SetWorkerAutomation struct {
	Unit    ids.UnitId
	Enabled bool
}

func (SetWorkerAutomation) isCommand() {}

type PillageImprovement struct{ Unit ids.UnitId }

func (PillageImprovement) isCommand() {}

type FoundCity struct {
	Settler ids.UnitId
	Name    string
}

func (FoundCity) isCommand() {}

type SetProduction struct {
	City ids.CityId
	Item ProductionItem
}

func (SetProduction) isCommand() {}

// BuyProduction is accepted and validated but intentionally a no-op today
// (§4.D command set, §9 Open Question) pending a gold-to-production
// conversion design.
type BuyProduction struct{ City ids.CityId }

func (BuyProduction) isCommand() {}

// AssignCitizen/UnassignCitizen are accepted and validated but intentionally
// no-ops today (same Open Question).
type AssignCitizen struct {
	City      ids.CityId
	TileIndex int
}

func (AssignCitizen) isCommand() {}

type UnassignCitizen struct {
	City      ids.CityId
	TileIndex int
}

func (UnassignCitizen) isCommand() {}

type SetResearch struct{ Tech ids.TechId }

func (SetResearch) isCommand() {}

type AdoptPolicy struct{ Policy ids.PolicyId }

func (AdoptPolicy) isCommand() {}

type ReformGovernment struct{ Government ids.GovernmentId }

func (ReformGovernment) isCommand() {}

type EstablishTradeRoute struct {
	From ids.CityId
	To   ids.CityId
}

func (EstablishTradeRoute) isCommand() {}

type CancelTradeRoute struct{ Route ids.TradeRouteId }

func (CancelTradeRoute) isCommand() {}

type DeclareWar struct{ Target ids.PlayerId }

func (DeclareWar) isCommand() {}

type DeclarePeace struct{ Target ids.PlayerId }

func (DeclarePeace) isCommand() {}

type ProposeDeal struct {
	To     ids.PlayerId
	Offer  DealOffer
	Demand DealOffer
}

func (ProposeDeal) isCommand() {}

type RespondToProposal struct {
	From   ids.PlayerId
	Accept bool
}

func (RespondToProposal) isCommand() {}

type CancelTreaty struct{ Treaty ids.TreatyId }

func (CancelTreaty) isCommand() {}

type IssueDemand struct {
	To          ids.PlayerId
	Items       DealOffer
	Consequence DemandConsequence
}

func (IssueDemand) isCommand() {}

type RespondToDemand struct {
	Demand uint64
	Accept bool
}

func (RespondToDemand) isCommand() {}

type EndTurn struct{}

func (EndTurn) isCommand() {}
