package server

import (
	"encoding/json"
	"fmt"

	"github.com/backbay/imperium/internal/engine"
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

// wireHex is the wire shape of hexmap.Hex.
type wireHex struct {
	Q int32 `json:"q"`
	R int32 `json:"r"`
}

func (h wireHex) toHex() hexmap.Hex { return hexmap.Hex{Q: h.Q, R: h.R} }

func toHexes(hs []wireHex) []hexmap.Hex {
	out := make([]hexmap.Hex, len(hs))
	for i, h := range hs {
		out[i] = h.toHex()
	}
	return out
}

type wireDealOffer struct {
	Gold       int          `json:"gold"`
	Techs      []ids.TechId `json:"techs,omitempty"`
	TreatyType *int         `json:"treaty_type,omitempty"`
}

func (o wireDealOffer) toDealOffer() engine.DealOffer {
	d := engine.DealOffer{Gold: o.Gold, Techs: append([]ids.TechId(nil), o.Techs...)}
	if o.TreatyType != nil {
		t := engine.TreatyType(*o.TreatyType)
		d.TreatyType = &t
	}
	return d
}

type wireProductionItem struct {
	UnitType *ids.UnitTypeId `json:"unit_type,omitempty"`
	Building *ids.BuildingId `json:"building,omitempty"`
}

func (i wireProductionItem) toProductionItem() engine.ProductionItem {
	return engine.ProductionItem{UnitType: i.UnitType, Building: i.Building}
}

// wireOrders is the wire shape of the engine.Orders tagged union.
type wireOrders struct {
	Type           string          `json:"type"`
	Path           []wireHex       `json:"path,omitempty"`
	Improvement    *ids.ImprovementId `json:"improvement,omitempty"`
	At             *wireHex        `json:"at,omitempty"`
	TurnsRemaining int             `json:"turns_remaining,omitempty"`
}

func (o wireOrders) toOrders() (engine.Orders, error) {
	switch o.Type {
	case "goto":
		return engine.OrdersGoto{Path: toHexes(o.Path)}, nil
	case "build_improvement":
		if o.Improvement == nil || o.At == nil {
			return nil, fmt.Errorf("build_improvement orders require improvement and at")
		}
		return engine.OrdersBuildImprovement{Improvement: *o.Improvement, At: o.At.toHex(), TurnsRemaining: o.TurnsRemaining}, nil
	case "repair_improvement":
		if o.At == nil {
			return nil, fmt.Errorf("repair_improvement orders require at")
		}
		return engine.OrdersRepairImprovement{At: o.At.toHex(), TurnsRemaining: o.TurnsRemaining}, nil
	case "fortify":
		return engine.OrdersFortify{}, nil
	default:
		return nil, fmt.Errorf("unknown orders type %q", o.Type)
	}
}

// wireCommand is the JSON wire shape of engine.Command: one envelope with a
// Type discriminant and every variant's fields laid flat, unused ones
// omitted (§6 Turn submission).
type wireCommand struct {
	Type string `json:"type"`

	UnitID       *uint64 `json:"unit,omitempty"`
	TargetUnitID *uint64 `json:"target_unit,omitempty"`
	Path         []wireHex `json:"path,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
	Name         *string `json:"name,omitempty"`

	CityID *uint64             `json:"city,omitempty"`
	Item   *wireProductionItem `json:"item,omitempty"`

	TileIndex *int `json:"tile_index,omitempty"`

	TechID       *ids.TechId       `json:"tech,omitempty"`
	PolicyID     *ids.PolicyId     `json:"policy,omitempty"`
	GovernmentID *ids.GovernmentId `json:"government,omitempty"`

	FromCityID *uint64 `json:"from_city,omitempty"`
	ToCityID   *uint64 `json:"to_city,omitempty"`
	RouteID    *uint64 `json:"route,omitempty"`

	TargetPlayer *ids.PlayerId `json:"target_player,omitempty"`
	ToPlayer     *ids.PlayerId `json:"to_player,omitempty"`
	FromPlayer   *ids.PlayerId `json:"from_player,omitempty"`

	Offer       *wireDealOffer `json:"offer,omitempty"`
	Demand      *wireDealOffer `json:"demand,omitempty"`
	Items       *wireDealOffer `json:"items,omitempty"`
	Consequence *int           `json:"consequence,omitempty"`

	Accept   *bool   `json:"accept,omitempty"`
	TreatyID *uint64 `json:"treaty,omitempty"`
	DemandID *uint64 `json:"demand_id,omitempty"`

	Orders *wireOrders `json:"orders,omitempty"`
}

// DecodeCommand parses one TurnSubmission command entry into its concrete
// engine.Command variant.
func DecodeCommand(raw json.RawMessage) (engine.Command, error) {
	var w wireCommand
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	switch w.Type {
	case "MoveUnit":
		if w.UnitID == nil {
			return nil, fmt.Errorf("MoveUnit requires unit")
		}
		return engine.MoveUnit{Unit: ids.UnitId(*w.UnitID), Path: toHexes(w.Path)}, nil
	case "AttackUnit":
		if w.UnitID == nil || w.TargetUnitID == nil {
			return nil, fmt.Errorf("AttackUnit requires unit and target_unit")
		}
		return engine.AttackUnit{Attacker: ids.UnitId(*w.UnitID), Target: ids.UnitId(*w.TargetUnitID)}, nil
	case "Fortify":
		if w.UnitID == nil {
			return nil, fmt.Errorf("Fortify requires unit")
		}
		return engine.Fortify{Unit: ids.UnitId(*w.UnitID)}, nil
	case "SetOrders":
		if w.UnitID == nil || w.Orders == nil {
			return nil, fmt.Errorf("SetOrders requires unit and orders")
		}
		ord, err := w.Orders.toOrders()
		if err != nil {
			return nil, err
		}
		return engine.SetOrders{Unit: ids.UnitId(*w.UnitID), Orders: ord}, nil
	case "CancelOrders":
		if w.UnitID == nil {
			return nil, fmt.Errorf("CancelOrders requires unit")
		}
		return engine.CancelOrders{Unit: ids.UnitId(*w.UnitID)}, nil
	case "SetWorkerAutomation":
		if w.UnitID == nil || w.Enabled == nil {
			return nil, fmt.Errorf("SetWorkerAutomation requires unit and enabled")
		}
		return engine.SetWorkerAutomation{Unit: ids.UnitId(*w.UnitID), Enabled: *w.Enabled}, nil
	case "PillageImprovement":
		if w.UnitID == nil {
			return nil, fmt.Errorf("PillageImprovement requires unit")
		}
		return engine.PillageImprovement{Unit: ids.UnitId(*w.UnitID)}, nil
	case "FoundCity":
		if w.UnitID == nil || w.Name == nil {
			return nil, fmt.Errorf("FoundCity requires unit and name")
		}
		return engine.FoundCity{Settler: ids.UnitId(*w.UnitID), Name: *w.Name}, nil
	case "SetProduction":
		if w.CityID == nil || w.Item == nil {
			return nil, fmt.Errorf("SetProduction requires city and item")
		}
		return engine.SetProduction{City: ids.CityId(*w.CityID), Item: w.Item.toProductionItem()}, nil
	case "BuyProduction":
		if w.CityID == nil {
			return nil, fmt.Errorf("BuyProduction requires city")
		}
		return engine.BuyProduction{City: ids.CityId(*w.CityID)}, nil
	case "AssignCitizen":
		if w.CityID == nil || w.TileIndex == nil {
			return nil, fmt.Errorf("AssignCitizen requires city and tile_index")
		}
		return engine.AssignCitizen{City: ids.CityId(*w.CityID), TileIndex: *w.TileIndex}, nil
	case "UnassignCitizen":
		if w.CityID == nil || w.TileIndex == nil {
			return nil, fmt.Errorf("UnassignCitizen requires city and tile_index")
		}
		return engine.UnassignCitizen{City: ids.CityId(*w.CityID), TileIndex: *w.TileIndex}, nil
	case "SetResearch":
		if w.TechID == nil {
			return nil, fmt.Errorf("SetResearch requires tech")
		}
		return engine.SetResearch{Tech: *w.TechID}, nil
	case "AdoptPolicy":
		if w.PolicyID == nil {
			return nil, fmt.Errorf("AdoptPolicy requires policy")
		}
		return engine.AdoptPolicy{Policy: *w.PolicyID}, nil
	case "ReformGovernment":
		if w.GovernmentID == nil {
			return nil, fmt.Errorf("ReformGovernment requires government")
		}
		return engine.ReformGovernment{Government: *w.GovernmentID}, nil
	case "EstablishTradeRoute":
		if w.FromCityID == nil || w.ToCityID == nil {
			return nil, fmt.Errorf("EstablishTradeRoute requires from_city and to_city")
		}
		return engine.EstablishTradeRoute{From: ids.CityId(*w.FromCityID), To: ids.CityId(*w.ToCityID)}, nil
	case "CancelTradeRoute":
		if w.RouteID == nil {
			return nil, fmt.Errorf("CancelTradeRoute requires route")
		}
		return engine.CancelTradeRoute{Route: ids.TradeRouteId(*w.RouteID)}, nil
	case "DeclareWar":
		if w.TargetPlayer == nil {
			return nil, fmt.Errorf("DeclareWar requires target_player")
		}
		return engine.DeclareWar{Target: *w.TargetPlayer}, nil
	case "DeclarePeace":
		if w.TargetPlayer == nil {
			return nil, fmt.Errorf("DeclarePeace requires target_player")
		}
		return engine.DeclarePeace{Target: *w.TargetPlayer}, nil
	case "ProposeDeal":
		if w.ToPlayer == nil || w.Offer == nil || w.Demand == nil {
			return nil, fmt.Errorf("ProposeDeal requires to_player, offer and demand")
		}
		return engine.ProposeDeal{To: *w.ToPlayer, Offer: w.Offer.toDealOffer(), Demand: w.Demand.toDealOffer()}, nil
	case "RespondToProposal":
		if w.FromPlayer == nil || w.Accept == nil {
			return nil, fmt.Errorf("RespondToProposal requires from_player and accept")
		}
		return engine.RespondToProposal{From: *w.FromPlayer, Accept: *w.Accept}, nil
	case "CancelTreaty":
		if w.TreatyID == nil {
			return nil, fmt.Errorf("CancelTreaty requires treaty")
		}
		return engine.CancelTreaty{Treaty: ids.TreatyId(*w.TreatyID)}, nil
	case "IssueDemand":
		if w.ToPlayer == nil || w.Items == nil || w.Consequence == nil {
			return nil, fmt.Errorf("IssueDemand requires to_player, items and consequence")
		}
		return engine.IssueDemand{To: *w.ToPlayer, Items: w.Items.toDealOffer(), Consequence: engine.DemandConsequence(*w.Consequence)}, nil
	case "RespondToDemand":
		if w.DemandID == nil || w.Accept == nil {
			return nil, fmt.Errorf("RespondToDemand requires demand_id and accept")
		}
		return engine.RespondToDemand{Demand: *w.DemandID, Accept: *w.Accept}, nil
	case "EndTurn":
		return engine.EndTurn{}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", w.Type)
	}
}
