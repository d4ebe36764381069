package engine

import (
	gameerrors "github.com/backbay/imperium/internal/errors"
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

func handleDeclareWar(gs *GameState, actor ids.PlayerId, c DeclareWar) ([]Event, error) {
	if c.Target == actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotTradeWithSelf, "")
	}
	if gs.Diplomacy.AtWarBetween(actor, c.Target) {
		return nil, nil
	}
	gs.Diplomacy.SetAtWar(actor, c.Target, true)
	cancelled := gs.Diplomacy.CancelTreatiesBetween(actor, c.Target)
	gs.Diplomacy.AdjustRelation(actor, c.Target, func(b *RelationBreakdown) { b.Military -= 20 })
	gs.Chronicle.Append(gs.Turn, ChronicleWarDeclared, actor, ptrPlayer(c.Target), "")

	events := []Event{WarDeclared{Declarer: actor, Target: c.Target}}
	for _, t := range cancelled {
		events = append(events, TreatyCancelled{Treaty: t})
	}
	return events, nil
}

func handleDeclarePeace(gs *GameState, actor ids.PlayerId, c DeclarePeace) ([]Event, error) {
	if !gs.Diplomacy.AtWarBetween(actor, c.Target) {
		return nil, nil
	}
	gs.Diplomacy.SetAtWar(actor, c.Target, false)
	gs.Chronicle.Append(gs.Turn, ChroniclePeaceDeclared, actor, ptrPlayer(c.Target), "")
	return []Event{PeaceDeclared{A: actor, B: c.Target}}, nil
}

func handleProposeDeal(gs *GameState, actor ids.PlayerId, c ProposeDeal) ([]Event, error) {
	if c.To == actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotTradeWithSelf, "")
	}
	gs.Diplomacy.AddProposal(DealProposal{
		From: actor, To: c.To, Offer: c.Offer, Demand: c.Demand,
		ExpiresTurn: gs.Turn + 10,
	})
	return nil, nil
}

func findProposal(gs *GameState, from ids.PlayerId, to ids.PlayerId) (int, bool) {
	for i, p := range gs.Diplomacy.Proposals {
		if p.From == from && p.To == to {
			return i, true
		}
	}
	return -1, false
}

func handleRespondToProposal(gs *GameState, actor ids.PlayerId, c RespondToProposal) ([]Event, error) {
	idx, ok := findProposal(gs, c.From, actor)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownProposal, "")
	}
	proposal := gs.Diplomacy.Proposals[idx]
	gs.Diplomacy.Proposals = append(gs.Diplomacy.Proposals[:idx], gs.Diplomacy.Proposals[idx+1:]...)
	if !c.Accept {
		return nil, nil
	}

	var events []Event
	if err := settleDealOffer(gs, proposal.From, proposal.To, proposal.Offer); err != nil {
		return nil, err
	}
	if err := settleDealOffer(gs, proposal.To, proposal.From, proposal.Demand); err != nil {
		return nil, err
	}
	if proposal.Offer.TreatyType != nil {
		treaty := Treaty{Type: *proposal.Offer.TreatyType, PartyA: proposal.From, PartyB: proposal.To, SignedTurn: gs.Turn, Active: true}
		gs.Diplomacy.AddTreaty(treaty)
		gs.Chronicle.Append(gs.Turn, ChronicleTreatySigned, proposal.From, ptrPlayer(proposal.To), "")
		events = append(events, TreatySigned{Treaty: treaty})
	}
	return events, nil
}

func settleDealOffer(gs *GameState, from, to ids.PlayerId, offer DealOffer) error {
	fromPlayer, ok := gs.Players[from]
	if !ok {
		return gameerrors.NewGameError(gameerrors.ErrNotYourTurn, "")
	}
	toPlayer, ok := gs.Players[to]
	if !ok {
		return gameerrors.NewGameError(gameerrors.ErrNotYourTurn, "")
	}
	if offer.Gold > 0 {
		if fromPlayer.Gold < offer.Gold {
			return gameerrors.NewGameError(gameerrors.ErrNotEnoughGold, "")
		}
		fromPlayer.Gold -= offer.Gold
		toPlayer.Gold += offer.Gold
	}
	for _, tech := range offer.Techs {
		if _, ok := fromPlayer.KnownTechs[tech]; !ok {
			return gameerrors.NewGameError(gameerrors.ErrUnknownTech, "")
		}
		toPlayer.KnownTechs[tech] = struct{}{}
	}
	return nil
}

func handleCancelTreaty(gs *GameState, actor ids.PlayerId, c CancelTreaty) ([]Event, error) {
	for i := range gs.Diplomacy.Treaties {
		t := &gs.Diplomacy.Treaties[i]
		if t.ID != c.Treaty || !t.Active {
			continue
		}
		if t.PartyA != actor && t.PartyB != actor {
			return nil, gameerrors.NewGameError(gameerrors.ErrUnknownTreaty, "not a party")
		}
		t.Active = false
		gs.Chronicle.Append(gs.Turn, ChronicleTreatyCancelled, actor, nil, "")
		return []Event{TreatyCancelled{Treaty: *t}}, nil
	}
	return nil, gameerrors.NewGameError(gameerrors.ErrUnknownTreaty, "")
}

func handleIssueDemand(gs *GameState, actor ids.PlayerId, c IssueDemand) ([]Event, error) {
	if c.To == actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotTradeWithSelf, "")
	}
	gs.Diplomacy.AddDemand(Demand{
		From: actor, To: c.To, Items: c.Items, Consequence: c.Consequence,
		ExpiresTurn: gs.Turn + 5,
	})
	return nil, nil
}

func findDemand(gs *GameState, id uint64) (int, bool) {
	for i, d := range gs.Diplomacy.Demands {
		if d.ID == id {
			return i, true
		}
	}
	return -1, false
}

func handleRespondToDemand(gs *GameState, actor ids.PlayerId, c RespondToDemand) ([]Event, error) {
	idx, ok := findDemand(gs, c.Demand)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownDemand, "")
	}
	demand := gs.Diplomacy.Demands[idx]
	if demand.To != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownDemand, "")
	}
	gs.Diplomacy.Demands = append(gs.Diplomacy.Demands[:idx], gs.Diplomacy.Demands[idx+1:]...)

	if c.Accept {
		if err := settleDealOffer(gs, demand.To, demand.From, demand.Items); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if demand.Consequence == ConsequenceDeclareWar {
		return handleDeclareWar(gs, demand.From, DeclareWar{Target: demand.To})
	}
	return nil, nil
}

// tradeRouteCapacity bounds how many routes may start or end at the origin
// city of a new route at once (§4.D trade).
const tradeRouteCapacity = 3

func handleEstablishTradeRoute(gs *GameState, actor ids.PlayerId, c EstablishTradeRoute) ([]Event, error) {
	from, ok := findCity(gs, c.From)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownCity, "from")
	}
	to, ok := findCity(gs, c.To)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownCity, "to")
	}
	if from.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "not your city")
	}
	if c.From == c.To {
		return nil, gameerrors.NewGameError(gameerrors.ErrCannotTradeWithSelf, "")
	}

	count := 0
	gs.TradeRoutes.IterOrdered(func(_ uint64, r TradeRoute) {
		if r.From == uint64(c.From) || r.To == uint64(c.From) {
			count++
		}
	})
	if count >= tradeRouteCapacity {
		return nil, gameerrors.NewGameError(gameerrors.ErrTradeRouteCapacityExceeded, "")
	}

	ctx := PathContextFor(gs, actor)
	noOccupancy := &hexmap.PathContext{Map: ctx.Map, EnterCost: ctx.EnterCost, Occupied: func(int) bool { return false }, ZoC: func(int) bool { return false }}
	path, ok := hexmap.ShortestPath(noOccupancy, from.Position, to.Position)
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrInvalidPath, "no route between cities")
	}

	route := TradeRoute{Owner: actor, From: uint64(c.From), To: uint64(c.To), Path: path}
	id := gs.TradeRoutes.Insert(route)
	return []Event{TradeRouteEstablished{Route: ids.TradeRouteId(id), Owner: actor}}, nil
}

func handleCancelTradeRoute(gs *GameState, actor ids.PlayerId, c CancelTradeRoute) ([]Event, error) {
	route, ok := gs.TradeRoutes.Get(uint64(c.Route))
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownTradeRoute, "")
	}
	if route.Owner != actor {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourUnit, "")
	}
	gs.TradeRoutes.Remove(uint64(c.Route))
	return []Event{TradeRouteCancelled{Route: c.Route, Owner: actor}}, nil
}
