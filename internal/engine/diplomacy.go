package engine

import "github.com/backbay/imperium/internal/ids"

// RelationBreakdown decomposes a pairwise relation into named contributions
// that must sum to the aggregate (§3 Diplomacy, §8 invariant 6).
type RelationBreakdown struct {
	Base          int
	Trade         int
	Borders       int
	Ideology      int
	Betrayal      int
	Military      int
	Treaties      int
	WarHistory    int
	SharedEnemies int
	Tribute       int
}

func (b RelationBreakdown) Total() int {
	return b.Base + b.Trade + b.Borders + b.Ideology + b.Betrayal +
		b.Military + b.Treaties + b.WarHistory + b.SharedEnemies + b.Tribute
}

type TreatyType int

const (
	TreatyOpenBorders TreatyType = iota
	TreatyDefensivePact
	TreatyAlliance
	TreatyNonAggression
	TreatyResearchAgreement
	TreatyTradeAgreement
)

type Treaty struct {
	ID         ids.TreatyId
	Type       TreatyType
	PartyA     ids.PlayerId
	PartyB     ids.PlayerId
	SignedTurn int
	ExpiresTurn *int
	Active     bool
}

type DealOffer struct {
	Gold       int
	Techs      []ids.TechId
	TreatyType *TreatyType
}

type DealProposal struct {
	ID         uint64
	From       ids.PlayerId
	To         ids.PlayerId
	Offer      DealOffer
	Demand     DealOffer
	ExpiresTurn int
}

type DemandConsequence int

const (
	ConsequenceNone DemandConsequence = iota
	ConsequenceDeclareWar
)

type Demand struct {
	ID          uint64
	From        ids.PlayerId
	To          ids.PlayerId
	Items       DealOffer
	Consequence DemandConsequence
	ExpiresTurn int
}

// Diplomacy holds the symmetric n×n war/relation state plus the treaty and
// pending-deal queues (§3 Diplomacy).
type Diplomacy struct {
	AtWar           map[[2]ids.PlayerId]bool
	Relations       map[[2]ids.PlayerId]RelationBreakdown
	Treaties        []Treaty
	Proposals       []DealProposal
	Demands         []Demand
	nextTreatyID    uint64
	nextProposalID  uint64
	nextDemandID    uint64
}

func NewDiplomacy() *Diplomacy {
	return &Diplomacy{
		AtWar:     map[[2]ids.PlayerId]bool{},
		Relations: map[[2]ids.PlayerId]RelationBreakdown{},
	}
}

func pairKey(a, b ids.PlayerId) [2]ids.PlayerId {
	if a <= b {
		return [2]ids.PlayerId{a, b}
	}
	return [2]ids.PlayerId{b, a}
}

func (d *Diplomacy) AtWarBetween(a, b ids.PlayerId) bool {
	if a == b {
		return false
	}
	return d.AtWar[pairKey(a, b)]
}

func (d *Diplomacy) SetAtWar(a, b ids.PlayerId, v bool) {
	if a == b {
		return
	}
	d.AtWar[pairKey(a, b)] = v
}

func (d *Diplomacy) Relation(a, b ids.PlayerId) RelationBreakdown {
	if a == b {
		return RelationBreakdown{}
	}
	return d.Relations[pairKey(a, b)]
}

func (d *Diplomacy) AdjustRelation(a, b ids.PlayerId, fn func(*RelationBreakdown)) {
	if a == b {
		return
	}
	key := pairKey(a, b)
	br := d.Relations[key]
	fn(&br)
	d.Relations[key] = br
}

func (d *Diplomacy) AnyWar(p ids.PlayerId, players []ids.PlayerId) bool {
	for _, other := range players {
		if other != p && d.AtWarBetween(p, other) {
			return true
		}
	}
	return false
}

func (d *Diplomacy) AddTreaty(t Treaty) ids.TreatyId {
	d.nextTreatyID++
	t.ID = ids.TreatyId(d.nextTreatyID)
	d.Treaties = append(d.Treaties, t)
	return t.ID
}

func (d *Diplomacy) CancelTreatiesBetween(a, b ids.PlayerId) []Treaty {
	var cancelled []Treaty
	for i := range d.Treaties {
		t := &d.Treaties[i]
		if !t.Active {
			continue
		}
		if (t.PartyA == a && t.PartyB == b) || (t.PartyA == b && t.PartyB == a) {
			t.Active = false
			cancelled = append(cancelled, *t)
		}
	}
	return cancelled
}

func (d *Diplomacy) AddProposal(p DealProposal) uint64 {
	d.nextProposalID++
	p.ID = d.nextProposalID
	d.Proposals = append(d.Proposals, p)
	return p.ID
}

func (d *Diplomacy) AddDemand(dem Demand) uint64 {
	d.nextDemandID++
	dem.ID = d.nextDemandID
	d.Demands = append(d.Demands, dem)
	return dem.ID
}

func (d *Diplomacy) Clone() *Diplomacy {
	c := &Diplomacy{
		AtWar:          make(map[[2]ids.PlayerId]bool, len(d.AtWar)),
		Relations:      make(map[[2]ids.PlayerId]RelationBreakdown, len(d.Relations)),
		Treaties:       append([]Treaty(nil), d.Treaties...),
		Proposals:      append([]DealProposal(nil), d.Proposals...),
		Demands:        append([]Demand(nil), d.Demands...),
		nextTreatyID:   d.nextTreatyID,
		nextProposalID: d.nextProposalID,
		nextDemandID:   d.nextDemandID,
	}
	for k, v := range d.AtWar {
		c.AtWar[k] = v
	}
	for k, v := range d.Relations {
		c.Relations[k] = v
	}
	return c
}
