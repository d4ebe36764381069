package engine

import (
	gameerrors "github.com/backbay/imperium/internal/errors"
	"github.com/backbay/imperium/internal/ids"
	"github.com/backbay/imperium/internal/rules"
)

func handleSetResearch(gs *GameState, actor ids.PlayerId, c SetResearch) ([]Event, error) {
	p, ok := gs.Players[actor]
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourTurn, "")
	}
	techDef, ok := gs.Catalog.Techs[c.Tech]
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownTech, "")
	}
	if _, known := p.KnownTechs[c.Tech]; known {
		return nil, gameerrors.NewGameError(gameerrors.ErrTechAlreadyResearched, "")
	}
	for prereq := range techDef.Prerequisites {
		if _, known := p.KnownTechs[prereq]; !known {
			return nil, gameerrors.NewGameError(gameerrors.ErrTechPrereqsNotMet, "")
		}
	}
	tech := c.Tech
	p.Researching = &tech
	p.ResearchProgress = 0
	return nil, nil
}

func handleAdoptPolicy(gs *GameState, actor ids.PlayerId, c AdoptPolicy) ([]Event, error) {
	p, ok := gs.Players[actor]
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourTurn, "")
	}
	policyDef, ok := gs.Catalog.Policies[c.Policy]
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownPolicy, "")
	}
	if _, adopted := p.PolicyAdoptedEra[c.Policy]; adopted {
		return nil, gameerrors.NewGameError(gameerrors.ErrPolicyAlreadyAdopted, "")
	}
	if p.AvailablePolicyPicks <= 0 {
		return nil, gameerrors.NewGameError(gameerrors.ErrNoAvailablePolicyPicks, "")
	}
	if err := requirementsSatisfied(gs, p, policyDef.Requirements); err != nil {
		return nil, err
	}
	p.AvailablePolicyPicks--
	p.Policies = append(p.Policies, c.Policy)
	p.PolicyAdoptedEra[c.Policy] = currentEra(gs, p)
	gs.Chronicle.Append(gs.Turn, ChroniclePolicyAdopted, actor, nil, "")
	return []Event{PolicyAdopted{Player: actor, Policy: c.Policy}}, nil
}

func handleReformGovernment(gs *GameState, actor ids.PlayerId, c ReformGovernment) ([]Event, error) {
	p, ok := gs.Players[actor]
	if !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrNotYourTurn, "")
	}
	if _, ok := gs.Catalog.Governments[c.Government]; !ok {
		return nil, gameerrors.NewGameError(gameerrors.ErrUnknownGovernment, "")
	}
	gov := c.Government
	p.Government = &gov
	gs.Chronicle.Append(gs.Turn, ChronicleGovernmentReformed, actor, nil, "")
	return []Event{GovernmentReformed{Player: actor, Government: c.Government}}, nil
}

// requirementsSatisfied validates a rules.Requirement list against p's
// current state via a type switch (§9: never subclass polymorphism).
func requirementsSatisfied(gs *GameState, p *Player, reqs []rules.Requirement) error {
	for _, req := range reqs {
		switch r := req.(type) {
		case rules.RequireTech:
			if _, ok := p.KnownTechs[r.Tech]; !ok {
				return gameerrors.NewGameError(gameerrors.ErrTechPrereqsNotMet, "")
			}
		case rules.RequirePolicy:
			if _, ok := p.PolicyAdoptedEra[r.Policy]; !ok {
				return gameerrors.NewGameError(gameerrors.ErrNoAvailablePolicyPicks, "requires policy")
			}
		case rules.RequireGovernment:
			if p.Government == nil || *p.Government != r.Government {
				return gameerrors.NewGameError(gameerrors.ErrUnknownGovernment, "requires government")
			}
		case rules.RequireBuildingInCity:
			if !gs.playerHasBuilding(p.ID, r.Building) {
				return gameerrors.NewGameError(gameerrors.ErrCannotBuildImprovementHere, "requires building")
			}
		}
	}
	return nil
}

func (gs *GameState) playerHasBuilding(owner ids.PlayerId, building ids.BuildingId) bool {
	found := false
	gs.Cities.IterOrdered(func(_ uint64, c City) {
		if found || c.Owner != owner {
			return
		}
		if _, ok := c.Buildings[building]; ok {
			found = true
		}
	})
	return found
}

func currentEra(gs *GameState, p *Player) string {
	era := "ancient"
	for tech := range p.KnownTechs {
		if def, ok := gs.Catalog.Techs[tech]; ok && def.Era != "" {
			era = def.Era
		}
	}
	return era
}
