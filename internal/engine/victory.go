package engine

import (
	"github.com/backbay/imperium/internal/hexmap"
	"github.com/backbay/imperium/internal/ids"
)

// ScienceStage names the five space-project stages referenced by the
// glossary. No command grants progress toward them, so a science victory
// only fires if ScienceProgress is set directly. Kept here so the bitset
// size is fixed and documented.
type ScienceStage int

const (
	StageApolloProgram ScienceStage = iota
	StageSpaceElevator
	StageNuclearFission
	StageRoboticAssembly
	StageExoplanetExpedition
	scienceStageCount
)

type OriginalCapital struct {
	OriginalOwner ids.PlayerId
	Position      hexmap.Hex
	CityID        *uint64
	CurrentOwner  *ids.PlayerId
}

// Victory tracks every condition named in §3/§4.D.victory.
type Victory struct {
	OriginalCapitals    []OriginalCapital
	ScienceProgress     map[ids.PlayerId]Bitset // len == scienceStageCount
	Eliminated          map[ids.PlayerId]bool
	TurnLimit           int
	LifetimeCulture     map[ids.PlayerId]int
	Tourism             map[ids.PlayerId]int
	CultureThresholdPct int
	GameEnded           bool
	Winner              *ids.PlayerId
	Reason              string
}

func NewVictory(turnLimit, cultureThresholdPct int) *Victory {
	return &Victory{
		ScienceProgress:     map[ids.PlayerId]Bitset{},
		Eliminated:          map[ids.PlayerId]bool{},
		LifetimeCulture:     map[ids.PlayerId]int{},
		Tourism:             map[ids.PlayerId]int{},
		TurnLimit:           turnLimit,
		CultureThresholdPct: cultureThresholdPct,
	}
}

func (v *Victory) Clone() *Victory {
	c := &Victory{
		OriginalCapitals:    append([]OriginalCapital(nil), v.OriginalCapitals...),
		ScienceProgress:     make(map[ids.PlayerId]Bitset, len(v.ScienceProgress)),
		Eliminated:          make(map[ids.PlayerId]bool, len(v.Eliminated)),
		LifetimeCulture:     make(map[ids.PlayerId]int, len(v.LifetimeCulture)),
		Tourism:             make(map[ids.PlayerId]int, len(v.Tourism)),
		TurnLimit:           v.TurnLimit,
		CultureThresholdPct: v.CultureThresholdPct,
		GameEnded:           v.GameEnded,
		Reason:              v.Reason,
	}
	for k, b := range v.ScienceProgress {
		c.ScienceProgress[k] = b.Clone()
	}
	for k, e := range v.Eliminated {
		c.Eliminated[k] = e
	}
	for k, x := range v.LifetimeCulture {
		c.LifetimeCulture[k] = x
	}
	for k, x := range v.Tourism {
		c.Tourism[k] = x
	}
	if v.Winner != nil {
		w := *v.Winner
		c.Winner = &w
	}
	return c
}
