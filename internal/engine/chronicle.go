package engine

import "github.com/backbay/imperium/internal/ids"

// ChronicleKind tags each chronicle entry's event for per-player filtering
// (§3 Chronicle, §9 "routing policy is a pure function ... kept in one
// place").
type ChronicleKind int

const (
	ChronicleCityFounded ChronicleKind = iota
	ChronicleWarDeclared
	ChroniclePeaceDeclared
	ChronicleTechResearched
	ChronicleGovernmentReformed
	ChroniclePolicyAdopted
	ChronicleUnitPromoted
	ChronicleCityCaptured
	ChronicleTreatySigned
	ChronicleTreatyCancelled
	ChronicleVictory
)

// RouteClass is the visibility class a chronicle entry (or engine event)
// belongs to (§4.I fog-of-war event routing).
type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteOwnerOnly
	RoutePartyOnly
	RouteTileOwner
)

// chronicleRelevance is the single table the spec's §9 design note asks
// for: one place that says which players see which chronicle kinds.
var chronicleRelevance = map[ChronicleKind]RouteClass{
	ChronicleCityFounded:       RoutePublic,
	ChronicleWarDeclared:       RoutePublic,
	ChroniclePeaceDeclared:     RoutePublic,
	ChronicleTechResearched:    RouteOwnerOnly,
	ChronicleGovernmentReformed: RouteOwnerOnly,
	ChroniclePolicyAdopted:     RouteOwnerOnly,
	ChronicleUnitPromoted:      RouteOwnerOnly,
	ChronicleCityCaptured:      RoutePublic,
	ChronicleTreatySigned:      RoutePartyOnly,
	ChronicleTreatyCancelled:   RoutePartyOnly,
	ChronicleVictory:           RoutePublic,
}

func ChronicleRelevance(kind ChronicleKind) RouteClass {
	return chronicleRelevance[kind]
}

// ChronicleEntry is one append-only historical record (§3 Chronicle).
type ChronicleEntry struct {
	ID      uint64
	Turn    int
	Kind    ChronicleKind
	Subject ids.PlayerId
	Party   *ids.PlayerId
	Detail  string
}

// Chronicle is the monotonically increasing log.
type Chronicle struct {
	entries []ChronicleEntry
	nextID  uint64
}

func NewChronicle() *Chronicle { return &Chronicle{} }

func (c *Chronicle) Append(turn int, kind ChronicleKind, subject ids.PlayerId, party *ids.PlayerId, detail string) ChronicleEntry {
	c.nextID++
	e := ChronicleEntry{ID: c.nextID, Turn: turn, Kind: kind, Subject: subject, Party: party, Detail: detail}
	c.entries = append(c.entries, e)
	return e
}

func (c *Chronicle) Entries() []ChronicleEntry { return c.entries }

func (c *Chronicle) Clone() *Chronicle {
	return &Chronicle{entries: append([]ChronicleEntry(nil), c.entries...), nextID: c.nextID}
}

// RelevantTo reports whether entry e should be visible to player p.
func RelevantTo(e ChronicleEntry, p ids.PlayerId) bool {
	switch ChronicleRelevance(e.Kind) {
	case RoutePublic:
		return true
	case RouteOwnerOnly:
		return e.Subject == p
	case RoutePartyOnly:
		return e.Subject == p || (e.Party != nil && *e.Party == p)
	case RouteTileOwner:
		return e.Subject == p
	default:
		return false
	}
}
