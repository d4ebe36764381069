package engine

import "github.com/backbay/imperium/internal/ids"

// Bitset is a simple fixed-length bool-per-tile bitset (§3 Visibility uses
// two of these per player: explored and visible).
type Bitset []bool

func NewBitset(n int) Bitset { return make(Bitset, n) }

func (b Bitset) Clone() Bitset { return append(Bitset(nil), b...) }

// Visibility holds one player's explored/visible bitsets. visible[i] implies
// explored[i] (§8 invariant 3) and explored only ever grows.
type Visibility struct {
	Explored Bitset
	Visible  Bitset
}

func NewVisibility(tileCount int) *Visibility {
	return &Visibility{Explored: NewBitset(tileCount), Visible: NewBitset(tileCount)}
}

func (v *Visibility) Clone() *Visibility {
	return &Visibility{Explored: v.Explored.Clone(), Visible: v.Visible.Clone()}
}

// SetVisible marks idx visible this instant, which also marks it explored
// (monotonic, §8 invariant 3).
func (v *Visibility) SetVisible(idx int) {
	v.Visible[idx] = true
	v.Explored[idx] = true
}

func (v *Visibility) ClearVisible(idx int) {
	v.Visible[idx] = false
}

// VisibilityMap is the per-player collection the engine maintains.
type VisibilityMap map[ids.PlayerId]*Visibility

func (m VisibilityMap) Clone() VisibilityMap {
	out := make(VisibilityMap, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}
