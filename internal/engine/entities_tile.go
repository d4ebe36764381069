package engine

import "github.com/backbay/imperium/internal/ids"

// Clone deep-copies a Tile's optional pointer fields so the world map can be
// cloned tile-by-tile without aliasing (§5 scratch-clone atomicity).
func (t Tile) Clone() Tile {
	out := t
	if t.Owner != nil {
		o := *t.Owner
		out.Owner = &o
	}
	if t.CityID != nil {
		id := *t.CityID
		out.CityID = &id
	}
	if t.Improvement != nil {
		imp := *t.Improvement
		out.Improvement = &imp
	}
	if t.Resource != nil {
		r := *t.Resource
		out.Resource = &r
	}
	return out
}

// SetCity links a tile to the city founded on it, enforcing the §3
// invariant tile.city.is_some() ⇒ tile.owner == Some(city.owner).
func (t *Tile) SetCity(cityID uint64, owner ids.PlayerId) {
	id := cityID
	o := owner
	t.CityID = &id
	t.Owner = &o
}
