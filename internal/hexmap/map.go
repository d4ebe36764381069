package hexmap

// Map is the row-major tile grid the engine operates over. Tiles are
// addressed both by axial Hex (Q in [0,Width), R in [0,Height)) and by a
// row-major tile index (r*Width + q), which is what snapshots, visibility
// bitsets and the rules catalog all key off.
type Map struct {
	Width      int
	Height     int
	HorizWrap  bool
	MoveCostFn func(index int) (cost int, impassable bool)
}

func NewMap(width, height int, wrap bool, moveCostFn func(index int) (int, bool)) *Map {
	return &Map{Width: width, Height: height, HorizWrap: wrap, MoveCostFn: moveCostFn}
}

// NormalizeHex wraps q into [0,Width) when horizontal wrap is enabled; it
// returns the hex unchanged (and InBounds will report false) otherwise.
func (m *Map) NormalizeHex(h Hex) Hex {
	if m.HorizWrap && m.Width > 0 {
		q := h.Q % int32(m.Width)
		if q < 0 {
			q += int32(m.Width)
		}
		h.Q = q
	}
	return h
}

func (m *Map) InBounds(h Hex) bool {
	h = m.NormalizeHex(h)
	return h.Q >= 0 && h.Q < int32(m.Width) && h.R >= 0 && h.R < int32(m.Height)
}

func (m *Map) Index(h Hex) int {
	h = m.NormalizeHex(h)
	return int(h.R)*m.Width + int(h.Q)
}

func (m *Map) HexAt(index int) Hex {
	return Hex{Q: int32(index % m.Width), R: int32(index / m.Width)}
}

// Neighbors returns the in-bounds neighbors of h, normalized for wrap.
func (m *Map) Neighbors(h Hex) []Hex {
	raw := Neighbors(h)
	out := make([]Hex, 0, 6)
	for _, n := range raw {
		if m.InBounds(n) {
			out = append(out, m.NormalizeHex(n))
		}
	}
	return out
}

// IndicesInRadius returns the in-bounds tile indices within r of center.
func (m *Map) IndicesInRadius(center Hex, r int) []int {
	hexes := HexesInRadius(center, r)
	out := make([]int, 0, len(hexes))
	for _, h := range hexes {
		if m.InBounds(h) {
			out = append(out, m.Index(h))
		}
	}
	return out
}

// EnterCost returns the move cost of entering the tile at index, or
// (_, true) if the tile is impassable. Cost is always >= 1.
func (m *Map) EnterCost(index int) (cost int, impassable bool) {
	cost, impassable = m.MoveCostFn(index)
	if impassable {
		return 0, true
	}
	if cost < 1 {
		cost = 1
	}
	return cost, false
}
