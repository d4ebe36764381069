// Package hexmap implements the cube/axial hex grid, neighborhoods,
// visibility radii and the three pathing algorithms used by the engine.
package hexmap

// Hex is an axial coordinate. S is derived (s = -q-r) wherever cube math is
// needed rather than stored, since the spec defines Hex as {q, r}.
type Hex struct {
	Q int32
	R int32
}

func (h Hex) S() int32 { return -h.Q - h.R }

// axialDirections lists the six neighbor offsets in a fixed, stable order.
var axialDirections = [6]Hex{
	{Q: 1, R: 0}, {Q: 1, R: -1}, {Q: 0, R: -1},
	{Q: -1, R: 0}, {Q: -1, R: 1}, {Q: 0, R: 1},
}

// Neighbors returns the (up to) six hexes adjacent to h, in a fixed order.
// Wrap/bounds clipping is the caller's job (see Map.Neighbors).
func Neighbors(h Hex) [6]Hex {
	var out [6]Hex
	for i, d := range axialDirections {
		out[i] = Hex{Q: h.Q + d.Q, R: h.R + d.R}
	}
	return out
}

// Distance computes cube distance between two axial hexes.
func Distance(a, b Hex) int {
	dq := abs(int(a.Q - b.Q))
	dr := abs(int(a.R - b.R))
	ds := abs(int(a.S() - b.S()))
	return max3(dq, dr, ds)
}

// IsNeighbor reports whether b is one of a's six neighbors.
func IsNeighbor(a, b Hex) bool {
	return Distance(a, b) == 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// RingHexes returns the hexes at exactly radius r around center (r=0 yields
// just center). Used by FoundCity's radius-1 claim ring and visibility.
func RingHexes(center Hex, r int) []Hex {
	if r == 0 {
		return []Hex{center}
	}
	out := make([]Hex, 0, 6*r)
	// Start at the hex r steps in direction 4, then walk the ring.
	h := Hex{Q: center.Q + axialDirections[4].Q*int32(r), R: center.R + axialDirections[4].R*int32(r)}
	for side := 0; side < 6; side++ {
		for step := 0; step < r; step++ {
			out = append(out, h)
			d := axialDirections[side]
			h = Hex{Q: h.Q + d.Q, R: h.R + d.R}
		}
	}
	return out
}

// HexesInRadius returns every hex within radius r of center, center included,
// in a deterministic order (ring 0, ring 1, ring 2, ...).
func HexesInRadius(center Hex, r int) []Hex {
	out := make([]Hex, 0, 1+3*r*(r+1))
	for ring := 0; ring <= r; ring++ {
		out = append(out, RingHexes(center, ring)...)
	}
	return out
}
