package hexmap

// ZocSet builds a reusable "is this tile index under zone of control"
// predicate from a list of hexes that exert ZoC (the six neighbors of every
// combat-capable enemy unit, per §4.A). Kept in hexmap rather than engine so
// both the unrestricted and fog-restricted path contexts share the same
// construction helper.
func ZocSet(m *Map, exerting []Hex) func(index int) bool {
	set := make(map[int]bool, len(exerting)*6)
	for _, h := range exerting {
		set[m.Index(h)] = true
		for _, n := range m.Neighbors(h) {
			set[m.Index(n)] = true
		}
	}
	return func(index int) bool { return set[index] }
}
