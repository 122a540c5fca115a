package match3

// Probe reports whether swapping a and b would produce a match.
// The grid is swapped tentatively and always restored before returning.
// It fails closed: out-of-bounds, non-adjacent, empty or desynced slots
// probe false without touching the grid.
func Probe(g *Grid, a, b Pos) bool {
	if !g.InBounds(a) || !g.InBounds(b) || !a.Adjacent(b) {
		return false
	}
	ca, cb := g.Get(a), g.Get(b)
	if ca == nil || cb == nil || ca == cb {
		return false
	}
	if ca.Pos() != a || cb.Pos() != b {
		return false
	}

	g.Swap(a, b)
	defer g.Swap(a, b)
	return HasMatch(g)
}
