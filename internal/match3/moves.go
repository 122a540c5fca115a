package match3

// FindMove returns the first swap that produces a match, probing each cell
// with its right and bottom neighbour in row-major order.
// Must only run while no transition is pending.
func FindMove(g *Grid) (Move, bool) {
	var found Move
	ok := false
	eachCandidate(g, func(a, b Pos) bool {
		if Probe(g, a, b) {
			found, ok = Move{A: a, B: b}, true
			return false
		}
		return true
	})
	return found, ok
}

// HasAvailableMove reports whether any swap on the board produces a match.
func HasAvailableMove(g *Grid) bool {
	_, ok := FindMove(g)
	return ok
}

// AllMoves returns every matching swap in scan order.
func AllMoves(g *Grid) []Move {
	var out []Move
	eachCandidate(g, func(a, b Pos) bool {
		if Probe(g, a, b) {
			out = append(out, Move{A: a, B: b})
		}
		return true
	})
	return out
}

func eachCandidate(g *Grid, fn func(a, b Pos) bool) {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			a := P(r, c)
			if c+1 < g.cols && !fn(a, P(r, c+1)) {
				return
			}
			if r+1 < g.rows && !fn(a, P(r+1, c)) {
				return
			}
		}
	}
}
