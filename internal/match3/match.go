package match3

// MinRun is the shortest run that counts as a match.
const MinRun = 3

// Run is a maximal line of identical symbols along a row or column.
type Run struct {
	Symbol     Symbol
	Start      Pos
	Len        int
	Horizontal bool
}

// Positions returns the slots covered by the run.
func (r Run) Positions() []Pos {
	out := make([]Pos, r.Len)
	for i := range out {
		if r.Horizontal {
			out[i] = P(r.Start.Row, r.Start.Col+i)
		} else {
			out[i] = P(r.Start.Row+i, r.Start.Col)
		}
	}
	return out
}

// Match is the deduplicated set of cells from all qualifying runs of one pass.
type Match struct {
	cells []*Cell
	runs  []Run
}

// Cells returns matched cells in row-major order. Each cell appears once.
func (m Match) Cells() []*Cell {
	out := make([]*Cell, len(m.cells))
	copy(out, m.cells)
	return out
}

// Len returns the number of distinct matched cells.
func (m Match) Len() int {
	return len(m.cells)
}

// Empty reports whether nothing matched.
func (m Match) Empty() bool {
	return len(m.cells) == 0
}

// Runs returns the qualifying runs, rows first then columns.
func (m Match) Runs() []Run {
	out := make([]Run, len(m.runs))
	copy(out, m.runs)
	return out
}

// CountSymbol returns how many matched cells carry s.
func (m Match) CountSymbol(s Symbol) int {
	n := 0
	for _, c := range m.cells {
		if c.Symbol == s {
			n++
		}
	}
	return n
}

// Contains reports whether the cell at p is part of the match.
func (m Match) Contains(p Pos) bool {
	for _, c := range m.cells {
		if c.Pos() == p {
			return true
		}
	}
	return false
}

// FindMatches returns every cell that belongs to a run of MinRun or more.
func FindMatches(g *Grid) Match {
	var m Match
	seen := make(map[*Cell]bool)
	scanRuns(g, func(r Run) bool {
		m.runs = append(m.runs, r)
		for _, p := range r.Positions() {
			seen[g.Get(p)] = true
		}
		return true
	})
	if len(seen) == 0 {
		return m
	}
	m.cells = make([]*Cell, 0, len(seen))
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if cell := g.Get(P(r, c)); cell != nil && seen[cell] {
				m.cells = append(m.cells, cell)
				delete(seen, cell)
			}
		}
	}
	return m
}

// HasMatch reports whether any qualifying run exists. It uses the same scan
// as FindMatches and stops at the first run.
func HasMatch(g *Grid) bool {
	found := false
	scanRuns(g, func(Run) bool {
		found = true
		return false
	})
	return found
}

// scanRuns calls fn for each run of MinRun or more, rows first then columns,
// until fn returns false. Empty slots break runs and never match.
func scanRuns(g *Grid, fn func(Run) bool) {
	for r := 0; r < g.rows; r++ {
		start := 0
		for c := 1; c <= g.cols; c++ {
			if c < g.cols && sameSymbol(g, P(r, start), P(r, c)) {
				continue
			}
			if c-start >= MinRun {
				if !fn(Run{Symbol: g.SymbolAt(P(r, start)), Start: P(r, start), Len: c - start, Horizontal: true}) {
					return
				}
			}
			start = c
		}
	}
	for c := 0; c < g.cols; c++ {
		start := 0
		for r := 1; r <= g.rows; r++ {
			if r < g.rows && sameSymbol(g, P(start, c), P(r, c)) {
				continue
			}
			if r-start >= MinRun {
				if !fn(Run{Symbol: g.SymbolAt(P(start, c)), Start: P(start, c), Len: r - start}) {
					return
				}
			}
			start = r
		}
	}
}

func sameSymbol(g *Grid, a, b Pos) bool {
	s := g.SymbolAt(a)
	return s != SymbolNone && s == g.SymbolAt(b)
}
