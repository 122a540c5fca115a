package match3

// Remove clears the matched cells from the grid. A cell is cleared only if it
// still occupies its stored slot, so removing the same match twice is a no-op.
func Remove(g *Grid, m Match) []Transition {
	out := make([]Transition, 0, m.Len())
	for _, cell := range m.cells {
		if clearCell(g, cell) {
			out = append(out, clearTransition(cell))
		}
	}
	return out
}

// ClearArea clears the n×n block centred on center, clipped to the board.
func ClearArea(g *Grid, center Pos, n int) []Transition {
	if n < 1 {
		n = 1
	}
	lo := -(n / 2)
	hi := lo + n
	var out []Transition
	for dr := lo; dr < hi; dr++ {
		for dc := lo; dc < hi; dc++ {
			cell := g.Get(P(center.Row+dr, center.Col+dc))
			if cell != nil && clearCell(g, cell) {
				out = append(out, clearTransition(cell))
			}
		}
	}
	return out
}

// ClearAll empties the whole board.
func ClearAll(g *Grid) []Transition {
	out := make([]Transition, 0, g.rows*g.cols)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			cell := g.Get(P(r, c))
			if cell != nil && clearCell(g, cell) {
				out = append(out, clearTransition(cell))
			}
		}
	}
	return out
}

func clearCell(g *Grid, cell *Cell) bool {
	p := cell.Pos()
	if g.Get(p) != cell {
		return false
	}
	g.Clear(p)
	return true
}

func clearTransition(cell *Cell) Transition {
	return Transition{
		Kind:   TransitionClear,
		CellID: cell.ID,
		Symbol: cell.Symbol,
		From:   cell.Pos(),
		To:     cell.Pos(),
	}
}

// Collapse lets every column settle: surviving cells drop to the lowest free
// slots keeping their relative order, and vacated top slots receive new
// cells from src. Columns are independent.
func Collapse(g *Grid, src SymbolSource) []Transition {
	var out []Transition
	for c := 0; c < g.cols; c++ {
		write := g.rows - 1
		for r := g.rows - 1; r >= 0; r-- {
			cell := g.Get(P(r, c))
			if cell == nil {
				continue
			}
			if r != write {
				g.Clear(P(r, c))
				g.Set(P(write, c), cell)
				out = append(out, Transition{
					Kind:   TransitionFall,
					CellID: cell.ID,
					Symbol: cell.Symbol,
					From:   P(r, c),
					To:     P(write, c),
				})
			}
			write--
		}

		// Spawned cells start stacked above the board and drop the same distance.
		drop := write + 1
		for r := write; r >= 0; r-- {
			cell := g.NewCell(SymbolAt(src.Intn(SymbolCount)))
			g.Set(P(r, c), cell)
			out = append(out, Transition{
				Kind:   TransitionSpawn,
				CellID: cell.ID,
				Symbol: cell.Symbol,
				From:   P(r-drop, c),
				To:     P(r, c),
			})
		}
	}
	return out
}
