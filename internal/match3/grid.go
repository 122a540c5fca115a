package match3

import (
	"fmt"
	"sort"
	"strings"
)

// Grid owns the cell matrix. All topology changes go through its methods so the
// position invariants are maintained in one place.
// Slots are stored in row-major order: index = row*cols + col.
type Grid struct {
	rows   int
	cols   int
	slots  []*Cell
	nextID uint64
}

// NewGrid creates an empty grid with the given dimensions.
func NewGrid(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return &Grid{
		rows:   rows,
		cols:   cols,
		slots:  make([]*Cell, rows*cols),
		nextID: 1,
	}
}

// ParseGrid builds a grid from glyph rows ("RGB.." where '.' is empty).
// All rows must have the same length.
func ParseGrid(lines ...string) (*Grid, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("match3: empty board")
	}
	cols := len(lines[0])
	g := NewGrid(len(lines), cols)
	for r, line := range lines {
		if len(line) != cols {
			return nil, fmt.Errorf("match3: row %d has %d columns, expected %d", r, len(line), cols)
		}
		for c, ch := range line {
			if ch == '.' {
				continue
			}
			sym, ok := ParseSymbol(string(ch))
			if !ok {
				return nil, fmt.Errorf("match3: unknown symbol %q at %v", ch, P(r, c))
			}
			g.Set(P(r, c), g.NewCell(sym))
		}
	}
	return g, nil
}

// MustParseGrid is like ParseGrid but panics on malformed input.
func MustParseGrid(lines ...string) *Grid {
	g, err := ParseGrid(lines...)
	if err != nil {
		panic(err)
	}
	return g
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns.
func (g *Grid) Cols() int {
	return g.cols
}

func (g *Grid) index(p Pos) int {
	return p.Row*g.cols + p.Col
}

// InBounds returns true if the position lies inside the grid.
func (g *Grid) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// NewCell allocates a detached cell with a fresh identity.
func (g *Grid) NewCell(sym Symbol) *Cell {
	c := &Cell{ID: g.nextID, Row: -1, Col: -1, Symbol: sym}
	g.nextID++
	return c
}

// Get returns the cell at p, or nil if the slot is empty or out of bounds.
func (g *Grid) Get(p Pos) *Cell {
	if !g.InBounds(p) {
		return nil
	}
	return g.slots[g.index(p)]
}

// SymbolAt returns the symbol at p, or SymbolNone for empty slots.
func (g *Grid) SymbolAt(p Pos) Symbol {
	if c := g.Get(p); c != nil {
		return c.Symbol
	}
	return SymbolNone
}

// Set places a cell at p and updates its stored coordinates.
// A nil cell empties the slot.
func (g *Grid) Set(p Pos, c *Cell) {
	if !g.InBounds(p) {
		return
	}
	g.slots[g.index(p)] = c
	if c != nil {
		c.Row = p.Row
		c.Col = p.Col
	}
}

// Clear empties the slot at p and returns the removed cell.
func (g *Grid) Clear(p Pos) *Cell {
	c := g.Get(p)
	if c == nil {
		return nil
	}
	g.slots[g.index(p)] = nil
	return c
}

// Swap exchanges the contents of two slots, updating stored coordinates.
func (g *Grid) Swap(a, b Pos) {
	if !g.InBounds(a) || !g.InBounds(b) {
		return
	}
	ca, cb := g.Get(a), g.Get(b)
	g.Set(a, cb)
	g.Set(b, ca)
	if cb == nil {
		g.slots[g.index(a)] = nil
	}
	if ca == nil {
		g.slots[g.index(b)] = nil
	}
}

// Filled returns the number of occupied slots.
func (g *Grid) Filled() int {
	n := 0
	for _, c := range g.slots {
		if c != nil {
			n++
		}
	}
	return n
}

// Fill places a random cell into every empty slot.
// With avoidMatches set, symbols that would complete a run of three with the
// two cells to the left or the two cells above are skipped.
func (g *Grid) Fill(src SymbolSource, avoidMatches bool) {
	allowed := make([]Symbol, 0, SymbolCount)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			p := P(r, c)
			if g.Get(p) != nil {
				continue
			}
			if !avoidMatches {
				g.Set(p, g.NewCell(SymbolAt(src.Intn(SymbolCount))))
				continue
			}
			allowed = allowed[:0]
			for _, s := range Symbols {
				if g.completesRun(p, s) {
					continue
				}
				allowed = append(allowed, s)
			}
			g.Set(p, g.NewCell(allowed[src.Intn(len(allowed))]))
		}
	}
}

// completesRun reports whether placing s at p forms a run with the two
// neighbours to the left or the two above.
func (g *Grid) completesRun(p Pos, s Symbol) bool {
	if g.SymbolAt(P(p.Row, p.Col-1)) == s && g.SymbolAt(P(p.Row, p.Col-2)) == s {
		return true
	}
	return g.SymbolAt(P(p.Row-1, p.Col)) == s && g.SymbolAt(P(p.Row-2, p.Col)) == s
}

// Empty removes every cell from the grid.
func (g *Grid) Empty() {
	for i := range g.slots {
		g.slots[i] = nil
	}
}

// Validate checks that every occupied slot's stored coordinates equal the slot
// and that no cell is referenced from two slots.
func (g *Grid) Validate() error {
	seen := make(map[*Cell]Pos, len(g.slots))
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			p := P(r, c)
			cell := g.Get(p)
			if cell == nil {
				continue
			}
			if prev, dup := seen[cell]; dup {
				return &InvariantViolation{Kind: ViolationDuplicate, At: p, CellID: cell.ID, Other: prev}
			}
			seen[cell] = p
			if cell.Row != r || cell.Col != c {
				return &InvariantViolation{Kind: ViolationDesync, At: p, CellID: cell.ID, Other: cell.Pos()}
			}
		}
	}
	return nil
}

// ValidateSettled is Validate plus the requirement that no slot is empty.
func (g *Grid) ValidateSettled() error {
	if err := g.Validate(); err != nil {
		return err
	}
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.Get(P(r, c)) == nil {
				return &InvariantViolation{Kind: ViolationHole, At: P(r, c)}
			}
		}
	}
	return nil
}

// Reconstruct rebuilds the matrix from the live cells it references.
// Unique cells are grouped by stored column, ordered by stored row (their
// visual vertical position) and reassigned bottom-up; cells that no longer fit
// are discarded and the shortfall is spawned from src.
// Returns the number of discarded and spawned cells.
func (g *Grid) Reconstruct(src SymbolSource) (discarded, spawned int) {
	columns := make([][]*Cell, g.cols)
	seen := make(map[*Cell]bool, len(g.slots))
	for _, cell := range g.slots {
		if cell == nil || seen[cell] {
			continue
		}
		seen[cell] = true
		col := cell.Col
		if col < 0 {
			col = 0
		}
		if col >= g.cols {
			col = g.cols - 1
		}
		columns[col] = append(columns[col], cell)
	}

	g.Empty()
	for c, cells := range columns {
		// Bottom-most first; ties keep identity order for determinism.
		sort.SliceStable(cells, func(i, j int) bool {
			if cells[i].Row != cells[j].Row {
				return cells[i].Row > cells[j].Row
			}
			return cells[i].ID < cells[j].ID
		})
		row := g.rows - 1
		for _, cell := range cells {
			if row < 0 {
				discarded++
				continue
			}
			g.Set(P(row, c), cell)
			row--
		}
		for ; row >= 0; row-- {
			g.Set(P(row, c), g.NewCell(SymbolAt(src.Intn(SymbolCount))))
			spawned++
		}
	}
	return discarded, spawned
}

// Snapshot returns a read-only copy of the matrix for renderers.
func (g *Grid) Snapshot() [][]CellView {
	out := make([][]CellView, g.rows)
	for r := 0; r < g.rows; r++ {
		out[r] = make([]CellView, g.cols)
		for c := 0; c < g.cols; c++ {
			if cell := g.Get(P(r, c)); cell != nil {
				out[r][c] = CellView{ID: cell.ID, Symbol: cell.Symbol}
			}
		}
	}
	return out
}

// Clone returns a deep copy of the grid. Cell identities are preserved.
func (g *Grid) Clone() *Grid {
	clone := &Grid{
		rows:   g.rows,
		cols:   g.cols,
		slots:  make([]*Cell, len(g.slots)),
		nextID: g.nextID,
	}
	copies := make(map[*Cell]*Cell, len(g.slots))
	for i, cell := range g.slots {
		if cell == nil {
			continue
		}
		cp, ok := copies[cell]
		if !ok {
			v := *cell
			cp = &v
			copies[cell] = cp
		}
		clone.slots[i] = cp
	}
	return clone
}

// Equal reports whether two grids hold the same symbols and cell identities.
func (g *Grid) Equal(other *Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i, cell := range g.slots {
		o := other.slots[i]
		if (cell == nil) != (o == nil) {
			return false
		}
		if cell != nil && *cell != *o {
			return false
		}
	}
	return true
}

// String renders the grid as glyph rows separated by newlines.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow((g.cols + 1) * g.rows)
	for r := 0; r < g.rows; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < g.cols; c++ {
			sb.WriteRune(g.SymbolAt(P(r, c)).Glyph())
		}
	}
	return sb.String()
}
