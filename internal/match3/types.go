// Package match3 provides the match-3 grid engine: grid model, match detection,
// swap validation, cascades, deadlock detection, scoring and the challenge
// progression, sequenced by a state machine that waits on animation callbacks.
// This package is UI-agnostic and deterministic for a given SymbolSource.
package match3

import "fmt"

// Symbol is one of the six candy kinds a cell can carry.
type Symbol uint8

const (
	SymbolNone Symbol = iota
	SymbolRed
	SymbolOrange
	SymbolYellow
	SymbolGreen
	SymbolBlue
	SymbolPurple
)

// SymbolCount is the size of the playable alphabet.
const SymbolCount = 6

// Symbols lists the playable alphabet in index order.
var Symbols = [SymbolCount]Symbol{
	SymbolRed,
	SymbolOrange,
	SymbolYellow,
	SymbolGreen,
	SymbolBlue,
	SymbolPurple,
}

// SymbolAt maps a uniform index in [0, SymbolCount) to a symbol.
func SymbolAt(i int) Symbol {
	if i < 0 || i >= SymbolCount {
		return SymbolNone
	}
	return Symbols[i]
}

// Valid reports whether the symbol belongs to the playable alphabet.
func (s Symbol) Valid() bool {
	return s >= SymbolRed && s <= SymbolPurple
}

// String returns the symbol name.
func (s Symbol) String() string {
	switch s {
	case SymbolRed:
		return "red"
	case SymbolOrange:
		return "orange"
	case SymbolYellow:
		return "yellow"
	case SymbolGreen:
		return "green"
	case SymbolBlue:
		return "blue"
	case SymbolPurple:
		return "purple"
	default:
		return "none"
	}
}

// Glyph returns the single-letter display form used by fixtures and the TUI.
func (s Symbol) Glyph() rune {
	switch s {
	case SymbolRed:
		return 'R'
	case SymbolOrange:
		return 'O'
	case SymbolYellow:
		return 'Y'
	case SymbolGreen:
		return 'G'
	case SymbolBlue:
		return 'B'
	case SymbolPurple:
		return 'P'
	default:
		return '.'
	}
}

// ParseSymbol parses a symbol from its glyph or name.
func ParseSymbol(s string) (Symbol, bool) {
	switch s {
	case "R", "r", "red":
		return SymbolRed, true
	case "O", "o", "orange":
		return SymbolOrange, true
	case "Y", "y", "yellow":
		return SymbolYellow, true
	case "G", "g", "green":
		return SymbolGreen, true
	case "B", "b", "blue":
		return SymbolBlue, true
	case "P", "p", "purple":
		return SymbolPurple, true
	default:
		return SymbolNone, false
	}
}

// Pos addresses a grid slot. Row 0 is the top row.
type Pos struct {
	Row int
	Col int
}

// P is a convenience constructor for Pos.
func P(row, col int) Pos {
	return Pos{Row: row, Col: col}
}

// String returns a string representation of the position.
func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Adjacent reports whether two positions are Manhattan-adjacent.
func (p Pos) Adjacent(other Pos) bool {
	dr := p.Row - other.Row
	dc := p.Col - other.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// Cell is a grid-resident piece. Its identity survives falls and swaps:
// a falling cell is the same *Cell with an updated Row.
type Cell struct {
	ID     uint64
	Row    int
	Col    int
	Symbol Symbol
}

// Pos returns the cell's stored position.
func (c *Cell) Pos() Pos {
	return Pos{Row: c.Row, Col: c.Col}
}

// CellView is a read-only copy of a cell handed to renderers.
type CellView struct {
	ID     uint64
	Symbol Symbol
}

// Empty reports whether the view describes an empty slot.
func (v CellView) Empty() bool {
	return v.Symbol == SymbolNone
}

// Move is an adjacent pair whose swap produces a match.
type Move struct {
	A Pos
	B Pos
}
