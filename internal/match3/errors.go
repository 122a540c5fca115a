package match3

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by engine operations.
var (
	ErrNotIdle     = errors.New("match3: engine is busy")
	ErrGameOver    = errors.New("match3: game is over")
	ErrOutOfBounds = errors.New("match3: position out of bounds")
	ErrNoPowerUp   = errors.New("match3: no charges left")
)

// ViolationKind identifies which grid invariant was broken.
type ViolationKind int

const (
	// ViolationDesync means a cell's stored coordinates differ from its slot.
	ViolationDesync ViolationKind = iota
	// ViolationDuplicate means two slots reference the same cell.
	ViolationDuplicate
	// ViolationHole means an empty slot was found in a grid claimed settled.
	ViolationHole
)

// String returns the violation name.
func (k ViolationKind) String() string {
	switch k {
	case ViolationDesync:
		return "desync"
	case ViolationDuplicate:
		return "duplicate"
	case ViolationHole:
		return "hole"
	default:
		return "unknown"
	}
}

// InvariantViolation reports a broken grid invariant at a slot.
type InvariantViolation struct {
	Kind   ViolationKind
	At     Pos
	CellID uint64
	Other  Pos // first slot holding the same cell, for duplicates
}

func (e *InvariantViolation) Error() string {
	switch e.Kind {
	case ViolationDuplicate:
		return fmt.Sprintf("match3: cell %d referenced at %v and %v", e.CellID, e.Other, e.At)
	case ViolationHole:
		return fmt.Sprintf("match3: empty slot at %v in settled grid", e.At)
	default:
		return fmt.Sprintf("match3: cell %d stored at %v but found at %v", e.CellID, e.Other, e.At)
	}
}
