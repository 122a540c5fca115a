package match3

import "time"

// SymbolSource yields uniform indices into the symbol alphabet.
// *rand.Rand satisfies it.
type SymbolSource interface {
	Intn(n int) int
}

// TransitionKind describes what a scheduled cell transition represents.
type TransitionKind int

const (
	TransitionSwap   TransitionKind = iota // committed swap slide
	TransitionReject                       // slide there and back, nothing changes
	TransitionClear                        // matched or blasted cell disappears
	TransitionFall                         // surviving cell drops to a lower slot
	TransitionSpawn                        // new cell enters from above the board
)

// String returns the transition name.
func (k TransitionKind) String() string {
	switch k {
	case TransitionSwap:
		return "swap"
	case TransitionReject:
		return "reject"
	case TransitionClear:
		return "clear"
	case TransitionFall:
		return "fall"
	case TransitionSpawn:
		return "spawn"
	default:
		return "unknown"
	}
}

// Transition is one visual cell movement handed to the Animator.
// Spawn transitions start at a negative row above the board.
type Transition struct {
	ID     uint64
	Kind   TransitionKind
	CellID uint64
	Symbol Symbol
	From   Pos
	To     Pos
}

// Animator performs a transition and calls done when it finishes.
// The engine only depends on done being called eventually, once.
// Calling done synchronously from Schedule is allowed.
type Animator interface {
	Schedule(t Transition, done func())
}

// InstantAnimator completes every transition immediately.
type InstantAnimator struct{}

// Schedule calls done right away.
func (InstantAnimator) Schedule(_ Transition, done func()) {
	done()
}

// Result is handed to the ResultSink when a game ends.
type Result struct {
	Score    int
	Level    int
	Duration time.Duration
}

// ResultSink persists final results.
type ResultSink interface {
	SaveResult(r Result) error
}

// HapticKind identifies a feedback pulse.
type HapticKind int

const (
	HapticSwap HapticKind = iota
	HapticReject
	HapticMatch
	HapticLevelUp
	HapticDeadlock
	HapticGameOver
)

// String returns the pulse name.
func (k HapticKind) String() string {
	switch k {
	case HapticSwap:
		return "swap"
	case HapticReject:
		return "reject"
	case HapticMatch:
		return "match"
	case HapticLevelUp:
		return "level_up"
	case HapticDeadlock:
		return "deadlock"
	case HapticGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// HapticSink receives fire-and-forget feedback pulses.
type HapticSink interface {
	Pulse(k HapticKind)
}

// Observer receives a frame every time the engine phase changes.
// OnFrame must not call back into the engine.
type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(f Frame)

// OnFrame calls fn(f).
func (fn ObserverFunc) OnFrame(f Frame) {
	fn(f)
}
