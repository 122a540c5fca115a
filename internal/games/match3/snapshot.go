package match3

import (
	"strings"

	engine "github.com/vovakirdan/tui-match3/internal/match3"
)

// GameStateType represents the current game state.
type GameStateType string

const (
	StateIdle        GameStateType = "idle"
	StateResolving   GameStateType = "resolving"
	StateDeadlock    GameStateType = "deadlock"
	StateGameOver    GameStateType = "game_over"
	StatePaused      GameStateType = "paused"
	StatePausedSmall GameStateType = "paused_small_window"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick      uint64
	Mode      string
	Phase     string
	Score     int
	Moves     int
	Level     int
	Target    string
	Progress  int
	Needed    int
	Streak    int
	Board     string // glyph rows joined by newlines, '.' for empty
	Cursor    engine.Pos
	Selected  bool
	Animating int
	State     GameStateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	f := g.eng.Frame()

	state := StateIdle
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case f.Phase == engine.PhaseGameOver:
		state = StateGameOver
	case g.paused:
		state = StatePaused
	case f.Phase == engine.PhaseDeadlock:
		state = StateDeadlock
	case f.Phase.Busy():
		state = StateResolving
	}

	return Snapshot{
		Tick:      g.tick,
		Mode:      string(g.mode),
		Phase:     f.Phase.String(),
		Score:     f.Score,
		Moves:     f.Moves,
		Level:     f.Challenge.Level,
		Target:    f.Challenge.TargetSymbol.String(),
		Progress:  f.Challenge.Progress,
		Needed:    f.Challenge.TargetCount,
		Streak:    f.Streak,
		Board:     boardString(f.Grid),
		Cursor:    g.cursor,
		Selected:  g.selecting,
		Animating: len(g.anim.Active()),
		State:     state,
	}
}

func boardString(grid [][]engine.CellView) string {
	var sb strings.Builder
	for r, row := range grid {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, cv := range row {
			sb.WriteRune(cv.Symbol.Glyph())
		}
	}
	return sb.String()
}
