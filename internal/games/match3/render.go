package match3

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-match3/internal/core"
	engine "github.com/vovakirdan/tui-match3/internal/match3"
)

const (
	cellWidth    = 3 // Columns per cell: bracket, glyph, bracket
	hudHeight    = 3
	footerHeight = 2
	hudMinWidth  = 36
)

func boardWidth(cols int) int  { return cols*cellWidth + 2 }
func boardHeight(rows int) int { return rows + 2 }

// symbolColors maps candy kinds to screen colours.
var symbolColors = map[engine.Symbol]core.Color{
	engine.SymbolRed:    core.ColorRed,
	engine.SymbolOrange: core.ColorOrange,
	engine.SymbolYellow: core.ColorYellow,
	engine.SymbolGreen:  core.ColorGreen,
	engine.SymbolBlue:   core.ColorBlue,
	engine.SymbolPurple: core.ColorMagenta,
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	frame := g.eng.Frame()
	boardW := boardWidth(g.cfg.Board.Cols)
	boardH := boardHeight(g.cfg.Board.Rows)
	boardX := (g.runtime.ScreenW - boardW) / 2
	boardY := hudHeight

	hudX := boardX
	hudW := boardW
	if hudW < hudMinWidth {
		hudW = hudMinWidth
		hudX = (g.runtime.ScreenW - hudW) / 2
	}

	g.renderHUD(dst, frame, hudX, hudW)
	g.renderBoard(dst, frame, boardX, boardY)
	g.renderFooter(dst, frame, hudX, boardY+boardH, hudW)
	g.renderOverlays(dst, frame, boardX, boardY, boardW, boardH)
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.runtime.ScreenH / 2
	dst.DrawTextCentered(y, "Window too small", core.ColorDefault)
	dst.DrawTextCentered(y+1, "Please resize terminal", core.ColorDefault)
}

// renderHUD draws score, moves and the level objective.
func (g *Game) renderHUD(dst *core.Screen, f engine.Frame, x, w int) {
	title := "MATCH-3"
	if g.mode == ModeZen {
		title = "MATCH-3 ZEN"
	}
	dst.DrawTextColored(x+(w-len(title))/2, 0, title, core.ColorBrightWhite)

	dst.DrawText(x, 1, fmt.Sprintf("Score: %d", f.Score))
	moves := fmt.Sprintf("Moves: %d", f.Moves)
	movesColor := core.ColorDefault
	if f.Moves <= 5 && g.mode == ModeClassic {
		movesColor = core.ColorRed
	}
	dst.DrawTextColored(x+w-len(moves), 1, moves, movesColor)

	ch := f.Challenge
	prefix := fmt.Sprintf("Lv %d  Clear ", ch.Level)
	dst.DrawText(x, 2, prefix)
	dst.SetColored(x+len(prefix), 2, ch.TargetSymbol.Glyph(), symbolColors[ch.TargetSymbol])
	dst.DrawText(x+len(prefix)+2, 2, fmt.Sprintf("%d/%d", ch.Progress, ch.TargetCount))

	if f.Streak > 1 {
		combo := fmt.Sprintf("Combo x%d", f.Streak)
		dst.DrawTextColored(x+w-len(combo), 2, combo, core.ColorBrightYellow)
	}
}

// renderBoard draws the border, the settled cells and every cell in flight.
func (g *Game) renderBoard(dst *core.Screen, f engine.Frame, boardX, boardY int) {
	rows, cols := g.cfg.Board.Rows, g.cfg.Board.Cols
	dst.DrawBox(core.Rect{X: boardX, Y: boardY, W: boardWidth(cols), H: boardHeight(rows)}, g.flash.color())

	originX := boardX + 1
	originY := boardY + 1
	moving, clearing := g.anim.byCell()

	for r := 0; r < rows && r < len(f.Grid); r++ {
		for c := 0; c < cols && c < len(f.Grid[r]); c++ {
			cv := f.Grid[r][c]
			if cv.Empty() {
				continue
			}
			fr, fc := float64(r), float64(c)
			if an, ok := moving[cv.ID]; ok {
				fr, fc = an.position()
			}
			if fr < -0.5 {
				continue // still above the board
			}
			sx := originX + int(math.Round(fc*cellWidth)) + 1
			sy := originY + int(math.Round(fr))
			dst.SetColored(sx, sy, cv.Symbol.Glyph(), symbolColors[cv.Symbol])
		}
	}

	for _, an := range clearing {
		glyph := '*'
		if an.Progress() >= 0.5 {
			glyph = '·'
		}
		p := an.t.From
		dst.SetColored(originX+p.Col*cellWidth+1, originY+p.Row, glyph, symbolColors[an.t.Symbol])
	}

	if g.hintLeft > 0 && !g.eng.Ended() {
		g.drawMarker(dst, originX, originY, g.hint.A, '(', ')', core.ColorCyan)
		g.drawMarker(dst, originX, originY, g.hint.B, '(', ')', core.ColorCyan)
	}
	if g.selecting {
		g.drawMarker(dst, originX, originY, g.selected, '<', '>', core.ColorBrightYellow)
	}
	if !g.eng.Ended() && (!g.selecting || g.selected != g.cursor) {
		g.drawMarker(dst, originX, originY, g.cursor, '[', ']', core.ColorBrightWhite)
	}
}

func (g *Game) drawMarker(dst *core.Screen, originX, originY int, p engine.Pos, left, right rune, c core.Color) {
	x := originX + p.Col*cellWidth
	y := originY + p.Row
	dst.SetColored(x, y, left, c)
	dst.SetColored(x+cellWidth-1, y, right, c)
}

// renderFooter draws power-up charges and the status line.
func (g *Game) renderFooter(dst *core.Screen, f engine.Frame, x, y, w int) {
	charges := fmt.Sprintf("Shuffle: %d  Popper: %d", f.Reshuffles, f.Poppers)
	dst.DrawText(x, y, charges)
	if f.LastGain > 0 {
		gain := fmt.Sprintf("+%d", f.LastGain)
		dst.DrawTextColored(x+w-len(gain), y, gain, core.ColorGreen)
	}

	status := g.status(f)
	dst.DrawTextColored(x, y+1, status, core.ColorGray)
}

func (g *Game) status(f engine.Frame) string {
	if g.messageLeft > 0 {
		return g.message
	}
	switch f.Phase {
	case engine.PhaseIdle:
		if g.selecting {
			return "Pick a neighbour to swap"
		}
		return "Your move"
	case engine.PhaseDeadlock:
		return "No moves available"
	case engine.PhaseGameOver:
		return "Game over"
	default:
		return "..."
	}
}

// renderOverlays draws game state overlays.
func (g *Game) renderOverlays(dst *core.Screen, f engine.Frame, boardX, boardY, boardW, boardH int) {
	centerX := boardX + boardW/2
	centerY := boardY + boardH/2

	switch {
	case g.paused:
		g.drawOverlay(dst, centerX, centerY, core.ColorDefault, "PAUSED", "Press P to resume")
	case f.Phase == engine.PhaseGameOver:
		g.drawOverlay(dst, centerX, centerY, core.ColorRed,
			"GAME OVER",
			fmt.Sprintf("Score: %d", f.Score),
			fmt.Sprintf("Level: %d", f.Challenge.Level),
			"Press R to restart")
	case f.Phase == engine.PhaseDeadlock:
		g.drawOverlay(dst, centerX, centerY, core.ColorMagenta,
			"NO MOVES LEFT",
			fmt.Sprintf("F: reshuffle (%d)", f.Reshuffles),
			"C: rescan  E: end game")
	}
}

// drawOverlay draws a centered boxed text overlay.
func (g *Game) drawOverlay(dst *core.Screen, centerX, centerY int, c core.Color, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}

	box := core.Rect{W: maxLen + 4, H: len(lines) + 2}
	box.X = centerX - box.W/2
	box.Y = centerY - box.H/2

	dst.DrawRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, c)
	for i, line := range lines {
		dst.DrawText(centerX-len(line)/2, box.Y+1+i, line)
	}
}
