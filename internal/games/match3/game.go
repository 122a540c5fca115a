// Package match3 implements the match-3 arcade game on top of the grid engine.
// It maps cursor input to engine requests, drives transitions from the
// simulation tick and draws the board into the core screen buffer.
package match3

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/core"
	engine "github.com/vovakirdan/tui-match3/internal/match3"
	"github.com/vovakirdan/tui-match3/internal/registry"
)

// Mode represents the game mode.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeZen     Mode = "zen"
)

// zenMoves is the move budget of the relaxed variant.
const zenMoves = 999

// How long on-screen notices and hints stay up, in ticks.
const (
	messageTicks = 90
	hintTicks    = 120
)

// Package-level settings set via CLI flags.
var (
	configPath       string
	difficultyPreset config.DifficultyPreset
	boardPath        string
	logger           = log.New(io.Discard)
)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names clear it.
func SetDifficultyPreset(preset string) {
	p, err := config.ParsePreset(preset)
	if err != nil || preset == "" {
		difficultyPreset = ""
		return
	}
	difficultyPreset = p
}

// SetBoardPath makes new games start from the fixture board at path.
// An empty path restores random boards.
func SetBoardPath(path string) {
	boardPath = path
}

// SetLogger routes engine logs to l.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

// Game implements the match-3 game.
type Game struct {
	mode Mode
	tick uint64

	eng   *engine.Engine
	anim  *tickAnimator
	flash flashState

	// Configuration
	runtime    core.RuntimeConfig
	preset     config.DifficultyPreset
	cfg        config.Match3Config
	difficulty *config.DifficultyManager
	runID      string

	// Input state
	cursor    engine.Pos
	selected  engine.Pos
	selecting bool
	hint      engine.Move
	hintLeft  int

	message     string
	messageLeft int

	paused   bool
	tooSmall bool
}

// New creates a classic match-3 game.
func New() *Game {
	return &Game{mode: ModeClassic}
}

// NewZen creates the relaxed variant with a large move budget.
func NewZen() *Game {
	return &Game{mode: ModeZen}
}

func init() {
	registry.Register("match3", "Swap candies, clear the target colour, beat the move budget", func() registry.Game {
		return New()
	})
	registry.Register("match3_zen", "Match-3 with a near-endless move budget", func() registry.Game {
		return NewZen()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeZen {
		return "match3_zen"
	}
	return "match3"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeZen {
		return "Match-3 (Zen)"
	}
	return "Match-3"
}

// SetDifficulty overrides the package-wide preset for this instance.
// It takes effect on the next Reset.
func (g *Game) SetDifficulty(preset string) error {
	p, err := config.ParsePreset(preset)
	if err != nil {
		return err
	}
	g.preset = p
	return nil
}

// Reset loads configuration and deals a fresh board.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.tick = 0
	g.paused = false
	g.selecting = false
	g.hintLeft = 0
	g.message = ""
	g.messageLeft = 0

	cfg, err := config.LoadMatch3(configPath)
	if err != nil {
		logger.Warn("using default match3 config", "err", err)
		cfg = config.DefaultMatch3Config()
	}
	preset := difficultyPreset
	if g.preset != "" {
		preset = g.preset
	}
	if preset != "" {
		config.ApplyMatch3Preset(&cfg, preset)
	}
	if g.mode == ModeZen {
		cfg.Moves.Budget = zenMoves
		cfg.Difficulty.Enabled = false
	}

	var board *engine.Grid
	if boardPath != "" {
		board, err = LoadBoard(boardPath)
		if err != nil {
			logger.Warn("ignoring fixture board", "path", boardPath, "err", err)
			g.notify("Board file invalid, dealing a random board")
			board = nil
		} else {
			cfg.Board.Rows, cfg.Board.Cols = board.Rows(), board.Cols()
		}
	}

	g.cfg = cfg
	g.flash = flashState{duration: cfg.Animation.FlashTicks}
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)
	g.anim = newTickAnimator(g.transitionTicks)
	g.runID = uuid.NewString()

	opts := EngineOptions(cfg)
	opts.Board = board
	opts.Source = rand.New(rand.NewSource(runtime.Seed))
	opts.Animator = g.anim
	opts.Haptics = &g.flash
	opts.Clock = time.Now
	opts.Logger = logger.With("game", g.ID())
	if runtime.Results != nil {
		opts.Results = resultBridge{sink: runtime.Results, gameID: g.ID(), runID: g.runID}
	}

	g.eng = engine.New(opts)
	g.eng.Start()
	g.cursor = engine.P(cfg.Board.Rows/2, cfg.Board.Cols/2)

	g.checkScreenSize()
}

// EngineOptions maps the board, economy and power-up settings of cfg onto
// engine options. Ports such as the animator and symbol source are left
// for the caller.
func EngineOptions(cfg config.Match3Config) engine.Options {
	return engine.Options{
		Rows:                cfg.Board.Rows,
		Cols:                cfg.Board.Cols,
		Moves:               cfg.Moves.Budget,
		AvoidInitialMatches: cfg.Board.AvoidInitialMatches,
		Score: engine.ScoreRules{
			PerCell:       cfg.Scoring.PerCell,
			MultiplierCap: cfg.Scoring.MultiplierCap,
		},
		Challenge: engine.ChallengeRules{
			BaseTarget: cfg.Challenge.BaseTarget,
			TargetStep: cfg.Challenge.TargetStep,
		},
		SelfCheckEvery: cfg.Engine.SelfCheckEvery,
		Reshuffles:     cfg.PowerUps.Reshuffles,
		Poppers:        cfg.PowerUps.Poppers,
		PopperSize:     cfg.PowerUps.PopperSize,
	}
}

// checkScreenSize checks if the screen is large enough for board and HUD.
func (g *Game) checkScreenSize() {
	minW := boardWidth(g.cfg.Board.Cols)
	if minW < hudMinWidth {
		minW = hudMinWidth
	}
	minH := boardHeight(g.cfg.Board.Rows) + hudHeight + footerHeight
	g.tooSmall = g.runtime.ScreenW < minW || g.runtime.ScreenH < minH
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.eng.Ended() {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	// Completions may start the next phase, which schedules more transitions.
	g.anim.Step()
	g.flash.step()
	if g.hintLeft > 0 {
		g.hintLeft--
	}
	if g.messageLeft > 0 {
		g.messageLeft--
	}

	if g.eng.Ended() {
		// Restart is handled by the platform via Reset.
		return core.StepResult{State: g.State()}
	}

	g.handleInput(in)
	return core.StepResult{State: g.State()}
}

func (g *Game) handleInput(in core.InputFrame) {
	switch {
	case in.Has(core.ActionUp):
		g.moveCursor(-1, 0)
	case in.Has(core.ActionDown):
		g.moveCursor(1, 0)
	case in.Has(core.ActionLeft):
		g.moveCursor(0, -1)
	case in.Has(core.ActionRight):
		g.moveCursor(0, 1)
	}

	switch {
	case in.Has(core.ActionSelect):
		g.selectAtCursor()
	case in.Has(core.ActionCancel):
		g.selecting = false
	case in.Has(core.ActionShuffle):
		g.powerUp("Reshuffle", g.eng.Reshuffle())
	case in.Has(core.ActionPopper):
		g.powerUp("Party popper", g.eng.PartyPopper(g.cursor, 0))
	case in.Has(core.ActionHint):
		if mv, ok := g.eng.Hint(); ok {
			g.hint = mv
			g.hintLeft = hintTicks
		}
	case in.Has(core.ActionContinue):
		g.eng.Rescan()
	case in.Has(core.ActionEnd):
		g.eng.ForceEnd()
	}
}

func (g *Game) moveCursor(dr, dc int) {
	g.cursor.Row = core.Clamp(g.cursor.Row+dr, 0, g.cfg.Board.Rows-1)
	g.cursor.Col = core.Clamp(g.cursor.Col+dc, 0, g.cfg.Board.Cols-1)
}

// selectAtCursor picks the cursor cell, or swaps it with the picked one when
// they are neighbours.
func (g *Game) selectAtCursor() {
	if !g.selecting {
		g.selected = g.cursor
		g.selecting = true
		return
	}
	if g.selected == g.cursor {
		g.selecting = false
		return
	}
	if !g.selected.Adjacent(g.cursor) {
		g.selected = g.cursor
		return
	}

	switch g.eng.Swap(g.selected, g.cursor) {
	case engine.SwapAccepted:
		g.hintLeft = 0
	case engine.SwapRejected:
		g.notify("No match")
	case engine.SwapDesynced:
		g.notify("Board repaired, try again")
	case engine.SwapIgnored:
		// Busy: keep the selection so the player can retry.
		return
	}
	g.selecting = false
}

func (g *Game) powerUp(name string, err error) {
	if err == nil {
		g.selecting = false
		g.hintLeft = 0
		return
	}
	switch {
	case errors.Is(err, engine.ErrNoPowerUp):
		g.notify(name + ": no charges left")
	case errors.Is(err, engine.ErrNotIdle):
		g.notify(name + ": wait for the board to settle")
	}
}

func (g *Game) notify(msg string) {
	g.message = msg
	g.messageLeft = messageTicks
}

// transitionTicks returns the duration of one transition at the current pace.
func (g *Game) transitionTicks(t engine.Transition) int {
	a := g.cfg.Animation
	var base int
	switch t.Kind {
	case engine.TransitionSwap:
		base = a.SwapTicks
	case engine.TransitionReject:
		base = a.RejectTicks
	case engine.TransitionClear:
		base = a.ClearTicks
	case engine.TransitionFall, engine.TransitionSpawn:
		base = a.FallTicksPerRow * core.Max(1, core.Abs(t.To.Row-t.From.Row))
	}
	level, score := 1, 0
	if g.eng != nil {
		level, score = g.eng.Challenge().Level, g.eng.Score()
	}
	return g.difficulty.Ticks(base, level, score)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.eng == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.eng.Score(),
		Level:    g.eng.Challenge().Level,
		Moves:    g.eng.Moves(),
		GameOver: g.eng.Ended(),
		Paused:   g.paused || g.tooSmall,
		Busy:     g.eng.Phase().Busy(),
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return "Arrows: Move | Space: Select/Swap | F: Shuffle | B: Popper | ?: Hint | E: End | P: Pause | Q: Quit"
}

// resultBridge forwards engine results to the platform sink.
type resultBridge struct {
	sink   core.ResultSink
	gameID string
	runID  string
}

func (b resultBridge) SaveResult(r engine.Result) error {
	err := b.sink.SaveResult(core.RunResult{
		RunID:    b.runID,
		GameID:   b.gameID,
		Score:    r.Score,
		Level:    r.Level,
		Duration: r.Duration,
	})
	if err != nil {
		return fmt.Errorf("save %s run %s: %w", b.gameID, b.runID, err)
	}
	return nil
}

// Resize adapts the layout to a new screen size and keeps the current run.
func (g *Game) Resize(width, height int) {
	g.runtime.ScreenW = width
	g.runtime.ScreenH = height
	g.checkScreenSize()
}
