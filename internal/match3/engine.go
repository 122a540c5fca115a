package match3

import (
	"errors"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
)

// Phase is the state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSwapping
	PhaseRejecting
	PhaseMatchChecking
	PhaseRemoving
	PhaseCascading
	PhaseMoveCheck
	PhaseDeadlock
	PhaseGameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSwapping:
		return "swapping"
	case PhaseRejecting:
		return "rejecting"
	case PhaseMatchChecking:
		return "match_checking"
	case PhaseRemoving:
		return "removing"
	case PhaseCascading:
		return "cascading"
	case PhaseMoveCheck:
		return "move_check"
	case PhaseDeadlock:
		return "deadlock"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Busy reports whether a mutation sequence is in flight.
func (p Phase) Busy() bool {
	switch p {
	case PhaseIdle, PhaseDeadlock, PhaseGameOver:
		return false
	default:
		return true
	}
}

// SwapOutcome is the result of a swap request.
type SwapOutcome int

const (
	SwapAccepted SwapOutcome = iota // committed, resolution started
	SwapRejected                    // legal but no match, nothing consumed
	SwapIllegal                     // out of bounds or not adjacent
	SwapIgnored                     // engine not idle or game over
	SwapDesynced                    // grid failed its check and was repaired
)

// String returns the outcome name.
func (o SwapOutcome) String() string {
	switch o {
	case SwapAccepted:
		return "accepted"
	case SwapRejected:
		return "rejected"
	case SwapIllegal:
		return "illegal"
	case SwapIgnored:
		return "ignored"
	case SwapDesynced:
		return "desynced"
	default:
		return "unknown"
	}
}

// Frame is the state published to observers.
type Frame struct {
	Phase      Phase
	Grid       [][]CellView
	Challenge  ChallengeState
	Score      int
	LastGain   int
	Moves      int
	Streak     int
	Reshuffles int
	Poppers    int
	Ended      bool
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Rows  int
	Cols  int
	Moves int

	// AvoidInitialMatches makes the starting board free of runs and
	// guarantees at least one available move.
	AvoidInitialMatches bool

	Score     ScoreRules
	Challenge ChallengeRules

	// SelfCheckEvery validates the grid after this many quiescent passes.
	// Zero disables the periodic check; swaps are always checked.
	SelfCheckEvery int

	Reshuffles int // reshuffle charges per game
	Poppers    int // party popper charges per game
	PopperSize int // side of the cleared square

	// Board optionally replaces the random starting board. It is cloned.
	Board *Grid

	Source   SymbolSource
	Animator Animator
	Results  ResultSink
	Haptics  HapticSink
	Observer Observer
	Clock    func() time.Time
	Logger   *log.Logger
}

const (
	defaultRows       = 8
	defaultCols       = 8
	defaultMoves      = 30
	defaultPopperSize = 3
	startAttempts     = 100
)

func (o Options) withDefaults() Options {
	if o.Board != nil {
		o.Rows, o.Cols = o.Board.Rows(), o.Board.Cols()
	}
	if o.Rows <= 0 {
		o.Rows = defaultRows
	}
	if o.Cols <= 0 {
		o.Cols = defaultCols
	}
	if o.Moves <= 0 {
		o.Moves = defaultMoves
	}
	if o.Score.PerCell <= 0 {
		o.Score = DefaultScoreRules()
	}
	if o.Challenge.BaseTarget <= 0 {
		o.Challenge = DefaultChallengeRules()
	}
	if o.PopperSize <= 0 {
		o.PopperSize = defaultPopperSize
	}
	if o.Source == nil {
		o.Source = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Animator == nil {
		o.Animator = InstantAnimator{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Engine sequences swaps, matches, cascades and move checks for one board.
// It never blocks: animation completions re-enter it through the Animator
// callbacks. It is not safe for concurrent use; callbacks must be delivered
// on the goroutine that drives the engine.
type Engine struct {
	opts Options
	log  *log.Logger

	grid      *Grid
	challenge *Challenge
	combo     ComboState
	phase     Phase

	score      int
	lastGain   int
	moves      int
	reshuffles int
	poppers    int
	started    time.Time

	ended bool
	saved bool

	passes  int
	nextTID uint64
	barrier Barrier
	onDrain func()
	steps   []func()
	driving bool
}

// New creates an engine. Call Start to deal the first board.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts:  opts,
		log:   opts.Logger,
		phase: PhaseGameOver,
		ended: true,
		saved: true,
	}
}

// Start discards any current game and deals a fresh board, challenge,
// combo and move budget.
func (e *Engine) Start() {
	e.barrier.Reset()
	e.onDrain = nil
	e.steps = nil

	e.grid = e.newBoard()
	e.challenge = NewChallenge(e.opts.Challenge, e.opts.Source)
	e.combo.Reset()
	e.score = 0
	e.lastGain = 0
	e.moves = e.opts.Moves
	e.reshuffles = e.opts.Reshuffles
	e.poppers = e.opts.Poppers
	e.passes = 0
	e.ended = false
	e.saved = false
	e.started = e.opts.Clock()

	e.log.Info("game started",
		"rows", e.grid.Rows(), "cols", e.grid.Cols(),
		"moves", e.moves, "target", e.challenge.State().TargetSymbol)

	if HasMatch(e.grid) {
		// Plain fills and preset boards may arrive unsettled.
		e.enqueue(e.matchCheck)
		return
	}
	e.enqueue(e.moveCheck)
}

// Restart is Start under the name the UI uses.
func (e *Engine) Restart() {
	e.Start()
}

func (e *Engine) newBoard() *Grid {
	if e.opts.Board != nil {
		g := e.opts.Board.Clone()
		g.Fill(e.opts.Source, e.opts.AvoidInitialMatches)
		return g
	}
	g := NewGrid(e.opts.Rows, e.opts.Cols)
	g.Fill(e.opts.Source, e.opts.AvoidInitialMatches)
	if !e.opts.AvoidInitialMatches {
		return g
	}
	for i := 1; i < startAttempts && !HasAvailableMove(g); i++ {
		g.Empty()
		g.Fill(e.opts.Source, true)
	}
	return g
}

// Swap requests a swap of two slots. Input while not idle is dropped.
func (e *Engine) Swap(a, b Pos) SwapOutcome {
	if e.ended || e.phase != PhaseIdle {
		return SwapIgnored
	}
	if !e.grid.InBounds(a) || !e.grid.InBounds(b) || !a.Adjacent(b) {
		return SwapIllegal
	}
	if e.moves <= 0 {
		return SwapIgnored
	}
	if err := e.grid.ValidateSettled(); err != nil {
		e.repair(err)
		e.enqueue(e.matchCheck)
		return SwapDesynced
	}
	if !Probe(e.grid, a, b) {
		e.enqueue(func() { e.reject(a, b) })
		return SwapRejected
	}
	e.enqueue(func() { e.commit(a, b) })
	return SwapAccepted
}

func (e *Engine) reject(a, b Pos) {
	ca, cb := e.grid.Get(a), e.grid.Get(b)
	ts := []Transition{
		{Kind: TransitionReject, CellID: ca.ID, Symbol: ca.Symbol, From: a, To: b},
		{Kind: TransitionReject, CellID: cb.ID, Symbol: cb.Symbol, From: b, To: a},
	}
	e.pulse(HapticReject)
	e.setPhase(PhaseRejecting)
	e.await(ts, func() { e.setPhase(PhaseIdle) })
}

func (e *Engine) commit(a, b Pos) {
	e.grid.Swap(a, b)
	e.moves--
	ca, cb := e.grid.Get(b), e.grid.Get(a)
	ts := []Transition{
		{Kind: TransitionSwap, CellID: ca.ID, Symbol: ca.Symbol, From: a, To: b},
		{Kind: TransitionSwap, CellID: cb.ID, Symbol: cb.Symbol, From: b, To: a},
	}
	e.lastGain = 0
	e.pulse(HapticSwap)
	e.setPhase(PhaseSwapping)
	e.await(ts, e.matchCheck)
}

func (e *Engine) matchCheck() {
	e.setPhase(PhaseMatchChecking)
	m := FindMatches(e.grid)
	if m.Empty() {
		e.quiesce()
		return
	}
	e.remove(m)
}

func (e *Engine) remove(m Match) {
	added := e.challenge.Record(m)
	gain := e.opts.Score.PassScore(m.Len(), e.combo.Streak)
	e.score += gain
	e.lastGain += gain
	e.combo.Hit()
	ts := Remove(e.grid, m)

	e.log.Debug("match cleared",
		"cells", m.Len(), "runs", len(m.runs), "gain", gain,
		"streak", e.combo.Streak, "target_progress", added)

	e.pulse(HapticMatch)
	e.setPhase(PhaseRemoving)
	e.await(ts, e.cascade)
}

func (e *Engine) cascade() {
	ts := Collapse(e.grid, e.opts.Source)
	e.setPhase(PhaseCascading)
	e.await(ts, e.settled)
}

// settled runs once per cascade step, after every fall and spawn finished.
func (e *Engine) settled() {
	if bonus, ok := e.challenge.CheckLevelUp(); ok {
		e.moves += bonus
		st := e.challenge.State()
		e.log.Info("level up", "level", st.Level, "bonus_moves", bonus,
			"target", st.TargetSymbol, "target_count", st.TargetCount)
		e.pulse(HapticLevelUp)
	}
	e.matchCheck()
}

// quiesce handles a pass without matches.
func (e *Engine) quiesce() {
	e.combo.Reset()
	e.passes++
	if n := e.opts.SelfCheckEvery; n > 0 && e.passes%n == 0 {
		if err := e.grid.ValidateSettled(); err != nil {
			e.repair(err)
			e.matchCheck()
			return
		}
	}
	if e.moves <= 0 {
		e.gameOver()
		return
	}
	e.moveCheck()
}

func (e *Engine) moveCheck() {
	e.setPhase(PhaseMoveCheck)
	if HasAvailableMove(e.grid) {
		e.setPhase(PhaseIdle)
		return
	}
	e.log.Warn("deadlock", "moves", e.moves, "score", e.score)
	e.pulse(HapticDeadlock)
	e.setPhase(PhaseDeadlock)
}

func (e *Engine) gameOver() {
	e.finish("moves exhausted")
	e.pulse(HapticGameOver)
	e.setPhase(PhaseGameOver)
}

// finish stops input and persists the result once per game.
func (e *Engine) finish(reason string) {
	e.ended = true
	if e.saved {
		return
	}
	e.saved = true
	res := e.Result()
	e.log.Info("game over", "reason", reason,
		"score", res.Score, "level", res.Level, "duration", res.Duration)
	if e.opts.Results == nil {
		return
	}
	if err := e.opts.Results.SaveResult(res); err != nil {
		e.log.Error("save result", "err", err)
	}
}

// repair rebuilds the grid after a failed invariant check.
func (e *Engine) repair(err error) {
	var v *InvariantViolation
	if errors.As(err, &v) {
		e.log.Warn("grid invariant violated",
			"kind", v.Kind, "at", v.At, "cell", v.CellID, "other", v.Other)
	} else {
		e.log.Warn("grid check failed", "err", err)
	}
	discarded, spawned := e.grid.Reconstruct(e.opts.Source)
	e.log.Info("grid reconstructed", "discarded", discarded, "spawned", spawned)
}

// Reshuffle clears the whole board and refills it through the cascade
// pipeline. Allowed from Idle or Deadlock.
func (e *Engine) Reshuffle() error {
	if e.ended {
		return ErrGameOver
	}
	if e.phase != PhaseIdle && e.phase != PhaseDeadlock {
		return ErrNotIdle
	}
	if e.reshuffles <= 0 {
		return ErrNoPowerUp
	}
	e.reshuffles--
	e.enqueue(func() { e.blast(ClearAll(e.grid)) })
	return nil
}

// PartyPopper clears an n×n block around center (n <= 0 uses the configured
// size) and refills through the cascade pipeline. Allowed from Idle only.
func (e *Engine) PartyPopper(center Pos, n int) error {
	if e.ended {
		return ErrGameOver
	}
	if e.phase != PhaseIdle {
		return ErrNotIdle
	}
	if !e.grid.InBounds(center) {
		return ErrOutOfBounds
	}
	if e.poppers <= 0 {
		return ErrNoPowerUp
	}
	if n <= 0 {
		n = e.opts.PopperSize
	}
	e.poppers--
	e.enqueue(func() { e.blast(ClearArea(e.grid, center, n)) })
	return nil
}

// blast removes cells without scoring or challenge credit.
func (e *Engine) blast(ts []Transition) {
	e.lastGain = 0
	e.setPhase(PhaseRemoving)
	e.await(ts, e.cascade)
}

// Rescan re-runs the move check from Deadlock.
func (e *Engine) Rescan() {
	if e.ended || e.phase != PhaseDeadlock {
		return
	}
	e.enqueue(e.moveCheck)
}

// ForceEnd ends the game immediately, even mid-cascade. The result is
// persisted once and further input is ignored. Pending completions become
// stale.
func (e *Engine) ForceEnd() {
	if e.ended {
		return
	}
	e.barrier.Reset()
	e.onDrain = nil
	e.steps = nil
	e.finish("forced")
	e.setPhase(PhaseGameOver)
}

// Hint returns the first available move while idle.
func (e *Engine) Hint() (Move, bool) {
	if e.ended || e.phase != PhaseIdle {
		return Move{}, false
	}
	return FindMove(e.grid)
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Ended reports whether the game accepts no more input.
func (e *Engine) Ended() bool {
	return e.ended
}

// Score returns the running score.
func (e *Engine) Score() int {
	return e.score
}

// Moves returns the remaining move budget.
func (e *Engine) Moves() int {
	return e.moves
}

// Challenge returns the current objective.
func (e *Engine) Challenge() ChallengeState {
	if e.challenge == nil {
		return ChallengeState{}
	}
	return e.challenge.State()
}

// Streak returns the combo streak.
func (e *Engine) Streak() int {
	return e.combo.Streak
}

// Result returns the score, level and elapsed time of the current game.
func (e *Engine) Result() Result {
	return Result{
		Score:    e.score,
		Level:    e.Challenge().Level,
		Duration: e.opts.Clock().Sub(e.started),
	}
}

// Frame returns the current published state.
func (e *Engine) Frame() Frame {
	f := Frame{
		Phase:      e.phase,
		Challenge:  e.Challenge(),
		Score:      e.score,
		LastGain:   e.lastGain,
		Moves:      e.moves,
		Streak:     e.combo.Streak,
		Reshuffles: e.reshuffles,
		Poppers:    e.poppers,
		Ended:      e.ended,
	}
	if e.grid != nil {
		f.Grid = e.grid.Snapshot()
	}
	return f
}

func (e *Engine) setPhase(p Phase) {
	e.phase = p
	if e.opts.Observer != nil {
		e.opts.Observer.OnFrame(e.Frame())
	}
}

func (e *Engine) pulse(k HapticKind) {
	if e.opts.Haptics != nil {
		e.opts.Haptics.Pulse(k)
	}
}

// await schedules ts and continues with next once all of them completed.
func (e *Engine) await(ts []Transition, next func()) {
	if e.ended {
		return
	}
	if len(ts) == 0 {
		e.enqueue(next)
		return
	}
	for i := range ts {
		e.nextTID++
		ts[i].ID = e.nextTID
	}
	e.barrier.Arm(ts)
	e.onDrain = next
	for _, t := range ts {
		id := t.ID
		e.opts.Animator.Schedule(t, func() { e.complete(id) })
	}
}

func (e *Engine) complete(id uint64) {
	if !e.barrier.Done(id) || !e.barrier.Drained() {
		return
	}
	next := e.onDrain
	e.onDrain = nil
	if next != nil {
		e.enqueue(next)
	}
}

// enqueue runs step, or queues it if a step is already running. Successive
// phases run from this loop so synchronous animators do not recurse.
func (e *Engine) enqueue(step func()) {
	e.steps = append(e.steps, step)
	if e.driving {
		return
	}
	e.driving = true
	defer func() { e.driving = false }()
	for len(e.steps) > 0 {
		next := e.steps[0]
		e.steps = e.steps[1:]
		if e.ended && e.phase == PhaseGameOver {
			e.steps = nil
			break
		}
		next()
	}
}
