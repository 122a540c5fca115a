package match3

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// chainScript drives chainBoard through two cascade steps: red target,
// a blue row spawned by the first collapse, blue as the level 2 target,
// then a harmless refill.
func chainScript() *scriptSource {
	return script(
		0,       // level 1 target: red
		4, 4, 4, // first refill: BBB on top
		4,       // level 2 target: blue
		0, 1, 2, // second refill: ROY
		0,       // level 3 target: red
	)
}

func newChainEngine(anim Animator, sink *recordingSink, haptics *hapticLog) *Engine {
	opts := Options{
		Board:          chainBoard(),
		Moves:          5,
		Challenge:      ChallengeRules{BaseTarget: 3, TargetStep: 0},
		SelfCheckEvery: 1,
		Source:         chainScript(),
		Animator:       anim,
	}
	if sink != nil {
		opts.Results = sink
	}
	if haptics != nil {
		opts.Haptics = haptics
	}
	return New(opts)
}

func TestEngineStart(t *testing.T) {
	e := New(Options{Rows: 8, Cols: 8, Moves: 20, AvoidInitialMatches: true, Source: seeded(11)})
	if e.Phase() != PhaseGameOver || !e.Ended() {
		t.Fatalf("engine before Start() = %v ended=%v", e.Phase(), e.Ended())
	}
	e.Start()

	if e.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", e.Phase())
	}
	if e.Moves() != 20 || e.Score() != 0 || e.Streak() != 0 {
		t.Errorf("moves=%d score=%d streak=%d", e.Moves(), e.Score(), e.Streak())
	}
	st := e.Challenge()
	if st.Level != 1 || st.TargetCount != 10 || !st.TargetSymbol.Valid() {
		t.Errorf("Challenge() = %+v", st)
	}
	if HasMatch(e.grid) {
		t.Error("start board has a run")
	}
	if !HasAvailableMove(e.grid) {
		t.Error("start board has no move")
	}
}

func TestEngineStartBoardsAreSettled(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		e := New(Options{Rows: 6, Cols: 6, AvoidInitialMatches: true, Source: seeded(seed)})
		e.Start()
		if e.Phase() != PhaseIdle {
			t.Fatalf("seed %d: Phase() = %v, want idle", seed, e.Phase())
		}
		if err := e.grid.ValidateSettled(); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
}

func TestEngineChainedLevelUps(t *testing.T) {
	haptics := &hapticLog{}
	var phases []Phase
	e := newChainEngine(InstantAnimator{}, nil, haptics)
	e.opts.Observer = ObserverFunc(func(f Frame) {
		phases = append(phases, f.Phase)
	})
	e.Start()
	phases = nil

	if got := e.Swap(P(2, 1), P(3, 1)); got != SwapAccepted {
		t.Fatalf("Swap() = %v, want accepted", got)
	}

	// Both cascade steps crossed the target: two level-ups, one per step.
	st := e.Challenge()
	if st.Level != 3 {
		t.Errorf("Level = %d, want 3", st.Level)
	}
	if st.TargetSymbol != SymbolRed || st.Progress != 0 || st.TargetCount != 3 {
		t.Errorf("Challenge() = %+v", st)
	}
	if n := haptics.count(HapticLevelUp); n != 2 {
		t.Errorf("level-up pulses = %d, want 2", n)
	}
	// 5 - 1 for the swap + 3 + 3 bonus.
	if e.Moves() != 10 {
		t.Errorf("Moves() = %d, want 10", e.Moves())
	}
	// 3 cells at x1, then 3 cells at x2.
	if e.Score() != 900 {
		t.Errorf("Score() = %d, want 900", e.Score())
	}
	if e.Streak() != 0 {
		t.Errorf("Streak() = %d, want 0 after quiescence", e.Streak())
	}
	if e.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", e.Phase())
	}
	if got := e.grid.String(); got != "ROY\nGBG\nBGB\nOYP" {
		t.Errorf("board =\n%s", got)
	}

	want := []Phase{
		PhaseSwapping,
		PhaseMatchChecking, PhaseRemoving, PhaseCascading,
		PhaseMatchChecking, PhaseRemoving, PhaseCascading,
		PhaseMatchChecking, PhaseMoveCheck, PhaseIdle,
	}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phase[%d] = %v, want %v", i, phases[i], want[i])
		}
	}
}

func TestEngineLastMoveEndsGame(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	sink := &recordingSink{}
	e := New(Options{
		Board:     lshapeBoard(),
		Moves:     1,
		Challenge: ChallengeRules{BaseTarget: 1000, TargetStep: 5},
		Source:    seeded(7),
		Results:   sink,
		Clock:     clock.Now,
	})
	e.Start()
	clock.now = clock.now.Add(90 * time.Second)

	if got := e.Swap(P(2, 0), P(3, 0)); got != SwapAccepted {
		t.Fatalf("Swap() = %v, want accepted", got)
	}
	if e.Moves() != 0 {
		t.Errorf("Moves() = %d, want 0", e.Moves())
	}
	if e.Phase() != PhaseGameOver || !e.Ended() {
		t.Fatalf("Phase() = %v ended=%v, want game over", e.Phase(), e.Ended())
	}
	if len(sink.results) != 1 {
		t.Fatalf("saved %d results, want 1", len(sink.results))
	}
	res := sink.results[0]
	if res.Score < 500 || res.Score != e.Score() {
		t.Errorf("saved score = %d, engine score = %d", res.Score, e.Score())
	}
	if res.Level != 1 {
		t.Errorf("saved level = %d, want 1", res.Level)
	}
	if res.Duration != 90*time.Second {
		t.Errorf("saved duration = %v, want 90s", res.Duration)
	}

	if got := e.Swap(P(0, 0), P(0, 1)); got != SwapIgnored {
		t.Errorf("Swap() after game over = %v, want ignored", got)
	}
	e.ForceEnd()
	if len(sink.results) != 1 {
		t.Errorf("ForceEnd() after game over saved again")
	}
}

func TestEngineRejectedSwap(t *testing.T) {
	haptics := &hapticLog{}
	var phases []Phase
	e := newChainEngine(InstantAnimator{}, nil, haptics)
	e.opts.Observer = ObserverFunc(func(f Frame) {
		phases = append(phases, f.Phase)
	})
	e.Start()
	phases = nil
	before := e.grid.Clone()

	if got := e.Swap(P(0, 0), P(0, 1)); got != SwapRejected {
		t.Fatalf("Swap() = %v, want rejected", got)
	}
	if e.Moves() != 5 {
		t.Errorf("Moves() = %d, want 5 (no move consumed)", e.Moves())
	}
	if !e.grid.Equal(before) {
		t.Error("rejected swap changed the board")
	}
	if e.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", e.Phase())
	}
	if len(phases) != 2 || phases[0] != PhaseRejecting || phases[1] != PhaseIdle {
		t.Errorf("phases = %v, want [rejecting idle]", phases)
	}
	if haptics.count(HapticReject) != 1 {
		t.Errorf("reject pulses = %d, want 1", haptics.count(HapticReject))
	}
}

func TestEngineIllegalSwap(t *testing.T) {
	e := newChainEngine(InstantAnimator{}, nil, nil)
	e.Start()

	tests := []struct {
		name string
		a, b Pos
	}{
		{"diagonal", P(0, 0), P(1, 1)},
		{"distant", P(0, 0), P(0, 2)},
		{"same", P(1, 1), P(1, 1)},
		{"out of bounds", P(3, 2), P(3, 3)},
		{"negative", P(0, 0), P(-1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Swap(tt.a, tt.b); got != SwapIllegal {
				t.Errorf("Swap(%v, %v) = %v, want illegal", tt.a, tt.b, got)
			}
			if e.Moves() != 5 {
				t.Errorf("Moves() = %d, want 5", e.Moves())
			}
		})
	}
}

func TestEngineDropsInputWhileBusy(t *testing.T) {
	anim := &manualAnimator{}
	e := newChainEngine(anim, nil, nil)
	e.Start()

	if got := e.Swap(P(2, 1), P(3, 1)); got != SwapAccepted {
		t.Fatalf("Swap() = %v, want accepted", got)
	}
	if e.Phase() != PhaseSwapping {
		t.Fatalf("Phase() = %v, want swapping", e.Phase())
	}
	if got := e.Swap(P(0, 0), P(0, 1)); got != SwapIgnored {
		t.Errorf("Swap() while swapping = %v, want ignored", got)
	}
	if err := e.Reshuffle(); !errors.Is(err, ErrNotIdle) {
		t.Errorf("Reshuffle() while busy = %v, want ErrNotIdle", err)
	}
	if _, ok := e.Hint(); ok {
		t.Error("Hint() while busy should return false")
	}

	ts := anim.flush()
	if len(ts) != 2 || ts[0].Kind != TransitionSwap {
		t.Fatalf("swap transitions = %+v", ts)
	}
	if e.Phase() != PhaseRemoving {
		t.Fatalf("Phase() = %v, want removing", e.Phase())
	}
	if got := e.Swap(P(0, 0), P(0, 1)); got != SwapIgnored {
		t.Errorf("Swap() while removing = %v, want ignored", got)
	}

	anim.settle()
	if e.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", e.Phase())
	}
	if e.Moves() != 10 || e.Score() != 900 {
		t.Errorf("moves=%d score=%d, want 10 and 900", e.Moves(), e.Score())
	}
}

func TestEngineCompletionsApplyOnce(t *testing.T) {
	anim := &manualAnimator{}
	e := newChainEngine(anim, nil, nil)
	e.Start()
	e.Swap(P(2, 1), P(3, 1))
	anim.flush()

	if len(anim.done) != 3 {
		t.Fatalf("pending clears = %d, want 3", len(anim.done))
	}
	first := anim.done[0]
	first()
	first()
	if e.Phase() != PhaseRemoving {
		t.Fatalf("Phase() = %v after a repeated completion, want removing", e.Phase())
	}
	anim.done[1]()
	if e.Phase() != PhaseRemoving {
		t.Fatalf("Phase() = %v with one clear pending, want removing", e.Phase())
	}
	anim.done[2]()
	if e.Phase() != PhaseCascading {
		t.Errorf("Phase() = %v, want cascading", e.Phase())
	}
}

func TestEngineForceEndMidCascade(t *testing.T) {
	anim := &manualAnimator{}
	sink := &recordingSink{}
	e := newChainEngine(anim, sink, nil)
	e.Start()
	e.Swap(P(2, 1), P(3, 1))
	anim.flush() // swap
	anim.flush() // clears
	if e.Phase() != PhaseCascading {
		t.Fatalf("Phase() = %v, want cascading", e.Phase())
	}

	e.ForceEnd()
	if e.Phase() != PhaseGameOver || !e.Ended() {
		t.Fatalf("Phase() = %v ended=%v, want game over", e.Phase(), e.Ended())
	}
	if len(sink.results) != 1 {
		t.Fatalf("saved %d results, want 1", len(sink.results))
	}
	if sink.results[0].Score != 300 || sink.results[0].Level != 1 {
		t.Errorf("saved %+v, want score 300 level 1", sink.results[0])
	}

	// Late completions from the abandoned cascade are stale.
	anim.settle()
	if e.Phase() != PhaseGameOver {
		t.Errorf("Phase() after late completions = %v, want game over", e.Phase())
	}
	if e.Challenge().Level != 1 || e.Moves() != 4 {
		t.Errorf("late completions advanced the game: level=%d moves=%d", e.Challenge().Level, e.Moves())
	}
	if got := e.Swap(P(0, 0), P(0, 1)); got != SwapIgnored {
		t.Errorf("Swap() after ForceEnd() = %v, want ignored", got)
	}
	e.ForceEnd()
	if len(sink.results) != 1 {
		t.Errorf("second ForceEnd() saved again: %d results", len(sink.results))
	}

	e.Restart()
	if e.Ended() || e.Phase() != PhaseIdle {
		t.Errorf("after Restart() ended=%v phase=%v", e.Ended(), e.Phase())
	}
	if e.Moves() != 5 || e.Score() != 0 || e.Challenge().Level != 1 {
		t.Errorf("Restart() did not reset: moves=%d score=%d level=%d", e.Moves(), e.Score(), e.Challenge().Level)
	}
}

func TestEngineRestartIgnoresStaleCompletions(t *testing.T) {
	anim := &manualAnimator{}
	e := newChainEngine(anim, nil, nil)
	e.Start()
	e.Swap(P(2, 1), P(3, 1))

	e.Restart()
	anim.settle()
	if e.Phase() != PhaseIdle || e.Moves() != 5 || e.Score() != 0 {
		t.Errorf("phase=%v moves=%d score=%d after stale completions", e.Phase(), e.Moves(), e.Score())
	}
	if err := e.grid.ValidateSettled(); err != nil {
		t.Errorf("ValidateSettled() = %v", err)
	}
}

func TestEngineRepairsCorruptGridBeforeSwap(t *testing.T) {
	e := New(Options{
		Board:     chainBoard(),
		Moves:     5,
		Challenge: ChallengeRules{BaseTarget: 3},
		Source:    script(0, 3),
	})
	e.Start()
	// (0,0) now references the cell stored at (0,1).
	e.grid.slots[e.grid.index(P(0, 0))] = e.grid.Get(P(0, 1))

	if got := e.Swap(P(2, 1), P(3, 1)); got != SwapDesynced {
		t.Fatalf("Swap() = %v, want desynced", got)
	}
	if err := e.grid.ValidateSettled(); err != nil {
		t.Fatalf("grid still invalid after repair: %v", err)
	}
	if e.Moves() != 5 {
		t.Errorf("Moves() = %d, want 5", e.Moves())
	}
	if e.Phase() != PhaseIdle {
		t.Fatalf("Phase() = %v, want idle", e.Phase())
	}
	if got := e.grid.String(); got != "GBG\nBGB\nORP\nRYR" {
		t.Errorf("repaired board =\n%s", got)
	}
	if got := e.Swap(P(2, 1), P(3, 1)); got != SwapAccepted {
		t.Errorf("Swap() after repair = %v, want accepted", got)
	}
}

func TestEngineSelfCheckRepairsAfterCascade(t *testing.T) {
	var logs bytes.Buffer
	anim := &manualAnimator{}
	e := New(Options{
		Board:          chainBoard(),
		Moves:          5,
		Challenge:      ChallengeRules{BaseTarget: 10, TargetStep: 5},
		SelfCheckEvery: 1,
		// red target, then an O P O refill that makes no run
		Source:   script(0, 1, 5, 1),
		Animator: anim,
		Logger:   log.New(&logs),
	})
	e.Start()

	if got := e.Swap(P(2, 1), P(3, 1)); got != SwapAccepted {
		t.Fatalf("Swap() = %v, want accepted", got)
	}
	anim.flush() // swap
	anim.flush() // clears
	if e.Phase() != PhaseCascading {
		t.Fatalf("Phase() = %v, want cascading", e.Phase())
	}

	// While falls are in flight, (0,0) starts sharing the cell stored at (0,1).
	e.grid.slots[e.grid.index(P(0, 0))] = e.grid.Get(P(0, 1))
	anim.settle()

	if e.Phase() != PhaseIdle {
		t.Fatalf("Phase() = %v, want idle after repair", e.Phase())
	}
	if err := e.grid.ValidateSettled(); err != nil {
		t.Fatalf("grid still invalid: %v", err)
	}
	if e.grid.Get(P(0, 0)) == e.grid.Get(P(0, 1)) {
		t.Error("(0,0) and (0,1) still share a cell")
	}
	if got := e.grid.String(); !strings.HasSuffix(got, "GBG\nBGB\nOYP") {
		t.Errorf("rows below the top changed:\n%s", got)
	}
	if e.Moves() != 4 {
		t.Errorf("Moves() = %d, want 4", e.Moves())
	}
	if !strings.Contains(logs.String(), "grid reconstructed") {
		t.Errorf("repair not logged:\n%s", logs.String())
	}
}

func TestEngineDeadlock(t *testing.T) {
	haptics := &hapticLog{}
	e := New(Options{
		Board:      deadlockBoard(),
		Moves:      10,
		Reshuffles: 1,
		Poppers:    1,
		Source:     seeded(5),
		Haptics:    haptics,
	})
	e.Start()

	if e.Phase() != PhaseDeadlock {
		t.Fatalf("Phase() = %v, want deadlock", e.Phase())
	}
	if e.Ended() {
		t.Error("deadlock must not end the game")
	}
	if haptics.count(HapticDeadlock) != 1 {
		t.Errorf("deadlock pulses = %d, want 1", haptics.count(HapticDeadlock))
	}
	if got := e.Swap(P(0, 0), P(0, 1)); got != SwapIgnored {
		t.Errorf("Swap() in deadlock = %v, want ignored", got)
	}
	if _, ok := e.Hint(); ok {
		t.Error("Hint() in deadlock should return false")
	}
	if err := e.PartyPopper(P(1, 1), 3); !errors.Is(err, ErrNotIdle) {
		t.Errorf("PartyPopper() in deadlock = %v, want ErrNotIdle", err)
	}

	e.Rescan()
	if e.Phase() != PhaseDeadlock {
		t.Errorf("Phase() after Rescan() = %v, want deadlock", e.Phase())
	}

	if err := e.Reshuffle(); err != nil {
		t.Fatalf("Reshuffle() = %v", err)
	}
	if e.Phase().Busy() {
		t.Errorf("Phase() after Reshuffle() = %v, want settled", e.Phase())
	}
	if err := e.grid.ValidateSettled(); err != nil {
		t.Errorf("ValidateSettled() after Reshuffle() = %v", err)
	}
	if HasMatch(e.grid) {
		t.Error("board after reshuffle still has a run")
	}
	if e.Moves() != 10 {
		t.Errorf("Moves() = %d, reshuffle must not consume moves", e.Moves())
	}
	if f := e.Frame(); f.Reshuffles != 0 {
		t.Errorf("Frame().Reshuffles = %d, want 0", f.Reshuffles)
	}
	if err := e.Reshuffle(); !errors.Is(err, ErrNoPowerUp) && !errors.Is(err, ErrNotIdle) {
		t.Errorf("second Reshuffle() = %v, want ErrNoPowerUp", err)
	}
}

func TestEnginePartyPopper(t *testing.T) {
	e := New(Options{
		Board:   chainBoard(),
		Moves:   5,
		Poppers: 1,
		Source:  script(0, 2),
	})
	e.Start()

	if err := e.PartyPopper(P(9, 9), 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("PartyPopper() out of bounds = %v, want ErrOutOfBounds", err)
	}
	if err := e.PartyPopper(P(0, 0), 1); err != nil {
		t.Fatalf("PartyPopper() = %v", err)
	}
	if got := e.grid.String(); got != "YBG\nBGB\nORP\nRYR" {
		t.Errorf("board after popper =\n%s", got)
	}
	if e.Score() != 0 || e.Challenge().Progress != 0 {
		t.Errorf("popper clear scored: score=%d progress=%d", e.Score(), e.Challenge().Progress)
	}
	if e.Moves() != 5 || e.Phase() != PhaseIdle {
		t.Errorf("moves=%d phase=%v", e.Moves(), e.Phase())
	}
	if err := e.PartyPopper(P(0, 0), 1); !errors.Is(err, ErrNoPowerUp) {
		t.Errorf("PartyPopper() without charges = %v, want ErrNoPowerUp", err)
	}
}

func TestEngineHint(t *testing.T) {
	e := newChainEngine(InstantAnimator{}, nil, nil)
	e.Start()
	mv, ok := e.Hint()
	if !ok {
		t.Fatal("Hint() found nothing")
	}
	if !Probe(e.grid, mv.A, mv.B) {
		t.Errorf("Hint() = %v does not match", mv)
	}
}

func TestEngineFrame(t *testing.T) {
	e := newChainEngine(InstantAnimator{}, nil, nil)
	e.Start()
	e.Swap(P(2, 1), P(3, 1))

	f := e.Frame()
	if f.Phase != PhaseIdle || f.Score != 900 || f.Moves != 10 || f.Streak != 0 {
		t.Errorf("Frame() = %+v", f)
	}
	if f.LastGain != 900 {
		t.Errorf("LastGain = %d, want 900", f.LastGain)
	}
	if len(f.Grid) != 4 || len(f.Grid[0]) != 3 {
		t.Fatalf("Frame().Grid dims = %dx%d", len(f.Grid), len(f.Grid[0]))
	}
	if f.Grid[0][0].Symbol != SymbolRed {
		t.Errorf("Frame().Grid[0][0] = %v, want red", f.Grid[0][0].Symbol)
	}
	if f.Challenge.Level != 3 {
		t.Errorf("Frame().Challenge.Level = %d, want 3", f.Challenge.Level)
	}
}

func TestEngineRandomPlayKeepsInvariants(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		sink := &recordingSink{}
		e := New(Options{
			Moves:               25,
			AvoidInitialMatches: true,
			Challenge:           ChallengeRules{BaseTarget: 1000},
			SelfCheckEvery:      3,
			Source:              seeded(seed),
			Results:             sink,
		})
		e.Start()

		prevScore := 0
		for steps := 0; !e.Ended() && steps < 500; steps++ {
			mv, ok := e.Hint()
			if !ok {
				e.ForceEnd()
				break
			}
			if got := e.Swap(mv.A, mv.B); got != SwapAccepted {
				t.Fatalf("seed %d: Swap(%v) = %v", seed, mv, got)
			}
			if e.Phase().Busy() {
				t.Fatalf("seed %d: engine busy after instant swap: %v", seed, e.Phase())
			}
			if !e.Ended() {
				if err := e.grid.ValidateSettled(); err != nil {
					t.Fatalf("seed %d: %v", seed, err)
				}
				if HasMatch(e.grid) {
					t.Fatalf("seed %d: settled board has a run", seed)
				}
			}
			if e.Score() < prevScore {
				t.Fatalf("seed %d: score decreased", seed)
			}
			prevScore = e.Score()
		}
		if !e.Ended() {
			t.Fatalf("seed %d: game did not end", seed)
		}
		if len(sink.results) != 1 {
			t.Errorf("seed %d: saved %d results, want 1", seed, len(sink.results))
		}
	}
}
