package match3

import (
	"math/rand"
	"time"
)

// scriptSource returns the scripted indices in order, then cycles through
// the alphabet so refills never repeat one symbol forever.
type scriptSource struct {
	vals []int
	pos  int
}

func script(vals ...int) *scriptSource {
	return &scriptSource{vals: vals}
}

func (s *scriptSource) Intn(n int) int {
	if s.pos >= len(s.vals) {
		v := s.pos % n
		s.pos++
		return v
	}
	v := s.vals[s.pos] % n
	s.pos++
	return v
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// manualAnimator holds completions until the test flushes them.
type manualAnimator struct {
	pending []Transition
	done    []func()
}

func (a *manualAnimator) Schedule(t Transition, done func()) {
	a.pending = append(a.pending, t)
	a.done = append(a.done, done)
}

// flush completes everything scheduled so far and returns what it completed.
func (a *manualAnimator) flush() []Transition {
	ts, done := a.pending, a.done
	a.pending, a.done = nil, nil
	for _, fn := range done {
		fn()
	}
	return ts
}

// settle flushes until nothing new gets scheduled.
func (a *manualAnimator) settle() {
	for len(a.done) > 0 {
		a.flush()
	}
}

type recordingSink struct {
	results []Result
}

func (s *recordingSink) SaveResult(r Result) error {
	s.results = append(s.results, r)
	return nil
}

type hapticLog struct {
	pulses []HapticKind
}

func (h *hapticLog) Pulse(k HapticKind) {
	h.pulses = append(h.pulses, k)
}

func (h *hapticLog) count(k HapticKind) int {
	n := 0
	for _, p := range h.pulses {
		if p == k {
			n++
		}
	}
	return n
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

// naiveHasMatch checks every slot for three equal symbols to the right or
// below. Used as an oracle independent of the run scanner.
func naiveHasMatch(g *Grid) bool {
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			s := g.SymbolAt(P(r, c))
			if s == SymbolNone {
				continue
			}
			if g.SymbolAt(P(r, c+1)) == s && g.SymbolAt(P(r, c+2)) == s {
				return true
			}
			if g.SymbolAt(P(r+1, c)) == s && g.SymbolAt(P(r+2, c)) == s {
				return true
			}
		}
	}
	return false
}

// bruteForceHasMove tries every ordered adjacent pair on a copy of the grid.
func bruteForceHasMove(g *Grid) bool {
	dirs := []Pos{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			for _, d := range dirs {
				a, b := P(r, c), P(r+d.Row, c+d.Col)
				if !g.InBounds(b) {
					continue
				}
				cp := g.Clone()
				cp.Swap(a, b)
				if naiveHasMatch(cp) {
					return true
				}
			}
		}
	}
	return false
}

// lshapeBoard has no runs; swapping (2,0) and (3,0) creates a vertical and a
// horizontal red run sharing the corner at (2,0).
func lshapeBoard() *Grid {
	return MustParseGrid(
		"RGBYO",
		"RBGOY",
		"BRRYG",
		"RYOGB",
		"GOYBP",
	)
}

// chainBoard has no runs; swapping (2,1) and (3,1) completes RRR on the
// bottom row.
func chainBoard() *Grid {
	return MustParseGrid(
		"GBG",
		"BGB",
		"ORP",
		"RYR",
	)
}

// deadlockBoard has no runs and no swap that creates one.
func deadlockBoard() *Grid {
	return MustParseGrid(
		"RGBYRG",
		"BYRGBY",
		"RGBYRG",
		"BYRGBY",
	)
}
