package match3

import (
	engine "github.com/vovakirdan/tui-match3/internal/match3"
)

// animation is one scheduled transition in flight.
type animation struct {
	t        engine.Transition
	elapsed  int
	duration int
	done     func()
}

// Progress returns 0.0 → 1.0.
func (a *animation) Progress() float64 {
	if a.duration <= 0 {
		return 1
	}
	p := float64(a.elapsed) / float64(a.duration)
	if p > 1 {
		p = 1
	}
	return p
}

// tickAnimator implements engine.Animator on the fixed simulation tick.
// Transitions finish after their duration in ticks; their completions are
// delivered from Step, on the game goroutine.
type tickAnimator struct {
	active   []*animation
	duration func(engine.Transition) int
}

func newTickAnimator(duration func(engine.Transition) int) *tickAnimator {
	return &tickAnimator{duration: duration}
}

// Schedule queues t. The engine sees done on a later Step.
func (a *tickAnimator) Schedule(t engine.Transition, done func()) {
	d := 1
	if a.duration != nil {
		d = a.duration(t)
	}
	if d < 1 {
		d = 1
	}
	a.active = append(a.active, &animation{t: t, duration: d, done: done})
}

// Step advances every transition by one tick and fires finished completions.
// Transitions scheduled by those completions start on the next Step.
func (a *tickAnimator) Step() {
	if len(a.active) == 0 {
		return
	}
	current := a.active
	a.active = nil

	var finished []*animation
	for _, an := range current {
		an.elapsed++
		if an.elapsed >= an.duration {
			finished = append(finished, an)
			continue
		}
		a.active = append(a.active, an)
	}
	for _, an := range finished {
		an.done()
	}
}

// Busy reports whether any transition is still running.
func (a *tickAnimator) Busy() bool {
	return len(a.active) > 0
}

// Active returns the transitions in flight.
func (a *tickAnimator) Active() []*animation {
	return a.active
}

// byCell indexes moving cells by ID for the renderer.
// Clears are returned separately since their cells already left the grid.
func (a *tickAnimator) byCell() (moving map[uint64]*animation, clearing []*animation) {
	moving = make(map[uint64]*animation, len(a.active))
	for _, an := range a.active {
		if an.t.Kind == engine.TransitionClear {
			clearing = append(clearing, an)
			continue
		}
		moving[an.t.CellID] = an
	}
	return moving, clearing
}

// easeOutQuad provides smooth deceleration for animation.
func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

// position returns the interpolated board position of the animated cell,
// in fractional rows and columns.
func (a *animation) position() (row, col float64) {
	p := a.Progress()
	var t float64
	switch a.t.Kind {
	case engine.TransitionReject:
		// Out and back.
		if p < 0.5 {
			t = easeOutQuad(p * 2)
		} else {
			t = easeOutQuad((1 - p) * 2)
		}
	case engine.TransitionFall, engine.TransitionSpawn:
		// Gravity accelerates.
		t = p * p
	default:
		t = easeOutQuad(p)
	}
	from, to := a.t.From, a.t.To
	row = float64(from.Row) + float64(to.Row-from.Row)*t
	col = float64(from.Col) + float64(to.Col-from.Col)*t
	return row, col
}
