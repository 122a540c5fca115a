package match3

// ChallengeRules controls how level targets grow.
type ChallengeRules struct {
	BaseTarget int // cells required on level 1
	TargetStep int // extra cells per level
}

// DefaultChallengeRules returns the standard target curve: 10, 15, 20, ...
func DefaultChallengeRules() ChallengeRules {
	return ChallengeRules{BaseTarget: 10, TargetStep: 5}
}

// TargetFor returns the target count for a level (1-based).
func (r ChallengeRules) TargetFor(level int) int {
	if level < 1 {
		level = 1
	}
	return r.BaseTarget + r.TargetStep*(level-1)
}

// ChallengeState is the current level objective.
type ChallengeState struct {
	TargetSymbol Symbol
	TargetCount  int
	Progress     int
	Level        int
}

// Remaining returns how many target cells are still needed.
func (s ChallengeState) Remaining() int {
	if s.Progress >= s.TargetCount {
		return 0
	}
	return s.TargetCount - s.Progress
}

// Challenge tracks progress towards the level objective.
type Challenge struct {
	state ChallengeState
	rules ChallengeRules
	src   SymbolSource
}

// NewChallenge starts at level 1 with a random target symbol.
func NewChallenge(rules ChallengeRules, src SymbolSource) *Challenge {
	c := &Challenge{rules: rules, src: src}
	c.state = ChallengeState{
		TargetSymbol: SymbolAt(src.Intn(SymbolCount)),
		TargetCount:  rules.TargetFor(1),
		Level:        1,
	}
	return c
}

// State returns a copy of the current objective.
func (c *Challenge) State() ChallengeState {
	return c.state
}

// Record adds the matched cells carrying the target symbol to the progress
// and returns how many were added.
func (c *Challenge) Record(m Match) int {
	n := m.CountSymbol(c.state.TargetSymbol)
	c.state.Progress += n
	return n
}

// CheckLevelUp advances at most one level per call. On level-up the progress
// resets to zero, a new target symbol is drawn from the whole alphabet and
// the new target count is returned as bonus moves. Progress beyond the old
// target is discarded.
func (c *Challenge) CheckLevelUp() (bonus int, ok bool) {
	if c.state.Progress < c.state.TargetCount {
		return 0, false
	}
	c.state.Level++
	c.state.TargetCount = c.rules.TargetFor(c.state.Level)
	c.state.Progress = 0
	c.state.TargetSymbol = SymbolAt(c.src.Intn(SymbolCount))
	return c.state.TargetCount, true
}
