package match3

// ScoreRules controls pass scoring.
type ScoreRules struct {
	PerCell       int // base points per cleared cell
	MultiplierCap int // highest combo multiplier
}

// DefaultScoreRules returns 100 points per cell with a x5 cap.
func DefaultScoreRules() ScoreRules {
	return ScoreRules{PerCell: 100, MultiplierCap: 5}
}

// Multiplier returns min(streak+1, cap).
func (r ScoreRules) Multiplier(streak int) int {
	m := streak + 1
	if m < 1 {
		m = 1
	}
	if r.MultiplierCap > 0 && m > r.MultiplierCap {
		m = r.MultiplierCap
	}
	return m
}

// PassScore returns the points for clearing cells in a pass entered with the
// given combo streak.
func (r ScoreRules) PassScore(cells, streak int) int {
	return r.PerCell * cells * r.Multiplier(streak)
}

// ComboState counts consecutive matching passes.
type ComboState struct {
	Streak int
}

// Hit records a pass with at least one match.
func (c *ComboState) Hit() {
	c.Streak++
}

// Reset clears the streak after a pass with no matches.
func (c *ComboState) Reset() {
	c.Streak = 0
}
