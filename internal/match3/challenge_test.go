package match3

import "testing"

func TestTargetFor(t *testing.T) {
	r := DefaultChallengeRules()
	tests := []struct {
		level int
		want  int
	}{
		{0, 10},
		{1, 10},
		{2, 15},
		{3, 20},
		{10, 55},
	}
	prev := 0
	for _, tt := range tests {
		got := r.TargetFor(tt.level)
		if got != tt.want {
			t.Errorf("TargetFor(%d) = %d, want %d", tt.level, got, tt.want)
		}
		if got < prev {
			t.Errorf("TargetFor(%d) = %d decreased from %d", tt.level, got, prev)
		}
		prev = got
	}
}

func TestNewChallenge(t *testing.T) {
	c := NewChallenge(DefaultChallengeRules(), script(4))
	st := c.State()
	if st.Level != 1 || st.Progress != 0 || st.TargetCount != 10 {
		t.Errorf("State() = %+v", st)
	}
	if st.TargetSymbol != SymbolBlue {
		t.Errorf("TargetSymbol = %v, want blue", st.TargetSymbol)
	}
}

func TestCheckLevelUpSingleStep(t *testing.T) {
	c := NewChallenge(DefaultChallengeRules(), script(0, 0))
	c.state.Progress = 25 // enough for two levels

	bonus, ok := c.CheckLevelUp()
	if !ok {
		t.Fatal("CheckLevelUp() = false, want true")
	}
	st := c.State()
	if st.Level != 2 {
		t.Errorf("Level = %d, want 2", st.Level)
	}
	if bonus != 15 || st.TargetCount != 15 {
		t.Errorf("bonus = %d, TargetCount = %d, want 15", bonus, st.TargetCount)
	}
	if st.Progress != 0 {
		t.Errorf("Progress = %d, want 0 (excess discarded)", st.Progress)
	}
	if _, again := c.CheckLevelUp(); again {
		t.Error("second CheckLevelUp() should not level up")
	}
}

func TestCheckLevelUpBelowTarget(t *testing.T) {
	c := NewChallenge(DefaultChallengeRules(), script(0))
	c.state.Progress = 9
	if _, ok := c.CheckLevelUp(); ok {
		t.Error("CheckLevelUp() below target should be false")
	}
	if c.State().Progress != 9 {
		t.Errorf("Progress = %d, want 9", c.State().Progress)
	}
}

func TestLevelUpTargetCoversAlphabet(t *testing.T) {
	c := NewChallenge(ChallengeRules{BaseTarget: 1}, seeded(9))
	seen := make(map[Symbol]int)
	repeats := 0
	for i := 0; i < 600; i++ {
		prev := c.State().TargetSymbol
		c.state.Progress = c.state.TargetCount
		if _, ok := c.CheckLevelUp(); !ok {
			t.Fatalf("level-up %d did not happen", i)
		}
		got := c.State().TargetSymbol
		if !got.Valid() {
			t.Fatalf("target %v is not playable", got)
		}
		seen[got]++
		if got == prev {
			repeats++
		}
	}
	for _, s := range Symbols {
		if seen[s] == 0 {
			t.Errorf("target %v never drawn in 600 level-ups", s)
		}
	}
	if repeats == 0 {
		t.Error("a new target never repeated the previous one")
	}
}

func TestLevelUpTargetUsesFullRange(t *testing.T) {
	for i, want := range Symbols {
		c := NewChallenge(ChallengeRules{BaseTarget: 1}, script(0, i))
		c.state.Progress = 1
		c.CheckLevelUp()
		if got := c.State().TargetSymbol; got != want {
			t.Errorf("draw %d: target = %v, want %v", i, got, want)
		}
	}
}

func TestProgressNeverDecreasesWithoutLevelUp(t *testing.T) {
	c := NewChallenge(ChallengeRules{BaseTarget: 1000, TargetStep: 5}, seeded(3))
	prev := 0
	for seed := int64(0); seed < 30; seed++ {
		g := NewGrid(6, 6)
		g.Fill(seeded(seed), false)
		c.Record(FindMatches(g))
		if _, ok := c.CheckLevelUp(); ok {
			t.Fatal("unexpected level-up")
		}
		if c.State().Progress < prev {
			t.Fatalf("progress decreased from %d to %d", prev, c.State().Progress)
		}
		prev = c.State().Progress
	}
}
