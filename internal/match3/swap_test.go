package match3

import "testing"

func TestProbe(t *testing.T) {
	g := lshapeBoard()
	tests := []struct {
		name string
		a, b Pos
		want bool
	}{
		{name: "makes L shape", a: P(2, 0), b: P(3, 0), want: true},
		{name: "no match", a: P(0, 0), b: P(0, 1), want: false},
		{name: "not adjacent", a: P(0, 0), b: P(1, 1), want: false},
		{name: "same slot", a: P(0, 0), b: P(0, 0), want: false},
		{name: "out of bounds", a: P(4, 4), b: P(4, 5), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Probe(g, tt.a, tt.b); got != tt.want {
				t.Errorf("Probe(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestProbeSymmetricAndPure(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		g := NewGrid(6, 6)
		g.Fill(seeded(seed), true)
		before := g.Clone()

		for r := 0; r < g.Rows(); r++ {
			for c := 0; c < g.Cols(); c++ {
				for _, d := range []Pos{{0, 1}, {1, 0}} {
					a, b := P(r, c), P(r+d.Row, c+d.Col)
					ab := Probe(g, a, b)
					ba := Probe(g, b, a)
					if ab != ba {
						t.Fatalf("seed %d: Probe(%v,%v)=%v but Probe(%v,%v)=%v", seed, a, b, ab, b, a, ba)
					}
					if !g.Equal(before) {
						t.Fatalf("seed %d: Probe(%v,%v) mutated the grid", seed, a, b)
					}
				}
			}
		}
		if err := g.ValidateSettled(); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
}

func TestProbeFailsClosedOnDesync(t *testing.T) {
	g := lshapeBoard()
	g.Get(P(2, 0)).Col = 3
	before := g.Clone()

	if Probe(g, P(2, 0), P(3, 0)) {
		t.Error("Probe() should fail on a desynced cell")
	}
	if !g.Equal(before) {
		t.Error("Probe() touched a desynced grid")
	}
}
