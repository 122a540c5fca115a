package match3

import (
	"github.com/vovakirdan/tui-match3/internal/core"
	engine "github.com/vovakirdan/tui-match3/internal/match3"
)

// flashDefault is used until the game config is known.
const flashDefault = 6

// flashState turns haptic pulses into a coloured border flash.
// The strongest recent pulse wins until it fades.
type flashState struct {
	kind     engine.HapticKind
	left     int
	duration int
	pulses   int
}

// Pulse implements engine.HapticSink.
func (f *flashState) Pulse(k engine.HapticKind) {
	f.pulses++
	if f.left > 0 && pulseRank(k) < pulseRank(f.kind) {
		return
	}
	d := f.duration
	if d <= 0 {
		d = flashDefault
	}
	if k == engine.HapticLevelUp || k == engine.HapticGameOver {
		d *= 3
	}
	f.kind = k
	f.left = d
}

func (f *flashState) step() {
	if f.left > 0 {
		f.left--
	}
}

// active reports whether the border should currently flash.
func (f *flashState) active() bool {
	return f.left > 0
}

// color returns the border colour for the current pulse.
func (f *flashState) color() core.Color {
	if !f.active() {
		return core.ColorGray
	}
	switch f.kind {
	case engine.HapticSwap:
		return core.ColorWhite
	case engine.HapticReject:
		return core.ColorRed
	case engine.HapticMatch:
		return core.ColorGreen
	case engine.HapticLevelUp:
		return core.ColorBrightYellow
	case engine.HapticDeadlock:
		return core.ColorMagenta
	case engine.HapticGameOver:
		return core.ColorRed
	default:
		return core.ColorGray
	}
}

func pulseRank(k engine.HapticKind) int {
	switch k {
	case engine.HapticGameOver:
		return 5
	case engine.HapticLevelUp:
		return 4
	case engine.HapticDeadlock:
		return 3
	case engine.HapticReject:
		return 2
	case engine.HapticMatch:
		return 1
	default:
		return 0
	}
}
