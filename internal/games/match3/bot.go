package match3

import (
	"math/rand"

	"github.com/vovakirdan/tui-match3/internal/config"
	engine "github.com/vovakirdan/tui-match3/internal/match3"
)

// maxBotSteps bounds one bot game in case a board never settles.
const maxBotSteps = 100_000

// BotReport summarises one headless bot game.
type BotReport struct {
	Seed       int64
	Result     engine.Result
	Swaps      int
	Desyncs    int
	Deadlocks  int
	Reshuffles int
	Forced     bool
}

// PlayBot plays one game with the instant animator, always taking the first
// available move. Deadlocks are answered with a reshuffle while charges last;
// after that the run is ended. The final result goes to sink when non-nil.
func PlayBot(cfg config.Match3Config, seed int64, sink engine.ResultSink) BotReport {
	opts := EngineOptions(cfg)
	opts.Source = rand.New(rand.NewSource(seed))
	opts.Animator = engine.InstantAnimator{}
	opts.Results = sink
	opts.Logger = logger.With("game", "bot", "seed", seed)

	eng := engine.New(opts)
	eng.Start()

	report := BotReport{Seed: seed}
	for step := 0; !eng.Ended(); step++ {
		if step >= maxBotSteps {
			report.Forced = true
			eng.ForceEnd()
			break
		}

		switch eng.Phase() {
		case engine.PhaseDeadlock:
			report.Deadlocks++
			if err := eng.Reshuffle(); err != nil {
				report.Forced = true
				eng.ForceEnd()
				continue
			}
			report.Reshuffles++

		case engine.PhaseIdle:
			m, ok := eng.Hint()
			if !ok {
				report.Forced = true
				eng.ForceEnd()
				continue
			}
			switch eng.Swap(m.A, m.B) {
			case engine.SwapAccepted:
				report.Swaps++
			case engine.SwapDesynced:
				report.Desyncs++
			}

		default:
			// Instant transitions never leave the engine busy between calls.
			report.Forced = true
			eng.ForceEnd()
		}
	}

	report.Result = eng.Result()
	return report
}
