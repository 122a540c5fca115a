package config

import (
	_ "embed"
)

//go:embed defaults/match3.yaml
var defaultMatch3YAML []byte

// DefaultMatch3Config returns the hardcoded match-3 configuration.
// It mirrors defaults/match3.yaml.
func DefaultMatch3Config() Match3Config {
	return Match3Config{
		Board: BoardConfig{
			Rows:                8,
			Cols:                8,
			AvoidInitialMatches: true,
		},
		Moves: MovesConfig{
			Budget: 30,
		},
		Scoring: ScoringConfig{
			PerCell:       100,
			MultiplierCap: 5,
		},
		Challenge: ChallengeConfig{
			BaseTarget: 10,
			TargetStep: 5,
		},
		Animation: AnimationConfig{
			SwapTicks:       8,
			RejectTicks:     12,
			ClearTicks:      10,
			FallTicksPerRow: 3,
			FlashTicks:      6,
		},
		PowerUps: PowerUpsConfig{
			Reshuffles: 1,
			Poppers:    2,
			PopperSize: 3,
		},
		Engine: EngineConfig{
			SelfCheckEvery: 10,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "level",
				MaxAt: 10,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 1.0,
			},
		},
	}
}
