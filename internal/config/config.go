// Package config provides YAML-based game configuration loading and
// difficulty management for the match-3 arcade.
package config

import (
	"errors"
	"fmt"
)

// Match3Config contains all configuration for the match-3 game.
type Match3Config struct {
	Board      BoardConfig      `yaml:"board"`
	Moves      MovesConfig      `yaml:"moves"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Challenge  ChallengeConfig  `yaml:"challenge"`
	Animation  AnimationConfig  `yaml:"animation"`
	PowerUps   PowerUpsConfig   `yaml:"power_ups"`
	Engine     EngineConfig     `yaml:"engine"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// BoardConfig defines the grid.
type BoardConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
	// AvoidInitialMatches deals a start board with no runs and at least one move.
	AvoidInitialMatches bool `yaml:"avoid_initial_matches"`
}

// MovesConfig defines the move budget.
type MovesConfig struct {
	Budget int `yaml:"budget"`
}

// ScoringConfig defines pass scoring.
type ScoringConfig struct {
	PerCell       int `yaml:"per_cell"`
	MultiplierCap int `yaml:"multiplier_cap"`
}

// ChallengeConfig defines the level target curve.
type ChallengeConfig struct {
	BaseTarget int `yaml:"base_target"`
	TargetStep int `yaml:"target_step"`
}

// AnimationConfig defines transition durations in simulation ticks.
type AnimationConfig struct {
	SwapTicks       int `yaml:"swap_ticks"`
	RejectTicks     int `yaml:"reject_ticks"`
	ClearTicks      int `yaml:"clear_ticks"`
	FallTicksPerRow int `yaml:"fall_ticks_per_row"`
	FlashTicks      int `yaml:"flash_ticks"`
}

// PowerUpsConfig defines power-up charges per game.
type PowerUpsConfig struct {
	Reshuffles int `yaml:"reshuffles"`
	Poppers    int `yaml:"poppers"`
	PopperSize int `yaml:"popper_size"`
}

// EngineConfig defines engine housekeeping.
type EngineConfig struct {
	// SelfCheckEvery validates the grid after this many settled passes (0 = off).
	SelfCheckEvery int `yaml:"self_check_every"`
}

// DifficultyConfig defines how animation pace scales with progress.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = relaxed, 1.0 = fastest
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines what drives the pace.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "level", "score", or "none"
	MaxAt int    `yaml:"max_at"` // Level/score at which the fastest pace is reached
}

// ScalingConfig defines the magnitude of pace changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Extra speed at max difficulty
}

// Bounds for board dimensions.
const (
	MinBoardSize = 3
	MaxBoardSize = 12
)

// Validate reports every invalid setting joined into one error.
func (c Match3Config) Validate() error {
	var errs []error
	if c.Board.Rows < MinBoardSize || c.Board.Rows > MaxBoardSize {
		errs = append(errs, fmt.Errorf("board.rows must be in [%d, %d], got %d", MinBoardSize, MaxBoardSize, c.Board.Rows))
	}
	if c.Board.Cols < MinBoardSize || c.Board.Cols > MaxBoardSize {
		errs = append(errs, fmt.Errorf("board.cols must be in [%d, %d], got %d", MinBoardSize, MaxBoardSize, c.Board.Cols))
	}
	if c.Moves.Budget < 1 {
		errs = append(errs, fmt.Errorf("moves.budget must be positive, got %d", c.Moves.Budget))
	}
	if c.Scoring.PerCell < 1 {
		errs = append(errs, fmt.Errorf("scoring.per_cell must be positive, got %d", c.Scoring.PerCell))
	}
	if c.Scoring.MultiplierCap < 1 {
		errs = append(errs, fmt.Errorf("scoring.multiplier_cap must be positive, got %d", c.Scoring.MultiplierCap))
	}
	if c.Challenge.BaseTarget < 1 {
		errs = append(errs, fmt.Errorf("challenge.base_target must be positive, got %d", c.Challenge.BaseTarget))
	}
	if c.Challenge.TargetStep < 0 {
		errs = append(errs, fmt.Errorf("challenge.target_step must not be negative, got %d", c.Challenge.TargetStep))
	}
	if c.PowerUps.Reshuffles < 0 || c.PowerUps.Poppers < 0 {
		errs = append(errs, errors.New("power_ups charges must not be negative"))
	}
	if c.PowerUps.PopperSize < 1 {
		errs = append(errs, fmt.Errorf("power_ups.popper_size must be positive, got %d", c.PowerUps.PopperSize))
	}
	if c.Engine.SelfCheckEvery < 0 {
		errs = append(errs, fmt.Errorf("engine.self_check_every must not be negative, got %d", c.Engine.SelfCheckEvery))
	}
	switch c.Difficulty.Progression.Type {
	case "", "level", "score", "none":
	default:
		errs = append(errs, fmt.Errorf("difficulty.progression.type %q is not one of level, score, none", c.Difficulty.Progression.Type))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. Empty selects normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (easy, normal, hard, fixed)", s)
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}
