package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/core"
	gamematch3 "github.com/vovakirdan/tui-match3/internal/games/match3"
	engine "github.com/vovakirdan/tui-match3/internal/match3"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

var (
	flagBotGames int
	flagBotSave  bool
)

var autoplayCmd = &cobra.Command{
	Use:   "autoplay",
	Short: "Let a bot play headless games",
	Long: `Play games without a terminal UI. The bot takes the first available
move every turn and answers deadlocks with reshuffles. Each game is
logged and a summary is printed at the end.

Game seeds are --seed, --seed+1, ... so a run can be repeated exactly.

Examples:
  match3 autoplay --games 20
  match3 autoplay --seed 42 --difficulty hard
  match3 autoplay --games 5 --save`,
	RunE: runAutoplay,
}

func init() {
	autoplayCmd.Flags().IntVar(&flagBotGames, "games", 10, "Number of games to play")
	autoplayCmd.Flags().BoolVar(&flagBotSave, "save", false, "Record results in the scores database as match3_bot")
	autoplayCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	autoplayCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

// botGameID keeps bot runs off the player leaderboards.
const botGameID = "match3_bot"

// storeSink records engine results as bot runs.
type storeSink struct {
	store *storage.Store
}

func (s storeSink) SaveResult(r engine.Result) error {
	_, err := s.store.RecordResult(core.RunResult{
		RunID:    uuid.NewString(),
		GameID:   botGameID,
		Score:    r.Score,
		Level:    r.Level,
		Duration: r.Duration,
	})
	return err
}

func runAutoplay(_ *cobra.Command, _ []string) error {
	if flagBotGames <= 0 {
		return fmt.Errorf("--games must be positive, got %d", flagBotGames)
	}

	cfg, err := config.LoadMatch3(flagConfig)
	if err != nil {
		return err
	}
	if flagDifficulty != "" {
		preset, err := config.ParsePreset(flagDifficulty)
		if err != nil {
			return err
		}
		config.ApplyMatch3Preset(&cfg, preset)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "autoplay",
	})

	var sink engine.ResultSink
	if flagBotSave {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		sink = storeSink{store: store}
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var (
		total, best, bestLevel int
		forced                 int
	)
	start := time.Now()
	for i := 0; i < flagBotGames; i++ {
		r := gamematch3.PlayBot(cfg, seed+int64(i), sink)
		logger.Info("game finished",
			"game", i+1,
			"seed", r.Seed,
			"score", r.Result.Score,
			"level", r.Result.Level,
			"swaps", r.Swaps,
			"deadlocks", r.Deadlocks,
			"reshuffles", r.Reshuffles,
			"forced", r.Forced,
		)
		if r.Desyncs > 0 {
			logger.Warn("grid repaired during play", "seed", r.Seed, "repairs", r.Desyncs)
		}

		total += r.Result.Score
		best = max(best, r.Result.Score)
		bestLevel = max(bestLevel, r.Result.Level)
		if r.Forced {
			forced++
		}
	}

	fmt.Printf("Games: %d  Average: %.1f  Best: %d  Best level: %d  Ended early: %d  (%s)\n",
		flagBotGames, float64(total)/float64(flagBotGames), best, bestLevel, forced,
		time.Since(start).Round(time.Millisecond))
	return nil
}
