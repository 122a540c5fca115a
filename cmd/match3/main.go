// match3 is a terminal match-3 game built on a deterministic grid engine.
//
// Usage:
//
//	match3 list              - List available game modes
//	match3 play [game]       - Play a game (menu when no game is given)
//	match3 menu              - Start menu to pick a mode interactively
//	match3 serve             - Start SSH server for remote play
//	match3 scores <game>     - Show high scores for a game
//	match3 autoplay          - Let a bot play headless games and report
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set RNG seed for reproducible gameplay
//	--db <path>     - Set database path (default: ~/.arcade/match3.db)
//	--log-level     - Engine log level written to stderr (default: warn)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	gamematch3 "github.com/vovakirdan/tui-match3/internal/games/match3"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "match3",
	Short: "Match-3 in your terminal",
	Long: `match3 is a terminal match-3 game. Swap adjacent candies to make
runs of three or more, clear the target colour to level up and make the
most of a limited move budget.

Available commands:
  list      - Show all game modes
  play      - Play a mode directly
  menu      - Interactive mode picker
  serve     - Start SSH server for remote play
  scores    - View high scores
  autoplay  - Run headless bot games

Examples:
  match3 list
  match3 play match3
  match3 menu
  match3 serve --ssh :2222
  match3 scores match3`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setupLogger()
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/match3.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Engine log level on stderr: debug, info, warn, error (empty = off)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(autoplayCmd)
}

// setupLogger routes game logs to stderr when a level is requested.
func setupLogger() error {
	if flagLogLevel == "" {
		return nil
	}
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	gamematch3.SetLogger(log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "match3",
	}))
	return nil
}
