package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-match3/internal/core"
	gamematch3 "github.com/vovakirdan/tui-match3/internal/games/match3"
	"github.com/vovakirdan/tui-match3/internal/platform/tui"
	"github.com/vovakirdan/tui-match3/internal/registry"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagBoard      string
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Start playing the specified game mode. Without a mode the picker
menu is shown first.

Controls:
  Arrows/WASD/HJKL - Move cursor
  Space/Enter      - Select a cell, then an adjacent cell to swap
  X                - Drop the selection
  F                - Reshuffle power-up
  B                - Party popper at the cursor
  ?                - Show a hint
  C                - Keep scanning after a deadlock
  E                - End the run now
  P/Esc            - Pause
  R                - Restart (after game over)
  M                - Back to menu (paused or game over)
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Larger budget, gentle targets, extra power-ups
  normal - Default economy, pace picks up with level
  hard   - Tight budget, steep targets, few power-ups
  fixed  - Default economy, animation pace never changes

Examples:
  match3 play
  match3 play match3 --difficulty hard
  match3 play match3_zen
  match3 play match3 --config ./my-match3.yaml
  match3 play match3 --board ./boards/chain.yaml --seed 42`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().StringVar(&flagBoard, "board", "", "Path to a fixture board YAML to start from")
}

// runtimeConfig builds the runtime config from the terminal size and global flags.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openStore opens the scores database, or returns nil so play continues without it.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return nil
	}
	return store
}

func applyGameFlags() {
	gamematch3.SetConfigPath(flagConfig)
	gamematch3.SetDifficultyPreset(flagDifficulty)
	gamematch3.SetBoardPath(flagBoard)
}

func runPlay(cmd *cobra.Command, args []string) {
	applyGameFlags()

	if len(args) == 0 {
		runMenu(cmd, args)
		return
	}

	gameID := args[0]
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'match3 list' to see available games.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store := openStore()
	backToMenu, runErr := tui.Run(game, store, runtimeConfig())

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
	if backToMenu {
		runMenu(cmd, nil)
	}
}
