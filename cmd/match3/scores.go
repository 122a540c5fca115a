package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/registry"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores <game>",
	Short: "Show high scores for a game",
	Long: `Display the best runs for the specified game mode together with
overall statistics.

Examples:
  match3 scores match3
  match3 scores match3_zen --limit 25
  match3 scores match3_bot`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to show")
}

func runScores(cmd *cobra.Command, args []string) {
	gameID := args[0]

	title, err := gameTitle(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'match3 list' to see available games.")
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	scores, err := store.TopScores(gameID, flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		return
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'match3 play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %-5s  %-8s  %s\n", "Rank", "Score", "Level", "Time", "Date")
	fmt.Printf("  %-4s  %-10s  %-5s  %-8s  %s\n", "----", "-----", "-----", "----", "----")

	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %-5d  %-8s  %s\n",
			i+1, entry.Score, entry.Level, entry.Duration.Round(time.Second), entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.GetGameStats(gameID)
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Printf("Runs: %d  Best: %d  Average: %.0f  Best level: %d\n",
		stats.GamesCount, stats.HighScore, stats.AvgScore, stats.BestLevel)
	fmt.Printf("Total play time: %s  Last played: %s\n",
		stats.TotalPlaytime.Round(time.Second), stats.LastPlayed.Format("2006-01-02 15:04"))
}

// gameTitle resolves a display title; bot runs are stored under their own ID.
func gameTitle(gameID string) (string, error) {
	if gameID == botGameID {
		return "Match-3 (bot)", nil
	}
	game, err := registry.Create(gameID)
	if err != nil {
		return "", err
	}
	return game.Title(), nil
}
