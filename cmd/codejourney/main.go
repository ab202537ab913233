package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/khoahotran/codejourney/pkg/logger"
)

var (
	light   bool
	output  string
	timeout time.Duration
	verbose bool

	appLogger logger.Logger = logger.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "codejourney",
	Short: "CodeJourney - competitive programming stats for one handle",
	Long: `Looks a handle up on LeetCode, Codeforces, AtCoder, GitHub, CodeChef and
GeeksForGeeks and renders the stats cards in the terminal.

Examples:
  codejourney card leetcode tourist
  codejourney card gfg tourist --output yaml
  codejourney all tourist --light`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch output {
		case outputText, outputJSON, outputYAML:
		default:
			return fmt.Errorf("unknown output %q, want text, json or yaml", output)
		}
		if verbose {
			appLogger = logger.NewZapLogger("development")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = appLogger.Sync()
	},
}

var cardCmd = &cobra.Command{
	Use:   "card [platform] [handle]",
	Short: "Fetch the stats card of one platform",
	Args:  cobra.ExactArgs(2),
	RunE:  runCard,
}

var allCmd = &cobra.Command{
	Use:   "all [handle]",
	Short: "Fetch every platform concurrently",
	Args:  cobra.ExactArgs(1),
	RunE:  runAll,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&light, "light", false, "Render light-theme cards")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Stats API timeout (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(cardCmd, allCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
