package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/chooser/pkg/config"
	"github.com/wonny/chooser/pkg/logger"
)

var (
	// Global flags
	logLevel  string
	logFormat string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chooser",
	Short: "Nested walk-forward market selection with permutation tests",
	Long: `chooser picks, bar by bar, the market that a performance criterion
favours, then picks the criterion whose picks have been doing best, and
measures the out-of-sample return of that two-level choice. A Monte-Carlo
permutation test tells whether the result beats luck.

Usage:
  go run ./cmd/chooser [command]

Examples:
  go run ./cmd/chooser run --list markets.txt --is 1000 --oos1 100 --reps 100
  go run ./cmd/chooser run --study study.yaml
  go run ./cmd/chooser check --list markets.txt
  go run ./cmd/chooser schedule start --study study.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (json|console|pretty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}

// loadRuntime loads the environment config and builds the logger,
// applying the global flag overrides
func loadRuntime() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, logger.New(cfg), nil
}
