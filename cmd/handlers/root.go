// Package handlers wires the countland CLI commands.
package handlers

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jpintar/countland/internal/config"
	"github.com/jpintar/countland/internal/logger"
)

var cfgFile string

// console is the user-facing progress logger; structured diagnostics go
// through internal/logger.
var console = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// NewRootCmd creates the base command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "countland",
		Short: "Benchmark counts-based single-cell clustering against ground truth",
		Long: `countland - counts-based clustering benchmark

Loads a 10x-style count matrix whose cell barcodes encode ground-truth
cell types, runs the counts-based spectral pipeline alongside
normalization+graph pipelines and a naive PCA+kmeans baseline, and scores
every result with adjusted Rand index, normalized mutual information and
homogeneity.

Examples:
  # Full benchmark with default parameters
  countland bench data/filtered_matrices/

  # Reproduce with a different seed and fewer variants
  countland bench data/filtered_matrices/ --seed 1234 --variants full,subset

  # Inspect a matrix before benchmarking
  countland inspect data/filtered_matrices/

  # Review stored runs
  countland history`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .countland.yaml)")

	rootCmd.AddCommand(NewBenchCmd())
	rootCmd.AddCommand(NewInspectCmd())
	rootCmd.AddCommand(NewHistoryCmd())

	cobra.OnInitialize(initConfig)

	return rootCmd
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration and applies the logging level.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Logging.Level)
}
