package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gomarkov/internal"
	"gomarkov/internal/analysis"
	"gomarkov/internal/config"
	"gomarkov/internal/risk"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gomarkov-cli",
		Short:         "Credit migration analysis with Markov chains",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newEstimateCmd(),
		newAnalyzeCmd(),
		newStationaryCmd(),
		newStressCmd(),
		newLossesCmd(),
		newBatchCmd(),
		newSampleCmd(),
		newDBAnalyzeCmd(),
	)
	return rootCmd
}

// runtimeEnv is what every command needs: configuration and an engine built from it.
type runtimeEnv struct {
	cfg    *config.Config
	logger *internal.Logger
	engine *analysis.Engine
}

func loadRuntime() (*runtimeEnv, error) {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	engine := analysis.NewEngine(analysis.Options{
		Tolerance:     cfg.Engine.Tolerance,
		MaxIterations: cfg.Engine.MaxIterations,
		MaxStates:     cfg.Engine.MaxStates,
		Stress: risk.StressParams{
			Delinquent:    cfg.Engine.DelinquentFactor,
			Uncollectible: cfg.Engine.UncollectibleFactor,
		},
	}, logger, nil)

	return &runtimeEnv{cfg: cfg, logger: logger, engine: engine}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openOutput returns stdout or the named file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}
