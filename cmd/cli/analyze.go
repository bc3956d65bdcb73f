package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"

	"gomarkov/adapters/excel"
	"gomarkov/internal/analysis"
	"gomarkov/internal/markov"
	"gomarkov/internal/report"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Output formats of the analyze and db-analyze commands.
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

func loadFile(ctx context.Context, env *runtimeEnv, path string) ([]markov.Observation, error) {
	obs, err := excel.NewDataReader(path).WithLogger(env.logger).LoadObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return obs, nil
}

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate [file]",
		Short: "Estimate the transition matrix from an xlsx/csv file of migrations",
		Long: `Estimate the transition matrix from observed migrations.

The file holds one migration per row with origin and destination columns
(headers such as origen/destino or origin/destination, or no header).

Example: gomarkov-cli estimate portfolio.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadRuntime()
			if err != nil {
				return err
			}
			obs, err := loadFile(cmd.Context(), env, args[0])
			if err != nil {
				return err
			}
			est, err := env.engine.EstimateTransition(cmd.Context(), obs)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), est)
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run the full analysis (estimate, algebra, chain structure, classification)",
		Long: `Run the full analysis on a file of migrations and print it as JSON,
Markdown or a standalone HTML page.

Example: gomarkov-cli analyze portfolio.csv --format html --output report.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			env, err := loadRuntime()
			if err != nil {
				return err
			}
			obs, err := loadFile(cmd.Context(), env, args[0])
			if err != nil {
				return err
			}
			full, err := env.engine.Analyze(cmd.Context(), obs)
			if err != nil {
				return err
			}

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := render(w, full, format); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}

	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json|markdown|html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatMarkdown, formatHTML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (use json, markdown or html)", format)
	}
}

func render(w io.Writer, full *analysis.FullAnalysis, format string) error {
	var err error
	switch format {
	case formatMarkdown:
		_, err = io.WriteString(w, report.Markdown(full))
	case formatHTML:
		_, err = w.Write(report.HTML(full))
	default:
		err = writeJSON(w, full)
	}
	return err
}

// batchResult is one line of the batch output. Failed files carry Error.
type batchResult struct {
	File     string                 `json:"file"`
	Analysis *analysis.FullAnalysis `json:"analysis,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

func newBatchCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Analyze several migration files concurrently",
		Long: `Analyze several files with a bounded number of workers. A failing file
does not stop the others; the command fails at the end if any file failed.

Example: gomarkov-cli batch q1.xlsx q2.xlsx q3.xlsx --concurrency 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}
			env, err := loadRuntime()
			if err != nil {
				return err
			}

			results, failed := runBatch(cmd.Context(), env, args, concurrency)
			if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Number of files analysed at once")
	return cmd
}

func runBatch(ctx context.Context, env *runtimeEnv, files []string, concurrency int) ([]batchResult, int) {
	results := make([]batchResult, len(files))
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range files {
		g.Go(func() error {
			results[i] = batchResult{File: filepath.Base(path)}
			obs, err := loadFile(gctx, env, path)
			if err == nil {
				results[i].Analysis, err = env.engine.Analyze(gctx, obs)
			}
			if err != nil {
				results[i].Error = err.Error()
				failed.Add(1)
				env.logger.Warn("batch: %s: %v", path, err)
			}
			return nil
		})
	}
	// Workers record their own failures and never return an error.
	_ = g.Wait()
	return results, int(failed.Load())
}
