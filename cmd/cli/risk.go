package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gomarkov/internal/analysis"
	"gomarkov/internal/markov"
	"gomarkov/internal/risk"

	"github.com/spf13/cobra"
)

// matrixFile is the JSON accepted by the stationary command: either a bare
// matrix or an object with the API field names.
type matrixFile struct {
	Matrix [][]float64 `json:"matriz_transicion"`
	States []string    `json:"estados"`
}

func readMatrixFile(path string) (*matrixFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var bare [][]float64
	if err := json.Unmarshal(data, &bare); err == nil {
		return &matrixFile{Matrix: bare}, nil
	}
	var mf matrixFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%s is neither a matrix nor {\"matriz_transicion\": ...}: %w", path, err)
	}
	if mf.Matrix == nil {
		return nil, fmt.Errorf("%s has no matriz_transicion", path)
	}
	return &mf, nil
}

func newStationaryCmd() *cobra.Command {
	var tolerance float64
	var maxIter int

	cmd := &cobra.Command{
		Use:   "stationary [matrix.json]",
		Short: "Compute the stationary distribution of a transition matrix",
		Long: `Compute the long-run distribution by power iteration from the uniform vector.

The file holds either [[...], ...] or {"matriz_transicion": [[...]], "estados": [...]}.

Example: gomarkov-cli stationary matrix.json --tolerance 1e-12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := readMatrixFile(args[0])
			if err != nil {
				return err
			}
			if len(mf.States) > 0 {
				if _, err := markov.ValidateChain(mf.Matrix, mf.States); err != nil {
					return err
				}
			}
			env, err := loadRuntime()
			if err != nil {
				return err
			}
			res, err := env.engine.StationaryDistribution(cmd.Context(), mf.Matrix, analysis.StationaryParams{
				Tolerance:     tolerance,
				MaxIterations: maxIter,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				*markov.StationaryResult
				States []string `json:"estados,omitempty"`
			}{res, mf.States})
		},
	}

	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Stopping distance (0 keeps STATIONARY_TOLERANCE)")
	cmd.Flags().IntVar(&maxIter, "max-iter", 0, "Iteration cap (0 keeps STATIONARY_MAX_ITER)")
	return cmd
}

func newStressCmd() *cobra.Command {
	var delinquent, uncollectible float64

	cmd := &cobra.Command{
		Use:   "stress [file]",
		Short: "Estimate a chain from migrations and apply a stress scenario",
		Long: `Scale the transitions into the delinquent and uncollectible states,
renormalize, and compare the stationary distributions before and after.

Example: gomarkov-cli stress portfolio.xlsx --delinquent 1.5 --uncollectible 2`,
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

			var factors analysis.StressFactors
			if cmd.Flags().Changed("delinquent") {
				factors.Delinquent = &delinquent
			}
			if cmd.Flags().Changed("uncollectible") {
				factors.Uncollectible = &uncollectible
			}
			res, err := env.engine.ApplyStress(cmd.Context(), est.TransitionMatrix, est.States, factors)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				*risk.StressResult
				States []string `json:"estados"`
			}{res, est.States})
		},
	}

	cmd.Flags().Float64Var(&delinquent, "delinquent", 0, "Delinquent factor (default STRESS_DELINQUENT_FACTOR)")
	cmd.Flags().Float64Var(&uncollectible, "uncollectible", 0, "Uncollectible factor (default STRESS_UNCOLLECTIBLE_FACTOR)")
	return cmd
}

func newLossesCmd() *cobra.Command {
	var ead, lgd map[string]string

	cmd := &cobra.Command{
		Use:   "losses [file]",
		Short: "Expected loss per state of a chain estimated from migrations",
		Long: `Compute EL = EAD x PD x LGD per state, where PD is the one-period
transition probability into the default state.

Example: gomarkov-cli losses portfolio.csv --ead Sano=1000,Moroso=5000 --lgd Moroso=0.3,Incobrable=0.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eadValues, err := parseAmounts("ead", ead)
			if err != nil {
				return err
			}
			lgdValues, err := parseAmounts("lgd", lgd)
			if err != nil {
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
			est, err := env.engine.EstimateTransition(cmd.Context(), obs)
			if err != nil {
				return err
			}
			rep, err := env.engine.ExpectedLosses(cmd.Context(), est.TransitionMatrix, est.States, eadValues, lgdValues)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().StringToStringVar(&ead, "ead", nil, "Exposure at default per state (state=amount,...)")
	cmd.Flags().StringToStringVar(&lgd, "lgd", nil, "Loss given default per state (state=fraction,...)")
	_ = cmd.MarkFlagRequired("ead")
	_ = cmd.MarkFlagRequired("lgd")
	return cmd
}

func parseAmounts(flag string, raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for state, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("--%s %s=%s: not a number", flag, state, v)
		}
		out[state] = f
	}
	return out, nil
}
