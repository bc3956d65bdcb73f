package main

import (
	"fmt"
	"time"

	"gomarkov/adapters/excel"
	"gomarkov/adapters/postgres"
	"gomarkov/internal/testkit"
	"gomarkov/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func newSampleCmd() *cobra.Command {
	var output string
	var synthetic bool
	var obligors, periods int
	var seed int64

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the sample portfolio or write sample migrations to a file",
		Long: `Without --output, print the sample request payload (observations,
matrix, states, EAD, LGD and stress factors) as JSON.

With --output, write the migrations to an .xlsx or .csv file that the other
commands can read. --synthetic simulates obligors through the sample matrix
instead of writing the fixed sample counts.

Example: gomarkov-cli sample --synthetic --obligors 1000 --output portfolio.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return writeJSON(cmd.OutOrStdout(), testkit.SamplePayload())
			}

			obs := testkit.SampleObservations()
			if synthetic {
				config := testkit.DefaultMigrationConfig()
				config.Obligors = obligors
				config.Periods = periods
				config.Seed = seed
				gen, err := testkit.NewMigrationGenerator(config)
				if err != nil {
					return err
				}
				obs = gen.Observations()
			}

			if err := excel.WriteObservations(output, obs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d migrations to %s\n", len(obs), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write migrations to this .xlsx or .csv file")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "Simulate migrations instead of the fixed sample")
	cmd.Flags().IntVar(&obligors, "obligors", 500, "Simulated obligors (with --synthetic)")
	cmd.Flags().IntVar(&periods, "periods", 12, "Simulated periods per obligor (with --synthetic)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic simulation")
	return cmd
}

func newDBAnalyzeCmd() *cobra.Command {
	var portfolio, from, to, format string
	var list bool

	cmd := &cobra.Command{
		Use:   "db-analyze",
		Short: "Analyze a portfolio stored in PostgreSQL",
		Long: `Read one portfolio's migrations from the DATABASE_URL migrations table
(MIGRATIONS_TABLE) and run the full analysis. --list shows the portfolios.

Example: gomarkov-cli db-analyze --portfolio retail --from 2024-01-01 --to 2025-01-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !list && portfolio == "" {
				return fmt.Errorf("--portfolio is required unless --list is set")
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			window, err := parseDateWindow(from, to)
			if err != nil {
				return err
			}

			env, err := loadRuntime()
			if err != nil {
				return err
			}
			if !env.cfg.Database.Enabled() {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			db, err := sqlx.ConnectContext(cmd.Context(), "postgres", env.cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			repo, err := postgres.NewObservationRepository(db, env.cfg.Database.Table)
			if err != nil {
				return err
			}

			if list {
				portfolios, err := repo.ListPortfolios(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), portfolios)
			}

			full, err := env.engine.AnalyzeSource(cmd.Context(), postgres.PortfolioSource{
				Repo:      repo,
				Portfolio: portfolio,
				Window:    window,
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), full, format)
		},
	}

	cmd.Flags().StringVar(&portfolio, "portfolio", "", "Portfolio to analyze")
	cmd.Flags().StringVar(&from, "from", "", "Only migrations observed on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Only migrations observed before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json|markdown|html")
	cmd.Flags().BoolVar(&list, "list", false, "List the stored portfolios instead")
	return cmd
}

func parseDateWindow(from, to string) (ports.ObservationWindow, error) {
	var w ports.ObservationWindow
	var err error
	if from != "" {
		if w.From, err = time.Parse("2006-01-02", from); err != nil {
			return w, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if to != "" {
		if w.To, err = time.Parse("2006-01-02", to); err != nil {
			return w, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if !w.From.IsZero() && !w.To.IsZero() && !w.From.Before(w.To) {
		return w, fmt.Errorf("--from must be before --to")
	}
	return w, nil
}
