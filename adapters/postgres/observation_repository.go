package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gomarkov/domain/core"
	"gomarkov/internal/markov"
	"gomarkov/ports"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// observationRepository implements ports.ObservationRepository over a
// migrations table (portfolio, from_state, to_state, observed_at).
type observationRepository struct {
	db    *sqlx.DB
	table string
}

// NewObservationRepository creates a read-only repository on table
func NewObservationRepository(db *sqlx.DB, table string) (ports.ObservationRepository, error) {
	quoted, err := QuoteTable(table)
	if err != nil {
		return nil, err
	}
	return &observationRepository{db: db, table: quoted}, nil
}

// QuoteTable validates a configured table name and quotes it for SQL
func QuoteTable(table string) (string, error) {
	if !tableNamePattern.MatchString(table) {
		return "", core.NewInvalidInputError("table", fmt.Sprintf("invalid table name %q", table))
	}
	return pq.QuoteIdentifier(table), nil
}

type observationRow struct {
	Origin      string `db:"origin"`
	Destination string `db:"destination"`
}

// ListPortfolios returns the portfolios in the table with their sample size
func (r *observationRepository) ListPortfolios(ctx context.Context) ([]ports.PortfolioSummary, error) {
	query := fmt.Sprintf(`SELECT
		portfolio, COUNT(*) AS observations, MIN(observed_at) AS first_seen, MAX(observed_at) AS last_seen
	FROM %s GROUP BY portfolio ORDER BY portfolio`, r.table)

	var out []ports.PortfolioSummary
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	return out, nil
}

// ObservationsForPortfolio reads the migrations of one portfolio in
// observation order
func (r *observationRepository) ObservationsForPortfolio(ctx context.Context, portfolio string, window ports.ObservationWindow) ([]markov.Observation, error) {
	if portfolio == "" {
		return nil, fmt.Errorf("%w: portfolio", core.ErrMissingField)
	}

	query := fmt.Sprintf(`SELECT from_state AS origin, to_state AS destination
	FROM %s
	WHERE portfolio = $1
		AND ($2::timestamptz IS NULL OR observed_at >= $2)
		AND ($3::timestamptz IS NULL OR observed_at < $3)
	ORDER BY observed_at, id`, r.table)

	from, to := windowArgs(window)
	var rows []observationRow
	if err := r.db.SelectContext(ctx, &rows, query, portfolio, from, to); err != nil {
		return nil, fmt.Errorf("failed to read observations for %s: %w", portfolio, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("portfolio %s: %w", portfolio, core.ErrEmptyObservations)
	}

	pairs := make([][]string, len(rows))
	for i, row := range rows {
		pairs[i] = []string{row.Origin, row.Destination}
	}
	return markov.ObservationsFromPairs(pairs)
}

func windowArgs(w ports.ObservationWindow) (from, to sql.NullTime) {
	if !w.From.IsZero() {
		from = sql.NullTime{Time: w.From, Valid: true}
	}
	if !w.To.IsZero() {
		to = sql.NullTime{Time: w.To, Valid: true}
	}
	return from, to
}

// PortfolioSource binds a repository query to ports.ObservationSource
type PortfolioSource struct {
	Repo      ports.ObservationRepository
	Portfolio string
	Window    ports.ObservationWindow
}

// LoadObservations implements ports.ObservationSource
func (s PortfolioSource) LoadObservations(ctx context.Context) ([]markov.Observation, error) {
	return s.Repo.ObservationsForPortfolio(ctx, s.Portfolio, s.Window)
}
