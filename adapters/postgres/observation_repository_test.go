package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomarkov/domain/core"
	"gomarkov/internal/markov"
	"gomarkov/ports"
)

func TestQuoteTable(t *testing.T) {
	quoted, err := QuoteTable("credit_migrations")
	require.NoError(t, err)
	assert.Equal(t, `"credit_migrations"`, quoted)

	for _, bad := range []string{"", "1table", "migrations; DROP TABLE x", `a"b`, "schema.table"} {
		_, err := QuoteTable(bad)
		assert.True(t, core.IsInvalidInput(err), bad)
	}
}

func TestWindowArgs(t *testing.T) {
	from, to := windowArgs(ports.ObservationWindow{})
	assert.False(t, from.Valid)
	assert.False(t, to.Valid)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	from, to = windowArgs(ports.ObservationWindow{From: start})
	assert.True(t, from.Valid)
	assert.Equal(t, start, from.Time)
	assert.False(t, to.Valid)
}

type stubRepo struct {
	got string
}

func (s *stubRepo) ListPortfolios(context.Context) ([]ports.PortfolioSummary, error) {
	return nil, nil
}

func (s *stubRepo) ObservationsForPortfolio(_ context.Context, portfolio string, _ ports.ObservationWindow) ([]markov.Observation, error) {
	s.got = portfolio
	return []markov.Observation{{Origin: "A", Destination: "B"}}, nil
}

func TestPortfolioSource(t *testing.T) {
	repo := &stubRepo{}
	var src ports.ObservationSource = PortfolioSource{Repo: repo, Portfolio: "retail"}

	obs, err := src.LoadObservations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "retail", repo.got)
	assert.Len(t, obs, 1)
}

// TestObservationRepository_Postgres runs against a live database when
// TEST_DATABASE_URL is set.
func TestObservationRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE test_migrations (
		id BIGSERIAL PRIMARY KEY,
		portfolio TEXT NOT NULL,
		obligor_id TEXT,
		from_state TEXT NOT NULL,
		to_state TEXT NOT NULL,
		observed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	require.NoError(t, err)
	t.Cleanup(func() { db.Exec(`DROP TABLE IF EXISTS test_migrations`) })

	importer, err := NewMigrationImporter(db, "test_migrations")
	require.NoError(t, err)
	jan := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	records := append(
		RecordsFromObservations("retail", []markov.Observation{
			{Origin: "Sano", Destination: "Moroso"},
			{Origin: "Moroso", Destination: "Incobrable"},
		}, jan),
		MigrationRecord{Portfolio: "sme", ObligorID: "obligor_00001", From: "Sano", To: "Sano"},
	)
	n, err := importer.Import(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	repo, err := NewObservationRepository(db, "test_migrations")
	require.NoError(t, err)

	portfolios, err := repo.ListPortfolios(ctx)
	require.NoError(t, err)
	require.Len(t, portfolios, 2)
	assert.Equal(t, "retail", portfolios[0].Portfolio)
	assert.Equal(t, 2, portfolios[0].Observations)

	obs, err := repo.ObservationsForPortfolio(ctx, "retail", ports.ObservationWindow{})
	require.NoError(t, err)
	assert.Len(t, obs, 2)

	_, err = repo.ObservationsForPortfolio(ctx, "retail", ports.ObservationWindow{From: jan.AddDate(0, 0, 1)})
	assert.ErrorIs(t, err, core.ErrEmptyObservations)

	_, err = repo.ObservationsForPortfolio(ctx, "missing", ports.ObservationWindow{})
	assert.ErrorIs(t, err, core.ErrEmptyObservations)
}

func TestMigrationImporter_Validation(t *testing.T) {
	im := &MigrationImporter{table: "credit_migrations"}

	_, err := im.Import(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrEmptyObservations)

	_, err = im.Import(context.Background(), []MigrationRecord{{From: "A", To: "B"}})
	assert.ErrorIs(t, err, core.ErrMissingField)

	_, err = im.Import(context.Background(), []MigrationRecord{{Portfolio: "retail", From: "A", To: " "}})
	assert.ErrorIs(t, err, core.ErrMalformedPair)

	_, err = NewMigrationImporter(nil, "bad name")
	assert.True(t, core.IsInvalidInput(err))
}

func TestRecordsFromObservations(t *testing.T) {
	at := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	records := RecordsFromObservations("retail", []markov.Observation{{Origin: "A", Destination: "B"}}, at)

	require.Len(t, records, 1)
	assert.Equal(t, MigrationRecord{Portfolio: "retail", From: "A", To: "B", ObservedAt: at}, records[0])
}
