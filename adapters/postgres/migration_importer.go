package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gomarkov/domain/core"
	"gomarkov/internal/markov"
)

// MigrationRecord is one row of the migrations table
type MigrationRecord struct {
	Portfolio  string
	ObligorID  string
	From       string
	To         string
	ObservedAt time.Time
}

// RecordsFromObservations tags plain observations with a portfolio and a
// single observation date
func RecordsFromObservations(portfolio string, observations []markov.Observation, observedAt time.Time) []MigrationRecord {
	out := make([]MigrationRecord, len(observations))
	for i, o := range observations {
		out[i] = MigrationRecord{
			Portfolio:  portfolio,
			From:       o.Origin,
			To:         o.Destination,
			ObservedAt: observedAt,
		}
	}
	return out
}

// MigrationImporter loads migration histories into the table read by the
// observation repository
type MigrationImporter struct {
	db    *sqlx.DB
	table string
}

// NewMigrationImporter creates an importer for table
func NewMigrationImporter(db *sqlx.DB, table string) (*MigrationImporter, error) {
	if _, err := QuoteTable(table); err != nil {
		return nil, err
	}
	return &MigrationImporter{db: db, table: table}, nil
}

// Import writes all records in one transaction using COPY. Records without
// an observation date are stamped with the import time.
func (im *MigrationImporter) Import(ctx context.Context, records []MigrationRecord) (int, error) {
	if len(records) == 0 {
		return 0, core.ErrEmptyObservations
	}
	if err := validateRecords(records); err != nil {
		return 0, err
	}

	tx, err := im.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(im.table, "portfolio", "obligor_id", "from_state", "to_state", "observed_at"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare copy into %s: %w", im.table, err)
	}

	now := time.Now().UTC()
	for _, r := range records {
		at := r.ObservedAt
		if at.IsZero() {
			at = now
		}
		obligor := sql.NullString{String: r.ObligorID, Valid: r.ObligorID != ""}
		if _, err := stmt.ExecContext(ctx, r.Portfolio, obligor, r.From, r.To, at); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("failed to copy migration: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(records), nil
}

func validateRecords(records []MigrationRecord) error {
	for i, r := range records {
		switch {
		case strings.TrimSpace(r.Portfolio) == "":
			return fmt.Errorf("%w: record %d: portfolio", core.ErrMissingField, i)
		case strings.TrimSpace(r.From) == "", strings.TrimSpace(r.To) == "":
			return fmt.Errorf("%w: record %d", core.ErrMalformedPair, i)
		}
	}
	return nil
}
