package migration

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gomarkov/adapters/postgres"
	"gomarkov/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the observations table read by the postgres
// adapter. It only ever creates missing objects.
type MigrationRunner struct {
	version string
	table   string
}

// NewRunner creates a new migration runner for table
func NewRunner(table string) *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		table:   table,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Statements returns the DDL executed by Run, in order
func (r *MigrationRunner) Statements() ([]string, error) {
	quoted, err := postgres.QuoteTable(r.table)
	if err != nil {
		return nil, err
	}
	index, err := postgres.QuoteTable("idx_" + r.table + "_portfolio")
	if err != nil {
		return nil, err
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			portfolio VARCHAR(100) NOT NULL,
			obligor_id VARCHAR(100),
			from_state VARCHAR(100) NOT NULL,
			to_state VARCHAR(100) NOT NULL,
			observed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CHECK (length(trim(from_state)) > 0 AND length(trim(to_state)) > 0)
		)`, quoted),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (portfolio, observed_at)`, index, quoted),
	}, nil
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	stmts, err := r.Statements()
	if err != nil {
		return errors.Wrap(err, "invalid migrations table")
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "migration step %d failed", i+1))
		}
	}
	return nil
}
