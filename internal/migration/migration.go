package migration

import (
	"context"

	"gobenford/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations.
// Statements are restricted to the SQL dialect shared by PostgreSQL and SQLite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

var _ Migrator = (*MigrationRunner)(nil)

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createBenfordRunsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create benford_runs table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

// createBenfordRunsTable stores one row per analyzed digit position of a run
func (r *MigrationRunner) createBenfordRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS benford_runs (
			id VARCHAR(36) NOT NULL,
			source TEXT NOT NULL,
			position VARCHAR(16) NOT NULL,
			zero_policy VARCHAR(16) NOT NULL,
			total INTEGER NOT NULL,
			unbucketed INTEGER NOT NULL DEFAULT 0,
			dropped INTEGER NOT NULL DEFAULT 0,
			counts TEXT NOT NULL,
			expected TEXT NOT NULL,
			statistic DOUBLE PRECISION NOT NULL,
			critical_value DOUBLE PRECISION NOT NULL,
			significance DOUBLE PRECISION NOT NULL,
			p_value DOUBLE PRECISION NOT NULL,
			passed BOOLEAN NOT NULL,
			mad DOUBLE PRECISION NOT NULL,
			conformity VARCHAR(16) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_benford_runs_created_at ON benford_runs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_benford_runs_passed ON benford_runs(passed)",
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
