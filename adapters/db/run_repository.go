// Package db stores the run ledger in SQLite or PostgreSQL through sqlx.
package db

import (
	"context"
	"strings"
	"time"

	"mmmsynth/adapters/db/migrations"
	"mmmsynth/domain/mmm"
	"mmmsynth/internal/errors"
	"mmmsynth/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Driver picks the database/sql driver for a ledger DSN. postgres:// URLs go
// to lib/pq; anything else is a SQLite path, optionally prefixed sqlite://.
func Driver(dsn string) (driver, source string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn
	default:
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	}
}

// RunRepository implements ports.RunLedger
type RunRepository struct {
	db *sqlx.DB
}

var _ ports.RunLedger = (*RunRepository)(nil)

// Open connects to the ledger database and applies pending migrations
func Open(ctx context.Context, dsn string) (*RunRepository, error) {
	driver, source := Driver(dsn)
	db, err := sqlx.ConnectContext(ctx, driver, source)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "connect to %s ledger", driver))
	}
	if driver == "sqlite" {
		// one writer at a time
		db.SetMaxOpenConns(1)
	}

	if _, err := migrations.NewMigrator(db).Up(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.InternalError(err.Error()), "migrate ledger")
	}
	return NewRunRepository(db), nil
}

// NewRunRepository wraps an already migrated connection
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts one run
func (r *RunRepository) Record(ctx context.Context, run *mmm.RunRecord) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO runs (
			run_id, seed, samples, missing_mode, output_path, format,
			fingerprint, r_squared, adj_r_squared, holiday_coef, created_at
		) VALUES (
			:run_id, :seed, :samples, :missing_mode, :output_path, :format,
			:fingerprint, :r_squared, :adj_r_squared, :holiday_coef, :created_at
		)
	`, run)
	if err != nil {
		return errors.Wrapf(err, "record run %s", run.RunID)
	}
	return nil
}

// List returns up to limit runs, newest first
func (r *RunRepository) List(ctx context.Context, limit int) ([]mmm.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []mmm.RunRecord
	err := r.db.SelectContext(ctx, &runs, r.db.Rebind(`
		SELECT run_id, seed, samples, missing_mode, output_path, format,
		       fingerprint, r_squared, adj_r_squared, holiday_coef, created_at
		FROM runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	return runs, nil
}

// Close releases the connection pool
func (r *RunRepository) Close() error {
	return r.db.Close()
}
