package migrations

import (
	"context"
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// Migrator handles ledger schema migrations
type Migrator struct {
	db    *sqlx.DB
	files fs.FS
}

// NewMigrator creates a migrator over the embedded migration files
func NewMigrator(db *sqlx.DB) *Migrator {
	return &Migrator{db: db, files: migrationFS}
}

// MigrationFile represents a migration file
type MigrationFile struct {
	Version string
	Name    string
	Path    string
}

// MigrationStatus reports whether one migration has been applied
type MigrationStatus struct {
	Version string
	Name    string
	Applied bool
}

// Up executes all pending migrations. A migration whose recorded checksum no
// longer matches its file is an error.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := m.findMigrationFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}

	var ran []string
	for _, file := range files {
		data, err := fs.ReadFile(m.files, file.Path)
		if err != nil {
			return ran, fmt.Errorf("failed to read migration %s: %w", file.Version, err)
		}
		checksum := calculateChecksum(data)

		if recorded, ok := applied[file.Version]; ok {
			if recorded != checksum {
				return ran, fmt.Errorf("migration %s was modified after it was applied", file.Version)
			}
			continue
		}

		if err := m.applyMigration(ctx, file, string(data), checksum); err != nil {
			return ran, fmt.Errorf("failed to apply migration %s: %w", file.Version, err)
		}
		ran = append(ran, file.Version)
	}

	return ran, nil
}

// Status lists every known migration and whether it has been applied
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	files, err := m.findMigrationFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}

	out := make([]MigrationStatus, len(files))
	for i, f := range files {
		_, ok := applied[f.Version]
		out[i] = MigrationStatus{Version: f.Version, Name: f.Name, Applied: ok}
	}
	return out, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// getAppliedMigrations returns the recorded checksum of every applied version
func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]string, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version, checksum FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, err
		}
		applied[version] = checksum
	}

	return applied, rows.Err()
}

// calculateChecksum computes SHA256 checksum of migration content
func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// findMigrationFiles lists NNN_name.sql files sorted by version
func (m *Migrator) findMigrationFiles() ([]MigrationFile, error) {
	var files []MigrationFile

	err := fs.WalkDir(m.files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}

		// Parse filename: 001_runs.sql
		base := path.Base(p)
		parts := strings.SplitN(strings.TrimSuffix(base, ".sql"), "_", 2)
		if len(parts) < 2 {
			return nil // skip invalid filenames
		}

		files = append(files, MigrationFile{Version: parts[0], Name: parts[1], Path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Version < files[j].Version
	})
	return files, nil
}

// applyMigration runs each statement of one file and records it, in a single
// transaction
func (m *Migrator) applyMigration(ctx context.Context, file MigrationFile, sql, checksum string) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(sql, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO schema_migrations (version, checksum) VALUES (?, ?)"), file.Version, checksum)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
