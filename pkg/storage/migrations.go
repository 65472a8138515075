package storage

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: imports and their normalized records
	`CREATE TABLE IF NOT EXISTS imports (
		id            TEXT PRIMARY KEY,
		filename      TEXT NOT NULL,
		provider      TEXT NOT NULL,
		total_records INTEGER NOT NULL DEFAULT 0,
		total_cost    REAL NOT NULL DEFAULT 0.0,
		warnings      TEXT NOT NULL DEFAULT '[]',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_imports_created ON imports(created_at);

	CREATE TABLE IF NOT EXISTS usage_records (
		seq                INTEGER PRIMARY KEY AUTOINCREMENT,
		id                 TEXT NOT NULL,
		import_id          TEXT NOT NULL REFERENCES imports(id),
		date               TEXT NOT NULL,
		provider           TEXT NOT NULL,
		model              TEXT NOT NULL,
		project            TEXT NOT NULL DEFAULT 'Imported',
		input_tokens       INTEGER NOT NULL DEFAULT 0,
		output_tokens      INTEGER NOT NULL DEFAULT 0,
		cache_write_tokens INTEGER NOT NULL DEFAULT 0,
		cache_read_tokens  INTEGER NOT NULL DEFAULT 0,
		cost               REAL NOT NULL DEFAULT 0.0
	);

	CREATE INDEX IF NOT EXISTS idx_usage_import ON usage_records(import_id);
	CREATE INDEX IF NOT EXISTS idx_usage_date ON usage_records(date);
	CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage_records(provider);
	CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_records(model);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		if err := applyMigration(ctx, db, i+1, migrations[i]); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, version int, stmt string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("run migration %d: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}
	return nil
}
