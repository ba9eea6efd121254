package database

import (
	"database/sql"
	"fmt"
)

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "001_create_invocations",
		sql: `CREATE TABLE IF NOT EXISTS invocations (
			id TEXT PRIMARY KEY,
			request_id TEXT,
			call TEXT NOT NULL,
			transport TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			error_kind TEXT,
			error TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			client_ip TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "002_index_invocations_created_at",
		sql:  `CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations(created_at)`,
	},
	{
		name: "003_index_invocations_call",
		sql:  `CREATE INDEX IF NOT EXISTS idx_invocations_call ON invocations(call)`,
	},
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		migration TEXT UNIQUE NOT NULL,
		batch INTEGER NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func recordMigration(db *sql.DB, name string, batch int) error {
	_, err := db.Exec(`INSERT INTO migrations (migration, batch) VALUES (?, ?)`, name, batch)
	return err
}

func isMigrationApplied(db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM migrations WHERE migration = ?`, name).Scan(&count)
	return count > 0, err
}

func nextBatch(db *sql.DB) (int, error) {
	var batch sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(batch) FROM migrations`).Scan(&batch); err != nil {
		return 0, err
	}
	return int(batch.Int64) + 1, nil
}

func runMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	batch, err := nextBatch(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(db, m.name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		if err := recordMigration(db, m.name, batch); err != nil {
			return err
		}
	}
	return nil
}
