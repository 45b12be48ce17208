package recorder

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	Version string
	SQL     string
}

// migrations are applied in order; each runs once
var migrations = []migration{
	{
		Version: "0001_analysis_runs",
		SQL: `CREATE TABLE IF NOT EXISTS analysis_runs (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			inputs      TEXT NOT NULL,
			payload     TEXT NOT NULL
		)`,
	},
	{
		Version: "0002_analysis_runs_fingerprint_idx",
		SQL:     `CREATE INDEX IF NOT EXISTS idx_analysis_runs_fingerprint ON analysis_runs (fingerprint)`,
	},
}

// migrate creates the schema_migrations table and applies pending migrations
func migrate(ctx context.Context, db *sqlx.DB) (int, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("read applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	count := 0
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return count, fmt.Errorf("begin migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			tx.Rollback()
			return count, fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`),
			m.Version, timestamp(nowUTC())); err != nil {
			tx.Rollback()
			return count, fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return count, fmt.Errorf("commit migration %s: %w", m.Version, err)
		}
		count++
	}
	return count, nil
}
