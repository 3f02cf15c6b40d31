package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one ordered schema change. Migrations are applied exactly once
// each, tracked in the schema_migrations table.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_students",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS students (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE COLLATE NOCASE,
				notes TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "create_trainers",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS trainers (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE COLLATE NOCASE,
				can_do_gt_assessments INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		version: 3,
		name:    "create_sessions",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				session_type TEXT NOT NULL,
				session_date TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				seat INTEGER NOT NULL CHECK (seat >= 1),
				student_id TEXT REFERENCES students(id),
				client_name TEXT,
				trainer_id TEXT NOT NULL REFERENCES trainers(id),
				status TEXT NOT NULL DEFAULT 'scheduled'
					CHECK (status IN ('scheduled', 'completed', 'cancelled', 'no-show')),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (end_time > start_time),
				CHECK ((student_id IS NULL) <> (client_name IS NULL))
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_day
				ON sessions(session_date, session_type)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_trainer
				ON sessions(trainer_id, session_date)`,
		},
	},
	{
		version: 4,
		name:    "create_blocked_day_rules",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS blocked_day_rules (
				id TEXT PRIMARY KEY,
				start_date TEXT,
				end_date TEXT,
				start_time TEXT,
				end_time TEXT,
				recurring INTEGER NOT NULL DEFAULT 0,
				nth INTEGER NOT NULL DEFAULT 0,
				weekday INTEGER NOT NULL DEFAULT 0,
				exclude_months TEXT NOT NULL DEFAULT '',
				reason TEXT,
				created_at TEXT NOT NULL,
				CHECK (recurring IN (0, 1)),
				CHECK (recurring = 1 OR start_date IS NOT NULL)
			)`,
		},
	},
}

// Migrate applies pending schema migrations in version order. Each migration
// runs in its own transaction together with its schema_migrations record, so
// a failure leaves the database at the last fully applied version.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := cp.migrationApplied(ctx, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
				}
			}
			if _, err := tx.Exec(
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
				m.version, m.name,
			); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (cp *ConnectionPool) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := cp.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %d: %w", version, err)
	}
	return count > 0, nil
}
