package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		// Current save per key; the save backend reads and writes this table.
		`CREATE TABLE IF NOT EXISTS saves (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		// Every explicit save, kept so a bad import can be rolled back by hand.
		`CREATE TABLE IF NOT EXISTS save_history (
			id TEXT PRIMARY KEY,
			save_key TEXT NOT NULL,
			version TEXT NOT NULL,
			data TEXT NOT NULL,
			exp REAL NOT NULL,
			lifetime_exp REAL NOT NULL,
			level INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			action_group TEXT NOT NULL,
			action_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			exp_gained REAL DEFAULT 0,
			stat TEXT,
			stat_exp REAL DEFAULT 0,
			exp_cost REAL DEFAULT 0,
			crit INTEGER DEFAULT 0,
			completed_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_save_history_key_created_at ON save_history(save_key, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_action_completed_at ON completions(action_id, completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_session_id ON completions(session_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release (ignore if already present)
	alterStmts := []string{
		`ALTER TABLE completions ADD COLUMN stat_level_up INTEGER DEFAULT 0;`,
		`ALTER TABLE completions ADD COLUMN unlocks TEXT;`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}
