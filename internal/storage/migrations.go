package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS import_sessions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					status TEXT NOT NULL,
					source_file TEXT NOT NULL,
					bank_format TEXT,
					row_count INTEGER DEFAULT 0,
					auto_count INTEGER DEFAULT 0,
					review_count INTEGER DEFAULT 0,
					progress_done INTEGER DEFAULT 0,
					progress_total INTEGER DEFAULT 0,
					error TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_sessions_user ON import_sessions(user_id)`,

				`CREATE TABLE IF NOT EXISTS import_rows (
					id TEXT PRIMARY KEY,
					session_id TEXT NOT NULL REFERENCES import_sessions(id) ON DELETE CASCADE,
					seq INTEGER NOT NULL DEFAULT 0,
					raw_data TEXT,
					amount TEXT NOT NULL,
					date DATETIME NOT NULL,
					direction TEXT,
					narration TEXT NOT NULL,
					category TEXT,
					platform TEXT,
					payment_method TEXT,
					notes TEXT,
					tags TEXT,
					recurring INTEGER DEFAULT 0,
					confidence TEXT,
					classified_by TEXT,
					status TEXT NOT NULL DEFAULT 'PENDING',
					auto INTEGER DEFAULT 0,
					posted_expense_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_rows_session ON import_rows(session_id)`,
				`CREATE INDEX idx_rows_pending ON import_rows(session_id, status)`,

				`CREATE TABLE IF NOT EXISTS expenses (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					amount TEXT NOT NULL,
					date DATETIME NOT NULL,
					direction TEXT,
					category TEXT,
					platform TEXT,
					payment_method TEXT,
					notes TEXT,
					tags TEXT,
					source TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index expenses by user and date",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX idx_expenses_user_date ON expenses(user_id, date)`)
			return err
		},
	},
}

// Migrate applies pending schema migrations, tracked via PRAGMA user_version,
// and returns how many it applied.
func (s *SQLiteStorage) Migrate(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to set schema version %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		applied++
		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	return applied, nil
}

// SchemaVersion reads the current PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
