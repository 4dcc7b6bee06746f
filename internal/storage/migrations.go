package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Mapping rules",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS mapping_rules (
					pattern TEXT NOT NULL,
					match_type TEXT NOT NULL,
					ticker TEXT NOT NULL,
					canonical_merchant TEXT,
					category TEXT,
					base_confidence REAL NOT NULL,
					usage_count INTEGER DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (pattern, match_type)
				)`,
				`CREATE INDEX idx_mapping_rules_ticker ON mapping_rules(ticker)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Decisions and allocation lines",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS decisions (
					id TEXT PRIMARY KEY,
					transaction_id TEXT NOT NULL,
					merchant TEXT NOT NULL,
					ticker TEXT,
					category TEXT,
					method TEXT NOT NULL,
					confidence REAL DEFAULT 0,
					evidence TEXT,
					disposition TEXT NOT NULL,
					base_fee REAL,
					total_adjustment REAL,
					fee_confidence REAL,
					final_fee REAL,
					fee_fallback INTEGER,
					fee_notes TEXT,
					decided_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_decisions_disposition ON decisions(disposition)`,
				`CREATE INDEX idx_decisions_transaction ON decisions(transaction_id)`,

				`CREATE TABLE IF NOT EXISTS allocation_lines (
					decision_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					stock_symbol TEXT NOT NULL,
					stock_name TEXT,
					amount REAL NOT NULL,
					percentage REAL NOT NULL,
					confidence REAL DEFAULT 0,
					reason TEXT,
					PRIMARY KEY (decision_id, position),
					FOREIGN KEY (decision_id) REFERENCES decisions(id)
				)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
