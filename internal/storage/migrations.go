package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Monetary columns are TEXT holding decimal strings so no precision is lost
// between the importer and the reports.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					currency_code TEXT NOT NULL,
					initial_balance TEXT NOT NULL DEFAULT '0',
					current_balance TEXT NOT NULL DEFAULT '0',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					is_system_generated INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					date TEXT NOT NULL,
					type TEXT NOT NULL,
					amount TEXT NOT NULL,
					target_amount TEXT,
					currency_code TEXT NOT NULL,
					account_id TEXT NOT NULL DEFAULT '',
					transfer_to_account_id TEXT NOT NULL DEFAULT '',
					category_id TEXT NOT NULL DEFAULT '',
					investment_id TEXT NOT NULL DEFAULT '',
					project_id TEXT NOT NULL DEFAULT '',
					note TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
				`CREATE INDEX idx_transactions_transfer_to ON transactions(transfer_to_account_id)`,
				`CREATE INDEX idx_transactions_project ON transactions(project_id)`,

				`CREATE TABLE IF NOT EXISTS investments (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					status TEXT NOT NULL,
					currency_code TEXT NOT NULL,
					initial_amount TEXT NOT NULL DEFAULT '0',
					current_amount TEXT,
					purchase_price TEXT,
					salvage_value TEXT,
					useful_life TEXT,
					depreciation_type TEXT NOT NULL DEFAULT '',
					interest_rate TEXT,
					start_date TEXT NOT NULL,
					end_date TEXT,
					project_id TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS projects (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					status TEXT NOT NULL,
					start_date TEXT NOT NULL,
					end_date TEXT,
					total_budget TEXT,
					currency_code TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add recurring rules",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS recurring_rules (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					amount TEXT NOT NULL,
					currency_code TEXT NOT NULL,
					frequency TEXT NOT NULL,
					repeat_interval INTEGER NOT NULL DEFAULT 1,
					start_date TEXT NOT NULL,
					end_date TEXT,
					active INTEGER NOT NULL DEFAULT 1,
					account_id TEXT NOT NULL DEFAULT '',
					category_id TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Index investments by project and keep updated_at current",
		Up: func(tx *sql.Tx) error {
			if err := execAll(tx, []string{
				`CREATE INDEX idx_investments_project ON investments(project_id)`,
				`CREATE TRIGGER update_accounts_updated_at
				AFTER UPDATE ON accounts
				FOR EACH ROW
				BEGIN
					UPDATE accounts SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
				END`,
				`CREATE TRIGGER update_projects_updated_at
				AFTER UPDATE ON projects
				FOR EACH ROW
				BEGIN
					UPDATE projects SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
				END`,
			}); err != nil {
				return err
			}
			slog.Info("Added investment project index and updated_at triggers")
			return nil
		},
	},
}

// SchemaVersion returns the current PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", classify(err))
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", classify(txErr))
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
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, classify(commitErr))
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
