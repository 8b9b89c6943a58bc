package ledger

import (
	"database/sql"
	"fmt"
	"strings"
)

func initDatabase(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS accounts (
			account_id TEXT PRIMARY KEY,
			account_name TEXT NOT NULL,
			kind TEXT,
			connector TEXT NOT NULL DEFAULT 'manual',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS positions (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			name TEXT,
			declared_type TEXT NOT NULL DEFAULT '',
			class_override TEXT,
			amount TEXT NOT NULL,
			cost_basis TEXT,
			account_id TEXT,
			currency TEXT NOT NULL DEFAULT 'USD',
			side TEXT,
			is_debt INTEGER NOT NULL DEFAULT 0,
			purchase_date TEXT,
			chain TEXT,
			protocol TEXT,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}
	if err := exec(tx, "CREATE INDEX IF NOT EXISTS idx_positions_account ON positions(account_id)"); err != nil {
		return err
	}
	if err := exec(tx, "CREATE INDEX IF NOT EXISTS idx_positions_symbol ON positions(symbol)"); err != nil {
		return err
	}

	// The transactions table is append-only: nothing in this package issues
	// UPDATE or DELETE against it.
	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			symbol TEXT NOT NULL,
			amount TEXT NOT NULL,
			price_per_unit TEXT NOT NULL,
			total_value TEXT NOT NULL,
			cost_basis_at_execution TEXT NOT NULL,
			position_id TEXT NOT NULL,
			transaction_date TEXT NOT NULL,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}
	if err := exec(tx, "CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date)"); err != nil {
		return err
	}
	if err := exec(tx, "CREATE INDEX IF NOT EXISTS idx_transactions_symbol ON transactions(symbol)"); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS prices (
			symbol TEXT PRIMARY KEY,
			price TEXT NOT NULL,
			change_percent_24h REAL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS custom_prices (
			symbol TEXT PRIMARY KEY,
			price TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS fx_rates (
			currency TEXT PRIMARY KEY,
			rate TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	// Additive migrations for databases created before these columns existed.
	if hasIsActive, err := tableHasColumn(tx, "accounts", "is_active"); err != nil {
		return err
	} else if !hasIsActive {
		if err := exec(tx, "ALTER TABLE accounts ADD COLUMN is_active INTEGER NOT NULL DEFAULT 1"); err != nil {
			return err
		}
	}
	if hasSide, err := tableHasColumn(tx, "positions", "side"); err != nil {
		return err
	} else if !hasSide {
		if err := exec(tx, "ALTER TABLE positions ADD COLUMN side TEXT"); err != nil {
			return err
		}
	}
	if hasVersion, err := tableHasColumn(tx, "positions", "version"); err != nil {
		return err
	} else if !hasVersion {
		if err := exec(tx, "ALTER TABLE positions ADD COLUMN version INTEGER NOT NULL DEFAULT 1"); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func exec(tx *sql.Tx, query string, args ...any) error {
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("exec %q: %w", firstLine(query), err)
	}
	return nil
}

func tableHasColumn(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt any
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func firstLine(query string) string {
	query = strings.TrimSpace(query)
	if i := strings.IndexByte(query, '\n'); i >= 0 {
		return strings.TrimSpace(query[:i])
	}
	return query
}
