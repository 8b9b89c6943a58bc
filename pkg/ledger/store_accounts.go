package ledger

import (
	"database/sql"
	"strings"
)

// AddAccount inserts a new account.
func (c *Core) AddAccount(account Account) error {
	if account.AccountID == "" || account.AccountName == "" {
		return newValidationError("invalid account",
			FieldError{Field: "account_id", Message: "account_id and account_name are required"})
	}
	connector := strings.TrimSpace(account.Connector)
	if connector == "" {
		connector = ConnectorManual
	}
	_, err := c.db.Exec(`
		INSERT INTO accounts (account_id, account_name, kind, connector, is_active)
		VALUES (?, ?, ?, ?, ?)
	`, account.AccountID, account.AccountName, nullString(account.Kind), connector, boolToInt(account.IsActive))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return NewError(ErrCodeDuplicate, "account already exists: "+account.AccountID)
		}
		return WrapError(ErrCodeDatabase, "insert account", err)
	}
	return nil
}

// GetAccounts returns all accounts.
func (c *Core) GetAccounts() ([]Account, error) {
	rows, err := c.db.Query(`
		SELECT account_id, account_name, kind, connector, is_active, created_at
		FROM accounts ORDER BY account_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var acc Account
		var kind, createdAt sql.NullString
		var isActive int
		if err := rows.Scan(&acc.AccountID, &acc.AccountName, &kind, &acc.Connector, &isActive, &createdAt); err != nil {
			return nil, err
		}
		if kind.Valid {
			acc.Kind = &kind.String
		}
		acc.IsActive = isActive != 0
		if createdAt.Valid {
			acc.CreatedAt = &createdAt.String
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// CheckAccountInUse returns true if any position references the account.
func (c *Core) CheckAccountInUse(accountID string) (bool, error) {
	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM positions WHERE account_id = ?", accountID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteAccount deletes an account if no position references it.
func (c *Core) DeleteAccount(accountID string) error {
	inUse, err := c.CheckAccountInUse(accountID)
	if err != nil {
		return WrapError(ErrCodeDatabase, "check account", err)
	}
	if inUse {
		return NewError(ErrCodeConflict, "account has positions; move or remove them first")
	}
	result, err := c.db.Exec("DELETE FROM accounts WHERE account_id = ?", accountID)
	if err != nil {
		return WrapError(ErrCodeDatabase, "delete account", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return WrapError(ErrCodeDatabase, "delete account", err)
	}
	if affected == 0 {
		return NewError(ErrCodeNotFound, "account not found: "+accountID)
	}
	return nil
}
