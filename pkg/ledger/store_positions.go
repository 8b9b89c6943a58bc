package ledger

import (
	"database/sql"

	"github.com/google/uuid"
)

const positionColumns = `
	id, symbol, name, declared_type, class_override, amount, cost_basis,
	account_id, currency, side, is_debt, purchase_date, chain, protocol,
	version, created_at, updated_at
`

func scanPosition(scan func(dest ...any) error) (Position, error) {
	var p Position
	var name, classOverride, accountID, side, purchaseDate, chain, protocol, createdAt, updatedAt sql.NullString
	var costBasis sql.NullString
	var isDebt int
	if err := scan(
		&p.ID, &p.Symbol, &name, &p.DeclaredType, &classOverride, &p.Amount, &costBasis,
		&accountID, &p.Currency, &side, &isDebt, &purchaseDate, &chain, &protocol,
		&p.Version, &createdAt, &updatedAt,
	); err != nil {
		return Position{}, err
	}
	if name.Valid {
		p.Name = &name.String
	}
	if classOverride.Valid {
		class := AssetClass(classOverride.String)
		p.ClassOverride = &class
	}
	if costBasis.Valid {
		basis, err := scanNullAmount(costBasis.String)
		if err != nil {
			return Position{}, err
		}
		p.CostBasis = basis
	}
	if accountID.Valid {
		p.AccountID = &accountID.String
	}
	if side.Valid {
		p.Side = PositionSide(side.String)
	}
	p.IsDebt = isDebt != 0
	if purchaseDate.Valid {
		p.PurchaseDate = &purchaseDate.String
	}
	if chain.Valid {
		p.Chain = &chain.String
	}
	if protocol.Valid {
		p.Protocol = &protocol.String
	}
	if createdAt.Valid {
		p.CreatedAt = &createdAt.String
	}
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.String
	}
	return p, nil
}

// GetPosition fetches a single position by ID. Returns nil when absent.
func (c *Core) GetPosition(id string) (*Position, error) {
	row := c.db.QueryRow("SELECT "+positionColumns+" FROM positions WHERE id = ?", id)
	p, err := scanPosition(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetPositions returns positions, optionally filtered by account.
func (c *Core) GetPositions(accountID string) ([]Position, error) {
	query := "SELECT " + positionColumns + " FROM positions"
	params := []any{}
	if accountID != "" {
		query += " WHERE account_id = ?"
		params = append(params, accountID)
	}
	query += " ORDER BY symbol, id"

	rows, err := c.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		p, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// AddPosition inserts a position directly (manual or synced provenance).
// Returns the assigned ID.
func (c *Core) AddPosition(p Position) (string, error) {
	if p.Symbol == "" {
		return "", newValidationError("invalid position", FieldError{Field: "symbol", Message: "required"})
	}
	if p.Amount.IsNegative() {
		return "", newValidationError("invalid position", FieldError{Field: "amount", Message: "must not be negative"})
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Symbol = normalizeSymbol(p.Symbol)
	p.Currency = normalizeCurrency(p.Currency)
	if p.Currency == "" {
		p.Currency = "USD"
	}

	tx, err := c.db.Begin()
	if err != nil {
		return "", WrapError(ErrCodeDatabase, "begin", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := insertPositionTx(tx, p); err != nil {
		return "", WrapError(ErrCodeDatabase, "insert position", err)
	}
	if err := tx.Commit(); err != nil {
		return "", WrapError(ErrCodeDatabase, "commit", err)
	}
	return p.ID, nil
}

func insertPositionTx(tx *sql.Tx, p Position) error {
	var classOverride any
	if p.ClassOverride != nil {
		classOverride = string(*p.ClassOverride)
	}
	var side any
	if p.Side != "" {
		side = string(p.Side)
	}
	_, err := tx.Exec(`
		INSERT INTO positions (
			id, symbol, name, declared_type, class_override, amount, cost_basis,
			account_id, currency, side, is_debt, purchase_date, chain, protocol, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`,
		p.ID, p.Symbol, nullString(p.Name), p.DeclaredType, classOverride,
		p.Amount, nullAmount(p.CostBasis), nullString(p.AccountID), p.Currency,
		side, boolToInt(p.IsDebt), nullString(p.PurchaseDate),
		nullString(p.Chain), nullString(p.Protocol),
	)
	return err
}

// updatePositionTx writes a modified position copy, guarded by the version
// the delta was computed against. Zero rows affected means another writer
// got there first.
func updatePositionTx(tx *sql.Tx, p Position, expectedVersion int64) error {
	var classOverride any
	if p.ClassOverride != nil {
		classOverride = string(*p.ClassOverride)
	}
	result, err := tx.Exec(`
		UPDATE positions SET
			symbol = ?, name = ?, class_override = ?, amount = ?, cost_basis = ?,
			version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`,
		p.Symbol, nullString(p.Name), classOverride, p.Amount, nullAmount(p.CostBasis),
		p.ID, expectedVersion,
	)
	if err != nil {
		return WrapError(ErrCodeDatabase, "update position", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return WrapError(ErrCodeDatabase, "update position", err)
	}
	if affected == 0 {
		return NewError(ErrCodeConflict, "position "+p.ID+" changed since the snapshot was taken")
	}
	return nil
}

func deletePositionTx(tx *sql.Tx, id string) error {
	result, err := tx.Exec("DELETE FROM positions WHERE id = ?", id)
	if err != nil {
		return WrapError(ErrCodeDatabase, "delete position", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return WrapError(ErrCodeDatabase, "delete position", err)
	}
	if affected == 0 {
		return NewError(ErrCodeNotFound, "position not found: "+id)
	}
	return nil
}

// DeletePosition removes a position outside of trade execution.
func (c *Core) DeletePosition(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return WrapError(ErrCodeDatabase, "begin", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := deletePositionTx(tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return WrapError(ErrCodeDatabase, "commit", err)
	}
	return nil
}

func nullString(value *string) sql.NullString {
	if value == nil || *value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullAmount(value *Amount) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
