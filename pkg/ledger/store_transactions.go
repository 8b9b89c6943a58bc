package ledger

import (
	"database/sql"
	"strings"
)

// TransactionFilter controls transaction queries.
type TransactionFilter struct {
	Symbol     string
	PositionID string
	Type       string
	StartDate  string
	EndDate    string
	Limit      int
	Offset     int
}

func appendTransactionTx(tx *sql.Tx, t Transaction) error {
	_, err := tx.Exec(`
		INSERT INTO transactions (
			id, type, symbol, amount, price_per_unit, total_value,
			cost_basis_at_execution, position_id, transaction_date, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.Type, t.Symbol, t.Amount, t.PricePerUnit, t.TotalValue,
		t.CostBasisAtExecution, t.PositionID, t.Date, nullString(t.Notes),
	)
	if err != nil {
		return WrapError(ErrCodeDatabase, "append transaction", err)
	}
	return nil
}

const transactionColumns = `
	id, type, symbol, amount, price_per_unit, total_value,
	cost_basis_at_execution, position_id, transaction_date, notes, created_at
`

func scanTransaction(scan func(dest ...any) error) (Transaction, error) {
	var t Transaction
	var notes, createdAt sql.NullString
	if err := scan(
		&t.ID, &t.Type, &t.Symbol, &t.Amount, &t.PricePerUnit, &t.TotalValue,
		&t.CostBasisAtExecution, &t.PositionID, &t.Date, &notes, &createdAt,
	); err != nil {
		return Transaction{}, err
	}
	if notes.Valid {
		t.Notes = &notes.String
	}
	if createdAt.Valid {
		t.CreatedAt = &createdAt.String
	}
	return t, nil
}

// GetTransaction fetches a single transaction by ID. Returns nil when absent.
func (c *Core) GetTransaction(id string) (*Transaction, error) {
	row := c.db.QueryRow("SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// GetTransactions returns transactions matching the filter, newest first.
func (c *Core) GetTransactions(filter TransactionFilter) ([]Transaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := strings.Builder{}
	query.WriteString("SELECT " + transactionColumns + " FROM transactions WHERE 1=1")
	params := []any{}

	if filter.Symbol != "" {
		query.WriteString(" AND symbol = ?")
		params = append(params, normalizeSymbol(filter.Symbol))
	}
	if filter.PositionID != "" {
		query.WriteString(" AND position_id = ?")
		params = append(params, filter.PositionID)
	}
	if filter.Type != "" {
		query.WriteString(" AND type = ?")
		params = append(params, strings.ToUpper(filter.Type))
	}
	if filter.StartDate != "" {
		query.WriteString(" AND transaction_date >= ?")
		params = append(params, filter.StartDate)
	}
	if filter.EndDate != "" {
		query.WriteString(" AND transaction_date <= ?")
		params = append(params, filter.EndDate)
	}

	query.WriteString(" ORDER BY transaction_date DESC, created_at DESC, id DESC LIMIT ? OFFSET ?")
	params = append(params, limit, offset)

	rows, err := c.db.Query(query.String(), params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// GetTransactionCount returns the count of transactions matching the filter.
func (c *Core) GetTransactionCount(filter TransactionFilter) (int, error) {
	query := strings.Builder{}
	query.WriteString("SELECT COUNT(*) FROM transactions WHERE 1=1")
	params := []any{}

	if filter.Symbol != "" {
		query.WriteString(" AND symbol = ?")
		params = append(params, normalizeSymbol(filter.Symbol))
	}
	if filter.PositionID != "" {
		query.WriteString(" AND position_id = ?")
		params = append(params, filter.PositionID)
	}
	if filter.Type != "" {
		query.WriteString(" AND type = ?")
		params = append(params, strings.ToUpper(filter.Type))
	}
	if filter.StartDate != "" {
		query.WriteString(" AND transaction_date >= ?")
		params = append(params, filter.StartDate)
	}
	if filter.EndDate != "" {
		query.WriteString(" AND transaction_date <= ?")
		params = append(params, filter.EndDate)
	}

	var count int
	if err := c.db.QueryRow(query.String(), params...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
