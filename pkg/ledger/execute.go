package ledger

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExecuteResult reports everything one mutating call changed. The call is
// atomic: on error nothing was applied.
type ExecuteResult struct {
	Transaction        *Transaction `json:"transaction,omitempty"`
	UpdatedPositions   []Position   `json:"updated_positions,omitempty"`
	NewPositions       []Position   `json:"new_positions,omitempty"`
	RemovedPositionIDs []string     `json:"removed_position_ids,omitempty"`
	Warnings           []Warning    `json:"warnings,omitempty"`
}

// ExecuteAction validates an untrusted raw action, computes the trade and
// cash deltas against a fresh snapshot, and commits them atomically. Writers
// are serialized, and every position write is guarded by the version the
// snapshot carried, so two submissions racing on the same position cannot
// both apply.
func (c *Core) ExecuteAction(raw RawAction) (*ExecuteResult, error) {
	action, err := ParseAction(raw)
	if err != nil {
		return nil, err
	}
	return c.Execute(action)
}

// Execute applies a validated action to the ledger.
func (c *Core) Execute(action Action) (*ExecuteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	switch a := action.(type) {
	case BuyAction:
		return c.executeBuy(snap, a)
	case SellPartialAction:
		return c.executeSellPartial(snap, a)
	case SellAllAction:
		return c.executeSellAll(snap, a)
	case AddCashAction:
		return c.executeAddCash(snap, a)
	case RemoveAction:
		return c.executeRemove(a)
	case UpdatePositionAction:
		return c.executeUpdatePosition(snap, a)
	case SetPriceAction:
		if err := c.SetCustomPrice(a.Symbol, a.Price); err != nil {
			return nil, err
		}
		return &ExecuteResult{}, nil
	case UpdateCashAction:
		return c.executeUpdateCash(snap, a)
	default:
		return nil, NewError(ErrCodeUnsupported, "unsupported action")
	}
}

func (c *Core) executeBuy(snap *Snapshot, a BuyAction) (*ExecuteResult, error) {
	var existing *Position
	if a.PositionID != nil && *a.PositionID != "" {
		existing = findPositionByID(snap.Positions, *a.PositionID)
		if existing == nil {
			return nil, NewError(ErrCodeNotFound, "position not found: "+*a.PositionID)
		}
	}

	trade, err := Buy(existing, BuyInput{
		Symbol:       a.Symbol,
		DeclaredType: a.AssetType,
		AccountID:    a.AccountID,
		Currency:     "USD",
		Amount:       a.Amount,
		PricePerUnit: a.PricePerUnit,
		TotalCost:    a.TotalCost,
		Date:         a.Date,
		Notes:        a.Notes,
	})
	if err != nil {
		return nil, err
	}

	var cash CashDeltaResult
	if settlesThroughCash(Classify(a.Symbol, a.AssetType, nil), a.AccountID) {
		cash = ApplyCashDelta(snap.Positions, *a.AccountID, ZeroAmount().SubAmount(trade.Transaction.TotalValue))
	}

	return c.applyDeltas(a.AccountID, trade, cash)
}

func (c *Core) executeSellPartial(snap *Snapshot, a SellPartialAction) (*ExecuteResult, error) {
	position, err := findPositionForSell(snap.Positions, a.PositionID, a.Symbol)
	if err != nil {
		return nil, err
	}

	sellAmount, err := resolveSellAmount(*position, a.SellAmount, a.SellPercent)
	if err != nil {
		return nil, err
	}

	// A sell of the full amount routes to the full-sell path so the
	// position is removed rather than retained at zero.
	if sellAmount.Equal(position.Amount.Decimal) {
		return c.executeSellAll(snap, SellAllAction{
			Symbol:     a.Symbol,
			PositionID: &position.ID,
			SellPrice:  a.SellPrice,
			Date:       a.Date,
			Notes:      a.Notes,
		})
	}

	trade, err := SellPartial(*position, sellAmount, a.SellPrice, a.Date, a.Notes)
	if err != nil {
		return nil, err
	}

	var cash CashDeltaResult
	if settlesThroughCash(position.Class(), position.AccountID) {
		cash = ApplyCashDelta(snap.Positions, *position.AccountID, trade.Transaction.TotalValue)
	}

	return c.applyDeltas(position.AccountID, trade, cash)
}

func (c *Core) executeSellAll(snap *Snapshot, a SellAllAction) (*ExecuteResult, error) {
	position, err := findPositionForSell(snap.Positions, a.PositionID, a.Symbol)
	if err != nil {
		return nil, err
	}

	trade, err := SellAll(*position, a.SellPrice, a.Date, a.Notes)
	if err != nil {
		return nil, err
	}

	var cash CashDeltaResult
	if settlesThroughCash(position.Class(), position.AccountID) {
		cash = ApplyCashDelta(snap.Positions, *position.AccountID, trade.Transaction.TotalValue)
	}

	return c.applyDeltas(position.AccountID, trade, cash)
}

func (c *Core) executeAddCash(snap *Snapshot, a AddCashAction) (*ExecuteResult, error) {
	cash := ApplyCashDelta(snap.Positions, a.AccountID, a.Amount)
	if cash.NewPosition != nil {
		cash.NewPosition.Symbol = normalizeCurrency(a.Currency)
		cash.NewPosition.Currency = normalizeCurrency(a.Currency)
	}
	return c.applyDeltas(&a.AccountID, TradeResult{}, cash)
}

func (c *Core) executeRemove(a RemoveAction) (*ExecuteResult, error) {
	if err := c.removeInTx(a.PositionID); err != nil {
		return nil, err
	}
	return &ExecuteResult{RemovedPositionIDs: []string{a.PositionID}}, nil
}

func (c *Core) removeInTx(positionID string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return WrapError(ErrCodeDatabase, "begin", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := deletePositionTx(tx, positionID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return WrapError(ErrCodeDatabase, "commit", err)
	}
	return nil
}

func (c *Core) executeUpdatePosition(snap *Snapshot, a UpdatePositionAction) (*ExecuteResult, error) {
	position := findPositionByID(snap.Positions, a.PositionID)
	if position == nil {
		return nil, NewError(ErrCodeNotFound, "position not found: "+a.PositionID)
	}

	updated := *position
	if a.Amount != nil {
		updated.Amount = *a.Amount
	}
	if a.CostBasis != nil {
		updated.CostBasis = a.CostBasis
	}
	if a.Name != nil {
		updated.Name = a.Name
	}
	if a.ClassOverride != nil {
		updated.ClassOverride = a.ClassOverride
	}

	tx, err := c.db.Begin()
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "begin", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := updatePositionTx(tx, updated, position.Version); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "commit", err)
	}
	updated.Version++
	return &ExecuteResult{UpdatedPositions: []Position{updated}}, nil
}

func (c *Core) executeUpdateCash(snap *Snapshot, a UpdateCashAction) (*ExecuteResult, error) {
	existing := findCashPosition(snap.Positions, a.AccountID)
	var delta Amount
	if existing != nil {
		delta = a.Amount.SubAmount(existing.Amount)
	} else {
		delta = a.Amount
	}
	if delta.IsZero() {
		return &ExecuteResult{}, nil
	}
	cash := ApplyCashDelta(snap.Positions, a.AccountID, delta)
	if cash.NewPosition != nil {
		cash.NewPosition.Symbol = normalizeCurrency(a.Currency)
		cash.NewPosition.Currency = normalizeCurrency(a.Currency)
	}
	if cash.Warning != nil && cash.Warning.Code == WarnNoFundingSource {
		// Setting a balance below zero outright is explicit user intent;
		// create the position rather than skip.
		account := a.AccountID
		cash = CashDeltaResult{NewPosition: &Position{
			ID:           uuid.NewString(),
			Symbol:       normalizeCurrency(a.Currency),
			DeclaredType: "cash",
			Currency:     normalizeCurrency(a.Currency),
			AccountID:    &account,
			Amount:       a.Amount,
			CostBasis:    amountPtr(a.Amount),
		}}
	}
	return c.applyDeltas(&a.AccountID, TradeResult{}, cash)
}

// applyDeltas commits a trade result and its cash side effect in one
// transaction. Position updates are version-guarded against the snapshot.
func (c *Core) applyDeltas(accountID *string, trade TradeResult, cash CashDeltaResult) (*ExecuteResult, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "begin", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result := &ExecuteResult{}

	if accountID != nil && *accountID != "" {
		if err := ensureAccountTx(tx, *accountID); err != nil {
			return nil, WrapError(ErrCodeDatabase, "ensure account", err)
		}
	}

	apply := func(updated, created *Position) error {
		if updated != nil {
			if err := updatePositionTx(tx, *updated, updated.Version); err != nil {
				return err
			}
			applied := *updated
			applied.Version++
			result.UpdatedPositions = append(result.UpdatedPositions, applied)
		}
		if created != nil {
			if err := insertPositionTx(tx, *created); err != nil {
				return WrapError(ErrCodeDatabase, "insert position", err)
			}
			applied := *created
			applied.Version = 1
			result.NewPositions = append(result.NewPositions, applied)
		}
		return nil
	}

	if err := apply(trade.UpdatedPosition, trade.NewPosition); err != nil {
		return nil, err
	}
	if trade.RemovedPositionID != "" {
		if err := deletePositionTx(tx, trade.RemovedPositionID); err != nil {
			return nil, err
		}
		result.RemovedPositionIDs = append(result.RemovedPositionIDs, trade.RemovedPositionID)
	}
	if err := apply(cash.UpdatedPosition, cash.NewPosition); err != nil {
		return nil, err
	}

	if trade.Transaction.ID != "" {
		if err := appendTransactionTx(tx, trade.Transaction); err != nil {
			return nil, err
		}
		transaction := trade.Transaction
		result.Transaction = &transaction
	}

	if err := tx.Commit(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "commit", err)
	}

	if cash.Warning != nil {
		result.Warnings = append(result.Warnings, *cash.Warning)
		c.logger.Warn("cash consistency warning",
			"code", cash.Warning.Code, "message", cash.Warning.Message)
	}
	return result, nil
}

func ensureAccountTx(tx *sql.Tx, accountID string) error {
	_, err := tx.Exec(`
		INSERT OR IGNORE INTO accounts (account_id, account_name, connector, is_active)
		VALUES (?, ?, ?, 1)
	`, accountID, accountID, ConnectorManual)
	return err
}

func findPositionByID(positions []Position, id string) *Position {
	for i := range positions {
		if positions[i].ID == id {
			return &positions[i]
		}
	}
	return nil
}

// findPositionForSell locates the target by id when given, otherwise by
// symbol. A symbol matching several lots is ambiguous and rejected rather
// than guessed.
func findPositionForSell(positions []Position, positionID *string, symbol string) (*Position, error) {
	if positionID != nil && *positionID != "" {
		if p := findPositionByID(positions, *positionID); p != nil {
			return p, nil
		}
		return nil, NewError(ErrCodeNotFound, "position not found: "+*positionID)
	}
	normalized := normalizeSymbol(symbol)
	var match *Position
	for i := range positions {
		if normalizeSymbol(positions[i].Symbol) != normalized {
			continue
		}
		if match != nil {
			return nil, newValidationError("multiple positions hold "+normalized+"; specify position_id",
				FieldError{Field: "position_id", Message: "required to disambiguate"})
		}
		match = &positions[i]
	}
	if match == nil {
		return nil, NewError(ErrCodeNotFound, "no position holds "+normalized)
	}
	return match, nil
}

// resolveSellAmount turns a percent request into a concrete amount against
// the held balance.
func resolveSellAmount(position Position, sellAmount *Amount, sellPercent *float64) (Amount, error) {
	if sellAmount != nil {
		return *sellAmount, nil
	}
	if sellPercent == nil {
		return Amount{}, newValidationError("invalid sell",
			FieldError{Field: "sell_amount", Message: "sell_amount or sell_percent required"})
	}
	if *sellPercent >= 100 {
		return position.Amount, nil
	}
	pct := Amount{decimal.NewFromFloat(*sellPercent)}
	return position.Amount.MulAmount(pct).DivAmount(NewAmountFromInt(100)), nil
}
