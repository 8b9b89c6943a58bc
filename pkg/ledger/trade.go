package ledger

import "github.com/google/uuid"

// BuyInput defines inputs to a buy operation.
type BuyInput struct {
	Symbol       string
	DeclaredType string
	AccountID    *string
	Currency     string
	Amount       Amount
	PricePerUnit Amount
	// TotalCost, when supplied, overrides Amount × PricePerUnit as the
	// effective total cost of the lot.
	TotalCost *Amount
	Date      string
	Notes     *string
}

// Buy computes the result of a buy. When existing is non-nil the caller has
// decided to merge into that lot; otherwise a new position is created.
// Pure: no I/O, no mutation of the supplied position.
func Buy(existing *Position, in BuyInput) (TradeResult, error) {
	var fields []FieldError
	if in.Symbol == "" {
		fields = append(fields, FieldError{Field: "symbol", Message: "required"})
	}
	if !in.Amount.IsPositive() {
		fields = append(fields, FieldError{Field: "amount", Message: "must be positive"})
	}
	if !in.PricePerUnit.IsPositive() && in.TotalCost == nil {
		fields = append(fields, FieldError{Field: "price_per_unit", Message: "must be positive when total_cost is absent"})
	}
	if in.TotalCost != nil && in.TotalCost.IsNegative() {
		fields = append(fields, FieldError{Field: "total_cost", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return TradeResult{}, newValidationError("invalid buy", fields...)
	}

	totalCost := in.Amount.MulAmount(in.PricePerUnit)
	if in.TotalCost != nil {
		totalCost = *in.TotalCost
	}
	pricePerUnit := in.PricePerUnit
	if !pricePerUnit.IsPositive() {
		pricePerUnit = totalCost.DivAmount(in.Amount)
	}

	result := TradeResult{
		Transaction: Transaction{
			ID:                   uuid.NewString(),
			Type:                 "BUY",
			Symbol:               normalizeSymbol(in.Symbol),
			Amount:               in.Amount,
			PricePerUnit:         pricePerUnit,
			TotalValue:           totalCost,
			CostBasisAtExecution: totalCost,
			Date:                 in.Date,
			Notes:                in.Notes,
		},
	}

	if existing != nil {
		updated := *existing
		updated.Amount = existing.Amount.AddAmount(in.Amount)
		updated.CostBasis = amountPtr(orZero(existing.CostBasis).AddAmount(totalCost))
		result.UpdatedPosition = &updated
		result.Transaction.PositionID = existing.ID
		return result, nil
	}

	position := Position{
		ID:           uuid.NewString(),
		Symbol:       normalizeSymbol(in.Symbol),
		DeclaredType: in.DeclaredType,
		AccountID:    in.AccountID,
		Currency:     normalizeCurrency(in.Currency),
		Amount:       in.Amount,
		CostBasis:    amountPtr(totalCost),
	}
	if in.Date != "" {
		date := in.Date
		position.PurchaseDate = &date
	}
	result.NewPosition = &position
	result.Transaction.PositionID = position.ID
	return result, nil
}

// SellPartial computes the result of selling part of a position. The cost
// basis attributed to the sold units is pro-rata by the fraction sold, so
// basis transferred out plus basis remaining equals the basis before the
// sell exactly.
//
// A sell of the entire amount is rejected: callers must route it to SellAll
// so the position is removed rather than retained at zero.
func SellPartial(position Position, sellAmount, sellPrice Amount, date string, notes *string) (TradeResult, error) {
	if !sellAmount.IsPositive() {
		return TradeResult{}, newValidationError("invalid sell",
			FieldError{Field: "sell_amount", Message: "must be positive"})
	}
	if !sellPrice.IsPositive() {
		return TradeResult{}, newValidationError("invalid sell",
			FieldError{Field: "sell_price", Message: "must be positive"})
	}
	if sellAmount.GreaterThan(position.Amount.Decimal) {
		return TradeResult{}, newValidationError("amount exceeds position",
			FieldError{Field: "sell_amount", Message: "exceeds held amount"})
	}
	if sellAmount.Equal(position.Amount.Decimal) {
		return TradeResult{}, newValidationError("sell amount equals position; use a full sell",
			FieldError{Field: "sell_amount", Message: "equals held amount"})
	}

	basis := orZero(position.CostBasis)
	basisAtExecution := basis.MulAmount(sellAmount).DivAmount(position.Amount)

	updated := position
	updated.Amount = position.Amount.SubAmount(sellAmount)
	updated.CostBasis = amountPtr(basis.SubAmount(basisAtExecution))

	return TradeResult{
		Transaction: Transaction{
			ID:                   uuid.NewString(),
			Type:                 "SELL",
			Symbol:               position.Symbol,
			Amount:               sellAmount,
			PricePerUnit:         sellPrice,
			TotalValue:           sellAmount.MulAmount(sellPrice),
			CostBasisAtExecution: basisAtExecution,
			PositionID:           position.ID,
			Date:                 date,
			Notes:                notes,
		},
		UpdatedPosition: &updated,
	}, nil
}

// SellAll computes the result of closing a position. The entire cost basis
// transfers out and the position id is signaled for removal; deletion is the
// caller's job.
func SellAll(position Position, sellPrice Amount, date string, notes *string) (TradeResult, error) {
	if !sellPrice.IsPositive() {
		return TradeResult{}, newValidationError("invalid sell",
			FieldError{Field: "sell_price", Message: "must be positive"})
	}
	if !position.Amount.IsPositive() {
		return TradeResult{}, newValidationError("invalid sell",
			FieldError{Field: "position", Message: "holds nothing to sell"})
	}

	return TradeResult{
		Transaction: Transaction{
			ID:                   uuid.NewString(),
			Type:                 "SELL",
			Symbol:               position.Symbol,
			Amount:               position.Amount,
			PricePerUnit:         sellPrice,
			TotalValue:           position.Amount.MulAmount(sellPrice),
			CostBasisAtExecution: orZero(position.CostBasis),
			PositionID:           position.ID,
			Date:                 date,
			Notes:                notes,
		},
		RemovedPositionID: position.ID,
	}, nil
}
