package ledger

import "testing"

func TestBuyNewPosition(t *testing.T) {
	// 5 units at $200 into no existing position.
	result, err := Buy(nil, BuyInput{
		Symbol:       "AAPL",
		DeclaredType: "stock",
		Amount:       amt(5),
		PricePerUnit: amt(200),
		Date:         "2025-06-01",
	})
	assertNoError(t, err, "Buy")

	if result.NewPosition == nil {
		t.Fatal("expected a new position")
	}
	if result.UpdatedPosition != nil || result.RemovedPositionID != "" {
		t.Error("buy into a fresh lot must only create")
	}
	assertAmountEquals(t, result.NewPosition.Amount, 5, "new amount")
	assertAmountEquals(t, orZero(result.NewPosition.CostBasis), 1000, "new cost basis")
	if result.NewPosition.ID == "" {
		t.Error("new position needs an id")
	}
	if result.Transaction.PositionID != result.NewPosition.ID {
		t.Error("transaction must reference the new position")
	}
	if result.Transaction.Type != "BUY" {
		t.Errorf("expected BUY, got %s", result.Transaction.Type)
	}
	assertAmountEquals(t, result.Transaction.TotalValue, 1000, "transaction total")
}

func TestBuyMergeIntoExisting(t *testing.T) {
	existing := Position{
		ID:        "p1",
		Symbol:    "AAPL",
		Amount:    amt(10),
		CostBasis: amountPtr(amt(1500)),
	}
	result, err := Buy(&existing, BuyInput{
		Symbol:       "AAPL",
		Amount:       amt(5),
		PricePerUnit: amt(200),
		Date:         "2025-06-01",
	})
	assertNoError(t, err, "Buy merge")

	if result.UpdatedPosition == nil {
		t.Fatal("expected an updated position")
	}
	assertAmountEquals(t, result.UpdatedPosition.Amount, 15, "merged amount")
	assertAmountEquals(t, orZero(result.UpdatedPosition.CostBasis), 2500, "merged cost basis")
	// Input untouched.
	assertAmountEquals(t, existing.Amount, 10, "existing amount unchanged")
	assertAmountEquals(t, orZero(existing.CostBasis), 1500, "existing basis unchanged")
}

func TestBuyMergeWithAbsentCostBasis(t *testing.T) {
	existing := Position{ID: "p1", Symbol: "SOL", Amount: amt(3)}
	result, err := Buy(&existing, BuyInput{
		Symbol:       "SOL",
		Amount:       amt(2),
		PricePerUnit: amt(100),
	})
	assertNoError(t, err, "Buy merge nil basis")
	assertAmountEquals(t, orZero(result.UpdatedPosition.CostBasis), 200, "basis starts from zero")
}

func TestBuyTotalCostOverridesPrice(t *testing.T) {
	result, err := Buy(nil, BuyInput{
		Symbol:    "VT",
		Amount:    amt(4),
		TotalCost: amountPtr(amt(430)),
	})
	assertNoError(t, err, "Buy with total cost only")
	assertAmountEquals(t, orZero(result.NewPosition.CostBasis), 430, "cost basis from total cost")
	assertAmountEquals(t, result.Transaction.PricePerUnit, 107.5, "derived price per unit")
}

func TestBuyValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    BuyInput
		field string
	}{
		{
			name:  "missing symbol",
			in:    BuyInput{Amount: amt(1), PricePerUnit: amt(10)},
			field: "symbol",
		},
		{
			name:  "zero amount",
			in:    BuyInput{Symbol: "AAPL", Amount: amt(0), PricePerUnit: amt(10)},
			field: "amount",
		},
		{
			name:  "negative amount",
			in:    BuyInput{Symbol: "AAPL", Amount: amt(-1), PricePerUnit: amt(10)},
			field: "amount",
		},
		{
			name:  "no price and no total cost",
			in:    BuyInput{Symbol: "AAPL", Amount: amt(1)},
			field: "price_per_unit",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Buy(nil, tc.in)
			assertValidationError(t, err, tc.field, tc.name)
		})
	}
}

func TestSellPartialProRata(t *testing.T) {
	// Scenario: {amount:10, costBasis:1000}, sell 4 units at 150.
	position := Position{
		ID:        "p1",
		Symbol:    "AAPL",
		Amount:    amt(10),
		CostBasis: amountPtr(amt(1000)),
	}
	result, err := SellPartial(position, amt(4), amt(150), "2025-06-01", nil)
	assertNoError(t, err, "SellPartial")

	assertAmountEquals(t, result.Transaction.CostBasisAtExecution, 400, "basis at execution")
	assertAmountEquals(t, result.UpdatedPosition.Amount, 6, "remaining amount")
	assertAmountEquals(t, orZero(result.UpdatedPosition.CostBasis), 600, "remaining basis")
	assertAmountEquals(t, result.Transaction.TotalValue, 600, "proceeds")
	assertAmountEquals(t, result.Transaction.RealizedPnL(), 200, "realized pnl")
	if result.RemovedPositionID != "" || result.NewPosition != nil {
		t.Error("partial sell must only update")
	}
	// Input untouched.
	assertAmountEquals(t, position.Amount, 10, "input amount unchanged")
}

func TestSellPartialConservation(t *testing.T) {
	// Basis out plus basis remaining equals basis before, exactly, across
	// awkward fractions.
	cases := []struct {
		amount, basis, sell float64
	}{
		{10, 1000, 4},
		{3, 100, 1},
		{7, 999.99, 2.5},
		{0.375, 12345.67, 0.125},
		{1000000, 3, 999999},
	}
	for _, tc := range cases {
		position := Position{
			ID:        "p",
			Symbol:    "X",
			Amount:    amt(tc.amount),
			CostBasis: amountPtr(amt(tc.basis)),
		}
		result, err := SellPartial(position, amt(tc.sell), amt(1), "2025-01-01", nil)
		assertNoError(t, err, "SellPartial conservation")

		total := result.Transaction.CostBasisAtExecution.AddAmount(orZero(result.UpdatedPosition.CostBasis))
		if !total.Equal(amt(tc.basis).Decimal) {
			t.Errorf("conservation violated for %+v: out %s + remaining %s != %v",
				tc, result.Transaction.CostBasisAtExecution.String(),
				orZero(result.UpdatedPosition.CostBasis).String(), tc.basis)
		}
		remaining := position.Amount.SubAmount(amt(tc.sell))
		if !result.UpdatedPosition.Amount.Equal(remaining.Decimal) {
			t.Errorf("amount not exact for %+v", tc)
		}
	}
}

func TestSellPartialAbsentCostBasis(t *testing.T) {
	position := Position{ID: "p1", Symbol: "AIR", Amount: amt(10)}
	result, err := SellPartial(position, amt(4), amt(5), "2025-06-01", nil)
	assertNoError(t, err, "SellPartial nil basis")
	assertAmountEquals(t, result.Transaction.CostBasisAtExecution, 0, "basis treated as zero")
	assertAmountEquals(t, orZero(result.UpdatedPosition.CostBasis), 0, "remaining basis zero")
}

func TestSellPartialValidation(t *testing.T) {
	position := Position{ID: "p1", Symbol: "AAPL", Amount: amt(10), CostBasis: amountPtr(amt(1000))}

	_, err := SellPartial(position, amt(0), amt(10), "2025-06-01", nil)
	assertValidationError(t, err, "sell_amount", "zero amount")

	_, err = SellPartial(position, amt(4), amt(0), "2025-06-01", nil)
	assertValidationError(t, err, "sell_price", "zero price")

	_, err = SellPartial(position, amt(11), amt(10), "2025-06-01", nil)
	assertValidationError(t, err, "sell_amount", "amount exceeds position")
}

func TestSellPartialRejectsFullAmount(t *testing.T) {
	// Selling the entire amount must go through SellAll so the position is
	// removed, not retained at zero.
	position := Position{ID: "p1", Symbol: "AAPL", Amount: amt(10), CostBasis: amountPtr(amt(1000))}
	_, err := SellPartial(position, amt(10), amt(150), "2025-06-01", nil)
	assertValidationError(t, err, "sell_amount", "full amount via partial sell")
}

func TestSellAll(t *testing.T) {
	position := Position{
		ID:        "p1",
		Symbol:    "AAPL",
		Amount:    amt(10),
		CostBasis: amountPtr(amt(1000)),
	}
	result, err := SellAll(position, amt(150), "2025-06-01", nil)
	assertNoError(t, err, "SellAll")

	if result.RemovedPositionID != "p1" {
		t.Errorf("expected removal of p1, got %q", result.RemovedPositionID)
	}
	assertAmountEquals(t, result.Transaction.Amount, 10, "transaction amount")
	assertAmountEquals(t, result.Transaction.CostBasisAtExecution, 1000, "entire basis out")
	assertAmountEquals(t, result.Transaction.TotalValue, 1500, "proceeds")
	if result.UpdatedPosition != nil || result.NewPosition != nil {
		t.Error("full sell must only remove")
	}
}

func TestSellAllValidation(t *testing.T) {
	position := Position{ID: "p1", Symbol: "AAPL", Amount: amt(10)}
	_, err := SellAll(position, amt(0), "2025-06-01", nil)
	assertValidationError(t, err, "sell_price", "zero price")

	empty := Position{ID: "p2", Symbol: "AAPL", Amount: amt(0)}
	_, err = SellAll(empty, amt(10), "2025-06-01", nil)
	assertValidationError(t, err, "position", "empty position")
}

func TestAvgCostRecomputed(t *testing.T) {
	p := Position{Symbol: "AAPL", Amount: amt(8), CostBasis: amountPtr(amt(1000))}
	assertAmountEquals(t, p.AvgCost(), 125, "avg cost")

	p.CostBasis = nil
	assertAmountEquals(t, p.AvgCost(), 0, "avg cost without basis")
}
