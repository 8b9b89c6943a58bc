package ledger

import "testing"

func amtPtr(f float64) *Amount {
	a := amt(f)
	return &a
}

func TestParseActionBuy(t *testing.T) {
	action, err := ParseAction(RawAction{
		Kind:         "buy",
		Symbol:       "aapl",
		Amount:       amtPtr(5),
		PricePerUnit: amtPtr(200),
		AccountID:    strPtr("ibkr"),
		Date:         strPtr("2025-06-01"),
	})
	assertNoError(t, err, "parse buy")

	buy, ok := action.(BuyAction)
	if !ok {
		t.Fatalf("expected BuyAction, got %T", action)
	}
	if buy.Symbol != "AAPL" {
		t.Errorf("symbol not normalized: %s", buy.Symbol)
	}
	assertAmountEquals(t, buy.Amount, 5, "amount")
	assertAmountEquals(t, buy.PricePerUnit, 200, "price")
	if buy.Date != "2025-06-01" {
		t.Errorf("date: got %s", buy.Date)
	}
}

func TestParseActionBuyDateDefaultsToToday(t *testing.T) {
	action, err := ParseAction(RawAction{
		Kind:         "buy",
		Symbol:       "AAPL",
		Amount:       amtPtr(1),
		PricePerUnit: amtPtr(10),
	})
	assertNoError(t, err, "parse buy without date")
	if action.(BuyAction).Date == "" {
		t.Error("expected a defaulted date")
	}
}

func TestParseActionSellPartial(t *testing.T) {
	action, err := ParseAction(RawAction{
		Kind:       "sell_partial",
		Symbol:     "btc",
		SellAmount: amtPtr(0.5),
		SellPrice:  amtPtr(50000),
	})
	assertNoError(t, err, "parse sell_partial")

	sell := action.(SellPartialAction)
	if sell.SellAmount == nil || sell.SellPercent != nil {
		t.Error("expected amount variant, not percent")
	}
	assertAmountEquals(t, *sell.SellAmount, 0.5, "sell amount")
}

func TestParseActionSellPartialPercent(t *testing.T) {
	action, err := ParseAction(RawAction{
		Kind:        "sell_partial",
		Symbol:      "BTC",
		SellPercent: floatPtr(25),
		SellPrice:   amtPtr(50000),
	})
	assertNoError(t, err, "parse percent sell")
	sell := action.(SellPartialAction)
	if sell.SellPercent == nil || *sell.SellPercent != 25 {
		t.Error("expected percent variant")
	}
}

func TestParseActionSellAll(t *testing.T) {
	action, err := ParseAction(RawAction{
		Kind:       "sell_all",
		PositionID: strPtr("p1"),
		SellPrice:  amtPtr(150),
	})
	assertNoError(t, err, "parse sell_all")
	sell := action.(SellAllAction)
	if sell.PositionID == nil || *sell.PositionID != "p1" {
		t.Error("position id lost in parse")
	}
}

func TestParseActionAddCash(t *testing.T) {
	action, err := ParseAction(RawAction{
		Kind:      "add_cash",
		AccountID: strPtr("bank"),
		Amount:    amtPtr(1000),
		Currency:  strPtr("eur"),
	})
	assertNoError(t, err, "parse add_cash")
	cash := action.(AddCashAction)
	if cash.Currency != "EUR" {
		t.Errorf("currency not normalized: %s", cash.Currency)
	}
	assertAmountEquals(t, cash.Amount, 1000, "amount")
}

func TestParseActionAddCashDefaultsUSD(t *testing.T) {
	action, err := ParseAction(RawAction{
		Kind:      "add_cash",
		AccountID: strPtr("bank"),
		Amount:    amtPtr(1000),
	})
	assertNoError(t, err, "parse add_cash default currency")
	if action.(AddCashAction).Currency != "USD" {
		t.Error("expected USD default")
	}
}

func TestParseActionUpdatePosition(t *testing.T) {
	action, err := ParseAction(RawAction{
		Kind:       "update_position",
		PositionID: strPtr("p1"),
		Amount:     amtPtr(12),
		AssetType:  strPtr("equity"),
	})
	assertNoError(t, err, "parse update_position")
	update := action.(UpdatePositionAction)
	if update.ClassOverride == nil || *update.ClassOverride != AssetClassEquity {
		t.Error("asset type should narrow to a class override")
	}
}

func TestParseActionSetPrice(t *testing.T) {
	action, err := ParseAction(RawAction{Kind: "set_price", Symbol: "RSU", Price: amtPtr(42)})
	assertNoError(t, err, "parse set_price")
	assertAmountEquals(t, action.(SetPriceAction).Price, 42, "price")
}

func TestParseActionUpdateCash(t *testing.T) {
	action, err := ParseAction(RawAction{
		Kind:      "update_cash",
		AccountID: strPtr("bank"),
		Amount:    amtPtr(2500),
	})
	assertNoError(t, err, "parse update_cash")
	assertAmountEquals(t, action.(UpdateCashAction).Amount, 2500, "target balance")
}

func TestParseActionValidation(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawAction
		field string
	}{
		{
			name:  "missing kind",
			raw:   RawAction{},
			field: "kind",
		},
		{
			name:  "unknown kind",
			raw:   RawAction{Kind: "transfer"},
			field: "kind",
		},
		{
			name:  "buy without symbol",
			raw:   RawAction{Kind: "buy", Amount: amtPtr(1), PricePerUnit: amtPtr(10)},
			field: "symbol",
		},
		{
			name:  "buy with non-positive amount",
			raw:   RawAction{Kind: "buy", Symbol: "AAPL", Amount: amtPtr(0), PricePerUnit: amtPtr(10)},
			field: "amount",
		},
		{
			name:  "buy without price or total cost",
			raw:   RawAction{Kind: "buy", Symbol: "AAPL", Amount: amtPtr(1)},
			field: "price_per_unit",
		},
		{
			name:  "buy with bad date",
			raw:   RawAction{Kind: "buy", Symbol: "AAPL", Amount: amtPtr(1), PricePerUnit: amtPtr(10), Date: strPtr("June 1st")},
			field: "date",
		},
		{
			name:  "sell without target",
			raw:   RawAction{Kind: "sell_partial", SellAmount: amtPtr(1), SellPrice: amtPtr(10)},
			field: "symbol",
		},
		{
			name:  "sell without amount or percent",
			raw:   RawAction{Kind: "sell_partial", Symbol: "BTC", SellPrice: amtPtr(10)},
			field: "sell_amount",
		},
		{
			name:  "sell with both amount and percent",
			raw:   RawAction{Kind: "sell_partial", Symbol: "BTC", SellAmount: amtPtr(1), SellPercent: floatPtr(50), SellPrice: amtPtr(10)},
			field: "sell_amount",
		},
		{
			name:  "sell percent out of range",
			raw:   RawAction{Kind: "sell_partial", Symbol: "BTC", SellPercent: floatPtr(150), SellPrice: amtPtr(10)},
			field: "sell_percent",
		},
		{
			name:  "sell without price",
			raw:   RawAction{Kind: "sell_all", Symbol: "BTC"},
			field: "sell_price",
		},
		{
			name:  "add_cash without account",
			raw:   RawAction{Kind: "add_cash", Amount: amtPtr(100)},
			field: "account_id",
		},
		{
			name:  "add_cash with negative amount",
			raw:   RawAction{Kind: "add_cash", AccountID: strPtr("bank"), Amount: amtPtr(-100)},
			field: "amount",
		},
		{
			name:  "remove without position id",
			raw:   RawAction{Kind: "remove"},
			field: "position_id",
		},
		{
			name:  "update_position with nothing to update",
			raw:   RawAction{Kind: "update_position", PositionID: strPtr("p1")},
			field: "amount",
		},
		{
			name:  "update_position with bogus asset type",
			raw:   RawAction{Kind: "update_position", PositionID: strPtr("p1"), AssetType: strPtr("real_estate")},
			field: "asset_type",
		},
		{
			name:  "set_price without price",
			raw:   RawAction{Kind: "set_price", Symbol: "RSU"},
			field: "price",
		},
		{
			name:  "update_cash without amount",
			raw:   RawAction{Kind: "update_cash", AccountID: strPtr("bank")},
			field: "amount",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAction(tc.raw)
			assertValidationError(t, err, tc.field, tc.name)
		})
	}
}
