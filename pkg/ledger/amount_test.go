package ledger

import (
	"encoding/json"
	"testing"
)

func TestAmountJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(amt(1234.5678))
	assertNoError(t, err, "marshal")
	if string(data) != "1234.5678" {
		t.Errorf("expected bare number, got %s", data)
	}

	var a Amount
	assertNoError(t, json.Unmarshal([]byte("0.1"), &a), "unmarshal number")
	assertAmountEquals(t, a, 0.1, "number input")

	assertNoError(t, json.Unmarshal([]byte(`"250.75"`), &a), "unmarshal string")
	assertAmountEquals(t, a, 250.75, "quoted input")
}

func TestAmountDecimalArithmetic(t *testing.T) {
	// The classic float trap: 0.1 + 0.2 must equal 0.3 exactly.
	sum := amt(0.1).AddAmount(amt(0.2))
	if !sum.Equal(amt(0.3).Decimal) {
		t.Errorf("0.1 + 0.2: got %s", sum.String())
	}

	product := amt(0.1).MulAmount(amt(3))
	if !product.Equal(amt(0.3).Decimal) {
		t.Errorf("0.1 * 3: got %s", product.String())
	}
}

func TestAmountScan(t *testing.T) {
	var a Amount
	assertNoError(t, a.Scan("123.456"), "scan text")
	assertAmountEquals(t, a, 123.456, "text column")

	assertNoError(t, a.Scan(int64(42)), "scan int")
	assertAmountEquals(t, a, 42, "int column")

	assertNoError(t, a.Scan(3.5), "scan real")
	assertAmountEquals(t, a, 3.5, "real column")

	assertNoError(t, a.Scan(nil), "scan null")
	assertAmountEquals(t, a, 0, "null column")

	if err := a.Scan("not a number"); err == nil {
		t.Error("expected error scanning garbage")
	}
}

func TestAmountDatabaseValue(t *testing.T) {
	// Stored as TEXT so the decimal round-trips without float drift.
	v, err := amt(0.1).Value()
	assertNoError(t, err, "value")
	if v != "0.1" {
		t.Errorf("expected \"0.1\", got %v", v)
	}
}

func TestOrZero(t *testing.T) {
	assertAmountEquals(t, orZero(nil), 0, "nil is zero")
	assertAmountEquals(t, orZero(amountPtr(amt(7))), 7, "pointer dereferenced")
}
