package ledger

import (
	"database/sql/driver"
	"strconv"

	"github.com/shopspring/decimal"
)

// Amount wraps decimal.Decimal for monetary and quantity values.
// JSON marshaling outputs a float64 number (compatible with frontend),
// while internal arithmetic uses precise decimal operations.
type Amount struct {
	decimal.Decimal
}

// MarshalJSON outputs as a JSON number (not a string).
func (a Amount) MarshalJSON() ([]byte, error) {
	f, _ := a.Round(8).Float64()
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// Scan implements sql.Scanner, reading from SQLite TEXT or REAL columns.
func (a *Amount) Scan(src any) error {
	if src == nil {
		a.Decimal = decimal.Zero
		return nil
	}
	switch v := src.(type) {
	case float64:
		a.Decimal = decimal.NewFromFloat(v)
		return nil
	case int64:
		a.Decimal = decimal.NewFromInt(v)
		return nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		a.Decimal = d
		return nil
	}
	return a.Decimal.Scan(src)
}

// Value implements driver.Valuer for database writes. Amounts are stored
// as TEXT so the decimal representation round-trips without float drift.
func (a Amount) Value() (driver.Value, error) {
	return a.Decimal.String(), nil
}

// NewAmount creates an Amount from a float64.
func NewAmount(f float64) Amount {
	return Amount{decimal.NewFromFloat(f)}
}

// NewAmountFromInt creates an Amount from an int64.
func NewAmountFromInt(i int64) Amount {
	return Amount{decimal.NewFromInt(i)}
}

// ZeroAmount returns the zero value.
func ZeroAmount() Amount {
	return Amount{decimal.Zero}
}

// AddAmount returns a + b.
func (a Amount) AddAmount(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal)}
}

// SubAmount returns a - b.
func (a Amount) SubAmount(b Amount) Amount {
	return Amount{a.Decimal.Sub(b.Decimal)}
}

// MulAmount returns a * b.
func (a Amount) MulAmount(b Amount) Amount {
	return Amount{a.Decimal.Mul(b.Decimal)}
}

// DivAmount returns a / b using the default division precision.
func (a Amount) DivAmount(b Amount) Amount {
	return Amount{a.Decimal.Div(b.Decimal)}
}

// AbsAmount returns |a|.
func (a Amount) AbsAmount() Amount {
	return Amount{a.Decimal.Abs()}
}

// amountPtr returns a pointer to an Amount.
func amountPtr(v Amount) *Amount {
	return &v
}

// orZero dereferences an optional Amount, treating nil as zero.
func orZero(v *Amount) Amount {
	if v == nil {
		return ZeroAmount()
	}
	return *v
}

// scanNullAmount scans a nullable column into a *Amount.
// Returns nil if src is nil/NULL.
func scanNullAmount(src any) (*Amount, error) {
	if src == nil {
		return nil, nil
	}
	var a Amount
	if err := a.Scan(src); err != nil {
		return nil, err
	}
	return &a, nil
}
