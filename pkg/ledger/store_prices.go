package ledger

import (
	"database/sql"
	"strings"
)

// SetMarketPrice inserts or updates a market price for a symbol.
func (c *Core) SetMarketPrice(symbol string, price Amount, changePercent24h *float64) error {
	if symbol == "" {
		return newValidationError("invalid price", FieldError{Field: "symbol", Message: "required"})
	}
	if !price.IsPositive() {
		return newValidationError("invalid price", FieldError{Field: "price", Message: "must be positive"})
	}
	var change any
	if changePercent24h != nil {
		change = *changePercent24h
	}
	_, err := c.db.Exec(`
		INSERT INTO prices (symbol, price, change_percent_24h, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			change_percent_24h = excluded.change_percent_24h,
			updated_at = CURRENT_TIMESTAMP
	`, priceKey(symbol), price, change)
	if err != nil {
		return WrapError(ErrCodeDatabase, "set price", err)
	}
	return nil
}

// SetCustomPrice inserts or updates a custom price, which, while present,
// overrides the market price for valuation.
func (c *Core) SetCustomPrice(symbol string, price Amount) error {
	if symbol == "" {
		return newValidationError("invalid price", FieldError{Field: "symbol", Message: "required"})
	}
	if !price.IsPositive() {
		return newValidationError("invalid price", FieldError{Field: "price", Message: "must be positive"})
	}
	_, err := c.db.Exec(`
		INSERT INTO custom_prices (symbol, price, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			updated_at = CURRENT_TIMESTAMP
	`, priceKey(symbol), price)
	if err != nil {
		return WrapError(ErrCodeDatabase, "set custom price", err)
	}
	return nil
}

// DeleteCustomPrice removes a custom price, restoring market-price valuation.
func (c *Core) DeleteCustomPrice(symbol string) error {
	result, err := c.db.Exec("DELETE FROM custom_prices WHERE symbol = ?", priceKey(symbol))
	if err != nil {
		return WrapError(ErrCodeDatabase, "delete custom price", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return WrapError(ErrCodeDatabase, "delete custom price", err)
	}
	if affected == 0 {
		return NewError(ErrCodeNotFound, "no custom price for symbol: "+symbol)
	}
	return nil
}

// SetFXRate inserts or updates a currency→USD rate.
func (c *Core) SetFXRate(currency string, rate Amount) error {
	if currency == "" {
		return newValidationError("invalid fx rate", FieldError{Field: "currency", Message: "required"})
	}
	if !rate.IsPositive() {
		return newValidationError("invalid fx rate", FieldError{Field: "rate", Message: "must be positive"})
	}
	_, err := c.db.Exec(`
		INSERT INTO fx_rates (currency, rate, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(currency) DO UPDATE SET
			rate = excluded.rate,
			updated_at = CURRENT_TIMESTAMP
	`, normalizeCurrency(currency), rate)
	if err != nil {
		return WrapError(ErrCodeDatabase, "set fx rate", err)
	}
	return nil
}

func (c *Core) loadPrices() (map[string]Quote, error) {
	rows, err := c.db.Query("SELECT symbol, price, change_percent_24h FROM prices")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := map[string]Quote{}
	for rows.Next() {
		var symbol string
		var q Quote
		var change sql.NullFloat64
		if err := rows.Scan(&symbol, &q.Price, &change); err != nil {
			return nil, err
		}
		if change.Valid {
			v := change.Float64
			q.ChangePercent24h = &v
		}
		prices[symbol] = q
	}
	return prices, rows.Err()
}

func (c *Core) loadCustomPrices() (map[string]Amount, error) {
	rows, err := c.db.Query("SELECT symbol, price FROM custom_prices")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := map[string]Amount{}
	for rows.Next() {
		var symbol string
		var price Amount
		if err := rows.Scan(&symbol, &price); err != nil {
			return nil, err
		}
		prices[symbol] = price
	}
	return prices, rows.Err()
}

func (c *Core) loadFXRates() (map[string]Amount, error) {
	rows, err := c.db.Query("SELECT currency, rate FROM fx_rates")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := map[string]Amount{}
	for rows.Next() {
		var currency string
		var rate Amount
		if err := rows.Scan(&currency, &rate); err != nil {
			return nil, err
		}
		rates[currency] = rate
	}
	return rates, rows.Err()
}

// priceKey lower-cases price map keys.
func priceKey(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}
