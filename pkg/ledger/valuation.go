package ledger

import "strings"

// lookupQuote resolves a market quote for a symbol, trying the lower-case
// key first and the upper-case key second to tolerate inconsistent casing
// across providers.
func lookupQuote(symbol string, prices map[string]Quote) (Quote, bool) {
	if q, ok := prices[strings.ToLower(symbol)]; ok {
		return q, true
	}
	if q, ok := prices[strings.ToUpper(symbol)]; ok {
		return q, true
	}
	return Quote{}, false
}

func lookupCustomPrice(symbol string, custom map[string]Amount) (Amount, bool) {
	if p, ok := custom[strings.ToLower(symbol)]; ok {
		return p, true
	}
	if p, ok := custom[strings.ToUpper(symbol)]; ok {
		return p, true
	}
	return Amount{}, false
}

// fxRateFor returns the currency→USD rate, falling back to 1.0 when the
// rate table has no entry. Valuation runs continuously over possibly-stale
// or partial data, so a missing rate degrades gracefully rather than failing.
func fxRateFor(currency string, rates map[string]Amount) Amount {
	currency = normalizeCurrency(currency)
	if currency == "" || currency == "USD" {
		return NewAmountFromInt(1)
	}
	if r, ok := rates[currency]; ok && !r.IsZero() {
		return r
	}
	if r, ok := rates[strings.ToLower(currency)]; ok && !r.IsZero() {
		return r
	}
	return NewAmountFromInt(1)
}

// ValuePosition resolves a current price and derived value for one position.
// Resolution order: custom price → market price → no price (value zero).
// Cash positions with no price at all are valued at par before the FX
// multiply, so an unfunded rate table never zeroes out bank balances.
// Total for any well-formed input; it never returns an error.
func ValuePosition(p Position, prices map[string]Quote, customPrices map[string]Amount, fxRates map[string]Amount) PricedPosition {
	class := p.Class()

	priced := PricedPosition{Position: p, ResolvedClass: class}

	var price Amount
	var changePct *float64
	if custom, ok := lookupCustomPrice(p.Symbol, customPrices); ok {
		price = custom
	} else if quote, ok := lookupQuote(p.Symbol, prices); ok {
		price = quote.Price
		changePct = quote.ChangePercent24h
	} else if class == AssetClassCash {
		price = NewAmountFromInt(1)
	} else {
		// No price available. Value stays zero, no error.
		priced.CurrentPrice = ZeroAmount()
		priced.Value = ZeroAmount()
		priced.Change24h = ZeroAmount()
		return priced
	}

	value := p.Amount.MulAmount(price)
	if class == AssetClassCash {
		value = value.MulAmount(fxRateFor(p.Currency, fxRates))
	}

	priced.CurrentPrice = price
	priced.Value = value
	priced.Change24h = ZeroAmount()
	if changePct != nil {
		pct := *changePct
		priced.ChangePercent24h = pct
		if pct > -100 {
			// Change relative to the value 24h ago: v - v/(1+pct/100).
			prior := value.DivAmount(NewAmount(1 + pct/100))
			priced.Change24h = value.SubAmount(prior)
		}
	}
	return priced
}

// ValueAll values every position in the snapshot. Pure; re-running over an
// unchanged snapshot yields identical output.
func ValueAll(snap *Snapshot) []PricedPosition {
	priced := make([]PricedPosition, 0, len(snap.Positions))
	for _, p := range snap.Positions {
		priced = append(priced, ValuePosition(p, snap.Prices, snap.CustomPrices, snap.FXRates))
	}
	return priced
}
