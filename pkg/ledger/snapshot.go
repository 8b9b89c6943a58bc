package ledger

// LoadSnapshot reads the full position/account/price state as one read-only
// value. Trade execution computes deltas against a snapshot; the per-position
// version carried inside guards their application.
func (c *Core) LoadSnapshot() (*Snapshot, error) {
	positions, err := c.GetPositions("")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "load positions", err)
	}
	accounts, err := c.GetAccounts()
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "load accounts", err)
	}
	prices, err := c.loadPrices()
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "load prices", err)
	}
	customPrices, err := c.loadCustomPrices()
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "load custom prices", err)
	}
	fxRates, err := c.loadFXRates()
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "load fx rates", err)
	}
	return &Snapshot{
		Positions:    positions,
		Accounts:     accounts,
		Prices:       prices,
		CustomPrices: customPrices,
		FXRates:      fxRates,
	}, nil
}

// ValuedPositions values the latest snapshot, optionally filtered by account.
func (c *Core) ValuedPositions(accountID string) ([]PricedPosition, error) {
	snap, err := c.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	if accountID != "" {
		filtered := snap.Positions[:0:0]
		for _, p := range snap.Positions {
			if p.AccountID != nil && *p.AccountID == accountID {
				filtered = append(filtered, p)
			}
		}
		snap.Positions = filtered
	}
	return ValueAll(snap), nil
}

// Summary aggregates the latest valued snapshot.
func (c *Core) Summary(riskFreeRate float64) (*PortfolioSummary, error) {
	priced, err := c.ValuedPositions("")
	if err != nil {
		return nil, err
	}
	summary := Aggregate(priced, riskFreeRate)
	return &summary, nil
}
