package ledger

import "sort"

// DefaultTopPositions is the top-N size used by Aggregate.
const DefaultTopPositions = 5

// Aggregate folds a valued position set into net worth, category totals,
// exposure, and leverage. Pure, total, side-effect free; an empty input
// yields a zeroed summary.
//
// Cash is excluded from the invested totals from the start and tracked
// separately as cash equivalents, never added then subtracted: net worth
// here is invested assets minus debts, with cash balances reported beside
// it (and in ByClass) rather than inside it.
func Aggregate(priced []PricedPosition, riskFreeRate float64) PortfolioSummary {
	summary := PortfolioSummary{
		GrossAssets:                ZeroAmount(),
		TotalDebts:                 ZeroAmount(),
		NetWorth:                   ZeroAmount(),
		ByClass:                    map[AssetClass]Amount{},
		SpotLongValue:              ZeroAmount(),
		CashEquivalentsForLeverage: ZeroAmount(),
		PerpsLongExposure:          ZeroAmount(),
		PerpsShortExposure:         ZeroAmount(),
		CashYieldAnnual:            ZeroAmount(),
		TopPositions:               []PricedPosition{},
	}

	for _, p := range priced {
		value := p.Value
		if p.IsDebt || (p.ResolvedClass == AssetClassOther && value.IsNegative() && p.DeclaredType == "debt") {
			summary.TotalDebts = summary.TotalDebts.AddAmount(value.AbsAmount())
			continue
		}
		summary.ByClass[p.ResolvedClass] = summary.ByClass[p.ResolvedClass].AddAmount(value)

		switch {
		case p.Side == SideLong:
			summary.GrossAssets = summary.GrossAssets.AddAmount(value)
			summary.PerpsLongExposure = summary.PerpsLongExposure.AddAmount(value.AbsAmount())
		case p.Side == SideShort:
			summary.GrossAssets = summary.GrossAssets.AddAmount(value)
			summary.PerpsShortExposure = summary.PerpsShortExposure.AddAmount(value.AbsAmount())
		case p.ResolvedClass == AssetClassCash:
			summary.CashEquivalentsForLeverage = summary.CashEquivalentsForLeverage.AddAmount(value)
		default:
			summary.GrossAssets = summary.GrossAssets.AddAmount(value)
			summary.SpotLongValue = summary.SpotLongValue.AddAmount(value)
		}
	}

	summary.NetWorth = summary.GrossAssets.SubAmount(summary.TotalDebts)
	summary.LongExposure = summary.SpotLongValue.AddAmount(summary.PerpsLongExposure)
	summary.ShortExposure = summary.PerpsShortExposure
	summary.NetExposure = summary.LongExposure.SubAmount(summary.ShortExposure)
	summary.GrossExposure = summary.LongExposure.AddAmount(summary.ShortExposure)
	summary.CashYieldAnnual = summary.CashEquivalentsForLeverage.MulAmount(NewAmount(riskFreeRate))

	if summary.NetWorth.IsPositive() {
		leverage, _ := summary.GrossExposure.DivAmount(summary.NetWorth).Float64()
		summary.Leverage = &leverage
	}

	holdings := make([]PricedPosition, 0, len(priced))
	for _, p := range priced {
		if !p.IsDebt {
			holdings = append(holdings, p)
		}
	}
	summary.TopPositions = TopPositions(holdings, DefaultTopPositions)
	return summary
}

// TopPositions returns the n largest positions by value, descending, with
// ties broken by symbol ascending for deterministic output.
func TopPositions(priced []PricedPosition, n int) []PricedPosition {
	sorted := make([]PricedPosition, len(priced))
	copy(sorted, priced)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Value.Equal(sorted[j].Value.Decimal) {
			return sorted[i].Value.GreaterThan(sorted[j].Value.Decimal)
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})
	if n < 0 {
		n = 0
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
