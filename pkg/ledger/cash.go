package ledger

import "github.com/google/uuid"

// findCashPosition locates the cash position sharing the account.
func findCashPosition(positions []Position, accountID string) *Position {
	for i := range positions {
		p := positions[i]
		if p.AccountID == nil || *p.AccountID != accountID {
			continue
		}
		if p.Class() == AssetClassCash {
			return &positions[i]
		}
	}
	return nil
}

// ApplyCashDelta applies the cash-balance consequence of a trade to the
// linked account's cash position (buy ⇒ negative delta, sell ⇒ positive).
//
// The delta is applied unconditionally even when it drives the balance
// negative; that case commits and surfaces a warning rather than rejecting
// the trade. Cash cost basis is reset to the new balance, since cash basis
// is the balance itself, not an accumulated purchase cost.
//
// When no cash position exists: sell proceeds synthesize one, while a buy
// with no funding source skips the deduction and surfaces a warning. The
// skip is a known consistency gap in the surrounding system; it is flagged
// here, not silently resolved.
func ApplyCashDelta(positions []Position, accountID string, delta Amount) CashDeltaResult {
	if delta.IsZero() {
		return CashDeltaResult{}
	}

	if existing := findCashPosition(positions, accountID); existing != nil {
		updated := *existing
		updated.Amount = existing.Amount.AddAmount(delta)
		updated.CostBasis = amountPtr(updated.Amount)
		result := CashDeltaResult{UpdatedPosition: &updated}
		if updated.Amount.IsNegative() {
			result.Warning = newWarning(WarnNegativeCash,
				"cash balance for account %s is negative (%s)", accountID, updated.Amount.String())
		}
		return result
	}

	if delta.IsPositive() {
		account := accountID
		position := Position{
			ID:           uuid.NewString(),
			Symbol:       "USD",
			DeclaredType: "cash",
			Currency:     "USD",
			AccountID:    &account,
			Amount:       delta,
			CostBasis:    amountPtr(delta),
		}
		return CashDeltaResult{NewPosition: &position}
	}

	return CashDeltaResult{
		Warning: newWarning(WarnNoFundingSource,
			"no cash position in account %s to deduct %s from; deduction skipped", accountID, delta.AbsAmount().String()),
	}
}

// settlesThroughCash reports whether a trade should trigger the linked cash
// side effect. Currently equity trades in an account context only: crypto
// wallet and manual holdings settle outside tracked cash.
func settlesThroughCash(class AssetClass, accountID *string) bool {
	return class == AssetClassEquity && accountID != nil && *accountID != ""
}
