package api

import "networth/pkg/ledger"

type addAccountPayload struct {
	AccountID   string  `json:"account_id"`
	AccountName string  `json:"account_name"`
	Kind        *string `json:"kind"`
}

type addPositionPayload struct {
	Symbol       string         `json:"symbol"`
	Name         *string        `json:"name"`
	AssetType    string         `json:"asset_type"`
	Amount       ledger.Amount  `json:"amount"`
	CostBasis    *ledger.Amount `json:"cost_basis"`
	AccountID    *string        `json:"account_id"`
	Currency     string         `json:"currency"`
	Side         string         `json:"side"`
	IsDebt       bool           `json:"is_debt"`
	PurchaseDate *string        `json:"purchase_date"`
	Chain        *string        `json:"chain"`
	Protocol     *string        `json:"protocol"`
}

type interpretPayload struct {
	Text    string `json:"text"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type customPricePayload struct {
	Symbol string        `json:"symbol"`
	Price  ledger.Amount `json:"price"`
}

type marketPricePayload struct {
	Symbol           string        `json:"symbol"`
	Price            ledger.Amount `json:"price"`
	ChangePercent24h *float64      `json:"change_percent_24h"`
}

type fxRatePayload struct {
	Currency string        `json:"currency"`
	Rate     ledger.Amount `json:"rate"`
}

type transactionsResponse struct {
	Items  []ledger.Transaction `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}
