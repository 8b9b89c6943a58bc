package ledger

// AssetClass is the resolved classification of a position.
type AssetClass string

const (
	AssetClassCrypto AssetClass = "crypto"
	AssetClassEquity AssetClass = "equity"
	AssetClassCash   AssetClass = "cash"
	AssetClassOther  AssetClass = "other"
)

// AssetClasses lists all valid classes.
var AssetClasses = []AssetClass{AssetClassCrypto, AssetClassEquity, AssetClassCash, AssetClassOther}

// PositionSide marks perp direction. Spot positions carry no side.
type PositionSide string

const (
	SideLong  PositionSide = "long"
	SideShort PositionSide = "short"
)

// TransactionTypes lists valid ledger-mutating transaction types.
var TransactionTypes = []string{"BUY", "SELL"}

// Position represents one held unit of an asset. The engine only reads
// positions and returns modified copies; it never mutates in place.
type Position struct {
	ID            string       `json:"id"`
	Symbol        string       `json:"symbol"`
	Name          *string      `json:"name"`
	DeclaredType  string       `json:"declared_type"`
	ClassOverride *AssetClass  `json:"class_override"`
	Amount        Amount       `json:"amount"`
	CostBasis     *Amount      `json:"cost_basis"`
	AccountID     *string      `json:"account_id"`
	Currency      string       `json:"currency"`
	Side          PositionSide `json:"side,omitempty"`
	IsDebt        bool         `json:"is_debt"`
	PurchaseDate  *string      `json:"purchase_date"`
	Chain         *string      `json:"chain"`
	Protocol      *string      `json:"protocol"`
	Version       int64        `json:"version"`
	CreatedAt     *string      `json:"created_at"`
	UpdatedAt     *string      `json:"updated_at"`
}

// Class resolves the position's asset class through the classifier.
func (p Position) Class() AssetClass {
	return Classify(p.Symbol, p.DeclaredType, p.ClassOverride)
}

// AvgCost returns cost basis per currently held unit, recomputed on demand,
// never stored. Returns zero when amount is zero or cost basis is absent.
func (p Position) AvgCost() Amount {
	if p.CostBasis == nil || p.Amount.IsZero() {
		return ZeroAmount()
	}
	return p.CostBasis.DivAmount(p.Amount)
}

// Account is a named holding context (brokerage, bank, wallet, exchange).
type Account struct {
	AccountID   string  `json:"account_id"`
	AccountName string  `json:"account_name"`
	Kind        *string `json:"kind"`
	Connector   string  `json:"connector"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   *string `json:"created_at"`
}

// ConnectorManual marks accounts whose positions are maintained by hand.
const ConnectorManual = "manual"

// Transaction is an immutable, append-only record of a ledger-mutating
// event. Once created it is never mutated or deleted; reversal requires an
// explicit compensating transaction.
type Transaction struct {
	ID                   string  `json:"id"`
	Type                 string  `json:"type"`
	Symbol               string  `json:"symbol"`
	Amount               Amount  `json:"amount"`
	PricePerUnit         Amount  `json:"price_per_unit"`
	TotalValue           Amount  `json:"total_value"`
	CostBasisAtExecution Amount  `json:"cost_basis_at_execution"`
	PositionID           string  `json:"position_id"`
	Date                 string  `json:"date"`
	Notes                *string `json:"notes"`
	CreatedAt            *string `json:"created_at"`
}

// RealizedPnL derives sale proceeds minus the cost basis attributed to the
// sold units. Only meaningful for SELL transactions.
func (t Transaction) RealizedPnL() Amount {
	return t.TotalValue.SubAmount(t.CostBasisAtExecution)
}

// Quote is a market price snapshot entry for one symbol.
type Quote struct {
	Price            Amount   `json:"price"`
	ChangePercent24h *float64 `json:"change_percent_24h"`
}

// Snapshot is the full read-only state the engine operates over. Price maps
// are keyed by lower-cased symbol; FX rates by currency code (currency→USD).
type Snapshot struct {
	Positions    []Position
	Accounts     []Account
	Prices       map[string]Quote
	CustomPrices map[string]Amount
	FXRates      map[string]Amount
}

// PricedPosition is a position with a resolved price and derived value.
type PricedPosition struct {
	Position
	ResolvedClass    AssetClass `json:"asset_class"`
	CurrentPrice     Amount     `json:"current_price"`
	Value            Amount     `json:"value"`
	Change24h        Amount     `json:"change_24h"`
	ChangePercent24h float64    `json:"change_percent_24h"`
}

// PortfolioSummary is the aggregate view derived from a valued snapshot.
type PortfolioSummary struct {
	// GrossAssets totals invested (non-debt, non-cash) position values.
	// Cash equivalents are carried separately, never added then subtracted.
	GrossAssets Amount `json:"gross_assets"`
	TotalDebts  Amount `json:"total_debts"`
	NetWorth    Amount `json:"net_worth"`

	ByClass map[AssetClass]Amount `json:"by_class"`

	SpotLongValue              Amount `json:"spot_long_value"`
	CashEquivalentsForLeverage Amount `json:"cash_equivalents_for_leverage"`
	PerpsLongExposure          Amount `json:"perps_long_exposure"`
	PerpsShortExposure         Amount `json:"perps_short_exposure"`

	LongExposure  Amount `json:"long_exposure"`
	ShortExposure Amount `json:"short_exposure"`
	NetExposure   Amount `json:"net_exposure"`
	GrossExposure Amount `json:"gross_exposure"`

	// Leverage is gross exposure over net worth. Nil means undefined
	// (net worth <= 0); JSON renders null, never NaN.
	Leverage *float64 `json:"leverage"`

	// CashYieldAnnual projects annual yield on cash equivalents at the
	// supplied risk-free rate.
	CashYieldAnnual Amount `json:"cash_yield_annual"`

	TopPositions []PricedPosition `json:"top_positions"`
}

// TradeResult is the delta computed by one trade-execution operation,
// relative to the snapshot it was computed against. Exactly one of
// UpdatedPosition, NewPosition, or RemovedPositionID is set.
type TradeResult struct {
	Transaction       Transaction `json:"transaction"`
	UpdatedPosition   *Position   `json:"updated_position,omitempty"`
	NewPosition       *Position   `json:"new_position,omitempty"`
	RemovedPositionID string      `json:"removed_position_id,omitempty"`
}

// CashDeltaResult is the linked cash-account consequence of a trade.
type CashDeltaResult struct {
	UpdatedPosition *Position `json:"updated_position,omitempty"`
	NewPosition     *Position `json:"new_position,omitempty"`
	Warning         *Warning  `json:"warning,omitempty"`
}
