package ledger

import (
	"time"
)

// ActionKind discriminates parsed actions.
type ActionKind string

const (
	ActionBuy            ActionKind = "buy"
	ActionSellPartial    ActionKind = "sell_partial"
	ActionSellAll        ActionKind = "sell_all"
	ActionAddCash        ActionKind = "add_cash"
	ActionRemove         ActionKind = "remove"
	ActionUpdatePosition ActionKind = "update_position"
	ActionSetPrice       ActionKind = "set_price"
	ActionUpdateCash     ActionKind = "update_cash"
)

// RawAction is the flat, untrusted payload produced by the external
// natural-language interpretation service. Every field is optional at the
// wire level; ParseAction validates per kind and narrows to a typed variant.
type RawAction struct {
	Kind         string   `json:"kind"`
	Symbol       string   `json:"symbol,omitempty"`
	Amount       *Amount  `json:"amount,omitempty"`
	SellAmount   *Amount  `json:"sell_amount,omitempty"`
	SellPercent  *float64 `json:"sell_percent,omitempty"`
	PricePerUnit *Amount  `json:"price_per_unit,omitempty"`
	SellPrice    *Amount  `json:"sell_price,omitempty"`
	TotalCost    *Amount  `json:"total_cost,omitempty"`
	Price        *Amount  `json:"price,omitempty"`
	PositionID   *string  `json:"position_id,omitempty"`
	AccountID    *string  `json:"account_id,omitempty"`
	AssetType    *string  `json:"asset_type,omitempty"`
	Currency     *string  `json:"currency,omitempty"`
	Name         *string  `json:"name,omitempty"`
	CostBasis    *Amount  `json:"cost_basis,omitempty"`
	Date         *string  `json:"date,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
	Confidence   float64  `json:"confidence"`
	Summary      string   `json:"summary,omitempty"`
}

// Action is a validated, kind-narrowed command against the ledger.
type Action interface {
	ActionKind() ActionKind
}

// BuyAction buys into an existing lot (PositionID set) or a new one.
type BuyAction struct {
	Symbol       string
	AssetType    string
	Amount       Amount
	PricePerUnit Amount
	TotalCost    *Amount
	PositionID   *string
	AccountID    *string
	Date         string
	Notes        *string
}

func (BuyAction) ActionKind() ActionKind { return ActionBuy }

// SellPartialAction sells part of a position. Exactly one of SellAmount and
// SellPercent is set; a percent is resolved against the held amount at
// execution time.
type SellPartialAction struct {
	Symbol      string
	PositionID  *string
	SellAmount  *Amount
	SellPercent *float64
	SellPrice   Amount
	Date        string
	Notes       *string
}

func (SellPartialAction) ActionKind() ActionKind { return ActionSellPartial }

// SellAllAction closes a position entirely.
type SellAllAction struct {
	Symbol     string
	PositionID *string
	SellPrice  Amount
	Date       string
	Notes      *string
}

func (SellAllAction) ActionKind() ActionKind { return ActionSellAll }

// AddCashAction tops up the cash position of an account.
type AddCashAction struct {
	AccountID string
	Amount    Amount
	Currency  string
	Date      string
	Notes     *string
}

func (AddCashAction) ActionKind() ActionKind { return ActionAddCash }

// RemoveAction deletes a position without booking a transaction.
type RemoveAction struct {
	PositionID string
}

func (RemoveAction) ActionKind() ActionKind { return ActionRemove }

// UpdatePositionAction edits mutable position fields directly.
type UpdatePositionAction struct {
	PositionID    string
	Amount        *Amount
	CostBasis     *Amount
	Name          *string
	ClassOverride *AssetClass
}

func (UpdatePositionAction) ActionKind() ActionKind { return ActionUpdatePosition }

// SetPriceAction sets a custom price that overrides the market price.
type SetPriceAction struct {
	Symbol string
	Price  Amount
}

func (SetPriceAction) ActionKind() ActionKind { return ActionSetPrice }

// UpdateCashAction sets the cash balance of an account outright.
type UpdateCashAction struct {
	AccountID string
	Amount    Amount
	Currency  string
}

func (UpdateCashAction) ActionKind() ActionKind { return ActionUpdateCash }

// ParseAction validates an untrusted RawAction and narrows it to a typed
// variant. Missing or out-of-range required fields are reported per field
// rather than guessed.
func ParseAction(raw RawAction) (Action, error) {
	switch ActionKind(raw.Kind) {
	case ActionBuy:
		return parseBuy(raw)
	case ActionSellPartial:
		return parseSellPartial(raw)
	case ActionSellAll:
		return parseSellAll(raw)
	case ActionAddCash:
		return parseAddCash(raw)
	case ActionRemove:
		return parseRemove(raw)
	case ActionUpdatePosition:
		return parseUpdatePosition(raw)
	case ActionSetPrice:
		return parseSetPrice(raw)
	case ActionUpdateCash:
		return parseUpdateCash(raw)
	case "":
		return nil, newValidationError("invalid action", FieldError{Field: "kind", Message: "required"})
	default:
		return nil, newValidationError("invalid action", FieldError{Field: "kind", Message: "unknown kind: " + raw.Kind})
	}
}

func parseBuy(raw RawAction) (Action, error) {
	var fields []FieldError
	if raw.Symbol == "" {
		fields = append(fields, FieldError{Field: "symbol", Message: "required"})
	}
	if raw.Amount == nil || !raw.Amount.IsPositive() {
		fields = append(fields, FieldError{Field: "amount", Message: "must be a positive number"})
	}
	if (raw.PricePerUnit == nil || !raw.PricePerUnit.IsPositive()) && raw.TotalCost == nil {
		fields = append(fields, FieldError{Field: "price_per_unit", Message: "must be positive when total_cost is absent"})
	}
	if raw.TotalCost != nil && raw.TotalCost.IsNegative() {
		fields = append(fields, FieldError{Field: "total_cost", Message: "must not be negative"})
	}
	fields = appendDateError(fields, raw.Date)
	if len(fields) > 0 {
		return nil, newValidationError("invalid buy action", fields...)
	}
	action := BuyAction{
		Symbol:     normalizeSymbol(raw.Symbol),
		AssetType:  stringOr(raw.AssetType, ""),
		Amount:     *raw.Amount,
		TotalCost:  raw.TotalCost,
		PositionID: raw.PositionID,
		AccountID:  raw.AccountID,
		Date:       dateOrToday(raw.Date),
		Notes:      raw.Notes,
	}
	if raw.PricePerUnit != nil {
		action.PricePerUnit = *raw.PricePerUnit
	}
	return action, nil
}

func parseSellPartial(raw RawAction) (Action, error) {
	var fields []FieldError
	if raw.Symbol == "" && raw.PositionID == nil {
		fields = append(fields, FieldError{Field: "symbol", Message: "symbol or position_id required"})
	}
	hasAmount := raw.SellAmount != nil
	hasPercent := raw.SellPercent != nil
	switch {
	case !hasAmount && !hasPercent:
		fields = append(fields, FieldError{Field: "sell_amount", Message: "sell_amount or sell_percent required"})
	case hasAmount && hasPercent:
		fields = append(fields, FieldError{Field: "sell_amount", Message: "sell_amount and sell_percent are mutually exclusive"})
	case hasAmount && !raw.SellAmount.IsPositive():
		fields = append(fields, FieldError{Field: "sell_amount", Message: "must be positive"})
	case hasPercent && (*raw.SellPercent <= 0 || *raw.SellPercent > 100):
		fields = append(fields, FieldError{Field: "sell_percent", Message: "must be in (0, 100]"})
	}
	if raw.SellPrice == nil || !raw.SellPrice.IsPositive() {
		fields = append(fields, FieldError{Field: "sell_price", Message: "must be a positive number"})
	}
	fields = appendDateError(fields, raw.Date)
	if len(fields) > 0 {
		return nil, newValidationError("invalid sell action", fields...)
	}
	return SellPartialAction{
		Symbol:      normalizeSymbol(raw.Symbol),
		PositionID:  raw.PositionID,
		SellAmount:  raw.SellAmount,
		SellPercent: raw.SellPercent,
		SellPrice:   *raw.SellPrice,
		Date:        dateOrToday(raw.Date),
		Notes:       raw.Notes,
	}, nil
}

func parseSellAll(raw RawAction) (Action, error) {
	var fields []FieldError
	if raw.Symbol == "" && raw.PositionID == nil {
		fields = append(fields, FieldError{Field: "symbol", Message: "symbol or position_id required"})
	}
	if raw.SellPrice == nil || !raw.SellPrice.IsPositive() {
		fields = append(fields, FieldError{Field: "sell_price", Message: "must be a positive number"})
	}
	fields = appendDateError(fields, raw.Date)
	if len(fields) > 0 {
		return nil, newValidationError("invalid sell action", fields...)
	}
	return SellAllAction{
		Symbol:     normalizeSymbol(raw.Symbol),
		PositionID: raw.PositionID,
		SellPrice:  *raw.SellPrice,
		Date:       dateOrToday(raw.Date),
		Notes:      raw.Notes,
	}, nil
}

func parseAddCash(raw RawAction) (Action, error) {
	var fields []FieldError
	if raw.AccountID == nil || *raw.AccountID == "" {
		fields = append(fields, FieldError{Field: "account_id", Message: "required"})
	}
	if raw.Amount == nil || !raw.Amount.IsPositive() {
		fields = append(fields, FieldError{Field: "amount", Message: "must be a positive number"})
	}
	fields = appendDateError(fields, raw.Date)
	if len(fields) > 0 {
		return nil, newValidationError("invalid add_cash action", fields...)
	}
	return AddCashAction{
		AccountID: *raw.AccountID,
		Amount:    *raw.Amount,
		Currency:  currencyOr(raw.Currency, "USD"),
		Date:      dateOrToday(raw.Date),
		Notes:     raw.Notes,
	}, nil
}

func parseRemove(raw RawAction) (Action, error) {
	if raw.PositionID == nil || *raw.PositionID == "" {
		return nil, newValidationError("invalid remove action",
			FieldError{Field: "position_id", Message: "required"})
	}
	return RemoveAction{PositionID: *raw.PositionID}, nil
}

func parseUpdatePosition(raw RawAction) (Action, error) {
	var fields []FieldError
	if raw.PositionID == nil || *raw.PositionID == "" {
		fields = append(fields, FieldError{Field: "position_id", Message: "required"})
	}
	if raw.Amount == nil && raw.CostBasis == nil && raw.Name == nil && raw.AssetType == nil {
		fields = append(fields, FieldError{Field: "amount", Message: "nothing to update"})
	}
	if raw.Amount != nil && raw.Amount.IsNegative() {
		fields = append(fields, FieldError{Field: "amount", Message: "must not be negative"})
	}
	if raw.CostBasis != nil && raw.CostBasis.IsNegative() {
		fields = append(fields, FieldError{Field: "cost_basis", Message: "must not be negative"})
	}
	var override *AssetClass
	if raw.AssetType != nil {
		class := AssetClass(normalizeDeclaredType(*raw.AssetType))
		if !isValidAssetClass(class) {
			fields = append(fields, FieldError{Field: "asset_type", Message: "unknown asset class: " + *raw.AssetType})
		} else {
			override = &class
		}
	}
	if len(fields) > 0 {
		return nil, newValidationError("invalid update_position action", fields...)
	}
	return UpdatePositionAction{
		PositionID:    *raw.PositionID,
		Amount:        raw.Amount,
		CostBasis:     raw.CostBasis,
		Name:          raw.Name,
		ClassOverride: override,
	}, nil
}

func parseSetPrice(raw RawAction) (Action, error) {
	var fields []FieldError
	if raw.Symbol == "" {
		fields = append(fields, FieldError{Field: "symbol", Message: "required"})
	}
	if raw.Price == nil || !raw.Price.IsPositive() {
		fields = append(fields, FieldError{Field: "price", Message: "must be a positive number"})
	}
	if len(fields) > 0 {
		return nil, newValidationError("invalid set_price action", fields...)
	}
	return SetPriceAction{Symbol: raw.Symbol, Price: *raw.Price}, nil
}

func parseUpdateCash(raw RawAction) (Action, error) {
	var fields []FieldError
	if raw.AccountID == nil || *raw.AccountID == "" {
		fields = append(fields, FieldError{Field: "account_id", Message: "required"})
	}
	if raw.Amount == nil {
		fields = append(fields, FieldError{Field: "amount", Message: "required"})
	}
	if len(fields) > 0 {
		return nil, newValidationError("invalid update_cash action", fields...)
	}
	return UpdateCashAction{
		AccountID: *raw.AccountID,
		Amount:    *raw.Amount,
		Currency:  currencyOr(raw.Currency, "USD"),
	}, nil
}

func appendDateError(fields []FieldError, date *string) []FieldError {
	if date == nil || *date == "" {
		return fields
	}
	if _, err := time.Parse("2006-01-02", *date); err != nil {
		return append(fields, FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
	}
	return fields
}

func dateOrToday(date *string) string {
	if date != nil && *date != "" {
		return *date
	}
	return time.Now().UTC().Format("2006-01-02")
}

func stringOr(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}

func currencyOr(v *string, fallback string) string {
	if v != nil && *v != "" {
		return normalizeCurrency(*v)
	}
	return fallback
}
