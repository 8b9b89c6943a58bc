package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"networth/pkg/ledger"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getPositions(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	result, err := h.core.ValuedPositions(accountID)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handler) addPosition(w http.ResponseWriter, r *http.Request) {
	var payload addPositionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.core.AddPosition(ledger.Position{
		Symbol:       payload.Symbol,
		Name:         payload.Name,
		DeclaredType: payload.AssetType,
		Amount:       payload.Amount,
		CostBasis:    payload.CostBasis,
		AccountID:    payload.AccountID,
		Currency:     payload.Currency,
		Side:         ledger.PositionSide(payload.Side),
		IsDebt:       payload.IsDebt,
		PurchaseDate: payload.PurchaseDate,
		Chain:        payload.Chain,
		Protocol:     payload.Protocol,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]string{"id": id})
}

func (h *handler) deletePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.core.DeletePosition(id); err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w, map[string]string{"status": "deleted"})
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	rate := h.riskFreeRate
	if raw := r.URL.Query().Get("risk_free_rate"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid risk_free_rate")
			return
		}
		rate = parsed
	}
	result, err := h.core.Summary(rate)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handler) getAccounts(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetAccounts()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handler) addAccount(w http.ResponseWriter, r *http.Request) {
	var payload addAccountPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.core.AddAccount(ledger.Account{
		AccountID:   payload.AccountID,
		AccountName: payload.AccountName,
		Kind:        payload.Kind,
		IsActive:    true,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]string{"account_id": payload.AccountID})
}

func (h *handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.core.DeleteAccount(id); err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w, map[string]string{"status": "deleted"})
}

func (h *handler) getTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ledger.TransactionFilter{
		Symbol:     query.Get("symbol"),
		PositionID: query.Get("position_id"),
		Type:       query.Get("type"),
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
		Limit:      parseIntDefault(query.Get("limit"), 100),
		Offset:     parseIntDefault(query.Get("offset"), 0),
	}
	result, err := h.core.GetTransactions(filter)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if query.Get("paged") != "1" {
		writeSuccess(w, result)
		return
	}
	total, err := h.core.GetTransactionCount(filter)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w, transactionsResponse{
		Items:  result,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

func (h *handler) executeAction(w http.ResponseWriter, r *http.Request) {
	var raw ledger.RawAction
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.ExecuteAction(raw)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handler) interpret(w http.ResponseWriter, r *http.Request) {
	var payload interpretPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	apiKey := payload.APIKey
	if apiKey == "" {
		apiKey = h.interpretAPIKey
	}
	raw, err := h.core.InterpretCommand(r.Context(), ledger.InterpretRequest{
		Text:    payload.Text,
		BaseURL: payload.BaseURL,
		APIKey:  apiKey,
		Model:   payload.Model,
	})
	if err != nil {
		// A partially understood action still comes back so the caller can
		// show it beside the field errors.
		if raw != nil {
			if ledgerErr, ok := err.(*ledger.Error); ok {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"action":     raw,
					"error":      ledgerErr.Message,
					"error_code": string(ledgerErr.Code),
					"fields":     ledgerErr.Fields,
				})
				return
			}
		}
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]any{"action": raw})
}

func (h *handler) setMarketPrice(w http.ResponseWriter, r *http.Request) {
	var payload marketPricePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.core.SetMarketPrice(payload.Symbol, payload.Price, payload.ChangePercent24h); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]string{"status": "updated"})
}

func (h *handler) setCustomPrice(w http.ResponseWriter, r *http.Request) {
	var payload customPricePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.core.SetCustomPrice(payload.Symbol, payload.Price); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]string{"status": "updated"})
}

func (h *handler) deleteCustomPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := h.core.DeleteCustomPrice(symbol); err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w, map[string]string{"status": "deleted"})
}

func (h *handler) setFXRate(w http.ResponseWriter, r *http.Request) {
	var payload fxRatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.core.SetFXRate(payload.Currency, payload.Rate); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]string{"status": "updated"})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}
