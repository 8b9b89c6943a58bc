package api

import (
	"net/http"

	"networth/pkg/ledger"
)

// Response represents a successful API response with unified format.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int                 `json:"code"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Fields    []ledger.FieldError `json:"fields,omitempty"`
}

// writeSuccess writes a successful response with data.
func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{
		Code: 0,
		Data: data,
	})
}

// writeErrorResponse writes an error response with proper HTTP status and
// error details. Validation errors carry their per-field breakdown so the
// caller can point at the offending input.
func writeErrorResponse(w http.ResponseWriter, httpStatus int, err error) {
	response := ErrorResponse{
		Code:    httpStatus,
		Message: err.Error(),
	}

	if ledgerErr, ok := err.(*ledger.Error); ok {
		response.ErrorCode = string(ledgerErr.Code)
		response.Fields = ledgerErr.Fields
		httpStatus = mapErrorCodeToHTTPStatus(ledgerErr.Code)
		response.Code = httpStatus
	}

	writeJSON(w, httpStatus, response)
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code ledger.ErrorCode) int {
	switch code {
	case ledger.ErrCodeInvalidInput, ledger.ErrCodeValidation:
		return http.StatusBadRequest
	case ledger.ErrCodeNotFound:
		return http.StatusNotFound
	case ledger.ErrCodeDuplicate, ledger.ErrCodeConflict:
		return http.StatusConflict
	case ledger.ErrCodeDatabase, ledger.ErrCodeInternal:
		return http.StatusInternalServerError
	case ledger.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
