package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"packflow/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps core sentinel errors onto HTTP statuses. Unknown
// errors become a 500 with a generic message; the detail stays server-side.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidQuantity):
		writeError(w, r, err.Error(), "INVALID_QUANTITY", http.StatusBadRequest)
	case errors.Is(err, core.ErrExceedsCapacity):
		writeError(w, r, err.Error(), "EXCEEDS_CAPACITY", http.StatusConflict)
	case errors.Is(err, core.ErrNothingToForward):
		writeError(w, r, err.Error(), "NOTHING_TO_FORWARD", http.StatusConflict)
	case errors.Is(err, core.ErrDuplicatePayment):
		writeError(w, r, err.Error(), "DUPLICATE_PAYMENT", http.StatusConflict)
	case errors.Is(err, core.ErrInvalidTransition):
		writeError(w, r, err.Error(), "INVALID_TRANSITION", http.StatusConflict)
	case errors.Is(err, core.ErrBillNotCompleted):
		writeError(w, r, err.Error(), "BILL_NOT_COMPLETED", http.StatusConflict)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
