package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/checkout"
	"github.com/fjod/go_pos/internal/report"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var errBadQuery = errors.New("invalid query parameter")

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleError maps domain errors to HTTP status codes.
func handleError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrNoPaymentMethod):
		respondError(w, http.StatusUnprocessableEntity, "no_payment_method", err.Error())
	case errors.Is(err, checkout.ErrInsufficientCash):
		respondError(w, http.StatusUnprocessableEntity, "insufficient_cash", err.Error())
	case errors.Is(err, checkout.ErrValidation), errors.Is(err, report.ErrInvalidEntry):
		respondError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, errBadQuery):
		respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, report.ErrUnknownPeriod):
		respondError(w, http.StatusBadRequest, "invalid_period", err.Error())
	case errors.Is(err, checkout.ErrOrderNotPersisted):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   checkout.ErrOrderNotPersisted.Error(),
			Code:    "order_not_saved",
			Details: err.Error(),
		})
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, http.StatusServiceUnavailable, "backend_unavailable", err.Error())
	case errors.As(err, &apiErr):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   apiErr.Message,
			Code:    "backend_error",
			Details: apiErr.Details,
		})
	default:
		zap.L().Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
