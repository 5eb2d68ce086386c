package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_pos/internal/checkout"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/session"
)

type CheckoutHandler struct {
	terminal *session.Terminal
	timeout  time.Duration
}

func NewCheckoutHandler(terminal *session.Terminal, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{terminal: terminal, timeout: timeout}
}

type SelectMethodRequestDTO struct {
	PaymentMethodID string `json:"payment_method_id"`
}

type CashReceivedRequestDTO struct {
	CashReceived string `json:"cash_received"`
}

type ConfirmResponseDTO struct {
	Order        *domain.Order `json:"order"`
	ReceiptURL   string        `json:"receipt_url,omitempty"`
	ReceiptError string        `json:"receipt_error,omitempty"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.terminal.Checkout().View())
}

// POST /api/v1/checkout/open
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	respondView(w)(h.terminal.Checkout().Open())
}

// POST /api/v1/checkout/method
func (h *CheckoutHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	var req SelectMethodRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	respondView(w)(h.terminal.Checkout().SelectMethod(req.PaymentMethodID))
}

// POST /api/v1/checkout/cash
func (h *CheckoutHandler) SetCashReceived(w http.ResponseWriter, r *http.Request) {
	var req CashReceivedRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	respondView(w)(h.terminal.Checkout().SetCashReceived(req.CashReceived))
}

// POST /api/v1/checkout/cancel
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	respondView(w)(h.terminal.Checkout().Cancel())
}

// POST /api/v1/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.terminal.Confirm(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, confirmResponse(result))
}

// GET /api/v1/receipts/last.png
func (h *CheckoutHandler) LastReceipt(w http.ResponseWriter, r *http.Request) {
	result := h.terminal.Checkout().LastResult()
	if result == nil || len(result.ReceiptPNG) == 0 {
		respondError(w, http.StatusNotFound, "receipt_not_found", "no receipt has been issued yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.ReceiptPNG)))
	w.Header().Set("Content-Disposition", `inline; filename="`+result.Receipt.FileName()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.ReceiptPNG)
}

func respondView(w http.ResponseWriter) func(checkout.View, error) {
	return func(v checkout.View, err error) {
		if err != nil {
			handleError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, v)
	}
}

func confirmResponse(result *checkout.Result) ConfirmResponseDTO {
	resp := ConfirmResponseDTO{
		Order:      result.Order,
		ReceiptURL: result.ReceiptURL,
	}
	if result.ReceiptErr != nil {
		resp.ReceiptError = result.ReceiptErr.Error()
	}
	return resp
}
