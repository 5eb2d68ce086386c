package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/session"
)

type MenuHandler struct {
	terminal *session.Terminal
	timeout  time.Duration
}

func NewMenuHandler(terminal *session.Terminal, timeout time.Duration) *MenuHandler {
	return &MenuHandler{terminal: terminal, timeout: timeout}
}

type MenuResponseDTO struct {
	Categories []domain.Category `json:"categories"`
	Items      []domain.MenuItem `json:"items"`
}

// GET /api/v1/menu?category=
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, menuResponse(h.terminal.Catalog(), r.URL.Query().Get("category")))
}

// POST /api/v1/menu/refresh
func (h *MenuHandler) RefreshMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.terminal.CatalogService().Refresh(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, menuResponse(c, catalog.AllCategories))
}

// GET /api/v1/payment-methods
func (h *MenuHandler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.terminal.Checkout().PaymentMethods())
}

// GET /api/v1/orders/recent
func (h *MenuHandler) GetRecentOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.terminal.RecentOrders())
}

// GET /api/v1/kitchen/tickets
func (h *MenuHandler) GetKitchenTickets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.terminal.KitchenTickets())
}

func menuResponse(c *catalog.Catalog, category string) MenuResponseDTO {
	return MenuResponseDTO{
		Categories: c.ActiveCategories(),
		Items:      c.ItemsInCategory(category),
	}
}
