package http

import (
	"fmt"
	"net/http"

	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/money"
	"github.com/fjod/go_pos/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	terminal *session.Terminal
}

func NewCartHandler(terminal *session.Terminal) *CartHandler {
	return &CartHandler{terminal: terminal}
}

type AddItemRequestDTO struct {
	MenuItemID string  `json:"menu_item_id"`
	Price      *string `json:"price,omitempty"`
	Quantity   int     `json:"quantity"`
}

type QuantityRequestDTO struct {
	Direction string `json:"direction"`
}

type PriceRequestDTO struct {
	Delta string `json:"delta"`
}

type DiscountRequestDTO struct {
	Mode  string `json:"mode"`
	Value string `json:"value"`
}

type ExtraFeeRequestDTO struct {
	Value string `json:"value"`
}

type CartLineDTO struct {
	domain.LineItem
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartResponseDTO struct {
	Items         []CartLineDTO     `json:"items"`
	DiscountMode  cart.DiscountMode `json:"discount_mode"`
	DiscountInput string            `json:"discount_input"`
	ExtraFeeInput string            `json:"extra_fee_input"`
	cart.Totals
}

func cartResponse(c cart.Cart) CartResponseDTO {
	s := c.Snapshot()
	out := CartResponseDTO{
		Items:         make([]CartLineDTO, 0, len(s.Items)),
		DiscountMode:  s.DiscountMode,
		DiscountInput: s.DiscountInput,
		ExtraFeeInput: s.ExtraFeeInput,
		Totals:        s.Totals,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, CartLineDTO{LineItem: it, LineTotal: it.LineTotal()})
	}
	return out
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, cartResponse(h.terminal.Checkout().Cart()))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.edit(w, http.StatusOK, cart.Cart.Clear)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.MenuItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_menu_item_id", "menu_item_id is required")
		return
	}
	if req.Quantity > cart.MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", fmt.Sprintf("quantity must be at most %d", cart.MaxQuantity))
		return
	}
	menu := h.terminal.Catalog()
	if _, ok := menu.Find(req.MenuItemID); !ok {
		respondError(w, http.StatusNotFound, "menu_item_not_found", "menu item "+req.MenuItemID+" is not on the menu")
		return
	}

	var override *decimal.Decimal
	if req.Price != nil {
		p, ok := money.Parse(*req.Price)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_price", "price must be a number")
			return
		}
		override = &p
	}

	h.edit(w, http.StatusCreated, func(c cart.Cart) cart.Cart {
		return c.AddItemByID(menu, req.MenuItemID, override, req.Quantity)
	})
}

// POST /api/v1/cart/items/{line_id}/quantity
func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "line_id")
	var req QuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	dir := cart.Direction(req.Direction)
	if dir != cart.Increase && dir != cart.Decrease {
		respondError(w, http.StatusBadRequest, "invalid_direction", "direction must be increase or decrease")
		return
	}
	if !h.lineExists(w, lineID) {
		return
	}
	h.edit(w, http.StatusOK, func(c cart.Cart) cart.Cart { return c.ChangeQuantity(lineID, dir) })
}

// POST /api/v1/cart/items/{line_id}/price
func (h *CartHandler) AdjustPrice(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "line_id")
	var req PriceRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	delta, ok := money.Parse(req.Delta)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must be a number")
		return
	}
	if !h.lineExists(w, lineID) {
		return
	}
	h.edit(w, http.StatusOK, func(c cart.Cart) cart.Cart { return c.AdjustLinePrice(lineID, delta) })
}

// PUT /api/v1/cart/discount
func (h *CartHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req DiscountRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	mode := cart.ParseDiscountMode(req.Mode)
	h.edit(w, http.StatusOK, func(c cart.Cart) cart.Cart { return c.SetDiscount(mode, req.Value) })
}

// PUT /api/v1/cart/extra-fee
func (h *CartHandler) SetExtraFee(w http.ResponseWriter, r *http.Request) {
	var req ExtraFeeRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	h.edit(w, http.StatusOK, func(c cart.Cart) cart.Cart { return c.SetExtraFee(req.Value) })
}

func (h *CartHandler) edit(w http.ResponseWriter, status int, op func(cart.Cart) cart.Cart) {
	c, err := h.terminal.Checkout().EditCart(op)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, status, cartResponse(c))
}

func (h *CartHandler) lineExists(w http.ResponseWriter, lineID string) bool {
	if _, ok := h.terminal.Checkout().Cart().Lookup(lineID); !ok {
		respondError(w, http.StatusNotFound, "line_not_found", "no cart line "+lineID)
		return false
	}
	return true
}
