package domain

import (
	"github.com/fjod/go_pos/internal/money"
	"github.com/shopspring/decimal"
)

// LineItem is one row of the current order: a menu item at one effective
// unit price. Name and Cost are copied from the catalog when the line is
// created.
type LineItem struct {
	LineID     string          `json:"line_id"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Cost       decimal.Decimal `json:"cost"`
	Quantity   int             `json:"quantity"`
}

// LineTotal is always derived from the unit price and the quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineID keys a line by menu item and effective price, so the same item at
// two prices stays on two lines.
func LineID(menuItemID string, price decimal.Decimal) string {
	return menuItemID + "__" + money.Canonical(price)
}
