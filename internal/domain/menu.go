package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

type MenuItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	CostDefault *decimal.Decimal `json:"cost_default,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	CategoryID  string           `json:"category_id"`
	IsActive    bool             `json:"is_active"`
}

// Cost returns the default cost of the item, zero when the catalog has none.
func (m MenuItem) Cost() decimal.Decimal {
	if m.CostDefault == nil {
		return decimal.Zero
	}
	return *m.CostDefault
}

// PaymentMethod is an externally configured way of paying. The set of ids is
// data, not an enum.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Well-known cash method ids seen in payment method records.
const (
	CashMethodID      = "pm_cash"
	CashMethodAltID   = "cash"
	cashWordLatin     = "cash"
	cashWordThai      = "เงินสด"
	UnknownMethodName = "ไม่ระบุ"
)

// IsCash reports whether a payment method needs received-amount and change
// handling: a known cash id, or a display name mentioning cash in English
// (any case) or Thai.
func IsCash(m *PaymentMethod) bool {
	if m == nil {
		return false
	}
	if m.ID == CashMethodID || m.ID == CashMethodAltID {
		return true
	}
	return strings.Contains(strings.ToLower(m.Name), cashWordLatin) || strings.Contains(m.Name, cashWordThai)
}

// FindPaymentMethod returns the method with the given id or nil.
func FindPaymentMethod(methods []PaymentMethod, id string) *PaymentMethod {
	for i := range methods {
		if methods[i].ID == id {
			return &methods[i]
		}
	}
	return nil
}

// Menu is the full catalog as loaded from the backend.
type Menu struct {
	Categories []Category `json:"categories"`
	Items      []MenuItem `json:"items"`
}
