package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPaid OrderStatus = "paid"
)

// OrderNoPrefix is prepended to the zero padded order counter.
const OrderNoPrefix = "ORD"

// Order is the snapshot submitted at checkout. Once created it belongs to the
// order API and never changes when the cart does.
type Order struct {
	ID                string           `json:"id"`
	OrderNo           string           `json:"order_no"`
	Status            OrderStatus      `json:"status"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
	Discount          decimal.Decimal  `json:"discount"`
	ExtraFee          decimal.Decimal  `json:"extra_fee"`
	GrandTotal        decimal.Decimal  `json:"grand_total"`
	PaymentMethodID   string           `json:"payment_method"`
	PaymentMethodName string           `json:"-"`
	CashReceived      *decimal.Decimal `json:"cash_received,omitempty"`
	CashChange        *decimal.Decimal `json:"cash_change,omitempty"`
	BranchID          string           `json:"branch_id"`
	CashierID         string           `json:"cashier_id"`
	ReceiptURL        string           `json:"receipt_url,omitempty"`
	Items             []OrderItem      `json:"-"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// IsCash reports whether the order carries cash handling fields.
func (o Order) IsCash() bool {
	return o.CashReceived != nil
}

type OrderItem struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	MenuItemID string          `json:"item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"qty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// FormatOrderNo renders the counter as ORD0001. Counters past 9999 simply
// grow wider.
func FormatOrderNo(n int) string {
	return fmt.Sprintf("%s%04d", OrderNoPrefix, n)
}

// ParseOrderNo reads the numeric part of an order number. ok is false when
// the value does not carry the ORD prefix; a prefix followed by no digits
// parses as 0.
func ParseOrderNo(s string) (n int, ok bool) {
	if !strings.HasPrefix(s, OrderNoPrefix) {
		return 0, false
	}
	for _, r := range strings.TrimPrefix(s, OrderNoPrefix) {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
