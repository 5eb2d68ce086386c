// Package receipt draws the 3:4 receipt image handed to the customer after
// checkout.
package receipt

import (
	"fmt"
	"time"

	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
)

// Shop is the static header and footer of every receipt.
type Shop struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Footer  string `json:"footer"`
}

type Line struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"total"`
}

// Snapshot is everything printed on a receipt. It is a plain value so it
// can be stored and rendered again later.
type Snapshot struct {
	OrderNo       string          `json:"order_no"`
	IssuedAt      time.Time       `json:"issued_at"`
	PaymentMethod string          `json:"payment_method"`
	IsCash        bool            `json:"is_cash"`
	CashReceived  decimal.Decimal `json:"cash_received"`
	CashChange    decimal.Decimal `json:"cash_change"`
	Items         []Line          `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	ExtraFee      decimal.Decimal `json:"extra_fee"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Shop          Shop            `json:"shop"`
}

// NewSnapshot builds the receipt for a submitted order from the cart as it
// was at confirmation.
func NewSnapshot(order *domain.Order, c cart.Snapshot, shop Shop) Snapshot {
	s := Snapshot{
		OrderNo:       order.OrderNo,
		IssuedAt:      order.CreatedAt,
		PaymentMethod: order.PaymentMethodName,
		Subtotal:      c.Subtotal,
		Discount:      c.DiscountValue,
		ExtraFee:      c.ExtraFee,
		GrandTotal:    c.GrandTotal,
		Shop:          shop,
	}
	if s.PaymentMethod == "" {
		s.PaymentMethod = order.PaymentMethodID
	}
	if order.IsCash() {
		s.IsCash = true
		s.CashReceived = *order.CashReceived
		if order.CashChange != nil {
			s.CashChange = *order.CashChange
		}
	}
	for _, it := range c.Items {
		s.Items = append(s.Items, Line{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		})
	}
	return s
}

// FileName is the storage object name of the receipt image.
func (s Snapshot) FileName() string {
	return s.OrderNo + ".png"
}

// ThaiTimestamp formats t the way the Thai locale does: day/month/Buddhist
// year and a 24h clock.
func ThaiTimestamp(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d %02d:%02d:%02d",
		t.Day(), int(t.Month()), t.Year()+543, t.Hour(), t.Minute(), t.Second())
}
