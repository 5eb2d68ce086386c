// Package cart is the order entry engine of the till: line items plus the
// bill level discount and extra fee. A Cart is a value; every operation
// returns a new Cart and leaves the receiver untouched, and totals are
// computed from the lines whenever they are read.
package cart

import (
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/money"
	"github.com/shopspring/decimal"
)

type DiscountMode string

const (
	DiscountAmount  DiscountMode = "amount"
	DiscountPercent DiscountMode = "percent"
)

// ParseDiscountMode maps user input to a mode; anything but "percent" is an
// amount discount.
func ParseDiscountMode(s string) DiscountMode {
	if DiscountMode(s) == DiscountPercent {
		return DiscountPercent
	}
	return DiscountAmount
}

type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

const defaultAdjustmentInput = "0"

// MaxQuantity is the most units one line can hold.
const MaxQuantity = 9999

var hundred = decimal.NewFromInt(100)

type Cart struct {
	items         []domain.LineItem
	discountMode  DiscountMode
	discountInput string
	extraFeeInput string
}

// Totals are the derived amounts of a cart.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountValue decimal.Decimal `json:"discount"`
	ExtraFee      decimal.Decimal `json:"extra_fee"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// New returns an empty cart with an amount discount of "0" and no fee.
func New() Cart {
	return Cart{
		discountMode:  DiscountAmount,
		discountInput: defaultAdjustmentInput,
		extraFeeInput: defaultAdjustmentInput,
	}
}

// Items returns a copy of the lines in display order.
func (c Cart) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c Cart) Len() int      { return len(c.items) }
func (c Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c Cart) DiscountMode() DiscountMode {
	if c.discountMode == "" {
		return DiscountAmount
	}
	return c.discountMode
}

func (c Cart) DiscountInput() string { return c.discountInput }
func (c Cart) ExtraFeeInput() string { return c.extraFeeInput }

// Lookup finds a line by its id.
func (c Cart) Lookup(lineID string) (domain.LineItem, bool) {
	if i := c.indexOf(lineID); i >= 0 {
		return c.items[i], true
	}
	return domain.LineItem{}, false
}

// Totals recomputes subtotal, discount, fee and grand total from the lines
// and the raw adjustment inputs. Unparsable inputs count as 0, and so does
// a fee too large to be finite.
func (c Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, it := range c.items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	// Overflowing inputs clamp the way an infinite discount would.
	var discount decimal.Decimal
	if c.DiscountMode() == DiscountPercent {
		discount = subtotal.Mul(money.ParseCapped(c.discountInput, hundred)).Div(hundred)
	} else {
		discount = money.ParseCapped(c.discountInput, subtotal)
	}
	discount = money.NonNegative(money.Min(subtotal, discount))

	fee := money.NonNegative(money.ParseOrZero(c.extraFeeInput))
	grand := money.NonNegative(subtotal.Sub(discount).Add(fee))

	return Totals{
		Subtotal:      subtotal,
		DiscountValue: discount,
		ExtraFee:      fee,
		GrandTotal:    grand,
	}
}

// AddItem puts qty units of a menu item on the bill. overridePrice, when
// set, replaces the catalog price; negative prices are clamped to 0. qty
// below 1 counts as 1. A line with the same item and price is merged, and no
// line grows past MaxQuantity.
func (c Cart) AddItem(item *domain.MenuItem, overridePrice *decimal.Decimal, qty int) Cart {
	if item == nil {
		return c
	}
	price := item.Price
	if overridePrice != nil {
		price = *overridePrice
	}
	price = money.NonNegative(price)
	qty = clampQuantity(qty)

	id := domain.LineID(item.ID, price)
	next := c.clone()
	if i := next.indexOf(id); i >= 0 {
		next.items[i].Quantity = clampQuantity(next.items[i].Quantity + qty)
		return next
	}
	next.items = append(next.items, domain.LineItem{
		LineID:     id,
		MenuItemID: item.ID,
		Name:       item.Name,
		UnitPrice:  price,
		Cost:       item.Cost(),
		Quantity:   qty,
	})
	return next
}

// MenuFinder looks up catalog items by id.
type MenuFinder interface {
	Find(menuItemID string) (*domain.MenuItem, bool)
}

// AddItemByID resolves the item through the catalog first. Unknown ids leave
// the cart unchanged.
func (c Cart) AddItemByID(menu MenuFinder, menuItemID string, overridePrice *decimal.Decimal, qty int) Cart {
	if menu == nil {
		return c
	}
	item, ok := menu.Find(menuItemID)
	if !ok {
		return c
	}
	return c.AddItem(item, overridePrice, qty)
}

// ChangeQuantity steps a line up or down by one. Going below 1 removes the
// line.
func (c Cart) ChangeQuantity(lineID string, d Direction) Cart {
	i := c.indexOf(lineID)
	if i < 0 {
		return c
	}
	next := c.clone()
	switch d {
	case Increase:
		next.items[i].Quantity = clampQuantity(next.items[i].Quantity + 1)
	case Decrease:
		next.items[i].Quantity--
		if next.items[i].Quantity < 1 {
			next.items = append(next.items[:i], next.items[i+1:]...)
		}
	}
	return next
}

// AdjustLinePrice moves the unit price of a line by delta, never below 0.
// The line keeps the id it was created with.
func (c Cart) AdjustLinePrice(lineID string, delta decimal.Decimal) Cart {
	i := c.indexOf(lineID)
	if i < 0 {
		return c
	}
	next := c.clone()
	next.items[i].UnitPrice = money.NonNegative(next.items[i].UnitPrice.Add(delta))
	return next
}

// SetDiscount stores the mode and the raw input as typed.
func (c Cart) SetDiscount(mode DiscountMode, raw string) Cart {
	next := c.clone()
	next.discountMode = mode
	next.discountInput = raw
	return next
}

func (c Cart) SetDiscountMode(mode DiscountMode) Cart {
	return c.SetDiscount(mode, c.discountInput)
}

func (c Cart) SetDiscountInput(raw string) Cart {
	return c.SetDiscount(c.DiscountMode(), raw)
}

// SetExtraFee stores the raw fee input as typed.
func (c Cart) SetExtraFee(raw string) Cart {
	next := c.clone()
	next.extraFeeInput = raw
	return next
}

// Clear drops every line and resets both adjustments.
func (c Cart) Clear() Cart {
	return New()
}

// Snapshot is a frozen copy of a cart with its totals.
type Snapshot struct {
	Items         []domain.LineItem `json:"items"`
	DiscountMode  DiscountMode      `json:"discount_mode"`
	DiscountInput string            `json:"discount_input"`
	ExtraFeeInput string            `json:"extra_fee_input"`
	Totals
}

func (c Cart) Snapshot() Snapshot {
	return Snapshot{
		Items:         c.Items(),
		DiscountMode:  c.DiscountMode(),
		DiscountInput: c.discountInput,
		ExtraFeeInput: c.extraFeeInput,
		Totals:        c.Totals(),
	}
}

func clampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxQuantity:
		return MaxQuantity
	}
	return q
}

func (c Cart) indexOf(lineID string) int {
	for i := range c.items {
		if c.items[i].LineID == lineID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	next := c
	next.items = c.Items()
	return next
}
