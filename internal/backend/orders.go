package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
)

// orderRecord is the body of POST /orders. Amounts go out as JSON numbers.
type orderRecord struct {
	ID            string   `json:"id"`
	OrderNo       string   `json:"order_no"`
	Status        string   `json:"status"`
	Subtotal      float64  `json:"subtotal"`
	Discount      float64  `json:"discount"`
	ExtraFee      float64  `json:"extra_fee"`
	GrandTotal    float64  `json:"grand_total"`
	PaymentMethod string   `json:"payment_method"`
	BranchID      string   `json:"branch_id"`
	CashierID     string   `json:"cashier_id"`
	CashReceived  *float64 `json:"cash_received,omitempty"`
	CashChange    *float64 `json:"cash_change,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type orderItemRecord struct {
	ID         string  `json:"id"`
	OrderID    string  `json:"order_id"`
	ItemID     string  `json:"item_id"`
	Name       string  `json:"name"`
	Qty        int     `json:"qty"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	CreatedAt  string  `json:"created_at"`
}

func toOrderRecord(o *domain.Order) orderRecord {
	return orderRecord{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		Status:        string(o.Status),
		Subtotal:      o.Subtotal.InexactFloat64(),
		Discount:      o.Discount.InexactFloat64(),
		ExtraFee:      o.ExtraFee.InexactFloat64(),
		GrandTotal:    o.GrandTotal.InexactFloat64(),
		PaymentMethod: o.PaymentMethodID,
		BranchID:      o.BranchID,
		CashierID:     o.CashierID,
		CashReceived:  optionalFloat(o.CashReceived),
		CashChange:    optionalFloat(o.CashChange),
		CreatedAt:     timestamp(o.CreatedAt),
		UpdatedAt:     timestamp(o.UpdatedAt),
	}
}

func toOrderItemRecord(it *domain.OrderItem) orderItemRecord {
	return orderItemRecord{
		ID:         it.ID,
		OrderID:    it.OrderID,
		ItemID:     it.MenuItemID,
		Name:       it.Name,
		Qty:        it.Quantity,
		UnitPrice:  it.UnitPrice.InexactFloat64(),
		TotalPrice: it.LineTotal.InexactFloat64(),
		CreatedAt:  timestamp(it.CreatedAt),
	}
}

func optionalFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// CreateOrder posts the order and returns the stored record. Fields the
// backend leaves out keep the submitted values.
func (c *Client) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/orders", toOrderRecord(order))
	if err != nil {
		return nil, err
	}
	stored, err := decodeRecord[domain.Order](body)
	if err != nil {
		return nil, fmt.Errorf("create order %s: %w", order.OrderNo, err)
	}
	if stored.ID == "" {
		return nil, fmt.Errorf("create order %s: %w", order.OrderNo, ErrEmptyResponse)
	}
	merged := *order
	merged.ID = stored.ID
	if stored.OrderNo != "" {
		merged.OrderNo = stored.OrderNo
	}
	return &merged, nil
}

func (c *Client) CreateOrderItem(ctx context.Context, item *domain.OrderItem) (*domain.OrderItem, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/order-items", toOrderItemRecord(item))
	if err != nil {
		return nil, err
	}
	stored, err := decodeRecord[domain.OrderItem](body)
	if err != nil {
		return nil, fmt.Errorf("create order item %s: %w", item.MenuItemID, err)
	}
	merged := *item
	if stored.ID != "" {
		merged.ID = stored.ID
	}
	return &merged, nil
}

// UpdateOrder patches the given fields of an order.
func (c *Client) UpdateOrder(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.sendJSON(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), fields)
	return err
}

// GetLatestOrderNo returns the most recent order number, "" when there are
// no orders yet.
func (c *Client) GetLatestOrderNo(ctx context.Context) (string, error) {
	body, err := c.getJSON(ctx, "/orders/latest", nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		LatestOrderNo *string `json:"latestOrderNo"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode latest order: %w", err)
	}
	if resp.LatestOrderNo == nil {
		return "", nil
	}
	return *resp.LatestOrderNo, nil
}

// GetOrdersPage lists orders, newest first, optionally bounded by creation
// time.
func (c *Client) GetOrdersPage(ctx context.Context, q PageQuery) ([]domain.Order, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	query := url.Values{
		"limit":  {strconv.Itoa(q.Limit)},
		"offset": {strconv.Itoa(q.Offset)},
	}
	if !q.From.IsZero() {
		query.Set("from", timestamp(q.From))
	}
	if !q.To.IsZero() {
		query.Set("to", timestamp(q.To))
	}
	return getList[domain.Order](ctx, c, "/orders", query)
}

func (c *Client) GetOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	if orderID == "" {
		return []domain.OrderItem{}, nil
	}
	return getList[domain.OrderItem](ctx, c, "/order-items", url.Values{"orderId": {orderID}})
}

func (c *Client) GetKitchenTickets(ctx context.Context, limit int) ([]domain.KitchenTicket, error) {
	if limit <= 0 {
		limit = 100
	}
	return getList[domain.KitchenTicket](ctx, c, "/kitchen-tickets", url.Values{"limit": {strconv.Itoa(limit)}})
}
