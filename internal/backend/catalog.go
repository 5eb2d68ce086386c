package backend

import (
	"context"
	"net/url"

	"github.com/fjod/go_pos/internal/domain"
)

func (c *Client) GetMenuCategories(ctx context.Context) ([]domain.Category, error) {
	return getList[domain.Category](ctx, c, "/menu-categories", nil)
}

// GetAllMenuCategories includes inactive categories.
func (c *Client) GetAllMenuCategories(ctx context.Context) ([]domain.Category, error) {
	return getList[domain.Category](ctx, c, "/menu-categories", url.Values{"showAll": {"true"}})
}

func (c *Client) GetMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	return getList[domain.MenuItem](ctx, c, "/menu-items", nil)
}

// GetAllMenuItems includes inactive items.
func (c *Client) GetAllMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	return getList[domain.MenuItem](ctx, c, "/menu-items", url.Values{"showAll": {"true"}})
}

func (c *Client) GetPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return getList[domain.PaymentMethod](ctx, c, "/payment-methods", nil)
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	body, err := c.getJSON(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return decodeList[T](body)
}
