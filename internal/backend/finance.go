package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_pos/internal/domain"
)

type financeRecord struct {
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Amount      float64 `json:"amount"`
	BranchID    string  `json:"branch_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func (c *Client) GetExpenses(ctx context.Context, limit int) ([]domain.Expense, error) {
	return getList[domain.Expense](ctx, c, "/expenses", limitQuery(limit))
}

func (c *Client) GetIncome(ctx context.Context, limit int) ([]domain.Income, error) {
	return getList[domain.Income](ctx, c, "/income", limitQuery(limit))
}

func (c *Client) CreateExpense(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/expenses", financeRecord{
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount.InexactFloat64(),
		BranchID:    e.BranchID,
		CreatedAt:   timestamp(e.CreatedAt),
	})
	if err != nil {
		return nil, err
	}
	return decodeRecord[domain.Expense](body)
}

func (c *Client) CreateIncome(ctx context.Context, i *domain.Income) (*domain.Income, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/income", financeRecord{
		Description: i.Description,
		Category:    i.Category,
		Amount:      i.Amount.InexactFloat64(),
		BranchID:    i.BranchID,
		CreatedAt:   timestamp(i.CreatedAt),
	})
	if err != nil {
		return nil, err
	}
	return decodeRecord[domain.Income](body)
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		limit = 100
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}
