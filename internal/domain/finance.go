package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          string          `json:"id,omitempty"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	BranchID    string          `json:"branch_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Income struct {
	ID          string          `json:"id,omitempty"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	BranchID    string          `json:"branch_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type KitchenTicketStatus string

type KitchenTicket struct {
	ID        string              `json:"id"`
	OrderID   string              `json:"order_id"`
	Status    KitchenTicketStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
