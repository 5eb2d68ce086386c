package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidEntry marks finance entries rejected before reaching the backend.
var ErrInvalidEntry = errors.New("invalid finance entry")

type EntryInput struct {
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

func (in EntryInput) validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidEntry)
	}
	return nil
}

func (in EntryInput) expense(branchID string) *domain.Expense {
	return &domain.Expense{
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount,
		BranchID:    branchID,
	}
}

func (in EntryInput) income(branchID string) *domain.Income {
	return &domain.Income{
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount,
		BranchID:    branchID,
	}
}
