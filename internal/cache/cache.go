// Package cache keeps a copy of the menu outside the process so that a
// restarted terminal can serve the catalog before the backend answers.
package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_pos/internal/domain"
)

type MenuCache interface {
	Get(ctx context.Context, branchID string) (*domain.Menu, error)
	Set(ctx context.Context, branchID string, menu *domain.Menu) error
	Delete(ctx context.Context, branchID string) error
}

var ErrCacheMiss = errors.New("cache miss")
