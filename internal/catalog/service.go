package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/cache"
	"github.com/fjod/go_pos/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	source   backend.CatalogProvider
	cache    cache.MenuCache
	branchID string
	log      *zap.Logger

	sfg singleflight.Group // Prevents concurrent loads of the same menu

	mu      sync.RWMutex
	current *Catalog
}

// NewService builds the catalog service. menuCache may be nil.
func NewService(source backend.CatalogProvider, menuCache cache.MenuCache, branchID string, log *zap.Logger) *Service {
	return &Service{
		source:   source,
		cache:    menuCache,
		branchID: branchID,
		log:      log,
		current:  Empty(),
	}
}

// Current returns the last loaded catalog.
func (s *Service) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Find looks the item up in the current catalog.
func (s *Service) Find(menuItemID string) (*domain.MenuItem, bool) {
	return s.Current().Find(menuItemID)
}

// Load returns the catalog from the cache or the backend. A failed load
// keeps and returns the previous catalog together with the error; callers
// that only display the menu may ignore it.
func (s *Service) Load(ctx context.Context) (*Catalog, error) {
	v, err, _ := s.sfg.Do(s.branchID, func() (interface{}, error) {
		if s.cache != nil {
			menu, err := s.cache.Get(ctx, s.branchID)
			if err == nil {
				return New(menu), nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				s.log.Warn("menu cache get failed", zap.Error(err))
			}
		}

		menu, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			go func() {
				setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := s.cache.Set(setCtx, s.branchID, menu); err != nil {
					s.log.Warn("menu cache set failed", zap.Error(err))
				}
			}()
		}
		return New(menu), nil
	})
	if err != nil {
		s.log.Error("menu load failed, keeping previous catalog", zap.Error(err))
		return s.Current(), err
	}

	c := v.(*Catalog)
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
	return c, nil
}

// Refresh drops the cached copy and loads again from the backend.
func (s *Service) Refresh(ctx context.Context) (*Catalog, error) {
	s.Invalidate()
	return s.Load(ctx)
}

// Invalidate drops the cached menu so the next Load hits the backend.
func (s *Service) Invalidate() {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, s.branchID); err != nil {
		s.log.Warn("menu cache invalidate failed", zap.Error(err))
	}
}

func (s *Service) fetch(ctx context.Context) (*domain.Menu, error) {
	var menu domain.Menu
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := s.source.GetMenuCategories(gctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		menu.Categories = cats
		return nil
	})
	g.Go(func() error {
		items, err := s.source.GetMenuItems(gctx)
		if err != nil {
			return fmt.Errorf("load menu items: %w", err)
		}
		menu.Items = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &menu, nil
}
