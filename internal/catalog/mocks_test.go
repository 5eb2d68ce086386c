package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_pos/internal/cache"
	"github.com/fjod/go_pos/internal/domain"
)

type mockSource struct {
	calls atomic.Int32
	delay time.Duration
	menu  domain.Menu
	err   error
}

func (m *mockSource) GetMenuCategories(context.Context) ([]domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.menu.Categories, nil
}

func (m *mockSource) GetMenuItems(context.Context) ([]domain.MenuItem, error) {
	m.calls.Add(1)
	time.Sleep(m.delay)
	if m.err != nil {
		return nil, m.err
	}
	return m.menu.Items, nil
}

type mockCache struct {
	m       sync.RWMutex
	menu    *domain.Menu
	err     error
	deleted int
}

func (m *mockCache) Get(context.Context, string) (*domain.Menu, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.menu == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.menu, nil
}

func (m *mockCache) Set(_ context.Context, _ string, menu *domain.Menu) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.menu = menu
	return nil
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.menu = nil
	m.deleted++
	return nil
}

func (m *mockCache) get() *domain.Menu {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.menu
}
