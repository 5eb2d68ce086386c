// Package catalog serves the menu to the till. Loads go to the backend
// through a singleflight group and an optional cache in front of it.
package catalog

import (
	"sort"

	"github.com/fjod/go_pos/internal/domain"
)

// AllCategories selects every item regardless of category.
const AllCategories = "all"

// Catalog is an immutable view of one menu load.
type Catalog struct {
	categories []domain.Category
	items      []domain.MenuItem
	byID       map[string]int
}

func New(menu *domain.Menu) *Catalog {
	c := &Catalog{byID: map[string]int{}}
	if menu == nil {
		return c
	}
	c.categories = append([]domain.Category(nil), menu.Categories...)
	c.items = append([]domain.MenuItem(nil), menu.Items...)
	for i := range c.items {
		c.byID[c.items[i].ID] = i
	}
	return c
}

// Empty is the catalog shown when nothing could be loaded.
func Empty() *Catalog { return New(nil) }

func (c *Catalog) IsEmpty() bool { return len(c.items) == 0 }

func (c *Catalog) Menu() *domain.Menu {
	return &domain.Menu{
		Categories: append([]domain.Category(nil), c.categories...),
		Items:      append([]domain.MenuItem(nil), c.items...),
	}
}

// Find returns a copy of the item with the given id.
func (c *Catalog) Find(menuItemID string) (*domain.MenuItem, bool) {
	i, ok := c.byID[menuItemID]
	if !ok {
		return nil, false
	}
	item := c.items[i]
	return &item, true
}

// ActiveCategories lists active categories by display order.
func (c *Catalog) ActiveCategories() []domain.Category {
	out := make([]domain.Category, 0, len(c.categories))
	for _, cat := range c.categories {
		if cat.IsActive {
			out = append(out, cat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}

// ItemsInCategory filters items by category id; "" or "all" returns every
// item.
func (c *Catalog) ItemsInCategory(categoryID string) []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(c.items))
	for _, it := range c.items {
		if categoryID == "" || categoryID == AllCategories || it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out
}
