// Package menu holds the dish catalog. Orders copy name and price when a line
// is added, so edits here never reach existing orders.
package menu

import (
	"github.com/google/uuid"

	"restaurant-system/internal/domain"
)

type Catalog struct {
	items []domain.MenuItem
	newID func() string
}

type Option func(*Catalog)

func WithIDs(fn func() string) Option {
	return func(c *Catalog) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{newID: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) Seed(items ...domain.MenuItem) {
	c.items = append(c.items, items...)
}

func (c *Catalog) Add(in domain.NewMenuItemInput) (domain.MenuItem, error) {
	if err := in.Validate(); err != nil {
		return domain.MenuItem{}, err
	}
	it := domain.MenuItem{
		ID:          c.newID(),
		Name:        in.Name,
		Price:       in.Price,
		Category:    in.Category,
		Description: in.Description,
		Available:   true,
	}
	c.items = append(c.items, it)
	return it, nil
}

// Replace overwrites every field but id and availability.
func (c *Catalog) Replace(id string, in domain.NewMenuItemInput) (domain.MenuItem, error) {
	if err := in.Validate(); err != nil {
		return domain.MenuItem{}, err
	}
	i := c.index(id)
	if i < 0 {
		return domain.MenuItem{}, domain.NotFound("menu_item", id)
	}
	c.items[i] = domain.MenuItem{
		ID:          id,
		Name:        in.Name,
		Price:       in.Price,
		Category:    in.Category,
		Description: in.Description,
		Available:   c.items[i].Available,
	}
	return c.items[i], nil
}

func (c *Catalog) SetAvailable(id string, available bool) (domain.MenuItem, error) {
	i := c.index(id)
	if i < 0 {
		return domain.MenuItem{}, domain.NotFound("menu_item", id)
	}
	c.items[i].Available = available
	return c.items[i], nil
}

func (c *Catalog) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

func (c *Catalog) Get(id string) (domain.MenuItem, bool) {
	i := c.index(id)
	if i < 0 {
		return domain.MenuItem{}, false
	}
	return c.items[i], true
}

func (c *Catalog) List() []domain.MenuItem {
	return append([]domain.MenuItem(nil), c.items...)
}

// Categories returns distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range c.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

func (c *Catalog) index(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
