// Package inventory keeps stock quantities and their derived health status.
package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-system/internal/domain"
)

type Ledger struct {
	items []domain.InventoryItem
	newID func() string
}

type Option func(*Ledger)

// WithIDs replaces the id generator (tests).
func WithIDs(fn func() string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{newID: func() string { return "inv-" + uuid.NewString() }}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Seed loads existing records. Status is recomputed from stock, whatever the
// record says.
func (l *Ledger) Seed(items ...domain.InventoryItem) {
	for _, it := range items {
		if it.Stock.IsNegative() {
			it.Stock = decimal.Zero
		}
		it.Status = domain.ClassifyStock(it.Stock)
		l.items = append(l.items, it)
	}
}

func (l *Ledger) Add(in domain.NewInventoryItemInput) (domain.InventoryItem, error) {
	if err := in.Validate(); err != nil {
		return domain.InventoryItem{}, err
	}
	it := domain.InventoryItem{
		ID:       l.newID(),
		Name:     in.Name,
		Category: in.Category,
		Stock:    in.Stock,
		Unit:     in.Unit,
		Status:   domain.ClassifyStock(in.Stock),
	}
	l.items = append(l.items, it)
	return it, nil
}

// AdjustStock applies delta with a floor of zero. Positive deltas import,
// negative deltas consume.
func (l *Ledger) AdjustStock(id string, delta decimal.Decimal) (domain.InventoryItem, error) {
	i := l.index(id)
	if i < 0 {
		return domain.InventoryItem{}, domain.NotFound("inventory_item", id)
	}
	stock := decimal.Max(decimal.Zero, l.items[i].Stock.Add(delta))
	l.items[i].Stock = stock
	l.items[i].Status = domain.ClassifyStock(stock)
	return l.items[i], nil
}

func (l *Ledger) ReplaceDetails(id string, d domain.InventoryDetails) (domain.InventoryItem, error) {
	if err := d.Validate(); err != nil {
		return domain.InventoryItem{}, err
	}
	i := l.index(id)
	if i < 0 {
		return domain.InventoryItem{}, domain.NotFound("inventory_item", id)
	}
	l.items[i].Name = d.Name
	l.items[i].Category = d.Category
	l.items[i].Unit = d.Unit
	return l.items[i], nil
}

// Remove reports whether anything was removed; unknown ids are ignored.
func (l *Ledger) Remove(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

func (l *Ledger) Get(id string) (domain.InventoryItem, bool) {
	i := l.index(id)
	if i < 0 {
		return domain.InventoryItem{}, false
	}
	return l.items[i], true
}

func (l *Ledger) List() []domain.InventoryItem {
	return append([]domain.InventoryItem(nil), l.items...)
}

// Alerts returns items that are not HEALTHY, critical first.
func (l *Ledger) Alerts() []domain.InventoryItem {
	var critical, low []domain.InventoryItem
	for _, it := range l.items {
		switch it.Status {
		case domain.StockCritical:
			critical = append(critical, it)
		case domain.StockLow:
			low = append(low, it)
		}
	}
	return append(critical, low...)
}

func (l *Ledger) index(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}
