package coordinator

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"restaurant-system/internal/domain"
)

// Snapshot is a read-only copy of every collection. Nothing in it aliases
// coordinator state.
type Snapshot struct {
	Version   uint64
	Orders    []domain.Order // newest first
	Tables    []domain.Table
	Menu      []domain.MenuItem
	Inventory []domain.InventoryItem
	Identity  *domain.Identity
}

func (s Snapshot) Order(id string) (domain.Order, bool) {
	for _, o := range s.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

func (s Snapshot) Table(id string) (domain.Table, bool) {
	for _, t := range s.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Table{}, false
}

func (s Snapshot) MenuItem(id string) (domain.MenuItem, bool) {
	for _, m := range s.Menu {
		if m.ID == id {
			return m, true
		}
	}
	return domain.MenuItem{}, false
}

func (s Snapshot) InventoryItem(id string) (domain.InventoryItem, bool) {
	for _, it := range s.Inventory {
		if it.ID == id {
			return it, true
		}
	}
	return domain.InventoryItem{}, false
}

func (s Snapshot) ActiveOrders() []domain.Order {
	var out []domain.Order
	for _, o := range s.Orders {
		if o.Active() {
			out = append(out, o)
		}
	}
	return out
}

func (s Snapshot) OrdersWithStatus(st domain.OrderStatus) []domain.Order {
	var out []domain.Order
	for _, o := range s.Orders {
		if o.Status == st {
			out = append(out, o)
		}
	}
	return out
}

// ActiveOrderFor returns the order that new items for tableID would join.
func (s Snapshot) ActiveOrderFor(tableID string) (domain.Order, bool) {
	for _, o := range s.Orders {
		if o.TableID == tableID && o.Active() {
			return o, true
		}
	}
	return domain.Order{}, false
}

func (s Snapshot) OccupiedTables() []string {
	var ids []string
	for _, t := range s.Tables {
		if t.Status == domain.TableOccupied {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (s Snapshot) AvailableMenu() []domain.MenuItem {
	var out []domain.MenuItem
	for _, m := range s.Menu {
		if m.Available {
			out = append(out, m)
		}
	}
	return out
}

// SearchActive matches active orders by table id or order id substring.
func (s Snapshot) SearchActive(query string) []domain.Order {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.Order
	for _, o := range s.ActiveOrders() {
		if q == "" || strings.Contains(strings.ToLower(o.TableID), q) || strings.Contains(strings.ToLower(o.ID), q) {
			out = append(out, o)
		}
	}
	return out
}

// Revenue sums PAID orders.
func (s Snapshot) Revenue() (paid int, total decimal.Decimal) {
	total = decimal.Zero
	for _, o := range s.Orders {
		if o.Status == domain.StatusPaid {
			paid++
			total = total.Add(o.Total)
		}
	}
	return paid, total
}

// StockAlerts returns non-healthy items, critical first, then by name.
func (s Snapshot) StockAlerts() []domain.InventoryItem {
	var out []domain.InventoryItem
	for _, it := range s.Inventory {
		if it.Status != domain.StockHealthy {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status == domain.StockCritical
		}
		return out[i].Name < out[j].Name
	})
	return out
}
