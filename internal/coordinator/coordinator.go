// Package coordinator is the single mutation surface for every role view. It
// owns the order, table, menu and inventory collections, keeps table
// occupancy in step with active orders and notifies observers after each
// committed change.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-system/internal/common/logger"
	"restaurant-system/internal/domain"
	"restaurant-system/internal/inventory"
	"restaurant-system/internal/menu"
	"restaurant-system/internal/orders"
	"restaurant-system/internal/session"
	"restaurant-system/internal/tables"
)

// ErrNoSession is returned by Login and Logout on a coordinator built without
// a session.
var ErrNoSession = errors.New("coordinator: no session configured")

type Coordinator struct {
	// emitMu spans mutation and notification so observers see changes in
	// call order. mu guards the collections only, so observers can take
	// snapshots.
	emitMu sync.Mutex
	mu     sync.RWMutex

	orders    *orders.Store
	tables    *tables.Registry
	menu      *menu.Catalog
	inventory *inventory.Ledger
	session   *session.Session

	observers []Observer
	log       *logger.Logger
	now       func() time.Time
	taxRate   decimal.Decimal
	release   bool
	version   uint64
}

type Option func(*Coordinator)

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(lg *logger.Logger) Option {
	return func(c *Coordinator) { c.log = lg }
}

func WithObservers(obs ...Observer) Option {
	return func(c *Coordinator) {
		for _, o := range obs {
			if o != nil {
				c.observers = append(c.observers, o)
			}
		}
	}
}

func WithTaxRate(rate decimal.Decimal) Option {
	return func(c *Coordinator) { c.taxRate = rate }
}

// WithTableRelease makes a table AVAILABLE again once its last active order
// is paid or cancelled. Off by default: tables are reset by hand.
func WithTableRelease(on bool) Option {
	return func(c *Coordinator) { c.release = on }
}

// WithOrderStore swaps the order store, e.g. one with a fixed clock.
func WithOrderStore(s *orders.Store) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.orders = s
		}
	}
}

func New(sess *session.Session, opts ...Option) *Coordinator {
	reg, _ := tables.NewRegistry()
	c := &Coordinator{
		tables:    reg,
		menu:      menu.NewCatalog(),
		inventory: inventory.NewLedger(),
		session:   sess,
		now:       time.Now,
		taxRate:   decimal.RequireFromString("0.10"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.orders == nil {
		c.orders = orders.NewStore(orders.WithClock(c.now))
	}
	return c
}

// Load bulk-loads initial data and occupies every table that has an active
// order. It emits no events.
func (c *Coordinator) Load(data Seed) error {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range data.Tables {
		if err := c.tables.Add(t); err != nil {
			return err
		}
	}
	c.menu.Seed(data.Menu...)
	c.inventory.Seed(data.Inventory...)
	c.orders.Seed(data.Orders...)
	for _, o := range c.orders.List() {
		if o.Active() {
			if _, err := c.tables.SetStatus(o.TableID, domain.TableOccupied); err != nil {
				return err
			}
		}
	}
	c.version++
	return nil
}

// Subscribe adds an observer for subsequent mutations.
func (c *Coordinator) Subscribe(o Observer) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.observers = append(c.observers, o)
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	s := Snapshot{
		Version:   c.version,
		Orders:    c.orders.List(),
		Tables:    c.tables.List(),
		Menu:      c.menu.List(),
		Inventory: c.inventory.List(),
	}
	if c.session != nil {
		if id, ok := c.session.Current(); ok {
			s.Identity = &id
		}
	}
	return s
}

// mutate runs fn under the write lock. On success the version is bumped and
// the returned events are delivered with the post-mutation snapshot.
func (c *Coordinator) mutate(fn func() ([]Event, error)) error {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	events, snap, err := c.commit(fn)
	if err != nil {
		c.log.Debug("mutation_rejected", map[string]any{"reason": err.Error()})
		return err
	}

	ctx := context.Background()
	at := c.now()
	for _, ev := range events {
		ev.At = at
		ev.Snapshot = snap
		for _, o := range c.observers {
			o.OnEvent(ctx, ev)
		}
	}
	return nil
}

func (c *Coordinator) commit(fn func() ([]Event, error)) ([]Event, Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := fn()
	if err != nil || len(events) == 0 {
		return nil, Snapshot{}, err
	}
	c.version++
	return events, c.snapshotLocked(), nil
}

func (c *Coordinator) actor() string {
	if c.session == nil {
		return ""
	}
	if id, ok := c.session.Current(); ok {
		return id.FullName
	}
	return ""
}

// ---- orders ----

func (c *Coordinator) PlaceOrder(in domain.PlaceOrderInput) (domain.Order, error) {
	return c.placeOrder(c.actor(), in)
}

func (c *Coordinator) placeOrder(actor string, in domain.PlaceOrderInput) (domain.Order, error) {
	if in.StaffName == "" {
		in.StaffName = actor
	}
	var placed domain.Order
	err := c.mutate(func() ([]Event, error) {
		if err := in.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.tables.Get(in.TableID); !ok {
			return nil, domain.NotFound("table", in.TableID)
		}
		lines, err := c.resolveLines(in.Lines)
		if err != nil {
			return nil, err
		}
		o, err := c.orders.Place(in.TableID, lines, in.StaffName)
		if err != nil {
			return nil, err
		}
		placed = o
		events := []Event{{Type: EventOrderPlaced, Actor: actor, Order: &o}}
		return append(events, c.occupyLocked(in.TableID, actor)...), nil
	})
	return placed, err
}

// AddItems appends items to the table's active order, which goes back to
// PENDING, or places a new order when the table has none.
func (c *Coordinator) AddItems(tableID string, lines []domain.LineInput) (domain.Order, error) {
	return c.addItems(c.actor(), tableID, lines)
}

func (c *Coordinator) addItems(actor, tableID string, in []domain.LineInput) (domain.Order, error) {
	var merged domain.Order
	err := c.mutate(func() ([]Event, error) {
		if err := (domain.PlaceOrderInput{TableID: tableID, Lines: in}).Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.tables.Get(tableID); !ok {
			return nil, domain.NotFound("table", tableID)
		}
		lines, err := c.resolveLines(in)
		if err != nil {
			return nil, err
		}
		var old domain.OrderStatus
		if cur, ok := c.orders.ActiveFor(tableID); ok {
			old = cur.Status
		}
		o, created, err := c.orders.Merge(tableID, lines, actor)
		if err != nil {
			return nil, err
		}
		merged = o
		ev := Event{Type: EventOrderItemsAdded, Actor: actor, Order: &o, OldStatus: old}
		if created {
			ev = Event{Type: EventOrderPlaced, Actor: actor, Order: &o}
		}
		return append([]Event{ev}, c.occupyLocked(tableID, actor)...), nil
	})
	return merged, err
}

// AdvanceOrder is a no-op from SERVED onwards and then emits nothing.
func (c *Coordinator) AdvanceOrder(id string) (domain.Order, error) {
	return c.advanceOrder(c.actor(), id)
}

func (c *Coordinator) advanceOrder(actor, id string) (domain.Order, error) {
	var out domain.Order
	err := c.mutate(func() ([]Event, error) {
		before, ok := c.orders.Get(id)
		if !ok {
			return nil, domain.NotFound("order", id)
		}
		o, err := c.orders.Advance(id, actor)
		if err != nil {
			return nil, err
		}
		out = o
		if o.Status == before.Status {
			return nil, nil
		}
		return []Event{{Type: EventOrderStatusChanged, Actor: actor, Order: &o, OldStatus: before.Status}}, nil
	})
	return out, err
}

// SetOrderStatus assigns any status, backwards included. Table occupancy
// follows: reactivating an order occupies its table.
func (c *Coordinator) SetOrderStatus(id string, st domain.OrderStatus) (domain.Order, error) {
	return c.setOrderStatus(c.actor(), id, st)
}

func (c *Coordinator) setOrderStatus(actor, id string, st domain.OrderStatus) (domain.Order, error) {
	return c.transition(actor, id, st, nil)
}

func (c *Coordinator) transition(actor, id string, st domain.OrderStatus, guard func(domain.Order) error) (domain.Order, error) {
	var out domain.Order
	err := c.mutate(func() ([]Event, error) {
		before, ok := c.orders.Get(id)
		if !ok {
			return nil, domain.NotFound("order", id)
		}
		if guard != nil {
			if err := guard(before); err != nil {
				out = before
				return nil, err
			}
		}
		o, err := c.orders.SetStatus(id, st, actor)
		if err != nil {
			return nil, err
		}
		out = o
		if o.Status == before.Status {
			return nil, nil
		}
		events := []Event{{Type: EventOrderStatusChanged, Actor: actor, Order: &o, OldStatus: before.Status}}
		return append(events, c.reconcileTableLocked(o.TableID, actor)...), nil
	})
	return out, err
}

// CancelOrder refuses orders that are already PAID or CANCELLED.
func (c *Coordinator) CancelOrder(id string) (domain.Order, error) {
	return c.cancelOrder(c.actor(), id)
}

func (c *Coordinator) cancelOrder(actor, id string) (domain.Order, error) {
	return c.transition(actor, id, domain.StatusCancelled, func(o domain.Order) error {
		if o.Status.Terminal() {
			return domain.Invalid("status", "order "+id+" is already "+string(o.Status))
		}
		return nil
	})
}

func (c *Coordinator) Bill(id string) (domain.Bill, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.orders.Get(id)
	if !ok {
		return domain.Bill{}, domain.NotFound("order", id)
	}
	return domain.BillFor(o, c.taxRate), nil
}

func (c *Coordinator) Timeline(id string) ([]domain.StatusChange, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.orders.Get(id); !ok {
		return nil, domain.NotFound("order", id)
	}
	return c.orders.Timeline(id), nil
}

// resolveLines snapshots name and price from the menu and folds repeated
// menu items with the same note into one line.
func (c *Coordinator) resolveLines(in []domain.LineInput) ([]domain.OrderLine, error) {
	var out []domain.OrderLine
	pos := map[[2]string]int{}
	for _, l := range in {
		item, ok := c.menu.Get(l.MenuItemID)
		if !ok {
			return nil, domain.NotFound("menu_item", l.MenuItemID)
		}
		if !item.Available {
			return nil, domain.Invalid("menu_item_id", item.Name+" is not available")
		}
		key := [2]string{item.ID, l.Note}
		if i, seen := pos[key]; seen {
			out[i].Quantity += l.Quantity
			continue
		}
		pos[key] = len(out)
		out = append(out, domain.OrderLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   l.Quantity,
			Note:       l.Note,
		})
	}
	return out, nil
}

// ---- tables ----

// SetTableStatus refuses to free a table that still has an active order.
func (c *Coordinator) SetTableStatus(id string, st domain.TableStatus) (domain.Table, error) {
	return c.setTableStatus(c.actor(), id, st)
}

func (c *Coordinator) setTableStatus(actor, id string, st domain.TableStatus) (domain.Table, error) {
	var out domain.Table
	err := c.mutate(func() ([]Event, error) {
		before, ok := c.tables.Get(id)
		if !ok {
			return nil, domain.NotFound("table", id)
		}
		if st != domain.TableOccupied && c.orders.HasActive(id) {
			return nil, domain.Invalid("status", "table "+id+" has an active order")
		}
		t, err := c.tables.SetStatus(id, st)
		if err != nil {
			return nil, err
		}
		out = t
		if before.Status == t.Status {
			return nil, nil
		}
		return []Event{{Type: EventTableStatusChanged, Actor: actor, Table: &t}}, nil
	})
	return out, err
}

func (c *Coordinator) occupyLocked(tableID, actor string) []Event {
	if c.tables.IsOccupied(tableID) {
		return nil
	}
	t, err := c.tables.SetStatus(tableID, domain.TableOccupied)
	if err != nil {
		return nil
	}
	return []Event{{Type: EventTableStatusChanged, Actor: actor, Table: &t}}
}

func (c *Coordinator) reconcileTableLocked(tableID, actor string) []Event {
	if _, ok := c.tables.Get(tableID); !ok {
		return nil
	}
	if c.orders.HasActive(tableID) {
		return c.occupyLocked(tableID, actor)
	}
	if !c.release || !c.tables.IsOccupied(tableID) {
		return nil
	}
	t, err := c.tables.SetStatus(tableID, domain.TableAvailable)
	if err != nil {
		return nil
	}
	return []Event{{Type: EventTableStatusChanged, Actor: actor, Table: &t}}
}

// ---- menu ----

func (c *Coordinator) AddMenuItem(in domain.NewMenuItemInput) (domain.MenuItem, error) {
	var out domain.MenuItem
	err := c.mutate(func() ([]Event, error) {
		it, err := c.menu.Add(in)
		if err != nil {
			return nil, err
		}
		out = it
		return []Event{{Type: EventMenuChanged, Actor: c.actor(), Subject: it.ID}}, nil
	})
	return out, err
}

func (c *Coordinator) UpdateMenuItem(id string, in domain.NewMenuItemInput) (domain.MenuItem, error) {
	var out domain.MenuItem
	err := c.mutate(func() ([]Event, error) {
		it, err := c.menu.Replace(id, in)
		if err != nil {
			return nil, err
		}
		out = it
		return []Event{{Type: EventMenuChanged, Actor: c.actor(), Subject: id}}, nil
	})
	return out, err
}

func (c *Coordinator) SetMenuAvailability(id string, available bool) (domain.MenuItem, error) {
	var out domain.MenuItem
	err := c.mutate(func() ([]Event, error) {
		it, err := c.menu.SetAvailable(id, available)
		if err != nil {
			return nil, err
		}
		out = it
		return []Event{{Type: EventMenuChanged, Actor: c.actor(), Subject: id}}, nil
	})
	return out, err
}

// RemoveMenuItem ignores unknown ids.
func (c *Coordinator) RemoveMenuItem(id string) {
	_ = c.mutate(func() ([]Event, error) {
		if !c.menu.Remove(id) {
			return nil, nil
		}
		return []Event{{Type: EventMenuChanged, Actor: c.actor(), Subject: id}}, nil
	})
}

// ---- inventory ----

func (c *Coordinator) AddInventoryItem(in domain.NewInventoryItemInput) (domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := c.mutate(func() ([]Event, error) {
		it, err := c.inventory.Add(in)
		if err != nil {
			return nil, err
		}
		out = it
		return []Event{{Type: EventInventoryChanged, Actor: c.actor(), Subject: it.ID}}, nil
	})
	return out, err
}

// AdjustStock imports (delta > 0) or consumes (delta < 0); stock floors at 0.
func (c *Coordinator) AdjustStock(id string, delta decimal.Decimal) (domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := c.mutate(func() ([]Event, error) {
		it, err := c.inventory.AdjustStock(id, delta)
		if err != nil {
			return nil, err
		}
		out = it
		return []Event{{Type: EventInventoryChanged, Actor: c.actor(), Subject: id}}, nil
	})
	return out, err
}

func (c *Coordinator) ReplaceInventoryDetails(id string, d domain.InventoryDetails) (domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := c.mutate(func() ([]Event, error) {
		it, err := c.inventory.ReplaceDetails(id, d)
		if err != nil {
			return nil, err
		}
		out = it
		return []Event{{Type: EventInventoryChanged, Actor: c.actor(), Subject: id}}, nil
	})
	return out, err
}

// RemoveInventoryItem ignores unknown ids.
func (c *Coordinator) RemoveInventoryItem(id string) {
	_ = c.mutate(func() ([]Event, error) {
		if !c.inventory.Remove(id) {
			return nil, nil
		}
		return []Event{{Type: EventInventoryChanged, Actor: c.actor(), Subject: id}}, nil
	})
}

// ---- identity ----

func (c *Coordinator) Login(ctx context.Context, id domain.Identity) error {
	if c.session == nil {
		return ErrNoSession
	}
	return c.mutate(func() ([]Event, error) {
		if err := c.session.Login(ctx, id); err != nil {
			return nil, err
		}
		return []Event{{Type: EventLogin, Actor: id.FullName}}, nil
	})
}

func (c *Coordinator) Logout(ctx context.Context) error {
	if c.session == nil {
		return ErrNoSession
	}
	return c.mutate(func() ([]Event, error) {
		actor := c.actor()
		if err := c.session.Logout(ctx); err != nil {
			return nil, err
		}
		return []Event{{Type: EventLogout, Actor: actor}}, nil
	})
}

func (c *Coordinator) Identity() (domain.Identity, bool) {
	if c.session == nil {
		return domain.Identity{}, false
	}
	return c.session.Current()
}
