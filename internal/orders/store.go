// Package orders owns the order collection: the status state machine, item
// merging and total computation. Totals are always recomputed from the lines.
package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"restaurant-system/internal/domain"
)

type Store struct {
	orders []domain.Order // newest first
	log    map[string][]domain.StatusChange
	seq    int

	now    func() time.Time
	lineID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLineIDs(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.lineID = fn
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		log:    map[string][]domain.StatusChange{},
		now:    time.Now,
		lineID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed loads existing orders in the given order (newest first). Totals are
// recomputed from the lines.
func (s *Store) Seed(orders ...domain.Order) {
	for _, o := range orders {
		o = o.Clone()
		o.Total = domain.SumLines(o.Lines)
		s.orders = append(s.orders, o)
		s.record(o.ID, "", o.Status, o.StaffName, "seeded", o.CreatedAt)
	}
}

// Place creates a PENDING order. Lines must already carry the menu snapshot
// (name and price).
func (s *Store) Place(tableID string, lines []domain.OrderLine, staffName string) (domain.Order, error) {
	if strings.TrimSpace(tableID) == "" {
		return domain.Order{}, domain.Invalid("table_id", "is required")
	}
	if err := validateLines(lines); err != nil {
		return domain.Order{}, err
	}
	now := s.now()
	o := domain.Order{
		ID:        s.nextID(now),
		TableID:   tableID,
		Lines:     s.copyLines(lines),
		Status:    domain.StatusPending,
		CreatedAt: now,
		StaffName: staffName,
	}
	o.Total = domain.SumLines(o.Lines)
	s.orders = append([]domain.Order{o}, s.orders...)
	s.record(o.ID, "", o.Status, staffName, "placed", now)
	return o.Clone(), nil
}

// Merge appends lines to the first active order of the table and sends it
// back to PENDING so the kitchen sees the new items. Without an active order
// it places a new one. created reports which of the two happened.
func (s *Store) Merge(tableID string, lines []domain.OrderLine, by string) (o domain.Order, created bool, err error) {
	if err := validateLines(lines); err != nil {
		return domain.Order{}, false, err
	}
	i := s.activeIndex(tableID)
	if i < 0 {
		o, err = s.Place(tableID, lines, by)
		return o, err == nil, err
	}
	cur := &s.orders[i]
	cur.Lines = append(cur.Lines, s.copyLines(lines)...)
	cur.Total = domain.SumLines(cur.Lines)
	old := cur.Status
	cur.Status = domain.StatusPending
	s.record(cur.ID, old, cur.Status, by, fmt.Sprintf("%d item(s) added", len(lines)), s.now())
	return cur.Clone(), false, nil
}

// Advance moves PENDING -> COOKING -> READY -> SERVED. On SERVED and the
// terminal statuses it returns the order unchanged.
func (s *Store) Advance(id, by string) (domain.Order, error) {
	i := s.index(id)
	if i < 0 {
		return domain.Order{}, domain.NotFound("order", id)
	}
	cur := &s.orders[i]
	next, ok := cur.Status.Next()
	if !ok {
		return cur.Clone(), nil
	}
	old := cur.Status
	cur.Status = next
	s.record(id, old, next, by, "", s.now())
	return cur.Clone(), nil
}

// SetStatus assigns any valid status, backwards included.
func (s *Store) SetStatus(id string, status domain.OrderStatus, by string) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.Invalid("status", "unknown order status "+string(status))
	}
	i := s.index(id)
	if i < 0 {
		return domain.Order{}, domain.NotFound("order", id)
	}
	cur := &s.orders[i]
	old := cur.Status
	if old == status {
		return cur.Clone(), nil
	}
	cur.Status = status
	s.record(id, old, status, by, "", s.now())
	return cur.Clone(), nil
}

func (s *Store) Get(id string) (domain.Order, bool) {
	i := s.index(id)
	if i < 0 {
		return domain.Order{}, false
	}
	return s.orders[i].Clone(), true
}

// List returns deep copies, newest first.
func (s *Store) List() []domain.Order {
	out := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

func (s *Store) Len() int { return len(s.orders) }

// ActiveFor returns the order a merge for tableID would target.
func (s *Store) ActiveFor(tableID string) (domain.Order, bool) {
	i := s.activeIndex(tableID)
	if i < 0 {
		return domain.Order{}, false
	}
	return s.orders[i].Clone(), true
}

func (s *Store) HasActive(tableID string) bool { return s.activeIndex(tableID) >= 0 }

// Timeline returns the status log of an order, oldest first.
func (s *Store) Timeline(id string) []domain.StatusChange {
	return append([]domain.StatusChange(nil), s.log[id]...)
}

func (s *Store) index(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) activeIndex(tableID string) int {
	for i := range s.orders {
		if s.orders[i].TableID == tableID && s.orders[i].Active() {
			return i
		}
	}
	return -1
}

// ORD_YYYYMMDD_NNN
func (s *Store) nextID(now time.Time) string {
	day := now.UTC().Format("20060102")
	for {
		s.seq++
		id := fmt.Sprintf("ORD_%s_%03d", day, s.seq)
		if s.index(id) < 0 {
			return id
		}
	}
}

func (s *Store) copyLines(lines []domain.OrderLine) []domain.OrderLine {
	out := make([]domain.OrderLine, len(lines))
	for i, l := range lines {
		if l.ID == "" {
			l.ID = s.lineID()
		}
		out[i] = l
	}
	return out
}

func (s *Store) record(id string, from, to domain.OrderStatus, by, note string, at time.Time) {
	s.log[id] = append(s.log[id], domain.StatusChange{
		OrderID: id, From: from, To: to, ChangedBy: by, Note: note, At: at,
	})
}

func validateLines(lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return domain.Invalid("lines", "at least one item is required")
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return domain.Invalid("quantity", fmt.Sprintf("invalid quantity for item %s", l.Name))
		}
		if l.Price.IsNegative() {
			return domain.Invalid("price", fmt.Sprintf("invalid price for item %s", l.Name))
		}
	}
	return nil
}
