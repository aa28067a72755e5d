package coordinator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-system/internal/domain"
	"restaurant-system/internal/orders"
	"restaurant-system/internal/session"
)

var testNow = time.Date(2024, 5, 4, 18, 30, 0, 0, time.UTC)

type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(_ context.Context, ev Event) { r.events = append(r.events, ev) }

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newTestCoordinator(t *testing.T, opts ...Option) (*Coordinator, *recorder) {
	t.Helper()
	sess, err := session.Open(context.Background(), session.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("session.Open() error = %v", err)
	}
	rec := &recorder{}
	opts = append([]Option{WithClock(func() time.Time { return testNow }), WithObservers(rec)}, opts...)
	c := New(sess, opts...)
	if err := c.Load(DefaultSeed(testNow)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c, rec
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertTotals(t *testing.T, s Snapshot) {
	t.Helper()
	for _, o := range s.Orders {
		if want := domain.SumLines(o.Lines); !o.Total.Equal(want) {
			t.Fatalf("order %s total = %s, want %s", o.ID, o.Total, want)
		}
	}
}

func assertOccupancy(t *testing.T, s Snapshot) {
	t.Helper()
	for _, o := range s.ActiveOrders() {
		tb, ok := s.Table(o.TableID)
		if !ok || tb.Status != domain.TableOccupied {
			t.Fatalf("table %s has active order %s but status %s", o.TableID, o.ID, tb.Status)
		}
	}
}

func TestLoadOccupiesTablesWithActiveOrders(t *testing.T) {
	c, rec := newTestCoordinator(t)
	s := c.Snapshot()
	if got, want := s.OccupiedTables(), []string{"1", "4", "5", "9", "12"}; !reflect.DeepEqual(got, want) {
		t.Errorf("OccupiedTables() = %v, want %v", got, want)
	}
	o, _ := s.Order("1024")
	if !o.Total.Equal(dec("34.50")) {
		t.Errorf("order 1024 total = %s, want 34.50", o.Total)
	}
	basil, _ := s.InventoryItem("inv5")
	if basil.Status != domain.StockCritical {
		t.Errorf("inv5 status = %s, want CRITICAL", basil.Status)
	}
	if len(rec.events) != 0 {
		t.Errorf("Load() emitted %d events", len(rec.events))
	}
	assertTotals(t, s)
	assertOccupancy(t, s)
}

func TestTableSevenScenario(t *testing.T) {
	c, rec := newTestCoordinator(t)

	o, err := c.PlaceOrder(domain.PlaceOrderInput{
		TableID:   "7",
		StaffName: "Sarah Jenkins",
		Lines: []domain.LineInput{
			{MenuItemID: "1", Quantity: 1},
			{MenuItemID: "2", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if !o.Total.Equal(dec("42.00")) || o.Status != domain.StatusPending {
		t.Fatalf("PlaceOrder() = %s %s, want 42.00 PENDING", o.Total, o.Status)
	}
	if tb, _ := c.Snapshot().Table("7"); tb.Status != domain.TableOccupied {
		t.Fatalf("table 7 = %s, want OCCUPIED", tb.Status)
	}

	if o, err = c.SetOrderStatus(o.ID, domain.StatusCooking); err != nil {
		t.Fatalf("SetOrderStatus(COOKING) error = %v", err)
	}
	if o, err = c.AdvanceOrder(o.ID); err != nil || o.Status != domain.StatusReady {
		t.Fatalf("AdvanceOrder() = %s, %v, want READY", o.Status, err)
	}
	if o, err = c.SetOrderStatus(o.ID, domain.StatusPaid); err != nil || o.Status != domain.StatusPaid {
		t.Fatalf("SetOrderStatus(PAID) = %s, %v", o.Status, err)
	}

	s := c.Snapshot()
	if tb, _ := s.Table("7"); tb.Status != domain.TableOccupied {
		t.Errorf("table 7 after payment = %s, want OCCUPIED (no release policy)", tb.Status)
	}
	want := []EventType{
		EventOrderPlaced, EventTableStatusChanged,
		EventOrderStatusChanged, EventOrderStatusChanged, EventOrderStatusChanged,
	}
	if got := rec.types(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if rec.events[0].Snapshot.Version >= rec.events[2].Snapshot.Version {
		t.Errorf("snapshot versions do not increase: %d then %d", rec.events[0].Snapshot.Version, rec.events[2].Snapshot.Version)
	}
	assertTotals(t, s)
}

func TestObserverSeesOrderWithOccupiedTable(t *testing.T) {
	c, _ := newTestCoordinator(t)
	var checked bool
	c.Subscribe(ObserverFunc(func(_ context.Context, ev Event) {
		if ev.Type != EventOrderPlaced {
			return
		}
		checked = true
		tb, _ := ev.Snapshot.Table(ev.Order.TableID)
		if tb.Status != domain.TableOccupied {
			t.Errorf("observer saw order on table %s with status %s", tb.ID, tb.Status)
		}
		// observers may read the live state
		if live, _ := c.Snapshot().Order(ev.Order.ID); live.ID == "" {
			t.Errorf("order %s missing from live snapshot", ev.Order.ID)
		}
	}))
	if _, err := c.PlaceOrder(domain.PlaceOrderInput{TableID: "2", Lines: []domain.LineInput{{MenuItemID: "3", Quantity: 1}}}); err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if !checked {
		t.Fatalf("observer was not called")
	}
}

func TestPlaceOrderFailuresLeaveStateUnchanged(t *testing.T) {
	c, rec := newTestCoordinator(t)
	before := c.Snapshot()

	cases := []struct {
		name string
		in   domain.PlaceOrderInput
		want error
	}{
		{"empty cart", domain.PlaceOrderInput{TableID: "7"}, domain.ErrValidation},
		{"unknown table", domain.PlaceOrderInput{TableID: "99", Lines: []domain.LineInput{{MenuItemID: "1", Quantity: 1}}}, domain.ErrNotFound},
		{"unknown dish", domain.PlaceOrderInput{TableID: "7", Lines: []domain.LineInput{{MenuItemID: "42", Quantity: 1}}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		if _, err := c.PlaceOrder(tc.in); !errors.Is(err, tc.want) {
			t.Errorf("%s: PlaceOrder() error = %v, want %v", tc.name, err, tc.want)
		}
	}
	var ve *domain.ValidationError
	if _, err := c.PlaceOrder(domain.PlaceOrderInput{TableID: "7"}); !errors.As(err, &ve) {
		t.Errorf("empty cart error is %T, want *ValidationError", err)
	}

	after := c.Snapshot()
	if len(after.Orders) != len(before.Orders) {
		t.Errorf("order count = %d, want %d", len(after.Orders), len(before.Orders))
	}
	if tb, _ := after.Table("7"); tb.Status != domain.TableAvailable {
		t.Errorf("table 7 = %s, want AVAILABLE", tb.Status)
	}
	if after.Version != before.Version || len(rec.events) != 0 {
		t.Errorf("failed mutations bumped version or emitted events")
	}
}

func TestPlaceOrderRejectsUnavailableDish(t *testing.T) {
	c, _ := newTestCoordinator(t)
	if _, err := c.SetMenuAvailability("4", false); err != nil {
		t.Fatalf("SetMenuAvailability() error = %v", err)
	}
	_, err := c.PlaceOrder(domain.PlaceOrderInput{TableID: "3", Lines: []domain.LineInput{{MenuItemID: "4", Quantity: 1}}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("PlaceOrder(unavailable) error = %v, want ErrValidation", err)
	}
}

func TestAddItemsToCookingOrder(t *testing.T) {
	c, rec := newTestCoordinator(t)
	o, err := c.AddItems("4", []domain.LineInput{{MenuItemID: "2", Quantity: 1}})
	if err != nil {
		t.Fatalf("AddItems() error = %v", err)
	}
	if o.ID != "1024" || o.Status != domain.StatusPending || len(o.Lines) != 3 {
		t.Fatalf("AddItems() = %s %s with %d lines", o.ID, o.Status, len(o.Lines))
	}
	if !o.Total.Equal(dec("46.50")) {
		t.Errorf("total = %s, want 46.50", o.Total)
	}
	if len(rec.events) != 1 || rec.events[0].Type != EventOrderItemsAdded || rec.events[0].OldStatus != domain.StatusCooking {
		t.Errorf("events = %+v", rec.types())
	}
	assertTotals(t, c.Snapshot())
}

func TestAddItemsOpensOrderOnFreeTable(t *testing.T) {
	c, rec := newTestCoordinator(t)
	o, err := c.AddItems("6", []domain.LineInput{{MenuItemID: "1", Quantity: 1}, {MenuItemID: "1", Quantity: 2}})
	if err != nil {
		t.Fatalf("AddItems() error = %v", err)
	}
	if len(o.Lines) != 1 || o.Lines[0].Quantity != 3 {
		t.Errorf("cart lines = %+v, want one line of 3", o.Lines)
	}
	if got := rec.types(); !reflect.DeepEqual(got, []EventType{EventOrderPlaced, EventTableStatusChanged}) {
		t.Errorf("events = %v", got)
	}
	assertOccupancy(t, c.Snapshot())
}

func TestPriceSnapshotSurvivesMenuEdit(t *testing.T) {
	c, _ := newTestCoordinator(t)
	o, _ := c.PlaceOrder(domain.PlaceOrderInput{TableID: "2", Lines: []domain.LineInput{{MenuItemID: "1", Quantity: 1}}})
	if _, err := c.UpdateMenuItem("1", domain.NewMenuItemInput{Name: "Truffle Burger", Price: dec("25"), Category: "Main Courses"}); err != nil {
		t.Fatalf("UpdateMenuItem() error = %v", err)
	}
	got, _ := c.Snapshot().Order(o.ID)
	if !got.Lines[0].Price.Equal(dec("18")) || !got.Total.Equal(dec("18")) {
		t.Errorf("order repriced to %s / %s", got.Lines[0].Price, got.Total)
	}
}

func TestAdvanceAtTerminalEdgeEmitsNothing(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.SetOrderStatus("1025", domain.StatusServed)
	rec.events = nil
	for _, st := range []domain.OrderStatus{domain.StatusServed, domain.StatusPaid, domain.StatusCancelled} {
		c.SetOrderStatus("1025", st)
		n := len(rec.events)
		o, err := c.AdvanceOrder("1025")
		if err != nil || o.Status != st {
			t.Fatalf("AdvanceOrder() on %s = %s, %v", st, o.Status, err)
		}
		if len(rec.events) != n {
			t.Errorf("AdvanceOrder() on %s emitted an event", st)
		}
	}
	if _, err := c.AdvanceOrder("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AdvanceOrder(unknown) error = %v", err)
	}
	if _, err := c.SetOrderStatus("nope", domain.StatusPaid); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SetOrderStatus(unknown) error = %v", err)
	}
}

func TestReactivatedOrderReoccupiesTable(t *testing.T) {
	c, _ := newTestCoordinator(t, WithTableRelease(true))
	if _, err := c.SetOrderStatus("1025", domain.StatusPaid); err != nil {
		t.Fatalf("SetOrderStatus(PAID) error = %v", err)
	}
	if tb, _ := c.Snapshot().Table("12"); tb.Status != domain.TableAvailable {
		t.Fatalf("table 12 = %s, want AVAILABLE with release policy", tb.Status)
	}
	if _, err := c.SetOrderStatus("1025", domain.StatusPending); err != nil {
		t.Fatalf("SetOrderStatus(PENDING) error = %v", err)
	}
	assertOccupancy(t, c.Snapshot())
}

func TestCancelOrder(t *testing.T) {
	c, _ := newTestCoordinator(t)
	o, err := c.CancelOrder("1024")
	if err != nil || o.Status != domain.StatusCancelled {
		t.Fatalf("CancelOrder() = %s, %v", o.Status, err)
	}
	if _, err := c.CancelOrder("1024"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("CancelOrder(cancelled) error = %v, want ErrValidation", err)
	}
	if tb, _ := c.Snapshot().Table("4"); tb.Status != domain.TableOccupied {
		t.Errorf("table 4 = %s, want OCCUPIED without release policy", tb.Status)
	}
}

func TestSetTableStatusGuardsActiveOrders(t *testing.T) {
	c, _ := newTestCoordinator(t)
	if _, err := c.SetTableStatus("4", domain.TableAvailable); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("freeing table with active order error = %v, want ErrValidation", err)
	}
	c.SetOrderStatus("1024", domain.StatusPaid)
	tb, err := c.SetTableStatus("4", domain.TableAvailable)
	if err != nil || tb.Status != domain.TableAvailable {
		t.Errorf("SetTableStatus() after payment = %s, %v", tb.Status, err)
	}
	if _, err := c.SetTableStatus("77", domain.TableReserved); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SetTableStatus(unknown) error = %v", err)
	}
}

func TestInventoryThroughCoordinator(t *testing.T) {
	c, rec := newTestCoordinator(t)
	it, err := c.AdjustStock("inv1", dec("-1"))
	if err != nil || !it.Stock.Equal(dec("1.5")) || it.Status != domain.StockCritical {
		t.Fatalf("AdjustStock(-1) = %s %s, %v", it.Stock, it.Status, err)
	}
	it, _ = c.AdjustStock("inv1", dec("-10"))
	if !it.Stock.IsZero() || it.Status != domain.StockCritical {
		t.Errorf("AdjustStock(-10) = %s %s, want 0 CRITICAL", it.Stock, it.Status)
	}
	if _, err := c.AdjustStock("ghost", dec("1")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AdjustStock(unknown) error = %v", err)
	}

	n := len(rec.events)
	c.RemoveInventoryItem("ghost")
	if len(rec.events) != n {
		t.Errorf("removing unknown item emitted an event")
	}
	c.RemoveInventoryItem("inv1")
	if _, ok := c.Snapshot().InventoryItem("inv1"); ok {
		t.Errorf("inv1 still present")
	}
}

func TestBill(t *testing.T) {
	c, _ := newTestCoordinator(t)
	b, err := c.Bill("1024")
	if err != nil {
		t.Fatalf("Bill() error = %v", err)
	}
	if !b.Tax.Equal(dec("3.45")) || !b.Subtotal.Equal(dec("31.05")) || !b.Total.Equal(dec("34.5")) {
		t.Errorf("Bill() = %+v", b)
	}
}

func TestLoginLogoutThroughCoordinator(t *testing.T) {
	c, rec := newTestCoordinator(t)
	id := domain.Identity{ID: "kitchen", Username: "kitchen", FullName: "Marcus Chef", Role: domain.RoleKitchen}
	if err := c.Login(context.Background(), id); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if s := c.Snapshot(); s.Identity == nil || *s.Identity != id {
		t.Fatalf("Snapshot().Identity = %v", s.Identity)
	}
	o, _ := c.SetOrderStatus("1025", domain.StatusServed)
	tl, _ := c.Timeline(o.ID)
	if last := tl[len(tl)-1]; last.ChangedBy != "Marcus Chef" {
		t.Errorf("ChangedBy = %q, want Marcus Chef", last.ChangedBy)
	}
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := c.Identity(); ok {
		t.Errorf("Identity() after logout still set")
	}
	got := rec.types()
	if got[0] != EventLogin || got[len(got)-1] != EventLogout || rec.events[len(got)-1].Actor != "Marcus Chef" {
		t.Errorf("events = %v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c, _ := newTestCoordinator(t)
	s := c.Snapshot()
	s.Orders[0].Lines[0].Quantity = 100
	s.Tables[0].Status = domain.TableWaiting
	fresh := c.Snapshot()
	if fresh.Orders[0].Lines[0].Quantity == 100 || fresh.Tables[0].Status == domain.TableWaiting {
		t.Fatalf("snapshot aliases coordinator state")
	}
}

func TestLoginWithoutSession(t *testing.T) {
	c := New(nil)
	id := domain.Identity{Username: "admin", FullName: "Alex Thompson", Role: domain.RoleAdmin}
	if err := c.Login(context.Background(), id); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Login() error = %v, want ErrNoSession", err)
	}
	if err := c.Logout(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Logout() error = %v, want ErrNoSession", err)
	}
	if _, ok := c.Identity(); ok {
		t.Errorf("Identity() without session reported a user")
	}
}

func TestPanickingMutationReleasesLocks(t *testing.T) {
	c, _ := newTestCoordinator(t)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("mutate() did not propagate the panic")
			}
		}()
		_ = c.mutate(func() ([]Event, error) { panic("boom") })
	}()

	done := make(chan error, 1)
	go func() {
		_ = c.Snapshot()
		_, err := c.PlaceOrder(domain.PlaceOrderInput{TableID: "7", Lines: []domain.LineInput{{MenuItemID: "1", Quantity: 1}}})
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("PlaceOrder() after panic error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("coordinator still locked after a panicking mutation")
	}
}

func TestWithOrderStore(t *testing.T) {
	n := 0
	store := orders.NewStore(
		orders.WithClock(func() time.Time { return testNow }),
		orders.WithLineIDs(func() string { n++; return fmt.Sprintf("line-%d", n) }),
	)
	c, _ := newTestCoordinator(t, WithOrderStore(store))
	o, err := c.PlaceOrder(domain.PlaceOrderInput{TableID: "7", Lines: []domain.LineInput{
		{MenuItemID: "1", Quantity: 1},
		{MenuItemID: "3", Quantity: 2},
	}})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if o.Lines[0].ID != "line-1" || o.Lines[1].ID != "line-2" {
		t.Errorf("line ids = %s, %s, want line-1, line-2", o.Lines[0].ID, o.Lines[1].ID)
	}
	if !o.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", o.CreatedAt, testNow)
	}
}
