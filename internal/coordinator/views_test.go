package coordinator

import (
	"context"
	"errors"
	"testing"

	"restaurant-system/internal/domain"
)

type roleName struct{}

func (roleName) VisitAdmin(AdminView) string       { return "admin" }
func (roleName) VisitStaff(StaffView) string       { return "staff" }
func (roleName) VisitKitchen(KitchenView) string   { return "kitchen" }
func (roleName) VisitCashier(CashierView) string   { return "cashier" }
func (roleName) VisitCustomer(CustomerView) string { return "customer" }

func TestVisitDispatchesOnRole(t *testing.T) {
	c, _ := newTestCoordinator(t)
	cases := map[domain.Role]string{
		domain.RoleAdmin:    "admin",
		domain.RoleStaff:    "staff",
		domain.RoleKitchen:  "kitchen",
		domain.RoleCashier:  "cashier",
		domain.RoleCustomer: "customer",
	}
	for role, want := range cases {
		v, err := c.ViewFor(domain.Identity{Username: "u", Role: role, TableID: "5"})
		if err != nil {
			t.Fatalf("ViewFor(%s) error = %v", role, err)
		}
		if got := Visit[string](v, roleName{}); got != want {
			t.Errorf("Visit(%s) = %q, want %q", role, got, want)
		}
	}
}

func TestViewForCustomerNeedsTable(t *testing.T) {
	c, _ := newTestCoordinator(t)
	if _, err := c.ViewFor(domain.Identity{Username: "guest", Role: domain.RoleCustomer}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ViewFor(customer without table) error = %v, want ErrValidation", err)
	}
	if _, err := c.ViewFor(domain.Identity{Username: "x", Role: "JANITOR"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ViewFor(unknown role) error = %v, want ErrValidation", err)
	}
}

func TestCurrentViewFollowsLogin(t *testing.T) {
	c, _ := newTestCoordinator(t)
	if _, ok := c.CurrentView(); ok {
		t.Fatalf("CurrentView() before login returned a view")
	}
	c.Login(context.Background(), domain.Identity{Username: "cashier", FullName: "Michael Cash", Role: domain.RoleCashier})
	v, ok := c.CurrentView()
	if !ok {
		t.Fatalf("CurrentView() after login returned nothing")
	}
	if _, isCashier := v.(CashierView); !isCashier {
		t.Errorf("CurrentView() = %T, want CashierView", v)
	}
}

func TestKitchenLanes(t *testing.T) {
	c, _ := newTestCoordinator(t)
	v, _ := c.ViewFor(domain.Identity{Username: "kitchen", FullName: "Marcus Chef", Role: domain.RoleKitchen})
	k := v.(KitchenView)

	lanes := k.Lanes()
	if len(lanes.Pending) != 0 || len(lanes.Cooking) != 1 || len(lanes.Ready) != 1 {
		t.Fatalf("Lanes() = %d/%d/%d, want 0/1/1", len(lanes.Pending), len(lanes.Cooking), len(lanes.Ready))
	}
	o, err := k.MarkReady("1024")
	if err != nil || o.Status != domain.StatusReady {
		t.Fatalf("MarkReady() = %s, %v", o.Status, err)
	}
	if got := len(k.Lanes().Ready); got != 2 {
		t.Errorf("ready lane = %d, want 2", got)
	}
	tl, _ := c.Timeline("1024")
	if last := tl[len(tl)-1]; last.ChangedBy != "Marcus Chef" {
		t.Errorf("ChangedBy = %q, want Marcus Chef", last.ChangedBy)
	}
}

func TestCashierSettlesServedFirst(t *testing.T) {
	c, _ := newTestCoordinator(t)
	c.SetOrderStatus("1024", domain.StatusServed)
	v, _ := c.ViewFor(domain.Identity{Username: "cashier", FullName: "Michael Cash", Role: domain.RoleCashier})
	cv := v.(CashierView)

	queue := cv.AwaitingPayment()
	if len(queue) != 2 || queue[0].ID != "1024" {
		t.Fatalf("AwaitingPayment() = %v, want 1024 first", queue)
	}
	o, err := cv.Settle("1024")
	if err != nil || o.Status != domain.StatusPaid {
		t.Fatalf("Settle() = %s, %v", o.Status, err)
	}
	n, total := cv.Snapshot().Revenue()
	if n != 1 || !total.Equal(dec("34.5")) {
		t.Errorf("Revenue() = %d, %s", n, total)
	}
}

func TestCustomerCheckoutJoinsTableOrder(t *testing.T) {
	c, _ := newTestCoordinator(t)
	v, _ := c.ViewFor(domain.Identity{Username: "customer", FullName: "Guest Table 05", Role: domain.RoleCustomer, TableID: "5"})
	cv := v.(CustomerView)

	if _, ok := cv.MyOrder(); ok {
		t.Fatalf("MyOrder() before checkout found an order")
	}
	first, err := cv.Checkout([]domain.LineInput{{MenuItemID: "3", Quantity: 1}})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	second, err := cv.Checkout([]domain.LineInput{{MenuItemID: "5", Quantity: 2}})
	if err != nil {
		t.Fatalf("second Checkout() error = %v", err)
	}
	if second.ID != first.ID || !second.Total.Equal(dec("25")) {
		t.Errorf("second Checkout() = %s total %s, want %s total 25", second.ID, second.Total, first.ID)
	}
	mine, ok := cv.MyOrder()
	if !ok || mine.ID != first.ID || mine.StaffName != "Guest Table 05" {
		t.Errorf("MyOrder() = %+v, %v", mine, ok)
	}
}

func TestStaffSearch(t *testing.T) {
	c, _ := newTestCoordinator(t)
	v, _ := c.ViewFor(domain.Identity{Username: "staff", FullName: "Sarah Jenkins", Role: domain.RoleStaff})
	sv := v.(StaffView)
	if got := sv.ActiveOrders("12"); len(got) != 1 || got[0].ID != "1025" {
		t.Errorf("ActiveOrders(12) = %v", got)
	}
	if got := sv.ActiveOrders(""); len(got) != 2 {
		t.Errorf("ActiveOrders() = %d orders, want 2", len(got))
	}
}
