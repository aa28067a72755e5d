package coordinator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"restaurant-system/internal/domain"
)

// View is a role-scoped handle onto the coordinator. The set of views is
// closed; use Visit to dispatch on it.
//
// Views only decide which operations a console can reach. They are not an
// authorization boundary.
type View interface {
	Identity() domain.Identity
	Snapshot() Snapshot
	isView()
}

// Visitor has one arm per role.
type Visitor[T any] interface {
	VisitAdmin(AdminView) T
	VisitStaff(StaffView) T
	VisitKitchen(KitchenView) T
	VisitCashier(CashierView) T
	VisitCustomer(CustomerView) T
}

func Visit[T any](v View, vis Visitor[T]) T {
	switch v := v.(type) {
	case AdminView:
		return vis.VisitAdmin(v)
	case StaffView:
		return vis.VisitStaff(v)
	case KitchenView:
		return vis.VisitKitchen(v)
	case CashierView:
		return vis.VisitCashier(v)
	case CustomerView:
		return vis.VisitCustomer(v)
	}
	panic(fmt.Sprintf("coordinator: unknown view %T", v))
}

// ViewFor builds the handle matching the identity's role.
func (c *Coordinator) ViewFor(id domain.Identity) (View, error) {
	b := base{c: c, id: id}
	switch id.Role {
	case domain.RoleAdmin:
		return AdminView{b}, nil
	case domain.RoleStaff:
		return StaffView{b}, nil
	case domain.RoleKitchen:
		return KitchenView{b}, nil
	case domain.RoleCashier:
		return CashierView{b}, nil
	case domain.RoleCustomer:
		if id.TableID == "" {
			return nil, domain.Invalid("table_id", "customer account is not bound to a table")
		}
		return CustomerView{b}, nil
	}
	return nil, domain.Invalid("role", "unknown role "+string(id.Role))
}

// CurrentView is the view of the signed-in identity.
func (c *Coordinator) CurrentView() (View, bool) {
	id, ok := c.Identity()
	if !ok {
		return nil, false
	}
	v, err := c.ViewFor(id)
	return v, err == nil
}

type base struct {
	c  *Coordinator
	id domain.Identity
}

func (b base) Identity() domain.Identity { return b.id }
func (b base) Snapshot() Snapshot        { return b.c.Snapshot() }
func (base) isView()                     {}

// AdminView reaches every operation.
type AdminView struct{ base }

func (v AdminView) PlaceOrder(in domain.PlaceOrderInput) (domain.Order, error) {
	return v.c.placeOrder(v.id.FullName, in)
}
func (v AdminView) AddItems(tableID string, lines []domain.LineInput) (domain.Order, error) {
	return v.c.addItems(v.id.FullName, tableID, lines)
}
func (v AdminView) AdvanceOrder(id string) (domain.Order, error) {
	return v.c.advanceOrder(v.id.FullName, id)
}
func (v AdminView) SetOrderStatus(id string, st domain.OrderStatus) (domain.Order, error) {
	return v.c.setOrderStatus(v.id.FullName, id, st)
}
func (v AdminView) CancelOrder(id string) (domain.Order, error) {
	return v.c.cancelOrder(v.id.FullName, id)
}
func (v AdminView) SetTableStatus(id string, st domain.TableStatus) (domain.Table, error) {
	return v.c.setTableStatus(v.id.FullName, id, st)
}
func (v AdminView) Bill(id string) (domain.Bill, error) {
	return v.c.Bill(id)
}
func (v AdminView) Timeline(id string) ([]domain.StatusChange, error) {
	return v.c.Timeline(id)
}
func (v AdminView) AddMenuItem(in domain.NewMenuItemInput) (domain.MenuItem, error) {
	return v.c.AddMenuItem(in)
}
func (v AdminView) UpdateMenuItem(id string, in domain.NewMenuItemInput) (domain.MenuItem, error) {
	return v.c.UpdateMenuItem(id, in)
}
func (v AdminView) SetMenuAvailability(id string, available bool) (domain.MenuItem, error) {
	return v.c.SetMenuAvailability(id, available)
}
func (v AdminView) RemoveMenuItem(id string) { v.c.RemoveMenuItem(id) }
func (v AdminView) AddInventoryItem(in domain.NewInventoryItemInput) (domain.InventoryItem, error) {
	return v.c.AddInventoryItem(in)
}
func (v AdminView) AdjustStock(id string, delta decimal.Decimal) (domain.InventoryItem, error) {
	return v.c.AdjustStock(id, delta)
}
func (v AdminView) ReplaceInventoryDetails(id string, d domain.InventoryDetails) (domain.InventoryItem, error) {
	return v.c.ReplaceInventoryDetails(id, d)
}
func (v AdminView) RemoveInventoryItem(id string) { v.c.RemoveInventoryItem(id) }

// StaffView is the floor: take orders, add to running tickets, serve.
type StaffView struct{ base }

// PlaceOrder stamps the order with the signed-in waiter.
func (v StaffView) PlaceOrder(tableID string, lines []domain.LineInput) (domain.Order, error) {
	return v.c.placeOrder(v.id.FullName, domain.PlaceOrderInput{TableID: tableID, Lines: lines, StaffName: v.id.FullName})
}

// SubmitCart adds to the table's running ticket or opens a new one.
func (v StaffView) SubmitCart(tableID string, lines []domain.LineInput) (domain.Order, error) {
	return v.c.addItems(v.id.FullName, tableID, lines)
}
func (v StaffView) MarkServed(id string) (domain.Order, error) {
	return v.c.setOrderStatus(v.id.FullName, id, domain.StatusServed)
}
func (v StaffView) SetTableStatus(id string, st domain.TableStatus) (domain.Table, error) {
	return v.c.setTableStatus(v.id.FullName, id, st)
}

// ActiveOrders filters running tickets by table or order id.
func (v StaffView) ActiveOrders(query string) []domain.Order {
	return v.Snapshot().SearchActive(query)
}

// KitchenView works the ticket lanes and the pantry.
type KitchenView struct{ base }

type Lanes struct {
	Pending []domain.Order
	Cooking []domain.Order
	Ready   []domain.Order
}

func (v KitchenView) Lanes() Lanes {
	s := v.Snapshot()
	return Lanes{
		Pending: s.OrdersWithStatus(domain.StatusPending),
		Cooking: s.OrdersWithStatus(domain.StatusCooking),
		Ready:   s.OrdersWithStatus(domain.StatusReady),
	}
}
func (v KitchenView) StartCooking(id string) (domain.Order, error) {
	return v.c.setOrderStatus(v.id.FullName, id, domain.StatusCooking)
}
func (v KitchenView) MarkReady(id string) (domain.Order, error) {
	return v.c.setOrderStatus(v.id.FullName, id, domain.StatusReady)
}
func (v KitchenView) Advance(id string) (domain.Order, error) {
	return v.c.advanceOrder(v.id.FullName, id)
}
func (v KitchenView) AdjustStock(id string, delta decimal.Decimal) (domain.InventoryItem, error) {
	return v.c.AdjustStock(id, delta)
}

// CashierView settles bills.
type CashierView struct{ base }

// AwaitingPayment lists active orders, SERVED ones first.
func (v CashierView) AwaitingPayment() []domain.Order {
	s := v.Snapshot()
	out := s.OrdersWithStatus(domain.StatusServed)
	for _, o := range s.ActiveOrders() {
		if o.Status != domain.StatusServed {
			out = append(out, o)
		}
	}
	return out
}
func (v CashierView) Bill(id string) (domain.Bill, error) { return v.c.Bill(id) }
func (v CashierView) Settle(id string) (domain.Order, error) {
	return v.c.setOrderStatus(v.id.FullName, id, domain.StatusPaid)
}

// CustomerView is bound to the table of the customer account.
type CustomerView struct{ base }

func (v CustomerView) TableID() string { return v.id.TableID }

func (v CustomerView) Menu() []domain.MenuItem { return v.Snapshot().AvailableMenu() }

// Checkout sends the cart to the kitchen, joining the table's running order.
func (v CustomerView) Checkout(lines []domain.LineInput) (domain.Order, error) {
	return v.c.addItems(v.id.FullName, v.id.TableID, lines)
}

func (v CustomerView) MyOrder() (domain.Order, bool) {
	return v.Snapshot().ActiveOrderFor(v.id.TableID)
}
