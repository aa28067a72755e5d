package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCooking   OrderStatus = "COOKING"
	StatusReady     OrderStatus = "READY"
	StatusServed    OrderStatus = "SERVED"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusCooking, StatusReady, StatusServed, StatusPaid, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports PAID and CANCELLED. SERVED is still awaiting payment.
func (s OrderStatus) Terminal() bool { return s == StatusPaid || s == StatusCancelled }

// Next returns the following status of the linear kitchen sequence
// PENDING -> COOKING -> READY -> SERVED. ok is false from SERVED onwards.
func (s OrderStatus) Next() (next OrderStatus, ok bool) {
	switch s {
	case StatusPending:
		return StatusCooking, true
	case StatusCooking:
		return StatusReady, true
	case StatusReady:
		return StatusServed, true
	default:
		return s, false
	}
}

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
	TableWaiting   TableStatus = "WAITING"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableWaiting:
		return true
	}
	return false
}

type StockStatus string

const (
	StockCritical StockStatus = "CRITICAL"
	StockLow      StockStatus = "LOW"
	StockHealthy  StockStatus = "HEALTHY"
)

var (
	criticalBelow = decimal.NewFromInt(2)
	lowBelow      = decimal.NewFromInt(5)
)

// ClassifyStock: < 2 critical, [2, 5) low, >= 5 healthy.
func ClassifyStock(stock decimal.Decimal) StockStatus {
	switch {
	case stock.LessThan(criticalBelow):
		return StockCritical
	case stock.LessThan(lowBelow):
		return StockLow
	default:
		return StockHealthy
	}
}

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleKitchen  Role = "KITCHEN"
	RoleCashier  Role = "CASHIER"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleKitchen, RoleCashier, RoleCustomer:
		return true
	}
	return false
}

// Identity is the signed-in actor. TableID is only meaningful for customers
// seated at a table.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	TableID  string `json:"table_id,omitempty"`
}

type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Available   bool            `json:"available"`
}

// OrderLine carries the name and price captured when the line was added.
type OrderLine struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Note       string          `json:"note,omitempty"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SumLines is the only way an order total is produced.
func SumLines(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

type Order struct {
	ID        string          `json:"id"`
	TableID   string          `json:"table_id"`
	Lines     []OrderLine     `json:"lines"`
	Status    OrderStatus     `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	StaffName string          `json:"staff_name,omitempty"`
}

func (o Order) Active() bool { return !o.Status.Terminal() }

// Clone copies the line slice so the result shares nothing with o.
func (o Order) Clone() Order {
	c := o
	c.Lines = append([]OrderLine(nil), o.Lines...)
	return c
}

func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

type Table struct {
	ID       string      `json:"id"`
	Status   TableStatus `json:"status"`
	Capacity int         `json:"capacity"`
	Zone     string      `json:"zone"`
}

type InventoryItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Stock    decimal.Decimal `json:"stock"`
	Unit     string          `json:"unit"`
	Status   StockStatus     `json:"status"`
}

// Bill splits a tax-inclusive total.
type Bill struct {
	OrderID  string          `json:"order_id"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func BillFor(o Order, taxRate decimal.Decimal) Bill {
	tax := o.Total.Mul(taxRate).Round(2)
	return Bill{
		OrderID:  o.ID,
		Subtotal: o.Total.Sub(tax),
		Tax:      tax,
		Total:    o.Total,
	}
}

// StatusChange is one row of an order's status log.
type StatusChange struct {
	OrderID   string      `json:"order_id"`
	From      OrderStatus `json:"from,omitempty"`
	To        OrderStatus `json:"to"`
	ChangedBy string      `json:"changed_by,omitempty"`
	Note      string      `json:"note,omitempty"`
	At        time.Time   `json:"changed_at"`
}
