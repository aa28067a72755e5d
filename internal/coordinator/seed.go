package coordinator

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-system/internal/domain"
)

// Seed is the initial content of the collections.
type Seed struct {
	Menu      []domain.MenuItem
	Inventory []domain.InventoryItem
	Tables    []domain.Table
	Orders    []domain.Order
}

// DefaultSeed is the demo floor: twelve tables in the main hall with every
// fourth one seated, a small menu, the pantry and two tickets in flight.
func DefaultSeed(now time.Time) Seed {
	d := decimal.RequireFromString

	menu := []domain.MenuItem{
		{ID: "1", Name: "Truffle Burger", Price: d("18"), Category: "Main Courses", Description: "Angus beef, black truffle mayo, brioche bun.", Available: true},
		{ID: "2", Name: "Caesar Salad", Price: d("12"), Category: "Appetizers", Description: "Romaine, parmesan, garlic croutons.", Available: true},
		{ID: "3", Name: "Margherita Pizza", Price: d("14"), Category: "Main Courses", Description: "San Marzano tomatoes, mozzarella, basil.", Available: true},
		{ID: "4", Name: "Spicy Miso Ramen", Price: d("15"), Category: "Main Courses", Description: "Pork broth, chili miso, soft egg.", Available: true},
		{ID: "5", Name: "House Lemonade", Price: d("5.50"), Category: "Beverages", Description: "Fresh lemons, mint, sparkling water.", Available: true},
	}

	inv := []domain.InventoryItem{
		{ID: "inv1", Name: "San Marzano Tomatoes", Category: "Produce", Stock: d("2.5"), Unit: "kg"},
		{ID: "inv2", Name: "Ribeye Steak", Category: "Meat", Stock: d("4"), Unit: "units"},
		{ID: "inv3", Name: "Whole Milk", Category: "Dairy", Stock: d("12"), Unit: "L"},
		{ID: "inv4", Name: "Arborio Rice", Category: "Dry Goods", Stock: d("25"), Unit: "kg"},
		{ID: "inv5", Name: "Fresh Basil", Category: "Produce", Stock: d("0.8"), Unit: "kg"},
	}

	tbls := make([]domain.Table, 0, 12)
	for i := 0; i < 12; i++ {
		st := domain.TableAvailable
		if i%4 == 0 {
			st = domain.TableOccupied
		}
		tbls = append(tbls, domain.Table{ID: strconv.Itoa(i + 1), Status: st, Capacity: 4, Zone: "Main Hall"})
	}

	// newest first
	orders := []domain.Order{
		{
			ID:      "1025",
			TableID: "12",
			Status:  domain.StatusReady,
			Lines: []domain.OrderLine{
				{ID: "1025-1", MenuItemID: "2", Name: "Caesar Salad", Price: d("12"), Quantity: 1},
			},
			CreatedAt: now.Add(-5 * time.Minute),
		},
		{
			ID:      "1024",
			TableID: "4",
			Status:  domain.StatusCooking,
			Lines: []domain.OrderLine{
				{ID: "1024-1", MenuItemID: "1", Name: "Truffle Burger", Price: d("18"), Quantity: 1, Note: "No onions"},
				{ID: "1024-2", MenuItemID: "5", Name: "House Lemonade", Price: d("5.50"), Quantity: 3},
			},
			CreatedAt: now.Add(-15 * time.Minute),
			StaffName: "Sarah Jenkins",
		},
	}
	return Seed{Menu: menu, Inventory: inv, Tables: tbls, Orders: orders}
}
