package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"restaurant-system/internal/coordinator"
	"restaurant-system/internal/domain"
)

type adminTab int

const (
	tabOrders adminTab = iota
	tabTables
	tabMenu
	tabInventory
)

var adminTabs = []string{"Orders", "Tables", "Menu", "Inventory"}

// status keys for the permissive order override
var statusKeys = map[string]domain.OrderStatus{
	"1": domain.StatusPending,
	"2": domain.StatusCooking,
	"3": domain.StatusReady,
	"4": domain.StatusServed,
	"5": domain.StatusPaid,
	"6": domain.StatusCancelled,
}

var tableKeys = map[string]domain.TableStatus{
	"a": domain.TableAvailable,
	"o": domain.TableOccupied,
	"r": domain.TableReserved,
	"w": domain.TableWaiting,
}

type adminConsole struct {
	v   coordinator.AdminView
	sh  *shared
	tab adminTab
	cur [4]cursor

	form   *form
	submit func([]string) error
}

func newAdminConsole(v coordinator.AdminView, sh *shared) *adminConsole {
	return &adminConsole{v: v, sh: sh}
}

func (c *adminConsole) title() string   { return "Administration" }
func (c *adminConsole) capturing() bool { return c.form != nil }

func (c *adminConsole) help() string {
	if c.form != nil {
		return "editing"
	}
	switch c.tab {
	case tabOrders:
		return "tab switch · ↑↓ select · enter advance · 1-6 set status · x cancel · b bill"
	case tabTables:
		return "tab switch · ↑↓ select · a/o/r/w set status"
	case tabMenu:
		return "tab switch · ↑↓ select · n new · e edit · space toggle · d delete"
	default:
		return "tab switch · ↑↓ select · +/- stock · n new · e edit · d delete"
	}
}

func (c *adminConsole) rows(s coordinator.Snapshot) int {
	switch c.tab {
	case tabOrders:
		return len(s.Orders)
	case tabTables:
		return len(s.Tables)
	case tabMenu:
		return len(s.Menu)
	default:
		return len(s.Inventory)
	}
}

func (c *adminConsole) update(msg tea.Msg) tea.Cmd {
	if c.form != nil {
		cmd, submitted, cancelled := c.form.update(msg)
		switch {
		case cancelled:
			c.form = nil
		case submitted:
			if err := c.submit(c.form.values()); err != nil {
				c.sh.report(err, "")
				return nil
			}
			c.sh.report(nil, c.form.title+": saved")
			c.form = nil
		}
		return cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	s := c.v.Snapshot()
	key := k.String()
	switch key {
	case "tab":
		c.tab = (c.tab + 1) % 4
		return nil
	case "shift+tab":
		c.tab = (c.tab + 3) % 4
		return nil
	case "up", "k":
		c.cur[c.tab].move(-1, c.rows(s))
		return nil
	case "down", "j":
		c.cur[c.tab].move(1, c.rows(s))
		return nil
	}

	switch c.tab {
	case tabOrders:
		return c.orderKey(s, key)
	case tabTables:
		i, ok := c.cur[tabTables].at(len(s.Tables))
		if st, known := tableKeys[key]; ok && known {
			t, err := c.v.SetTableStatus(s.Tables[i].ID, st)
			c.sh.report(err, fmt.Sprintf("Table %s is %s", t.ID, t.Status))
		}
	case tabMenu:
		return c.menuKey(s, key)
	case tabInventory:
		return c.inventoryKey(s, key)
	}
	return nil
}

func (c *adminConsole) orderKey(s coordinator.Snapshot, key string) tea.Cmd {
	i, ok := c.cur[tabOrders].at(len(s.Orders))
	if !ok {
		return nil
	}
	id := s.Orders[i].ID
	var (
		o   domain.Order
		err error
	)
	switch key {
	case "enter":
		o, err = c.v.AdvanceOrder(id)
	case "x":
		o, err = c.v.CancelOrder(id)
	case "b":
		b, err := c.v.Bill(id)
		c.sh.report(err, fmt.Sprintf("Bill %s: subtotal %s + tax %s = %s", id, money(b.Subtotal), money(b.Tax), money(b.Total)))
		return nil
	default:
		st, known := statusKeys[key]
		if !known {
			return nil
		}
		o, err = c.v.SetOrderStatus(id, st)
	}
	c.sh.report(err, fmt.Sprintf("Order %s is %s", o.ID, o.Status))
	return nil
}

func (c *adminConsole) menuKey(s coordinator.Snapshot, key string) tea.Cmd {
	if key == "n" {
		return c.open("New dish", []string{"Name", "Price", "Category", "Description"}, nil, func(vals []string) error {
			in, err := menuInput(vals)
			if err != nil {
				return err
			}
			_, err = c.v.AddMenuItem(in)
			return err
		})
	}
	i, ok := c.cur[tabMenu].at(len(s.Menu))
	if !ok {
		return nil
	}
	m := s.Menu[i]
	switch key {
	case " ":
		it, err := c.v.SetMenuAvailability(m.ID, !m.Available)
		c.sh.report(err, fmt.Sprintf("%s available: %t", it.Name, it.Available))
	case "d":
		c.v.RemoveMenuItem(m.ID)
		c.sh.report(nil, m.Name+" removed")
	case "e":
		vals := []string{m.Name, m.Price.StringFixed(2), m.Category, m.Description}
		return c.open("Edit "+m.Name, []string{"Name", "Price", "Category", "Description"}, vals, func(vals []string) error {
			in, err := menuInput(vals)
			if err != nil {
				return err
			}
			_, err = c.v.UpdateMenuItem(m.ID, in)
			return err
		})
	}
	return nil
}

func (c *adminConsole) inventoryKey(s coordinator.Snapshot, key string) tea.Cmd {
	if key == "n" {
		return c.open("New stock item", []string{"Name", "Category", "Stock", "Unit"}, nil, func(vals []string) error {
			stock, err := parseDecimal("stock", vals[2])
			if err != nil {
				return err
			}
			_, err = c.v.AddInventoryItem(domain.NewInventoryItemInput{Name: vals[0], Category: vals[1], Stock: stock, Unit: vals[3]})
			return err
		})
	}
	i, ok := c.cur[tabInventory].at(len(s.Inventory))
	if !ok {
		return nil
	}
	it := s.Inventory[i]
	switch key {
	case "+", "=":
		got, err := c.v.AdjustStock(it.ID, decimal.NewFromInt(1))
		c.sh.report(err, fmt.Sprintf("%s: %s %s", got.Name, got.Stock, got.Unit))
	case "-":
		got, err := c.v.AdjustStock(it.ID, decimal.NewFromInt(-1))
		c.sh.report(err, fmt.Sprintf("%s: %s %s", got.Name, got.Stock, got.Unit))
	case "d":
		c.v.RemoveInventoryItem(it.ID)
		c.sh.report(nil, it.Name+" removed")
	case "e":
		return c.open("Edit "+it.Name, []string{"Name", "Category", "Unit"}, []string{it.Name, it.Category, it.Unit}, func(vals []string) error {
			_, err := c.v.ReplaceInventoryDetails(it.ID, domain.InventoryDetails{Name: vals[0], Category: vals[1], Unit: vals[2]})
			return err
		})
	}
	return nil
}

func (c *adminConsole) open(title string, labels, values []string, submit func([]string) error) tea.Cmd {
	c.form = newForm(title, labels, values)
	c.submit = submit
	return c.form.inputs[0].Focus()
}

func menuInput(vals []string) (domain.NewMenuItemInput, error) {
	price, err := parseDecimal("price", vals[1])
	if err != nil {
		return domain.NewMenuItemInput{}, err
	}
	return domain.NewMenuItemInput{Name: vals[0], Price: price, Category: vals[2], Description: vals[3]}, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "$"))
	if err != nil {
		return decimal.Zero, domain.Invalid(field, fmt.Sprintf("%q is not a number", s))
	}
	return d, nil
}

func (c *adminConsole) view() string {
	if c.form != nil {
		return paneStyle.Render(c.form.view())
	}
	s := c.v.Snapshot()
	var tabs []string
	for i, name := range adminTabs {
		if adminTab(i) == c.tab {
			tabs = append(tabs, cursorStyle.Render("["+name+"]"))
		} else {
			tabs = append(tabs, mutedStyle.Render(" "+name+" "))
		}
	}
	paid, revenue := s.Revenue()
	summary := fmt.Sprintf("Revenue %s from %d paid · %d active · %d occupied tables · %d stock alerts",
		money(revenue), paid, len(s.ActiveOrders()), len(s.OccupiedTables()), len(s.StockAlerts()))

	var body strings.Builder
	switch c.tab {
	case tabOrders:
		sel, _ := c.cur[tabOrders].at(len(s.Orders))
		for i, o := range s.Orders {
			fmt.Fprintf(&body, "%s%-18s table %-3s %-10s %8s  %d items  %s\n",
				marker(i == sel), o.ID, o.TableID, orderBadge(o.Status), money(o.Total), o.ItemCount(), o.StaffName)
		}
	case tabTables:
		sel, _ := c.cur[tabTables].at(len(s.Tables))
		for i, t := range s.Tables {
			fmt.Fprintf(&body, "%sTable %-3s %-10s seats %d  %s\n", marker(i == sel), t.ID, tableBadge(t.Status), t.Capacity, t.Zone)
		}
	case tabMenu:
		sel, _ := c.cur[tabMenu].at(len(s.Menu))
		for i, m := range s.Menu {
			avail := okStyle.Render("on")
			if !m.Available {
				avail = errStyle.Render("off")
			}
			fmt.Fprintf(&body, "%s%-20s %8s  %-14s %s\n", marker(i == sel), m.Name, money(m.Price), m.Category, avail)
		}
	case tabInventory:
		sel, _ := c.cur[tabInventory].at(len(s.Inventory))
		for i, it := range s.Inventory {
			fmt.Fprintf(&body, "%s%-22s %6s %-6s %-12s %s\n", marker(i == sel), it.Name, it.Stock.String(), it.Unit, it.Category, stockBadge(it.Status))
		}
	}
	if body.Len() == 0 {
		body.WriteString(mutedStyle.Render("Nothing here yet."))
	}
	return strings.Join([]string{strings.Join(tabs, " "), mutedStyle.Render(summary), "", strings.TrimRight(body.String(), "\n")}, "\n")
}
