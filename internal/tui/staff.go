package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"restaurant-system/internal/coordinator"
	"restaurant-system/internal/domain"
)

type staffFocus int

const (
	focusTables staffFocus = iota
	focusOrders
)

type staffConsole struct {
	v  coordinator.StaffView
	sh *shared

	focus    staffFocus
	tableCur cursor
	orderCur cursor

	// ordering for a table
	cartTable string
	cart      *cart
	menuCur   cursor

	search    textinput.Model
	searching bool
}

func newStaffConsole(v coordinator.StaffView, sh *shared) *staffConsole {
	search := textinput.New()
	search.Placeholder = "table or order id"
	search.Prompt = "/ "
	return &staffConsole{v: v, sh: sh, cart: newCart(), search: search}
}

func (c *staffConsole) title() string   { return "Floor" }
func (c *staffConsole) capturing() bool { return c.searching }

func (c *staffConsole) help() string {
	switch {
	case c.searching:
		return "type to filter · enter/esc done"
	case c.cartTable != "":
		return "↑↓ dish · +/- quantity · enter send to kitchen · esc back"
	case c.focus == focusTables:
		return "tab orders · ↑↓ table · enter take order · a/r/w set status"
	default:
		return "tab tables · ↑↓ order · s served · / search"
	}
}

func (c *staffConsole) update(msg tea.Msg) tea.Cmd {
	if c.searching {
		if k, ok := msg.(tea.KeyMsg); ok && (k.String() == "enter" || k.String() == "esc") {
			c.searching = false
			c.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		c.search, cmd = c.search.Update(msg)
		c.orderCur = 0
		return cmd
	}
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	s := c.v.Snapshot()
	if c.cartTable != "" {
		c.cartKey(s, k.String())
		return nil
	}

	switch k.String() {
	case "tab":
		c.focus = 1 - c.focus
		return nil
	case "/":
		c.focus = focusOrders
		c.searching = true
		return c.search.Focus()
	}
	if c.focus == focusTables {
		c.tableKey(s, k.String())
		return nil
	}

	orders := c.v.ActiveOrders(c.search.Value())
	switch k.String() {
	case "up", "k":
		c.orderCur.move(-1, len(orders))
	case "down", "j":
		c.orderCur.move(1, len(orders))
	case "s":
		if i, ok := c.orderCur.at(len(orders)); ok {
			o, err := c.v.MarkServed(orders[i].ID)
			c.sh.report(err, fmt.Sprintf("Order %s served", o.ID))
		}
	}
	return nil
}

func (c *staffConsole) tableKey(s coordinator.Snapshot, key string) {
	i, ok := c.tableCur.at(len(s.Tables))
	switch key {
	case "up", "k":
		c.tableCur.move(-1, len(s.Tables))
	case "down", "j":
		c.tableCur.move(1, len(s.Tables))
	case "enter":
		if ok {
			c.cartTable = s.Tables[i].ID
			c.cart.reset()
			c.menuCur = 0
		}
	default:
		st, known := tableKeys[key]
		if ok && known && st != domain.TableOccupied {
			t, err := c.v.SetTableStatus(s.Tables[i].ID, st)
			c.sh.report(err, fmt.Sprintf("Table %s is %s", t.ID, t.Status))
		}
	}
}

func (c *staffConsole) cartKey(s coordinator.Snapshot, key string) {
	menu := s.AvailableMenu()
	i, ok := c.menuCur.at(len(menu))
	switch key {
	case "esc":
		c.cartTable = ""
	case "up", "k":
		c.menuCur.move(-1, len(menu))
	case "down", "j":
		c.menuCur.move(1, len(menu))
	case "+", "=", "right", "l":
		if ok {
			c.cart.add(menu[i].ID)
		}
	case "-", "left", "h":
		if ok {
			c.cart.remove(menu[i].ID)
		}
	case "enter":
		o, err := c.v.SubmitCart(c.cartTable, c.cart.lines())
		c.sh.report(err, fmt.Sprintf("Order %s for table %s: %s", o.ID, o.TableID, money(o.Total)))
		if err == nil {
			c.cartTable = ""
			c.cart.reset()
		}
	}
}

func (c *staffConsole) view() string {
	s := c.v.Snapshot()
	if c.cartTable != "" {
		title := "Order for table " + c.cartTable
		if cur, ok := s.ActiveOrderFor(c.cartTable); ok {
			title += " (adds to " + cur.ID + ")"
		}
		return pane(title, menuPicker(s.AvailableMenu(), c.cart, c.menuCur), true)
	}

	var tables strings.Builder
	sel, _ := c.tableCur.at(len(s.Tables))
	for i, t := range s.Tables {
		fmt.Fprintf(&tables, "%sTable %-3s %s\n", marker(i == sel && c.focus == focusTables), t.ID, tableBadge(t.Status))
	}

	var orders strings.Builder
	if c.searching || c.search.Value() != "" {
		orders.WriteString(c.search.View() + "\n\n")
	}
	active := c.v.ActiveOrders(c.search.Value())
	osel, _ := c.orderCur.at(len(active))
	for i, o := range active {
		orders.WriteString(marker(i == osel && c.focus == focusOrders) + orderSummary(o) + "\n")
	}
	if len(active) == 0 {
		orders.WriteString(mutedStyle.Render("No running orders."))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		pane("Tables", strings.TrimRight(tables.String(), "\n"), c.focus == focusTables),
		pane("Active orders", strings.TrimRight(orders.String(), "\n"), c.focus == focusOrders),
	)
}
