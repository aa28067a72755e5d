package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"restaurant-system/internal/coordinator"
	"restaurant-system/internal/domain"
)

type kitchenConsole struct {
	v  coordinator.KitchenView
	sh *shared

	lane int // 0 pending, 1 cooking, 2 ready, 3 pantry
	cur  [4]cursor
}

func newKitchenConsole(v coordinator.KitchenView, sh *shared) *kitchenConsole {
	return &kitchenConsole{v: v, sh: sh}
}

func (c *kitchenConsole) title() string   { return "Kitchen" }
func (c *kitchenConsole) capturing() bool { return false }

func (c *kitchenConsole) help() string {
	if c.lane == 3 {
		return "←→ lane · ↑↓ item · +/- stock"
	}
	return "←→ lane · ↑↓ ticket · enter advance · c cooking · r ready"
}

func (c *kitchenConsole) lanes() [3][]domain.Order {
	l := c.v.Lanes()
	return [3][]domain.Order{l.Pending, l.Cooking, l.Ready}
}

func (c *kitchenConsole) update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	lanes := c.lanes()
	pantry := c.v.Snapshot().Inventory
	n := len(pantry)
	if c.lane < 3 {
		n = len(lanes[c.lane])
	}

	switch k.String() {
	case "left", "h":
		c.lane = (c.lane + 3) % 4
		return nil
	case "right", "l", "tab":
		c.lane = (c.lane + 1) % 4
		return nil
	case "up", "k":
		c.cur[c.lane].move(-1, n)
		return nil
	case "down", "j":
		c.cur[c.lane].move(1, n)
		return nil
	}

	i, ok := c.cur[c.lane].at(n)
	if !ok {
		return nil
	}
	if c.lane == 3 {
		delta := map[string]int64{"+": 1, "=": 1, "-": -1}[k.String()]
		if delta != 0 {
			it, err := c.v.AdjustStock(pantry[i].ID, decimal.NewFromInt(delta))
			c.sh.report(err, fmt.Sprintf("%s: %s %s (%s)", it.Name, it.Stock, it.Unit, it.Status))
		}
		return nil
	}

	id := lanes[c.lane][i].ID
	var (
		o   domain.Order
		err error
	)
	switch k.String() {
	case "enter", " ":
		o, err = c.v.Advance(id)
	case "c":
		o, err = c.v.StartCooking(id)
	case "r":
		o, err = c.v.MarkReady(id)
	default:
		return nil
	}
	c.sh.report(err, fmt.Sprintf("Ticket %s → %s", o.ID, o.Status))
	return nil
}

func (c *kitchenConsole) view() string {
	lanes := c.lanes()
	titles := []string{"Pending", "Cooking", "Ready"}
	cols := make([]string, 0, 4)
	for li, orders := range lanes {
		var b strings.Builder
		sel, _ := c.cur[li].at(len(orders))
		for i, o := range orders {
			b.WriteString(marker(li == c.lane && i == sel) + orderSummary(o) + "\n")
		}
		if len(orders) == 0 {
			b.WriteString(mutedStyle.Render("—"))
		}
		cols = append(cols, pane(fmt.Sprintf("%s (%d)", titles[li], len(orders)), strings.TrimRight(b.String(), "\n"), li == c.lane))
	}

	s := c.v.Snapshot()
	var p strings.Builder
	sel, _ := c.cur[3].at(len(s.Inventory))
	for i, it := range s.Inventory {
		fmt.Fprintf(&p, "%s%-22s %6s %-5s %s\n", marker(c.lane == 3 && i == sel), it.Name, it.Stock.String(), it.Unit, stockBadge(it.Status))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	return lipgloss.JoinVertical(lipgloss.Left, board, pane("Pantry", strings.TrimRight(p.String(), "\n"), c.lane == 3))
}
