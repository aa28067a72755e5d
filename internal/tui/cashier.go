package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"restaurant-system/internal/coordinator"
)

type cashierConsole struct {
	v   coordinator.CashierView
	sh  *shared
	cur cursor
}

func newCashierConsole(v coordinator.CashierView, sh *shared) *cashierConsole {
	return &cashierConsole{v: v, sh: sh}
}

func (c *cashierConsole) title() string   { return "Register" }
func (c *cashierConsole) capturing() bool { return false }
func (c *cashierConsole) help() string    { return "↑↓ select · enter/p settle" }

func (c *cashierConsole) update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	queue := c.v.AwaitingPayment()
	switch k.String() {
	case "up", "k":
		c.cur.move(-1, len(queue))
	case "down", "j":
		c.cur.move(1, len(queue))
	case "enter", "p":
		i, ok := c.cur.at(len(queue))
		if !ok {
			return nil
		}
		b, err := c.v.Bill(queue[i].ID)
		if err == nil {
			_, err = c.v.Settle(queue[i].ID)
		}
		c.sh.report(err, fmt.Sprintf("Order %s paid: %s", b.OrderID, money(b.Total)))
	}
	return nil
}

func (c *cashierConsole) view() string {
	queue := c.v.AwaitingPayment()
	sel, ok := c.cur.at(len(queue))

	var list strings.Builder
	for i, o := range queue {
		fmt.Fprintf(&list, "%s%-18s table %-3s %s %8s\n", marker(i == sel), o.ID, o.TableID, orderBadge(o.Status), money(o.Total))
	}
	if len(queue) == 0 {
		list.WriteString(mutedStyle.Render("Nothing to settle."))
	}

	bill := mutedStyle.Render("Select an order.")
	if ok {
		o := queue[sel]
		if b, err := c.v.Bill(o.ID); err == nil {
			bill = fmt.Sprintf("%s\n\nSubtotal %10s\nTax      %10s\nTotal    %10s",
				orderSummary(o), money(b.Subtotal), money(b.Tax), headerStyle.Render(money(b.Total)))
		}
	}

	paid, revenue := c.v.Snapshot().Revenue()
	footer := mutedStyle.Render(fmt.Sprintf("Today: %d paid orders, %s", paid, money(revenue)))
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top,
			pane("Awaiting payment", strings.TrimRight(list.String(), "\n"), true),
			pane("Bill", bill, false),
		),
		footer,
	)
}
