package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"restaurant-system/internal/domain"
)

// shared is the chrome every console writes to: the status line and the
// terminal size.
type shared struct {
	status string
	isErr  bool
	width  int
	height int
}

func (s *shared) report(err error, ok string) {
	if err != nil {
		s.status, s.isErr = err.Error(), true
		return
	}
	s.status, s.isErr = ok, false
}

func (s *shared) statusLine() string {
	switch {
	case s.status == "":
		return ""
	case s.isErr:
		return errStyle.Render("✗ " + s.status)
	default:
		return okStyle.Render("✓ " + s.status)
	}
}

// cursor is a row index clamped to the current list length.
type cursor int

func (c *cursor) move(delta, n int) {
	v := int(*c) + delta
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	*c = cursor(v)
}

func (c cursor) at(n int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	if int(c) >= n {
		return n - 1, true
	}
	return int(c), true
}

func marker(selected bool) string {
	if selected {
		return cursorStyle.Render("▸ ")
	}
	return "  "
}

// cart collects menu quantities before they go to the kitchen.
type cart struct {
	qty   map[string]int
	order []string
}

func newCart() *cart { return &cart{qty: map[string]int{}} }

func (c *cart) add(id string) {
	if c.qty[id] == 0 {
		c.order = append(c.order, id)
	}
	c.qty[id]++
}

func (c *cart) remove(id string) {
	if c.qty[id] == 0 {
		return
	}
	c.qty[id]--
	if c.qty[id] > 0 {
		return
	}
	delete(c.qty, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *cart) empty() bool { return len(c.order) == 0 }

func (c *cart) reset() {
	c.qty = map[string]int{}
	c.order = nil
}

func (c *cart) lines() []domain.LineInput {
	out := make([]domain.LineInput, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, domain.LineInput{MenuItemID: id, Quantity: c.qty[id]})
	}
	return out
}

func (c *cart) total(menu []domain.MenuItem) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range menu {
		if q := c.qty[m.ID]; q > 0 {
			sum = sum.Add(m.Price.Mul(decimal.NewFromInt(int64(q))))
		}
	}
	return sum
}

// menuPicker renders the available menu with cart quantities.
func menuPicker(menu []domain.MenuItem, c *cart, cur cursor) string {
	if len(menu) == 0 {
		return mutedStyle.Render("Nothing on the menu right now.")
	}
	sel, _ := cur.at(len(menu))
	var b strings.Builder
	category := ""
	for i, m := range menu {
		if m.Category != category {
			category = m.Category
			b.WriteString(mutedStyle.Render(category) + "\n")
		}
		qty := ""
		if q := c.qty[m.ID]; q > 0 {
			qty = okStyle.Render(fmt.Sprintf(" ×%d", q))
		}
		fmt.Fprintf(&b, "%s%-20s %8s%s\n", marker(i == sel), m.Name, money(m.Price), qty)
	}
	fmt.Fprintf(&b, "\nCart total: %s", money(c.total(menu)))
	return b.String()
}

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func orderSummary(o domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s · table %s · %s · %s\n", o.ID, o.TableID, orderBadge(o.Status), money(o.Total))
	for _, l := range o.Lines {
		note := ""
		if l.Note != "" {
			note = mutedStyle.Render(" (" + l.Note + ")")
		}
		fmt.Fprintf(&b, "    %d× %s%s\n", l.Quantity, l.Name, note)
	}
	return strings.TrimRight(b.String(), "\n")
}

// form is a small stack of labelled text inputs.
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(title string, labels []string, values []string) *form {
	f := &form{title: title, labels: labels}
	for i := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 64
		if i < len(values) {
			in.SetValue(values[i])
		}
		f.inputs = append(f.inputs, in)
	}
	f.inputs[0].Focus()
	return f
}

func (f *form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

func (f *form) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// update reports submitted when enter is pressed on the last field and
// cancelled on esc.
func (f *form) update(msg tea.Msg) (cmd tea.Cmd, submitted, cancelled bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			return nil, false, true
		case "tab", "down":
			return f.setFocus(f.focus + 1), false, false
		case "shift+tab", "up":
			return f.setFocus(f.focus - 1), false, false
		case "enter":
			if f.focus == len(f.inputs)-1 {
				return nil, true, false
			}
			return f.setFocus(f.focus + 1), false, false
		}
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd, false, false
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(f.title) + "\n")
	for i, in := range f.inputs {
		fmt.Fprintf(&b, "%s%-12s %s\n", marker(i == f.focus), f.labels[i], in.View())
	}
	b.WriteString(helpStyle.Render("tab next field · enter save · esc cancel"))
	return b.String()
}
