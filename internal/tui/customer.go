package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"restaurant-system/internal/assistant"
	"restaurant-system/internal/coordinator"
)

type customerConsole struct {
	v  coordinator.CustomerView
	sh *shared
	ai *assistant.Assistant

	cart *cart
	cur  cursor

	prompt  textinput.Model
	asking  bool
	kind    assistant.Kind
	loading bool
	spin    spinner.Model
	answer  string
}

func newCustomerConsole(v coordinator.CustomerView, sh *shared, ai *assistant.Assistant) *customerConsole {
	prompt := textinput.New()
	prompt.Placeholder = "I feel like something spicy…"
	prompt.CharLimit = 200
	return &customerConsole{
		v:      v,
		sh:     sh,
		ai:     ai,
		cart:   newCart(),
		prompt: prompt,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (c *customerConsole) title() string   { return "Table " + c.v.TableID() }
func (c *customerConsole) capturing() bool { return c.asking }

func (c *customerConsole) help() string {
	if c.asking {
		return "enter ask · tab dishes/booking · esc close"
	}
	return "↑↓ dish · +/- quantity · enter send order · ? ask the AI waiter"
}

func (c *customerConsole) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case assistant.Reply:
		c.loading = false
		c.answer = msg.Text
		return nil
	case spinner.TickMsg:
		if !c.loading {
			return nil
		}
		var cmd tea.Cmd
		c.spin, cmd = c.spin.Update(msg)
		return cmd
	case tea.KeyMsg:
		if c.asking {
			return c.promptKey(msg)
		}
		return c.menuKey(msg.String())
	}
	return nil
}

func (c *customerConsole) promptKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc":
		c.asking = false
		c.prompt.Blur()
		return nil
	case "tab":
		c.kind = 1 - c.kind
		return nil
	case "enter":
		q := c.prompt.Value()
		if q == "" || c.loading {
			return nil
		}
		c.asking = false
		c.prompt.Blur()
		c.prompt.SetValue("")
		c.loading = true
		c.answer = ""
		return tea.Batch(c.spin.Tick, c.ai.Ask(c.kind, q, c.v.Menu()))
	}
	var cmd tea.Cmd
	c.prompt, cmd = c.prompt.Update(k)
	return cmd
}

func (c *customerConsole) menuKey(key string) tea.Cmd {
	menu := c.v.Menu()
	i, ok := c.cur.at(len(menu))
	switch key {
	case "?":
		c.asking = true
		return c.prompt.Focus()
	case "up", "k":
		c.cur.move(-1, len(menu))
	case "down", "j":
		c.cur.move(1, len(menu))
	case "+", "=", "right", "l":
		if ok {
			c.cart.add(menu[i].ID)
		}
	case "-", "left", "h":
		if ok {
			c.cart.remove(menu[i].ID)
		}
	case "enter":
		o, err := c.v.Checkout(c.cart.lines())
		c.sh.report(err, fmt.Sprintf("Sent to the kitchen. Your order %s is %s", o.ID, o.Status))
		if err == nil {
			c.cart.reset()
		}
	}
	return nil
}

func (c *customerConsole) view() string {
	left := pane("Menu", menuPicker(c.v.Menu(), c.cart, c.cur), !c.asking)

	mine := mutedStyle.Render("No order yet.")
	if o, ok := c.v.MyOrder(); ok {
		mine = orderSummary(o)
	}

	label := "Ask for dish suggestions"
	if c.kind == assistant.KindReservation {
		label = "Ask the concierge about bookings"
	}
	ai := mutedStyle.Render("Press ? to ask the AI waiter.")
	switch {
	case c.asking:
		ai = label + "\n" + c.prompt.View()
	case c.loading:
		ai = c.spin.View() + " Thinking…"
	case c.answer != "":
		ai = lipgloss.NewStyle().Width(48).Render(c.answer)
	}

	right := lipgloss.JoinVertical(lipgloss.Left, pane("My order", mine, false), pane("AI waiter", ai, c.asking))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
