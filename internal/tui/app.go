// Package tui is the floor terminal: a sign-in screen followed by the console
// of the signed-in role. Every console re-reads the coordinator snapshot when
// it renders, so a mutation made in one Update shows up in the next View.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"restaurant-system/internal/assistant"
	"restaurant-system/internal/common/logger"
	"restaurant-system/internal/coordinator"
	"restaurant-system/internal/session"
)

type appState int

const (
	stateLogin appState = iota
	stateConsole
)

// console is one role screen.
type console interface {
	title() string
	help() string
	update(msg tea.Msg) tea.Cmd
	view() string
	// capturing is true while a text field has focus, which turns off the
	// single-key shortcuts of the app.
	capturing() bool
}

type AppOption func(*App)

func WithAssistant(ai *assistant.Assistant) AppOption {
	return func(a *App) { a.ai = ai }
}

func WithLogger(lg *logger.Logger) AppOption {
	return func(a *App) { a.log = lg }
}

func WithTitle(name string) AppOption {
	return func(a *App) {
		if name != "" {
			a.name = name
		}
	}
}

type App struct {
	coord *coordinator.Coordinator
	dir   *session.Directory
	ai    *assistant.Assistant
	log   *logger.Logger
	name  string

	state   appState
	login   loginForm
	console console
	sh      *shared
}

func NewApp(c *coordinator.Coordinator, dir *session.Directory, opts ...AppOption) *App {
	a := &App{
		coord: c,
		dir:   dir,
		name:  "Gourmet Kitchen",
		login: newLoginForm(),
		sh:    &shared{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.ai == nil {
		a.ai = assistant.New(nil, "")
	}
	// a persisted session skips the sign-in screen
	if v, ok := c.CurrentView(); ok {
		a.enter(v)
	}
	return a
}

func (a *App) Init() tea.Cmd { return textinput.Blink }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.sh.width, a.sh.height = msg.Width, msg.Height
		return a, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+o":
			if a.state == stateConsole {
				return a, a.signOut()
			}
		}
	}

	if a.state == stateLogin {
		return a, a.updateLogin(msg)
	}
	if k, ok := msg.(tea.KeyMsg); ok && !a.console.capturing() && k.String() == "q" {
		return a, tea.Quit
	}
	return a, a.console.update(msg)
}

func (a *App) updateLogin(msg tea.Msg) tea.Cmd {
	cmd, submitted := a.login.update(msg)
	if !submitted {
		return cmd
	}
	user, pass := a.login.credentials()
	id, err := a.dir.Authenticate(user, pass)
	if err != nil {
		a.login.err = err.Error()
		return cmd
	}
	v, err := a.coord.ViewFor(id)
	if err != nil {
		a.login.err = err.Error()
		return cmd
	}
	if err := a.coord.Login(context.Background(), id); err != nil {
		a.login.err = err.Error()
		a.log.Error("login_failed", err, map[string]any{"username": id.Username})
		return cmd
	}
	a.login.reset()
	a.enter(v)
	return nil
}

func (a *App) enter(v coordinator.View) {
	a.console = coordinator.Visit[console](v, consoleBuilder{sh: a.sh, ai: a.ai})
	a.state = stateConsole
	a.sh.report(nil, "Signed in as "+v.Identity().FullName)
}

func (a *App) signOut() tea.Cmd {
	if err := a.coord.Logout(context.Background()); err != nil {
		a.sh.report(err, "")
		return nil
	}
	a.console = nil
	a.state = stateLogin
	a.sh.report(nil, "")
	return a.login.focusUser()
}

func (a *App) View() string {
	if a.state == stateLogin {
		return a.login.view(a.name, a.dir)
	}
	id, _ := a.coord.Identity()
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("🍽  "+a.name),
		mutedStyle.Render(fmt.Sprintf("  ·  %s  ·  %s (%s)", a.console.title(), id.FullName, id.Role)),
	)
	parts := []string{header, "", a.console.view(), ""}
	if line := a.sh.statusLine(); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, helpStyle.Render(a.console.help()+" · ctrl+o sign out · ctrl+c quit"))
	return strings.Join(parts, "\n")
}

type consoleBuilder struct {
	sh *shared
	ai *assistant.Assistant
}

func (b consoleBuilder) VisitAdmin(v coordinator.AdminView) console {
	return newAdminConsole(v, b.sh)
}

func (b consoleBuilder) VisitStaff(v coordinator.StaffView) console {
	return newStaffConsole(v, b.sh)
}

func (b consoleBuilder) VisitKitchen(v coordinator.KitchenView) console {
	return newKitchenConsole(v, b.sh)
}

func (b consoleBuilder) VisitCashier(v coordinator.CashierView) console {
	return newCashierConsole(v, b.sh)
}

func (b consoleBuilder) VisitCustomer(v coordinator.CustomerView) console {
	return newCustomerConsole(v, b.sh, b.ai)
}

// ---- sign in ----

type loginForm struct {
	user, pass textinput.Model
	focusPass  bool
	err        string
}

func newLoginForm() loginForm {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 32
	user.Focus()
	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 64
	return loginForm{user: user, pass: pass}
}

func (f *loginForm) credentials() (string, string) {
	return strings.TrimSpace(f.user.Value()), f.pass.Value()
}

func (f *loginForm) focusUser() tea.Cmd {
	f.focusPass = false
	f.pass.Blur()
	return f.user.Focus()
}

func (f *loginForm) reset() {
	f.user.SetValue("")
	f.pass.SetValue("")
	f.err = ""
	f.focusUser()
}

func (f *loginForm) update(msg tea.Msg) (tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "shift+tab", "up", "down":
			if f.focusPass {
				return f.focusUser(), false
			}
			f.focusPass = true
			f.user.Blur()
			return f.pass.Focus(), false
		case "enter":
			if !f.focusPass {
				f.focusPass = true
				f.user.Blur()
				return f.pass.Focus(), false
			}
			return nil, true
		}
	}
	var cmd tea.Cmd
	if f.focusPass {
		f.pass, cmd = f.pass.Update(msg)
	} else {
		f.user, cmd = f.user.Update(msg)
	}
	return cmd, false
}

func (f *loginForm) view(name string, dir *session.Directory) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🍽  "+name) + "\n")
	b.WriteString(mutedStyle.Render("Sign in to the floor terminal") + "\n\n")
	b.WriteString("Username  " + f.user.View() + "\n")
	b.WriteString("Password  " + f.pass.View() + "\n")
	if f.err != "" {
		b.WriteString("\n" + errStyle.Render(f.err) + "\n")
	}
	var accounts []string
	for _, id := range dir.Identities() {
		accounts = append(accounts, fmt.Sprintf("%s (%s)", id.Username, strings.ToLower(string(id.Role))))
	}
	b.WriteString("\n" + helpStyle.Render("Accounts: "+strings.Join(accounts, ", ")))
	b.WriteString("\n" + helpStyle.Render("tab switch field · enter sign in · ctrl+c quit"))
	return paneStyle.Render(b.String())
}
