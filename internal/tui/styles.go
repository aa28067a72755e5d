package tui

import (
	"github.com/charmbracelet/lipgloss"

	"restaurant-system/internal/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C42"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
)

var paneStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#444444")).
	Padding(0, 1)

var focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("#5B8DEF"))

var orderStatusColors = map[domain.OrderStatus]string{
	domain.StatusPending:   "#F7B801",
	domain.StatusCooking:   "#FF8C42",
	domain.StatusReady:     "#4CAF50",
	domain.StatusServed:    "#5B8DEF",
	domain.StatusPaid:      "#999999",
	domain.StatusCancelled: "#FF6B6B",
}

var tableStatusColors = map[domain.TableStatus]string{
	domain.TableAvailable: "#4CAF50",
	domain.TableOccupied:  "#FF8C42",
	domain.TableReserved:  "#5B8DEF",
	domain.TableWaiting:   "#F7B801",
}

var stockStatusColors = map[domain.StockStatus]string{
	domain.StockHealthy:  "#4CAF50",
	domain.StockLow:      "#F7B801",
	domain.StockCritical: "#FF6B6B",
}

func badge(text, color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(text)
}

func orderBadge(s domain.OrderStatus) string { return badge(string(s), orderStatusColors[s]) }
func tableBadge(s domain.TableStatus) string { return badge(string(s), tableStatusColors[s]) }
func stockBadge(s domain.StockStatus) string { return badge(string(s), stockStatusColors[s]) }

func pane(title, body string, focused bool) string {
	st := paneStyle
	if focused {
		st = focusedPaneStyle
	}
	return st.Render(lipgloss.JoinVertical(lipgloss.Left, headerStyle.Render(title), body))
}
