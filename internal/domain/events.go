package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type StatusLineMsg struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Note     string          `json:"note,omitempty"`
}

// StatusMessage is what goes out on the notifications exchange for every
// order change.
type StatusMessage struct {
	Event     string          `json:"event"`
	OrderID   string          `json:"order_id"`
	TableID   string          `json:"table_id"`
	OldStatus OrderStatus     `json:"old_status,omitempty"`
	NewStatus OrderStatus     `json:"new_status"`
	ChangedBy string          `json:"changed_by,omitempty"`
	Items     []StatusLineMsg `json:"items,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewStatusMessage(event string, o Order, old OrderStatus, changedBy string, at time.Time) StatusMessage {
	items := make([]StatusLineMsg, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, StatusLineMsg{Name: l.Name, Quantity: l.Quantity, Price: l.Price, Note: l.Note})
	}
	return StatusMessage{
		Event:     event,
		OrderID:   o.ID,
		TableID:   o.TableID,
		OldStatus: old,
		NewStatus: o.Status,
		ChangedBy: changedBy,
		Items:     items,
		Total:     o.Total,
		Timestamp: at.UTC(),
	}
}
