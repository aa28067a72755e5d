package coordinator

import (
	"context"
	"strings"
	"time"

	"restaurant-system/internal/common/logger"
	"restaurant-system/internal/domain"
)

type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderItemsAdded    EventType = "order.items_added"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventTableStatusChanged EventType = "table.status_changed"
	EventMenuChanged        EventType = "menu.changed"
	EventInventoryChanged   EventType = "inventory.changed"
	EventLogin              EventType = "session.login"
	EventLogout             EventType = "session.logout"
)

// Event describes one committed change. Snapshot is the state right after
// the mutation that produced it.
type Event struct {
	Type      EventType
	At        time.Time
	Actor     string
	Order     *domain.Order
	OldStatus domain.OrderStatus
	Table     *domain.Table
	Subject   string // menu or inventory item id
	Snapshot  Snapshot
}

// Observer is called synchronously after every mutation, in call order.
// Observers may read Snapshot but must not call mutations.
type Observer interface {
	OnEvent(ctx context.Context, ev Event)
}

type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnEvent(ctx context.Context, ev Event) { f(ctx, ev) }

// LogObserver writes every event to the structured log.
type LogObserver struct {
	log *logger.Logger
}

func NewLogObserver(lg *logger.Logger) *LogObserver { return &LogObserver{log: lg} }

func (o *LogObserver) OnEvent(_ context.Context, ev Event) {
	fields := map[string]any{"actor": ev.Actor, "version": ev.Snapshot.Version}
	if ev.Order != nil {
		fields["order_id"] = ev.Order.ID
		fields["table_id"] = ev.Order.TableID
		fields["status"] = string(ev.Order.Status)
		fields["total"] = ev.Order.Total.StringFixed(2)
		if ev.OldStatus != "" {
			fields["old_status"] = string(ev.OldStatus)
		}
	}
	if ev.Table != nil {
		fields["table_id"] = ev.Table.ID
		fields["table_status"] = string(ev.Table.Status)
	}
	if ev.Subject != "" {
		fields["subject"] = ev.Subject
	}
	o.log.Info(strings.ReplaceAll(string(ev.Type), ".", "_"), fields)
}
