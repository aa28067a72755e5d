// Package notify fans order changes out to RabbitMQ and reads them back for
// the notification-subscriber mode.
package notify

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-system/internal/common/logger"
	"restaurant-system/internal/coordinator"
	"restaurant-system/internal/domain"
)

const (
	Source         = "restaurant-console"
	publishTimeout = 5 * time.Second
)

// Sender is the publishing half of mq.Client.
type Sender interface {
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
}

// Publisher is a coordinator observer. OnEvent only enqueues; Run does the
// broker round-trips, so a slow broker never holds up a mutation.
type Publisher struct {
	send     Sender
	exchange string
	log      *logger.Logger
	queue    chan amqp.Publishing

	dropped atomic.Int64
	sent    atomic.Int64
}

func NewPublisher(send Sender, exchange string, buffer int, lg *logger.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 1
	}
	return &Publisher{
		send:     send,
		exchange: exchange,
		log:      lg,
		queue:    make(chan amqp.Publishing, buffer),
	}
}

func (p *Publisher) OnEvent(_ context.Context, ev coordinator.Event) {
	switch ev.Type {
	case coordinator.EventOrderPlaced, coordinator.EventOrderItemsAdded, coordinator.EventOrderStatusChanged:
	default:
		return
	}
	if ev.Order == nil {
		return
	}
	msg := domain.NewStatusMessage(string(ev.Type), *ev.Order, ev.OldStatus, ev.Actor, ev.At)
	body, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("notification_encode_failed", err, map[string]any{"order_id": msg.OrderID})
		return
	}
	pub := amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     uuid.NewString(),
		CorrelationId: msg.OrderID,
		Type:          msg.Event,
		Timestamp:     msg.Timestamp,
		Headers:       amqp.Table{"x-source": Source},
		Body:          body,
	}
	select {
	case p.queue <- pub:
	default:
		p.dropped.Add(1)
		p.log.Warn("notification_dropped", map[string]any{"order_id": msg.OrderID, "event": msg.Event})
	}
}

// Run publishes queued messages until ctx is done, then flushes what is
// already queued with a short deadline.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case pub := <-p.queue:
			p.publish(ctx, pub)
		case <-ctx.Done():
			p.flush()
			return nil
		}
	}
}

func (p *Publisher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	for {
		select {
		case pub := <-p.queue:
			p.publish(ctx, pub)
		default:
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, pub amqp.Publishing) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.send.Publish(ctx, p.exchange, "", pub); err != nil {
		p.log.Error("notification_publish_failed", err, map[string]any{"order_id": pub.CorrelationId, "event": pub.Type})
		return
	}
	p.sent.Add(1)
	p.log.Debug("notification_published", map[string]any{"order_id": pub.CorrelationId, "event": pub.Type})
}

// Stats reports published and dropped message counts.
func (p *Publisher) Stats() (sent, dropped int64) { return p.sent.Load(), p.dropped.Load() }
