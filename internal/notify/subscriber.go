package notify

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-system/internal/common/logger"
	"restaurant-system/internal/domain"
)

var ErrStreamClosed = errors.New("notify: delivery stream closed")

// Consumer is the consuming half of mq.Client.
type Consumer interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error)
}

type Subscriber struct {
	src      Consumer
	queue    string
	name     string
	prefetch int
	log      *logger.Logger
	handle   func(domain.StatusMessage)
}

// NewSubscriber reads from queue. handle may be nil; every message is logged
// either way.
func NewSubscriber(src Consumer, queue string, lg *logger.Logger, handle func(domain.StatusMessage)) *Subscriber {
	return &Subscriber{src: src, queue: queue, name: "notification-subscriber", prefetch: 10, log: lg, handle: handle}
}

// Run acks decoded messages and drops malformed ones without requeue. It
// returns nil when ctx is done and ErrStreamClosed when the broker closes
// the stream.
func (s *Subscriber) Run(ctx context.Context) error {
	deliveries, err := s.src.Consume(s.queue, s.name, s.prefetch)
	if err != nil {
		return err
	}
	s.log.Info("subscriber_started", map[string]any{"queue": s.queue})
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return ErrStreamClosed
			}
			s.deliver(d)
		}
	}
}

func (s *Subscriber) deliver(d amqp.Delivery) {
	var msg domain.StatusMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.OrderID == "" {
		if err == nil {
			err = errors.New("missing order_id")
		}
		s.log.Error("notification_malformed", err, map[string]any{"message_id": d.MessageId})
		_ = d.Nack(false, false)
		return
	}
	s.log.Info("notification_received", map[string]any{
		"event":      msg.Event,
		"order_id":   msg.OrderID,
		"table_id":   msg.TableID,
		"old_status": string(msg.OldStatus),
		"new_status": string(msg.NewStatus),
		"changed_by": msg.ChangedBy,
	})
	if s.handle != nil {
		s.handle(msg)
	}
	_ = d.Ack(false)
}
