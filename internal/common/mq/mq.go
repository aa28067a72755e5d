package mq

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-system/internal/common/config"
)

var ErrNack = errors.New("mq: publish nacked by broker")

var errNoConfirm = errors.New("mq: channel is not in confirm mode")

// confirmation is the broker's answer to one publish.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type publishFunc func(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)

// Client is one connection with one confirm-mode channel.
type Client struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	publish publishFunc
}

func URL(cfg config.MQ) string {
	vhost := cfg.VHost
	if vhost == "" {
		vhost = "/"
	}
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(cfg.User, cfg.Pass),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	return u.String() + "/" + url.PathEscape(vhost)
}

func Dial(cfg config.MQ) (*Client, error) {
	conn, err := amqp.Dial(URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("mq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mq: open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("mq: confirm mode: %w", err)
	}
	return &Client{conn: conn, ch: ch, publish: deferredPublish(ch)}, nil
}

func deferredPublish(ch *amqp.Channel) publishFunc {
	return func(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
		dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
		if err != nil {
			return nil, err
		}
		if dc == nil {
			return nil, errNoConfirm
		}
		return dc, nil
	}
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// DeclareFanout declares a durable fanout exchange and, when queue is not
// empty, a durable queue bound to it.
func (c *Client) DeclareFanout(exchange, queue string) error {
	if err := c.ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("mq: declare %s: %w", exchange, err)
	}
	if queue == "" {
		return nil
	}
	if _, err := c.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("mq: declare queue %s: %w", queue, err)
	}
	if err := c.ch.QueueBind(queue, "", exchange, false, nil); err != nil {
		return fmt.Errorf("mq: bind %s -> %s: %w", queue, exchange, err)
	}
	return nil
}

// Publish sends msg and waits for its own broker confirm or ctx. A confirm
// that arrives after ctx is done is discarded with its publish.
func (c *Client) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	conf, err := c.publish(ctx, exchange, key, msg)
	if err != nil {
		return fmt.Errorf("mq: publish to %s: %w", exchange, err)
	}
	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ack {
		return ErrNack
	}
	return nil
}

// Consume starts a manual-ack consumer with the given prefetch.
func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch > 0 {
		if err := c.ch.Qos(prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("mq: qos: %w", err)
		}
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}
