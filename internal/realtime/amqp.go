package realtime

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPConfig describes a topic exchange where the routing key is the event
// name. An empty Queue gets a server named exclusive queue per subscription.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

type AMQPChannel struct {
	cfg AMQPConfig
	log *zap.Logger
}

func NewAMQPChannel(cfg AMQPConfig, log *zap.Logger) *AMQPChannel {
	return &AMQPChannel{cfg: cfg, log: log}
}

func (a *AMQPChannel) Subscribe(ctx context.Context, names ...string) (*Subscription, error) {
	conn, err := amqp.Dial(a.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	closeAll := func() error {
		return errors.Join(ch.Close(), conn.Close())
	}

	deliveries, err := a.consume(ch, names)
	if err != nil {
		_ = closeAll()
		return nil, err
	}

	receive := func(ctx context.Context, emit func(Event) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					a.log.Warn("amqp delivery channel closed", zap.String("exchange", a.cfg.Exchange))
					return
				}
				e := Event{Name: d.RoutingKey, Payload: d.Body, ReceivedAt: d.Timestamp}
				if len(e.Payload) == 0 {
					e.Payload = nil
				}
				if !emit(e) {
					return
				}
			}
		}
	}
	return newSubscription(ctx, names, receive, closeAll), nil
}

func (a *AMQPChannel) consume(ch *amqp.Channel, names []string) (<-chan amqp.Delivery, error) {
	if err := ch.ExchangeDeclare(a.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", a.cfg.Exchange, err)
	}

	durable, exclusive := true, false
	if a.cfg.Queue == "" {
		durable, exclusive = false, true
	}
	q, err := ch.QueueDeclare(a.cfg.Queue, durable, !durable, exclusive, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", a.cfg.Queue, err)
	}

	keys := names
	if len(keys) == 0 {
		keys = []string{"#"}
	}
	for _, key := range keys {
		if err := ch.QueueBind(q.Name, key, a.cfg.Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("queue bind %s: %w", key, err)
		}
	}

	msgs, err := ch.Consume(q.Name, "", true, exclusive, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", q.Name, err)
	}
	return msgs, nil
}
