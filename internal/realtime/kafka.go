package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventTypeHeader carries the event name on Kafka messages. Messages without
// it fall back to their key.
const EventTypeHeader = "event_type"

type KafkaConfig struct {
	Brokers []string
	Topic   string
	// GroupID is optional. Without it every terminal reads the whole topic
	// from the newest offset.
	GroupID string
}

type KafkaChannel struct {
	cfg KafkaConfig
	log *zap.Logger
}

func NewKafkaChannel(cfg KafkaConfig, log *zap.Logger) *KafkaChannel {
	return &KafkaChannel{cfg: cfg, log: log}
}

func (k *KafkaChannel) Subscribe(ctx context.Context, names ...string) (*Subscription, error) {
	if len(k.cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	rc := kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		Topic:    k.cfg.Topic,
		GroupID:  k.cfg.GroupID,
		MaxBytes: 10e6, // 10MB
	}
	if rc.GroupID == "" {
		rc.StartOffset = kafka.LastOffset
	}
	reader := kafka.NewReader(rc)

	receive := func(ctx context.Context, emit func(Event) bool) {
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				k.log.Warn("kafka read failed", zap.String("topic", k.cfg.Topic), zap.Error(err))
				select {
				case <-time.After(time.Second):
					continue
				case <-ctx.Done():
					return
				}
			}
			if !emit(kafkaEvent(m)) {
				return
			}
		}
	}
	return newSubscription(ctx, names, receive, reader.Close), nil
}

func kafkaEvent(m kafka.Message) Event {
	name := string(m.Key)
	for _, h := range m.Headers {
		if h.Key == EventTypeHeader && len(h.Value) > 0 {
			name = string(h.Value)
			break
		}
	}
	e := Event{Name: name, Payload: m.Value, ReceivedAt: m.Time}
	if len(e.Payload) == 0 {
		e.Payload = nil
	}
	return e
}
