package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testChannel = "pos-events"

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func requireClosed(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case _, ok := <-sub.Events():
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestRedisChannel_DeliversNamedEvents(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	sub, err := NewRedisChannel(client, testChannel, zap.NewNop()).
		Subscribe(ctx, domain.EventOrderCreated, domain.EventOrderUpdated)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, client.Publish(ctx, testChannel, `{"event":"kitchen-ticket:created","data":{"id":"t1"}}`).Err())
	require.NoError(t, client.Publish(ctx, testChannel, `not json`).Err())
	require.NoError(t, client.Publish(ctx, testChannel, `{"event":"order:created","data":{"id":"o1"}}`).Err())

	e := receive(t, sub)
	assert.Equal(t, domain.EventOrderCreated, e.Name)
	assert.JSONEq(t, `{"id":"o1"}`, string(e.Payload))
	assert.False(t, e.ReceivedAt.IsZero())
}

func TestRedisChannel_AllEventsWithoutNames(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	sub, err := NewRedisChannel(client, testChannel, zap.NewNop()).Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, client.Publish(ctx, testChannel, `{"event":"kitchen-ticket:updated"}`).Err())
	e := receive(t, sub)
	assert.Equal(t, domain.EventKitchenTicketUpdated, e.Name)
	assert.Nil(t, e.Payload)
}

func TestRedisChannel_ContextCancelStops(t *testing.T) {
	client := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := NewRedisChannel(client, testChannel, zap.NewNop()).Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	requireClosed(t, sub)
	assert.NoError(t, sub.Close())
}

func TestRedisChannel_SubscribeFailsWhenDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisChannel(client, testChannel, zap.NewNop()).Subscribe(ctx)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	sub, err := Nop{}.Subscribe(context.Background(), domain.AllEvents...)
	require.NoError(t, err)

	select {
	case <-sub.Events():
		t.Fatal("nop emitted an event")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, sub.Close())
	requireClosed(t, sub)
	assert.NoError(t, sub.Close())
}

func TestKafkaEvent(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	e := kafkaEvent(kafka.Message{
		Key:     []byte("order-42"),
		Value:   []byte(`{"id":"42"}`),
		Headers: []kafka.Header{{Key: "trace", Value: []byte("x")}, {Key: EventTypeHeader, Value: []byte("order:updated")}},
		Time:    at,
	})
	assert.Equal(t, domain.EventOrderUpdated, e.Name)
	assert.JSONEq(t, `{"id":"42"}`, string(e.Payload))
	assert.Equal(t, at, e.ReceivedAt)

	e = kafkaEvent(kafka.Message{Key: []byte("order:created")})
	assert.Equal(t, domain.EventOrderCreated, e.Name)
	assert.Nil(t, e.Payload)
}

func TestKafkaChannel_NoBrokers(t *testing.T) {
	_, err := NewKafkaChannel(KafkaConfig{Topic: "t"}, zap.NewNop()).Subscribe(context.Background())
	assert.Error(t, err)
}
