package publisher

import (
	"context"
	"testing"
	"time"

	r "github.com/fjod/go_restaurant/internal/repository"
	"github.com/nats-io/nats.go"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}
	return brokers[0], cleanup
}

func TestKafkaSink_Publish(t *testing.T) {
	broker, cleanup := setupKafka(t)
	defer cleanup()

	sink := NewKafkaSink(broker)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	event := &r.OutboxEvent{ID: 1, AggregateId: "checkout-123", EventType: r.EventCheckoutSucceeded, Payload: []byte(`{"checkout_id":"checkout-123"}`)}
	require.Eventually(t, func() bool { return sink.Publish(ctx, event) == nil }, 20*time.Second, time.Second)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     Topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "checkout-123", string(msg.Key))
	assert.JSONEq(t, `{"checkout_id":"checkout-123"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, r.EventCheckoutSucceeded, string(msg.Headers[0].Value))
}

func TestNATSSink_Publish(t *testing.T) {
	ctx := context.Background()
	container, err := tcnats.Run(ctx, "nats:2.10")
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate nats container: %v", err)
		}
	}()

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()
	received, err := sub.SubscribeSync(r.EventCheckoutSucceeded)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	sink, err := NewNATSSink(url)
	require.NoError(t, err)
	defer sink.Close()

	event := &r.OutboxEvent{ID: 1, AggregateId: "checkout-9", EventType: r.EventCheckoutSucceeded, Payload: []byte(`{"checkout_id":"checkout-9"}`)}
	require.NoError(t, sink.Publish(ctx, event))

	msg, err := received.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "checkout-9", msg.Header.Get("Aggregate-Id"))
	assert.JSONEq(t, `{"checkout_id":"checkout-9"}`, string(msg.Data))
}

func TestNewNATSSink_Unreachable(t *testing.T) {
	_, err := NewNATSSink("nats://127.0.0.1:1")
	assert.ErrorContains(t, err, "failed to connect to NATS")
}
