package publisher

import (
	"context"
	"fmt"

	r "github.com/fjod/go_restaurant/internal/repository"
	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"
)

const Topic = "checkout-outbox"

// Sink delivers one outbox event to a broker. Publish returns only once the
// broker has accepted the event.
type Sink interface {
	Publish(ctx context.Context, event *r.OutboxEvent) error
	Close() error
}

type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers ...string) *KafkaSink {
	return &KafkaSink{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}}
}

func (k *KafkaSink) Publish(ctx context.Context, event *r.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateId), // checkout id keeps one checkout's events ordered
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return k.writer.WriteMessages(ctx, msg)
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}

// NATSSink publishes each event on a subject named after its type.
type NATSSink struct {
	conn *nats.Conn
}

func NewNATSSink(url string) (*NATSSink, error) {
	conn, err := nats.Connect(url, nats.Name("storefront-outbox"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSSink{conn: conn}, nil
}

func (n *NATSSink) Publish(ctx context.Context, event *r.OutboxEvent) error {
	msg := nats.NewMsg(event.EventType)
	msg.Data = event.Payload
	msg.Header.Set("Aggregate-Id", event.AggregateId)
	if err := n.conn.PublishMsg(msg); err != nil {
		return err
	}
	return n.conn.FlushWithContext(ctx)
}

func (n *NATSSink) Close() error {
	n.conn.Close()
	return nil
}
