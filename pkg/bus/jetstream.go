package bus

import (
	"context"
	"fmt"
	"log"
	"time"

	"docstream-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const streamName = "PIPELINE"

// JetStreamBus is the production Bus over NATS JetStream. Topics map to
// subjects "pipeline.<topic>.<partition>"; a file-backed stream keeps every
// partition durable, and each (group, topic, partition) gets its own durable
// consumer with explicit acks and a single in-flight message, which is what
// gives per-partition ordered, at-least-once processing.
type JetStreamBus struct {
	nc         *nats.Conn
	js         jetstream.JetStream
	partitions int
	consumers  []jetstream.ConsumeContext
}

// NewJetStreamBus connects to NATS and ensures the pipeline stream exists.
func NewJetStreamBus(url string, partitions int) (*JetStreamBus, error) {
	if partitions < 1 {
		partitions = 1
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"pipeline.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		// NATS may not be ready yet or the stream already exists with a
		// different owner; publishing will surface a hard failure if so.
		log.Printf("Warn: Failed to ensure stream %q: %v", streamName, err)
	}

	return &JetStreamBus{nc: nc, js: js, partitions: partitions}, nil
}

func (b *JetStreamBus) subject(topic string, partition int) string {
	return fmt.Sprintf("pipeline.%s.%d", topic, partition)
}

// Publish appends the payload to the partition derived from key.
func (b *JetStreamBus) Publish(ctx context.Context, topic, key string, payload []byte) error {
	subject := b.subject(topic, events.Partition(key, b.partitions))
	if _, err := b.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// Subscribe creates one durable consumer per partition. MaxAckPending of 1
// keeps a single message in flight per partition, so a document's events are
// processed to completion in order before the next one is delivered.
func (b *JetStreamBus) Subscribe(ctx context.Context, topic, group string, partitions []int, h Handler) error {
	for _, p := range partitions {
		durable := fmt.Sprintf("%s-%s-%d", group, topic, p)
		consumer, err := b.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
			Durable:       durable,
			FilterSubject: b.subject(topic, p),
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       5 * time.Minute,
			MaxAckPending: 1,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer %s: %w", durable, err)
		}

		cc, err := consumer.Consume(func(msg jetstream.Msg) {
			if err := h(context.Background(), msg.Data()); err != nil {
				log.Printf("Handler failed for subject %s: %v", msg.Subject(), err)
				msg.Nak() // redeliver
				return
			}
			msg.Ack()
		})
		if err != nil {
			return fmt.Errorf("failed to start consuming %s: %w", durable, err)
		}
		b.consumers = append(b.consumers, cc)
	}
	return nil
}

// Close stops all consumers and closes the connection. Unacknowledged
// messages are redelivered to the next instance after the ack deadline.
func (b *JetStreamBus) Close() error {
	for _, cc := range b.consumers {
		cc.Stop()
	}
	if b.nc != nil {
		b.nc.Close()
	}
	return nil
}
