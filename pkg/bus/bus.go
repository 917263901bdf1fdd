package bus

import "context"

// Handler processes one raw message. Returning nil acknowledges the message;
// returning an error leaves it unacknowledged so the bus redelivers it
// (at-least-once). Handlers must therefore be idempotent.
type Handler func(ctx context.Context, payload []byte) error

// Bus is an ordered, partitioned, durable log channel. The key routes a
// message to a partition; messages with the same key are delivered in
// publication order and processed one at a time per partition.
type Bus interface {
	// Publish appends a message to a topic, partitioned by key.
	Publish(ctx context.Context, topic, key string, payload []byte) error

	// Subscribe consumes the given partitions of a topic as the named durable
	// group. It returns once consumption is running; handlers are invoked on
	// background goroutines, one in flight per partition.
	Subscribe(ctx context.Context, topic, group string, partitions []int, h Handler) error

	// Close stops consuming new messages. In-flight handlers finish or their
	// messages are redelivered after the ack deadline.
	Close() error
}
