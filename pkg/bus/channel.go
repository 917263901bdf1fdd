package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelBus is an in-process Bus over watermill's gochannel pubsub, used for
// development and tests where a NATS server is not available. It has a single
// partition, which still satisfies the per-key ordering contract.
type ChannelBus struct {
	pubSub *gochannel.GoChannel
}

func NewChannelBus() *ChannelBus {
	return &ChannelBus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
	}
}

func (b *ChannelBus) Publish(ctx context.Context, topic, key string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubSub.Publish(topic, msg)
}

func (b *ChannelBus) Subscribe(ctx context.Context, topic, group string, partitions []int, h Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			if err := h(msg.Context(), msg.Payload); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()

	return nil
}

func (b *ChannelBus) Close() error {
	return b.pubSub.Close()
}
