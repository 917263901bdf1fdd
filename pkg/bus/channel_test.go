package bus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestChannelBusDelivery(t *testing.T) {
	b := NewChannelBus()
	defer b.Close()
	ctx := context.Background()

	received := make(chan []byte, 1)
	err := b.Subscribe(ctx, "topic-a", "group", []int{0}, func(ctx context.Context, payload []byte) error {
		received <- payload
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Publish(ctx, "topic-a", "doc-1", []byte("hello")); err != nil {
		t.Fatal(err)
	}

	select {
	case payload := <-received:
		if string(payload) != "hello" {
			t.Errorf("payload = %q", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestChannelBusRedeliversOnError(t *testing.T) {
	b := NewChannelBus()
	defer b.Close()
	ctx := context.Background()

	var calls int32
	done := make(chan struct{})
	err := b.Subscribe(ctx, "topic-b", "group", []int{0}, func(ctx context.Context, payload []byte) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("first attempt fails")
		}
		close(done)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Publish(ctx, "topic-b", "doc-1", []byte("retry me")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
		if atomic.LoadInt32(&calls) < 2 {
			t.Errorf("calls = %d, want >= 2", calls)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message was not redelivered after a handler error")
	}
}
