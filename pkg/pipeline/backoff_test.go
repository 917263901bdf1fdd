package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	b := DefaultBackoff()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped
		{10, 10 * time.Second},
	}

	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffDelayMonotone(t *testing.T) {
	b := DefaultBackoff()
	prev := time.Duration(0)
	for attempt := 0; attempt < 12; attempt++ {
		d := b.Delay(attempt)
		if d < prev {
			t.Fatalf("Delay(%d) = %s decreased below %s", attempt, d, prev)
		}
		if d > b.Max {
			t.Fatalf("Delay(%d) = %s exceeds cap %s", attempt, d, b.Max)
		}
		prev = d
	}
}

func TestRetryTransientExhaustion(t *testing.T) {
	b := Backoff{Base: time.Millisecond, Max: time.Millisecond, Factor: 2}
	calls := 0
	err := Retry(context.Background(), 3, b, func() error {
		calls++
		return Transient(StageOcr, CodeOcrServiceError, errors.New("down"))
	})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryPermanentStopsImmediately(t *testing.T) {
	b := Backoff{Base: time.Millisecond, Max: time.Millisecond, Factor: 2}
	calls := 0
	err := Retry(context.Background(), 5, b, func() error {
		calls++
		return Permanent(StageIngest, CodeObjectNotFound, errors.New("gone"))
	})
	if Classify(err) != KindPermanent {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetrySucceedsAfterTransient(t *testing.T) {
	b := Backoff{Base: time.Millisecond, Max: time.Millisecond, Factor: 2}
	calls := 0
	err := Retry(context.Background(), 3, b, func() error {
		calls++
		if calls < 2 {
			return Transient(StageEmbedder, CodeEmbeddingServiceErr, errors.New("flaky"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryCancelledContext(t *testing.T) {
	b := Backoff{Base: time.Hour, Max: time.Hour, Factor: 2}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, b, func() error {
		return Transient(StageOcr, CodeOcrServiceError, errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
