package pipeline

import (
	"context"
	"time"
)

// Backoff is an exponential backoff schedule with a cap.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
}

// DefaultBackoff matches the pipeline retry policy: 500ms base, doubling,
// capped at 10s.
func DefaultBackoff() Backoff {
	return Backoff{Base: 500 * time.Millisecond, Max: 10 * time.Second, Factor: 2}
}

// Delay returns the wait before the given retry attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	d := float64(b.Base)
	for i := 0; i < attempt; i++ {
		d *= b.Factor
		if time.Duration(d) >= b.Max {
			return b.Max
		}
	}
	if time.Duration(d) > b.Max {
		return b.Max
	}
	return time.Duration(d)
}

// Retry runs fn up to maxAttempts times, sleeping per the backoff schedule
// between attempts. Only transient failures are retried; permanent and
// ordering failures return immediately. The context cancels the wait.
func Retry(ctx context.Context, maxAttempts int, b Backoff, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if Classify(err) == KindPermanent {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-time.After(b.Delay(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
