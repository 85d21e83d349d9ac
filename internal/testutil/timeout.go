package testutil

import (
	"context"
	"testing"
	"time"
)

const (
	// DefaultTestBuffer is subtracted from the test deadline to leave time
	// for cleanup before the test times out.
	DefaultTestBuffer = 2 * time.Second

	// ShortTimeout bounds quick operations against in-process servers.
	ShortTimeout = 5 * time.Second
)

// ContextWithTestDeadline creates a context that respects the test's deadline,
// minus DefaultTestBuffer. Without a test deadline it uses fallback.
func ContextWithTestDeadline(t *testing.T, fallback time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return ContextWithTestDeadlineBuffer(t, fallback, DefaultTestBuffer)
}

// ContextWithTestDeadlineBuffer is ContextWithTestDeadline with a custom
// buffer. If the adjusted deadline is already past, fallback is used.
func ContextWithTestDeadlineBuffer(t *testing.T, fallback, buffer time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	if deadline, ok := t.Deadline(); ok {
		adjusted := deadline.Add(-buffer)
		if time.Until(adjusted) > 0 && time.Until(adjusted) < fallback {
			return context.WithDeadline(context.Background(), adjusted)
		}
	}

	return context.WithTimeout(context.Background(), fallback)
}

// ShortContext returns a context bounded by ShortTimeout, cancelled when the
// test ends.
func ShortContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := ContextWithTestDeadline(t, ShortTimeout)
	t.Cleanup(cancel)
	return ctx
}
