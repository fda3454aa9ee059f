// Package updatesink delivers notify.Update values to a downstream
// consumer (a console demo, a websocket push, …) at a bounded rate, so a
// burst of flushes can never overwhelm whatever is on the other end.
package updatesink

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"notifyengine/internal/domain/notify"
)

// Consumer receives an already-rate-limited update.
type Consumer interface {
	Consume(update notify.Update)
}

// ConsumerFunc adapts a plain function to Consumer.
type ConsumerFunc func(update notify.Update)

func (f ConsumerFunc) Consume(update notify.Update) { f(update) }

// RateLimitedSink implements notify.UpdateSink, shaping delivery through
// a token bucket the same way the teacher's bot sender shapes outbound
// API calls — here the throttled resource is the downstream consumer's
// attention rather than a remote API's rate limit.
type RateLimitedSink struct {
	ctx      context.Context
	limiter  *rate.Limiter
	consumer Consumer
}

// NewRateLimitedSink builds a sink that forwards to consumer at up to rps
// updates per second, with a burst allowance of burst.
func NewRateLimitedSink(ctx context.Context, consumer Consumer, rps int, burst int) *RateLimitedSink {
	if burst <= 0 {
		burst = rps
	}
	return &RateLimitedSink{
		ctx:      ctx,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		consumer: consumer,
	}
}

// Deliver blocks until the limiter admits the update, then forwards it.
// A canceled context drops the update rather than delivering it late —
// stale diffs are worse than missing ones, since a later flush will
// re-emit the group's current state anyway.
func (s *RateLimitedSink) Deliver(update notify.Update) {
	if err := s.limiter.Wait(s.ctx); err != nil {
		return
	}
	s.consumer.Consume(update)
}

// StdoutConsumer renders updates as one line each, the simplest possible
// downstream for the demo binary.
type StdoutConsumer struct {
	Printf func(format string, args ...any)
}

func (c StdoutConsumer) Consume(update notify.Update) {
	printf := c.Printf
	if printf == nil {
		printf = fmt.Printf
	}
	switch u := update.(type) {
	case notify.GroupUpdate:
		printf("[group %d] %s pos=%d total=%d silent=%v +%d -%d\n",
			u.GroupID, u.DialogID, u.Position, u.TotalCount, u.Silent,
			len(u.Notifications), len(u.RemovedNotificationIDs))
	case notify.SingleUpdate:
		printf("[group %d] notification %d updated pos=%d\n", u.GroupID, u.NotificationID, u.Position)
	case notify.GroupRemoved:
		printf("[group %d] removed (-%d)\n", u.GroupID, len(u.RemovedNotificationIDs))
	default:
		printf("unknown update type %T\n", update)
	}
}
