package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/pkg/metrics"
)

// LogDispatcher writes events to the log. Used when no broker is configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(ctx context.Context, e Event) error {
	log.Ctx(ctx).Info().
		Str("event", e.Type).
		Str("recipient", e.Recipient).
		Interface("payload", e.Payload).
		Msg("notification")
	return nil
}

// Async dispatches in the background so callers never wait on, or fail
// because of, delivery. Each event gets its own timeout detached from the
// caller's cancellation.
type Async struct {
	next    Dispatcher
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next Dispatcher, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Async{next: next, timeout: timeout}
}

// Dispatch always returns nil; failures are logged and counted.
func (a *Async) Dispatch(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		err := a.next.Dispatch(ctx, e)
		metrics.RecordNotification(e.Type, err)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("event", e.Type).Msg("notification dispatch failed")
		}
	}()
	return nil
}

// Wait blocks until in-flight dispatches finish.
func (a *Async) Wait() {
	a.wg.Wait()
}
