package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/metrics"
)

const handleTimeout = 30 * time.Second

// InlinePublisher delivers events to a handler in a background goroutine
// of the publishing process. Used when no NATS server is configured.
type InlinePublisher struct {
	handler Handler
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// NewInlinePublisher creates an in-process publisher.
func NewInlinePublisher(handler Handler, m *metrics.Metrics) *InlinePublisher {
	return &InlinePublisher{handler: handler, metrics: m}
}

// Publish never blocks on the handler and never fails.
func (p *InlinePublisher) Publish(ctx context.Context, e *Event) error {
	p.metrics.EventPublished(string(e.Type), nil)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleTimeout)
		defer cancel()

		if err := p.handler.Handle(hctx, e); err != nil {
			log.Warn().
				Err(err).
				Str("type", string(e.Type)).
				Str("id", e.ID.String()).
				Msg("Event handler failed")
		}
	}()
	return nil
}

// Wait blocks until every published event has been handled.
func (p *InlinePublisher) Wait() {
	p.wg.Wait()
}

// Discard drops every event. Useful for tools that must not notify.
type Discard struct{}

func (Discard) Publish(context.Context, *Event) error { return nil }
