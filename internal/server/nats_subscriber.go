// Package server hosts long-running consumers for the worker process.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/config"
	"github.com/flownest/flownest-server/internal/events"
)

const handleTimeout = 30 * time.Second

// NATSSubscriber feeds domain events from NATS into a handler
type NATSSubscriber struct {
	nc      *nats.Conn
	handler events.Handler
	prefix  string
	queue   string
	subs    []*nats.Subscription
}

// NewNATSSubscriber creates NATS subscriber
func NewNATSSubscriber(nc *nats.Conn, handler events.Handler, cfg config.NATSConfig) *NATSSubscriber {
	return &NATSSubscriber{
		nc:      nc,
		handler: handler,
		prefix:  cfg.SubjectPrefix,
		queue:   cfg.QueueGroup,
		subs:    make([]*nats.Subscription, 0),
	}
}

// Start subscribes and blocks until ctx is done
func (s *NATSSubscriber) Start(ctx context.Context) error {
	subject := s.prefix + ".>"

	// queue group so several workers share the load
	sub, err := s.nc.QueueSubscribe(subject, s.queue, s.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)

	log.Info().
		Str("subject", subject).
		Str("queue", s.queue).
		Msg("NATS subscriber started")

	<-ctx.Done()

	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Str("subject", sub.Subject).Msg("Unsubscribe failed")
		}
	}

	return ctx.Err()
}

// handleMessage decodes one event and runs the handler
func (s *NATSSubscriber) handleMessage(msg *nats.Msg) {
	log.Debug().
		Str("subject", msg.Subject).
		Int("size", len(msg.Data)).
		Msg("Received event")

	e, err := events.Decode(msg.Data)
	if err != nil {
		log.Error().Err(err).Str("subject", msg.Subject).Msg("Failed to decode event")
		return
	}

	if want := strings.TrimPrefix(msg.Subject, s.prefix+"."); want != string(e.Type) {
		log.Warn().
			Str("subject", msg.Subject).
			Str("type", string(e.Type)).
			Msg("Event type does not match subject, dropping")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := s.handler.Handle(ctx, e); err != nil {
		log.Error().
			Err(err).
			Str("type", string(e.Type)).
			Str("id", e.ID.String()).
			Msg("Event handler failed")
		return
	}

	log.Info().
		Str("type", string(e.Type)).
		Str("id", e.ID.String()).
		Msg("Event processed")
}
