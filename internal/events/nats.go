package events

import (
	"context"
	"fmt"

	"github.com/flownest/flownest-server/internal/metrics"
)

// Conn is the part of *nats.Conn used for publishing
type Conn interface {
	Publish(subj string, data []byte) error
}

// Subject returns the bus subject for an event type.
func Subject(prefix string, t Type) string {
	return fmt.Sprintf("%s.%s", prefix, t)
}

// NATSPublisher publishes events as JSON on <prefix>.<type>
type NATSPublisher struct {
	conn    Conn
	prefix  string
	metrics *metrics.Metrics
}

// NewNATSPublisher creates a NATS-backed publisher.
func NewNATSPublisher(conn Conn, prefix string, m *metrics.Metrics) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, metrics: m}
}

func (p *NATSPublisher) Publish(ctx context.Context, e *Event) error {
	data, err := Encode(e)
	if err == nil {
		err = p.conn.Publish(Subject(p.prefix, e.Type), data)
	}
	p.metrics.EventPublished(string(e.Type), err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}
