// Package events carries domain events from request handlers to the
// notification side channels.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

// Type names a domain event
type Type string

const (
	UserRegistered        Type = "user.registered"
	InvoiceCreated        Type = "invoice.created"
	PaymentProofSubmitted Type = "payment_proof.submitted"
	AdminMessage          Type = "admin.message"
)

// Event is the envelope published on the bus
type Event struct {
	ID          uuid.UUID        `json:"id"`
	Type        Type             `json:"type"`
	OccurredAt  time.Time        `json:"occurredAt"`
	TenantID    *uuid.UUID       `json:"tenantId,omitempty"`
	ActorID     *uuid.UUID       `json:"actorId,omitempty"`
	RecipientID *uuid.UUID       `json:"recipientId,omitempty"`
	Payload     models.Variables `json:"payload,omitempty"`
}

// New creates an event stamped with a fresh id.
func New(t Type, at time.Time, payload models.Variables) *Event {
	return &Event{
		ID:         uuid.New(),
		Type:       t,
		OccurredAt: at,
		Payload:    payload,
	}
}

// String returns the payload value for key, or "".
func (e *Event) String(key string) string {
	if e.Payload == nil {
		return ""
	}
	v, _ := e.Payload[key].(string)
	return v
}

// Encode marshals the envelope for the wire.
func Encode(e *Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

// Decode parses an envelope received from the wire.
func Decode(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return nil, fmt.Errorf("decode event: missing type")
	}
	return &e, nil
}

// Publisher hands events to whatever delivers them
type Publisher interface {
	Publish(ctx context.Context, e *Event) error
}

// Handler reacts to a delivered event
type Handler interface {
	Handle(ctx context.Context, e *Event) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, e *Event) error

func (f HandlerFunc) Handle(ctx context.Context, e *Event) error { return f(ctx, e) }
