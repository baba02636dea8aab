// Package integration delivers notifications over email, MQTT and the
// in-app notification store.
package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/events"
	"github.com/flownest/flownest-server/internal/metrics"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

// Store is the storage used by the dispatcher
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListUsers(ctx context.Context, filters storage.UserFilters) ([]*models.User, error)
}

// Dispatcher turns domain events into notifications
type Dispatcher struct {
	store     Store
	mailer    Mailer
	pusher    Pusher
	metrics   *metrics.Metrics
	now       func() time.Time
	trialDays int
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithPusher enables realtime delivery.
func WithPusher(p Pusher) DispatcherOption {
	return func(d *Dispatcher) { d.pusher = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// WithTrialDays sets the trial length quoted in the welcome email.
func WithTrialDays(days int) DispatcherOption {
	return func(d *Dispatcher) { d.trialDays = days }
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(store Store, mailer Mailer, m *metrics.Metrics, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		mailer:    mailer,
		metrics:   m,
		now:       time.Now,
		trialDays: 7,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle implements events.Handler.
func (d *Dispatcher) Handle(ctx context.Context, e *events.Event) error {
	log.Debug().
		Str("type", string(e.Type)).
		Str("id", e.ID.String()).
		Msg("Dispatching event")

	switch e.Type {
	case events.UserRegistered:
		return d.handleUserRegistered(ctx, e)
	case events.PaymentProofSubmitted:
		return d.handlePaymentProof(ctx, e)
	case events.AdminMessage:
		return d.handleAdminMessage(ctx, e)
	case events.InvoiceCreated:
		return d.handleInvoiceCreated(ctx, e)
	default:
		log.Warn().Str("type", string(e.Type)).Msg("Unknown event type")
		return nil
	}
}

// Notify stores an in-app notification and pushes a realtime copy.
func (d *Dispatcher) Notify(ctx context.Context, n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}

	err := d.store.CreateNotification(ctx, n)
	d.metrics.NotificationSent("inapp", err)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	d.push(ctx, n.RecipientID, ChannelNotifications, n)
	return nil
}

// Mail sends a message and records the outcome.
func (d *Dispatcher) Mail(ctx context.Context, msg Message) error {
	err := d.mailer.Send(ctx, msg)
	d.metrics.NotificationSent("email", err)
	return err
}

func (d *Dispatcher) push(ctx context.Context, userID uuid.UUID, channel string, payload interface{}) {
	if d.pusher == nil {
		return
	}
	err := d.pusher.Push(ctx, userID, channel, payload)
	d.metrics.NotificationSent("mqtt", err)
	if err != nil {
		log.Warn().
			Err(err).
			Str("user", userID.String()).
			Str("channel", channel).
			Msg("Realtime push failed")
	}
}

func (d *Dispatcher) handleUserRegistered(ctx context.Context, e *events.Event) error {
	email := e.String("email")
	if email == "" {
		return fmt.Errorf("%s: missing email", e.Type)
	}

	msg, err := WelcomeEmail(email, e.String("name"), e.String("businessName"), d.trialDays)
	if err != nil {
		return err
	}
	if err := d.Mail(ctx, msg); err != nil {
		return fmt.Errorf("welcome email: %w", err)
	}
	return nil
}

func (d *Dispatcher) handlePaymentProof(ctx context.Context, e *events.Event) error {
	role := models.RoleSuperadmin
	admins, err := d.store.ListUsers(ctx, storage.UserFilters{Role: &role})
	if err != nil {
		return fmt.Errorf("list superadmins: %w", err)
	}

	message := fmt.Sprintf("Shop %q (Owner: %s) has submitted a payment proof for verification. Ref: %s",
		e.String("tenantName"), e.String("ownerName"), e.String("reference"))

	var failed int
	for _, admin := range admins {
		n := &models.Notification{
			RecipientID: admin.ID,
			SenderID:    e.ActorID,
			Title:       "New Payment Proof Submitted",
			Message:     message,
			Type:        models.NotificationInfo,
		}
		if e.TenantID != nil {
			n.Details = models.Variables{"tenantId": e.TenantID.String()}
		}
		if err := d.Notify(ctx, n); err != nil {
			failed++
			log.Error().Err(err).Str("admin", admin.ID.String()).Msg("Failed to notify superadmin")
		}
	}
	if failed > 0 {
		return fmt.Errorf("notify superadmins: %d of %d failed", failed, len(admins))
	}
	return nil
}

// The notification row is written by the request handler; only the
// realtime copy is sent here.
func (d *Dispatcher) handleAdminMessage(ctx context.Context, e *events.Event) error {
	if e.RecipientID == nil {
		return fmt.Errorf("%s: missing recipient", e.Type)
	}
	d.push(ctx, *e.RecipientID, ChannelNotifications, e.Payload)
	return nil
}

func (d *Dispatcher) handleInvoiceCreated(ctx context.Context, e *events.Event) error {
	if e.RecipientID == nil {
		return nil
	}
	d.push(ctx, *e.RecipientID, ChannelInvoices, e.Payload)
	return nil
}
