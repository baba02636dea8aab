package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/metrics"
	"github.com/flownest/flownest-server/internal/models"
)

var (
	ErrExpired    = errors.New("subscription expired")
	ErrTerminated = errors.New("subscription terminated")
)

// TenantStore is the slice of storage the gate needs
type TenantStore interface {
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *models.Tenant) error
}

// Clock returns the current time
type Clock func() time.Time

// Gate admits or denies tenant-scoped requests.
//
// The decision is recomputed on every call. The stored status is written
// only on two transitions: to expired when a tenant is denied while not
// already marked expired, and back to active or trial when an expired
// tenant is admitted again. Concurrent calls for the same tenant may both
// write; the value written is the same.
type Gate struct {
	store   TenantStore
	now     Clock
	metrics *metrics.Metrics
}

// NewGate creates a gate. A nil clock means time.Now.
func NewGate(store TenantStore, now Clock, m *metrics.Metrics) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{store: store, now: now, metrics: m}
}

// Check loads the tenant and applies the gate. It returns the tenant on
// admission, ErrExpired or ErrTerminated on denial, and the store's
// not-found error when the tenant does not exist.
func (g *Gate) Check(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant, err := g.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant %s: %w", tenantID, err)
	}

	// Termination is absorbing until an administrator approves or extends.
	if tenant.SubscriptionStatus == models.SubscriptionTerminated {
		g.metrics.GateDecision("terminated")
		return nil, ErrTerminated
	}

	d := DeriveTenant(g.now(), tenant)

	if !d.Admitted {
		if tenant.SubscriptionStatus != models.SubscriptionExpired {
			g.persist(ctx, tenant, models.SubscriptionExpired)
		}
		g.metrics.GateDecision("expired")
		return nil, ErrExpired
	}

	if tenant.SubscriptionStatus == models.SubscriptionExpired {
		g.persist(ctx, tenant, d.Status)
	}

	g.metrics.GateDecision("admitted")
	return tenant, nil
}

// persist writes the cached status. A failed write is logged; the decision
// already made stands.
func (g *Gate) persist(ctx context.Context, tenant *models.Tenant, to models.SubscriptionStatus) {
	from := tenant.SubscriptionStatus
	tenant.SubscriptionStatus = to

	if err := g.store.UpdateTenant(ctx, tenant); err != nil {
		log.Error().
			Err(err).
			Str("tenant_id", tenant.ID.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("Failed to persist subscription status")
		return
	}

	g.metrics.StatusTransition(string(from), string(to))
	log.Info().
		Str("tenant_id", tenant.ID.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Subscription status reconciled")
}
