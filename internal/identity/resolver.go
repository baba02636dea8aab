// Package identity resolves the tenant an authenticated principal acts for.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/metrics"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

// ErrTenantUnresolved is returned when no tenant can be found for the principal
var ErrTenantUnresolved = errors.New("tenant unresolved")

// Store is the slice of storage the resolver needs
type Store interface {
	GetTenantByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Tenant, error)
	SetUserTenant(ctx context.Context, userID, tenantID uuid.UUID) error
}

// Resolver maps principals to tenant ids, repairing owners whose stored
// record lacks the link.
type Resolver struct {
	store       Store
	metrics     *metrics.Metrics
	repairLimit time.Duration

	wg sync.WaitGroup
}

// NewResolver creates a resolver
func NewResolver(store Store, m *metrics.Metrics) *Resolver {
	return &Resolver{store: store, metrics: m, repairLimit: 5 * time.Second}
}

// Resolve returns the principal's tenant id.
//
// A principal that carries a tenant id is returned as-is. An owner without
// one is looked up by ownership; on success the id is adopted into the
// principal and written back to the stored user in the background. A
// failed write is logged and never affects the caller. Every other case
// yields ErrTenantUnresolved.
func (r *Resolver) Resolve(ctx context.Context, principal *models.User) (uuid.UUID, error) {
	if principal.HasTenant() {
		return *principal.TenantID, nil
	}

	if principal.Role != models.RoleOwner {
		r.metrics.TenantRepair("unresolved")
		return uuid.Nil, ErrTenantUnresolved
	}

	tenant, err := r.store.GetTenantByOwner(ctx, principal.ID)
	if errors.Is(err, storage.ErrNotFound) {
		r.metrics.TenantRepair("unresolved")
		return uuid.Nil, ErrTenantUnresolved
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup tenant by owner: %w", err)
	}

	tenantID := tenant.ID
	principal.TenantID = &tenantID

	r.repair(ctx, principal.ID, tenantID)
	return tenantID, nil
}

// repair persists the adopted link without holding up the request.
func (r *Resolver) repair(ctx context.Context, userID, tenantID uuid.UUID) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.repairLimit)
		defer cancel()

		if err := r.store.SetUserTenant(ctx, userID, tenantID); err != nil {
			r.metrics.TenantRepair("failed")
			log.Warn().
				Err(err).
				Str("user_id", userID.String()).
				Str("tenant_id", tenantID.String()).
				Msg("Failed to persist repaired tenant link")
			return
		}

		r.metrics.TenantRepair("repaired")
		log.Info().
			Str("user_id", userID.String()).
			Str("tenant_id", tenantID.String()).
			Msg("Repaired missing tenant link")
	}()
}

// Wait blocks until every pending repair has finished.
func (r *Resolver) Wait() {
	r.wg.Wait()
}
