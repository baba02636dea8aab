package subscription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flownest/flownest-server/internal/metrics"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

// countingStore records every tenant write.
type countingStore struct {
	*storage.MemoryStore
	mu      sync.Mutex
	writes  []models.SubscriptionStatus
	failing bool
}

func (s *countingStore) UpdateTenant(ctx context.Context, t *models.Tenant) error {
	s.mu.Lock()
	s.writes = append(s.writes, t.SubscriptionStatus)
	failing := s.failing
	s.mu.Unlock()
	if failing {
		return errors.New("write failed")
	}
	return s.MemoryStore.UpdateTenant(ctx, t)
}

func (s *countingStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func setup(t *testing.T, tenant *models.Tenant) (*Gate, *countingStore, *fakeClock) {
	t.Helper()
	store := &countingStore{MemoryStore: storage.NewMemoryStore()}
	require.NoError(t, store.CreateTenant(context.Background(), tenant))
	clock := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	return NewGate(store, clock.Now, nil), store, clock
}

func TestGateTrialBoundary(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tenant := &models.Tenant{Name: "t", SubscriptionStatus: models.SubscriptionTrial, TrialExpiresAt: at(start.Add(time.Second))}
	gate, store, clock := setup(t, tenant)
	ctx := context.Background()

	_, err := gate.Check(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, store.writeCount())

	clock.now = start.Add(time.Second)
	_, err = gate.Check(ctx, tenant.ID)
	assert.ErrorIs(t, err, ErrExpired)

	saved, err := store.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionExpired, saved.SubscriptionStatus)

	clock.now = start.Add(time.Hour)
	_, err = gate.Check(ctx, tenant.ID)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 1, store.writeCount(), "already expired tenants are not rewritten")
}

func TestGateReadmitsAfterExtension(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tenant := &models.Tenant{Name: "t", SubscriptionStatus: models.SubscriptionExpired, TrialExpiresAt: at(now.Add(-time.Hour))}
	gate, store, _ := setup(t, tenant)
	ctx := context.Background()

	_, err := gate.Check(ctx, tenant.ID)
	require.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, store.writeCount())

	saved, err := store.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	saved.SubscriptionExpiresAt = at(now.Add(30 * 24 * time.Hour))
	require.NoError(t, store.MemoryStore.UpdateTenant(ctx, saved))

	got, err := gate.Check(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, got.SubscriptionStatus)

	saved, err = store.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, saved.SubscriptionStatus)
}

func TestGateReadmitsToTrial(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tenant := &models.Tenant{Name: "t", SubscriptionStatus: models.SubscriptionExpired, TrialExpiresAt: at(now.Add(time.Hour))}
	gate, store, _ := setup(t, tenant)

	got, err := gate.Check(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionTrial, got.SubscriptionStatus)
	assert.Equal(t, []models.SubscriptionStatus{models.SubscriptionTrial}, store.writes)
}

func TestGateIdempotent(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for name, tenant := range map[string]*models.Tenant{
		"lapsing":     {Name: "a", SubscriptionStatus: models.SubscriptionTrial, TrialExpiresAt: at(now.Add(-time.Minute))},
		"reconciling": {Name: "b", SubscriptionStatus: models.SubscriptionExpired, PaymentApproved: true},
		"consistent":  {Name: "c", SubscriptionStatus: models.SubscriptionActive, SubscriptionExpiresAt: at(now.Add(time.Hour))},
	} {
		t.Run(name, func(t *testing.T) {
			gate, store, _ := setup(t, tenant)
			ctx := context.Background()

			first, err1 := gate.Check(ctx, tenant.ID)
			second, err2 := gate.Check(ctx, tenant.ID)

			assert.Equal(t, err1, err2)
			assert.Equal(t, first == nil, second == nil)
			assert.LessOrEqual(t, store.writeCount(), 1)
		})
	}
}

func TestGateTerminatedIsAbsorbing(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tenant := &models.Tenant{
		Name:                  "t",
		SubscriptionStatus:    models.SubscriptionTerminated,
		SubscriptionExpiresAt: at(now.Add(10 * 24 * time.Hour)),
		PaymentApproved:       true,
	}
	gate, store, _ := setup(t, tenant)

	_, err := gate.Check(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, ErrTerminated)
	assert.Equal(t, 0, store.writeCount())
}

func TestGateMissingTenant(t *testing.T) {
	gate, _, _ := setup(t, &models.Tenant{Name: "t"})

	_, err := gate.Check(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGateWriteFailureStillDecides(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tenant := &models.Tenant{Name: "t", SubscriptionStatus: models.SubscriptionTrial, TrialExpiresAt: at(now.Add(-time.Minute))}
	gate, store, _ := setup(t, tenant)
	store.failing = true

	_, err := gate.Check(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestGateMetrics(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store := &countingStore{MemoryStore: storage.NewMemoryStore()}
	tenant := &models.Tenant{Name: "t", SubscriptionStatus: models.SubscriptionTrial, TrialExpiresAt: at(now.Add(-time.Minute))}
	require.NoError(t, store.CreateTenant(context.Background(), tenant))

	m := metrics.New(prometheus.NewRegistry())
	gate := NewGate(store, func() time.Time { return now }, m)

	_, _ = gate.Check(context.Background(), tenant.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusTransitions.WithLabelValues("trial", "expired")))
}
