package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flownest/flownest-server/internal/models"
)

func TestApprove(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tenant := &models.Tenant{SubscriptionStatus: models.SubscriptionExpired}

	Approve(tenant, false, now, 30*24*time.Hour)
	assert.False(t, tenant.PaymentApproved)
	assert.Equal(t, models.SubscriptionExpired, tenant.SubscriptionStatus)
	assert.Nil(t, tenant.SubscriptionExpiresAt)

	Approve(tenant, true, now, 30*24*time.Hour)
	assert.True(t, tenant.PaymentApproved)
	assert.Equal(t, models.SubscriptionActive, tenant.SubscriptionStatus)
	require.NotNil(t, tenant.SubscriptionExpiresAt)
	assert.Equal(t, now.Add(30*24*time.Hour), *tenant.SubscriptionExpiresAt)
}

func TestExtend(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	lapsed := &models.Tenant{SubscriptionStatus: models.SubscriptionTerminated, SubscriptionExpiresAt: at(now.Add(-48 * time.Hour))}
	Extend(lapsed, 10, 0, now)
	assert.Equal(t, now.AddDate(0, 0, 10), *lapsed.SubscriptionExpiresAt)
	assert.Equal(t, models.SubscriptionActive, lapsed.SubscriptionStatus)

	running := &models.Tenant{SubscriptionExpiresAt: at(now.Add(5 * 24 * time.Hour))}
	Extend(running, 0, 1, now)
	assert.Equal(t, now.Add(5*24*time.Hour).AddDate(0, 1, 0), *running.SubscriptionExpiresAt)
}

func TestTerminateAndExpireCloseWindows(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tenant := &models.Tenant{SubscriptionExpiresAt: at(now.Add(time.Hour)), PaymentApproved: true}
	Terminate(tenant, now)
	assert.Equal(t, models.SubscriptionTerminated, tenant.SubscriptionStatus)
	assert.Equal(t, now, *tenant.SubscriptionExpiresAt)

	tenant = &models.Tenant{TrialExpiresAt: at(now.Add(time.Hour)), PaymentApproved: true}
	Expire(tenant, now)
	assert.False(t, DeriveTenant(now, tenant).Admitted)
	assert.Equal(t, models.SubscriptionExpired, tenant.SubscriptionStatus)
}

func TestStartTrial(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tenant := &models.Tenant{}
	StartTrial(tenant, now, 7*24*time.Hour)

	assert.Equal(t, models.SubscriptionTrial, tenant.SubscriptionStatus)
	assert.Equal(t, now.Add(7*24*time.Hour), *tenant.TrialExpiresAt)
	assert.True(t, DeriveTenant(now.Add(6*24*time.Hour), tenant).Admitted)
	assert.False(t, DeriveTenant(now.Add(7*24*time.Hour), tenant).Admitted)
}
