package subscription

import (
	"time"

	"github.com/flownest/flownest-server/internal/models"
)

// Administrative overrides. Each mutates the tenant directly; the next gate
// evaluation derives fresh state from the new fields.

// Approve records the admin's verdict on the submitted payment proof.
// Approving activates the tenant and grants a paid window from now.
func Approve(t *models.Tenant, approve bool, now time.Time, grant time.Duration) {
	t.PaymentApproved = approve
	if !approve {
		return
	}
	t.SubscriptionStatus = models.SubscriptionActive
	expires := now.Add(grant)
	t.SubscriptionExpiresAt = &expires
}

// Extend adds days and months to the later of now and the current expiry,
// and reactivates the tenant.
func Extend(t *models.Tenant, days, months int, now time.Time) {
	base := now
	if t.SubscriptionExpiresAt != nil && t.SubscriptionExpiresAt.After(now) {
		base = *t.SubscriptionExpiresAt
	}
	expires := base.AddDate(0, 0, days).AddDate(0, months, 0)
	t.SubscriptionExpiresAt = &expires
	t.SubscriptionStatus = models.SubscriptionActive
}

// Terminate ends the tenant's access. The paid window is closed as well so
// that lifting termination does not silently restore it.
func Terminate(t *models.Tenant, now time.Time) {
	t.SubscriptionStatus = models.SubscriptionTerminated
	end := now
	t.SubscriptionExpiresAt = &end
}

// Expire marks the tenant expired and closes both windows. Payment approval
// is withdrawn, otherwise the gate would admit on the next request.
func Expire(t *models.Tenant, now time.Time) {
	t.SubscriptionStatus = models.SubscriptionExpired
	end := now
	t.SubscriptionExpiresAt = &end
	if t.TrialExpiresAt != nil && t.TrialExpiresAt.After(now) {
		t.TrialExpiresAt = &end
	}
	t.PaymentApproved = false
}

// StartTrial initialises a freshly registered tenant.
func StartTrial(t *models.Tenant, now time.Time, period time.Duration) {
	expires := now.Add(period)
	t.TrialExpiresAt = &expires
	t.SubscriptionStatus = models.SubscriptionTrial
	t.PaymentApproved = false
}
