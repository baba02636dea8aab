// Package subscription decides whether a tenant may use gated routes and
// keeps the cached subscriptionStatus in line with that decision.
package subscription

import (
	"time"

	"github.com/flownest/flownest-server/internal/models"
)

// Decision is the result of deriving a tenant's subscription state
type Decision struct {
	TrialActive        bool
	SubscriptionActive bool
	PaymentApproved    bool
	Admitted           bool
	// Status is the status the cache should hold for this decision.
	Status models.SubscriptionStatus
}

// Derive computes admissibility from the stored timestamps and the approval
// flag. It reads nothing else and has no side effects.
func Derive(now time.Time, trialExpiresAt, subscriptionExpiresAt *time.Time, paymentApproved bool) Decision {
	d := Decision{
		TrialActive:        trialExpiresAt != nil && trialExpiresAt.After(now),
		SubscriptionActive: subscriptionExpiresAt != nil && subscriptionExpiresAt.After(now),
		PaymentApproved:    paymentApproved,
	}
	d.Admitted = d.TrialActive || d.SubscriptionActive || d.PaymentApproved

	switch {
	case !d.Admitted:
		d.Status = models.SubscriptionExpired
	case d.PaymentApproved || d.SubscriptionActive:
		d.Status = models.SubscriptionActive
	default:
		d.Status = models.SubscriptionTrial
	}
	return d
}

// DeriveTenant is Derive over a tenant's fields.
func DeriveTenant(now time.Time, t *models.Tenant) Decision {
	return Derive(now, t.TrialExpiresAt, t.SubscriptionExpiresAt, t.PaymentApproved)
}
