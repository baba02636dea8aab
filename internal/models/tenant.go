package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the cached projection of a tenant's subscription
// state. Gate decisions never read it; they recompute from the timestamps.
type SubscriptionStatus string

const (
	SubscriptionTrial      SubscriptionStatus = "trial"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionExpired    SubscriptionStatus = "expired"
	SubscriptionTerminated SubscriptionStatus = "terminated"
)

// Tenant represents one subscribing business
type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name         string `json:"name" db:"name"`
	Address      string `json:"address,omitempty" db:"address"`
	Phone        string `json:"phone,omitempty" db:"phone"`
	Logo         string `json:"logo,omitempty" db:"logo"`
	BusinessType string `json:"businessType,omitempty" db:"business_type"`

	// Subscription
	SubscriptionStatus    SubscriptionStatus `json:"subscriptionStatus" db:"subscription_status"`
	TrialExpiresAt        *time.Time         `json:"trialExpiresAt,omitempty" db:"trial_expires_at"`
	SubscriptionExpiresAt *time.Time         `json:"subscriptionExpiresAt,omitempty" db:"subscription_expires_at"`

	// Billing
	PaymentProof           string `json:"paymentProof,omitempty" db:"payment_proof"`
	PaymentReferenceNumber string `json:"paymentReferenceNumber,omitempty" db:"payment_reference_number"`
	PaymentApproved        bool   `json:"paymentApproved" db:"payment_approved"`

	OwnerID *uuid.UUID `json:"ownerId,omitempty" db:"owner_id"`

	// Owner is populated on reads that join the owning user.
	Owner *OwnerSummary `json:"owner,omitempty" db:"-"`
}

// OwnerSummary is the owner projection embedded in tenant responses
type OwnerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// TenantSummary is the subscription snapshot returned with auth responses
type TenantSummary struct {
	SubscriptionStatus    SubscriptionStatus `json:"subscriptionStatus"`
	TrialExpiresAt        *time.Time         `json:"trialExpiresAt,omitempty"`
	SubscriptionExpiresAt *time.Time         `json:"subscriptionExpiresAt,omitempty"`
}

// Summary returns the subscription snapshot of t.
func (t *Tenant) Summary() *TenantSummary {
	return &TenantSummary{
		SubscriptionStatus:    t.SubscriptionStatus,
		TrialExpiresAt:        t.TrialExpiresAt,
		SubscriptionExpiresAt: t.SubscriptionExpiresAt,
	}
}
