package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

const tenantSelect = `
	SELECT t.id, t.created_at, t.updated_at, t.name, t.address, t.phone, t.logo,
	       t.business_type, t.subscription_status, t.trial_expires_at,
	       t.subscription_expires_at, t.payment_proof, t.payment_reference_number,
	       t.payment_approved, t.owner_id, u.name, u.email
	FROM tenants t
	LEFT JOIN users u ON u.id = t.owner_id`

func scanTenant(row rowScanner) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	var ownerName, ownerEmail sql.NullString
	err := row.Scan(
		&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt, &tenant.Name,
		&tenant.Address, &tenant.Phone, &tenant.Logo, &tenant.BusinessType,
		&tenant.SubscriptionStatus, &tenant.TrialExpiresAt,
		&tenant.SubscriptionExpiresAt, &tenant.PaymentProof,
		&tenant.PaymentReferenceNumber, &tenant.PaymentApproved, &tenant.OwnerID,
		&ownerName, &ownerEmail,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if tenant.OwnerID != nil && ownerName.Valid {
		tenant.Owner = &models.OwnerSummary{
			ID:    *tenant.OwnerID,
			Name:  ownerName.String,
			Email: ownerEmail.String,
		}
	}
	return tenant, nil
}

// CreateTenant creates a new tenant
func (s *PostgresStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}

	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	query := `
		INSERT INTO tenants (
			id, created_at, updated_at, name, address, phone, logo, business_type,
			subscription_status, trial_expires_at, subscription_expires_at,
			payment_proof, payment_reference_number, payment_approved, owner_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		tenant.ID, tenant.CreatedAt, tenant.UpdatedAt, tenant.Name, tenant.Address,
		tenant.Phone, tenant.Logo, tenant.BusinessType, tenant.SubscriptionStatus,
		tenant.TrialExpiresAt, tenant.SubscriptionExpiresAt, tenant.PaymentProof,
		tenant.PaymentReferenceNumber, tenant.PaymentApproved, tenant.OwnerID,
	)
	return mapError(err)
}

// GetTenant gets a tenant by ID
func (s *PostgresStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return scanTenant(s.getDB().QueryRowContext(ctx, tenantSelect+` WHERE t.id = $1`, id))
}

// GetTenantByOwner gets the tenant owned by the given user
func (s *PostgresStore) GetTenantByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Tenant, error) {
	return scanTenant(s.getDB().QueryRowContext(ctx, tenantSelect+` WHERE t.owner_id = $1`, ownerID))
}

// UpdateTenant saves the whole tenant row. Concurrent saves are last-write-wins.
func (s *PostgresStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	tenant.UpdatedAt = time.Now()

	query := `
		UPDATE tenants SET
			updated_at = $2, name = $3, address = $4, phone = $5, logo = $6,
			business_type = $7, subscription_status = $8, trial_expires_at = $9,
			subscription_expires_at = $10, payment_proof = $11,
			payment_reference_number = $12, payment_approved = $13, owner_id = $14
		WHERE id = $1`

	return expectOne(s.getDB().ExecContext(ctx, query,
		tenant.ID, tenant.UpdatedAt, tenant.Name, tenant.Address, tenant.Phone,
		tenant.Logo, tenant.BusinessType, tenant.SubscriptionStatus,
		tenant.TrialExpiresAt, tenant.SubscriptionExpiresAt, tenant.PaymentProof,
		tenant.PaymentReferenceNumber, tenant.PaymentApproved, tenant.OwnerID,
	))
}

// DeleteTenant purges a tenant. Tenant-scoped rows and staff go with it
// through ON DELETE CASCADE; the owner is removed explicitly in case their
// tenant link was never written. Both deletes commit together.
func (s *PostgresStore) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	if s.tx == nil {
		tx, err := s.BeginTx(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := tx.DeleteTenant(ctx, id); err != nil {
			return err
		}
		return tx.Commit()
	}

	var ownerID *uuid.UUID
	err := s.tx.QueryRowContext(ctx,
		`DELETE FROM tenants WHERE id = $1 RETURNING owner_id`, id,
	).Scan(&ownerID)
	if err != nil {
		return mapError(err)
	}

	if ownerID != nil {
		if _, err := s.tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", *ownerID); err != nil {
			return fmt.Errorf("delete tenant owner: %w", err)
		}
	}
	return nil
}

// ListTenants lists tenants, newest first
func (s *PostgresStore) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := s.getDB().QueryContext(ctx, tenantSelect+` ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []*models.Tenant{}
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}

	return tenants, rows.Err()
}
