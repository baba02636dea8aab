package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

const creditColumns = `id, created_at, updated_at, tenant_id, customer_name, customer_phone,
	total_amount, remaining_amount, status, notes, added_by, closed_by, payments`

func scanCredit(row rowScanner) (*models.Credit, error) {
	c := &models.Credit{}
	err := row.Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.TenantID, &c.CustomerName,
		&c.CustomerPhone, &c.TotalAmount, &c.RemainingAmount, &c.Status,
		&c.Notes, &c.AddedBy, &c.ClosedBy, &c.Payments,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// CreateCredit opens a credit note
func (s *PostgresStore) CreateCredit(ctx context.Context, c *models.Credit) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.getDB().ExecContext(ctx,
		`INSERT INTO credits (`+creditColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.CreatedAt, c.UpdatedAt, c.TenantID, c.CustomerName,
		c.CustomerPhone, c.TotalAmount, c.RemainingAmount, c.Status,
		c.Notes, c.AddedBy, c.ClosedBy, c.Payments,
	)
	return mapError(err)
}

// GetCredit gets a credit note within a tenant
func (s *PostgresStore) GetCredit(ctx context.Context, tenantID, id uuid.UUID) (*models.Credit, error) {
	return scanCredit(s.getDB().QueryRowContext(ctx,
		`SELECT `+creditColumns+` FROM credits WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

// UpdateCredit saves a credit note including its payment history
func (s *PostgresStore) UpdateCredit(ctx context.Context, c *models.Credit) error {
	c.UpdatedAt = time.Now()
	return expectOne(s.getDB().ExecContext(ctx, `
		UPDATE credits SET
			updated_at = $3, customer_name = $4, customer_phone = $5,
			total_amount = $6, remaining_amount = $7, status = $8, notes = $9,
			closed_by = $10, payments = $11
		WHERE id = $1 AND tenant_id = $2`,
		c.ID, c.TenantID, c.UpdatedAt, c.CustomerName, c.CustomerPhone,
		c.TotalAmount, c.RemainingAmount, c.Status, c.Notes, c.ClosedBy, c.Payments,
	))
}

// ListCredits lists a tenant's credit notes, newest first
func (s *PostgresStore) ListCredits(ctx context.Context, tenantID uuid.UUID) ([]*models.Credit, error) {
	rows, err := s.getDB().QueryContext(ctx,
		`SELECT `+creditColumns+` FROM credits WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	credits := []*models.Credit{}
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}
