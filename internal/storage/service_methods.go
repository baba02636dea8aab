package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

const serviceColumns = `id, created_at, updated_at, tenant_id, name, original_price, sell_price, duration, category`

func scanService(row rowScanner) (*models.Service, error) {
	svc := &models.Service{}
	err := row.Scan(
		&svc.ID, &svc.CreatedAt, &svc.UpdatedAt, &svc.TenantID, &svc.Name,
		&svc.OriginalPrice, &svc.SellPrice, &svc.Duration, &svc.Category,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return svc, nil
}

// CreateService adds a catalogue entry
func (s *PostgresStore) CreateService(ctx context.Context, svc *models.Service) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	_, err := s.getDB().ExecContext(ctx,
		`INSERT INTO services (`+serviceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		svc.ID, svc.CreatedAt, svc.UpdatedAt, svc.TenantID, svc.Name,
		svc.OriginalPrice, svc.SellPrice, svc.Duration, svc.Category,
	)
	return mapError(err)
}

// GetService gets a catalogue entry within a tenant
func (s *PostgresStore) GetService(ctx context.Context, tenantID, id uuid.UUID) (*models.Service, error) {
	return scanService(s.getDB().QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

// UpdateService saves a catalogue entry
func (s *PostgresStore) UpdateService(ctx context.Context, svc *models.Service) error {
	svc.UpdatedAt = time.Now()
	return expectOne(s.getDB().ExecContext(ctx, `
		UPDATE services SET
			updated_at = $3, name = $4, original_price = $5, sell_price = $6,
			duration = $7, category = $8
		WHERE id = $1 AND tenant_id = $2`,
		svc.ID, svc.TenantID, svc.UpdatedAt, svc.Name, svc.OriginalPrice,
		svc.SellPrice, svc.Duration, svc.Category,
	))
}

// DeleteService removes a catalogue entry
func (s *PostgresStore) DeleteService(ctx context.Context, tenantID, id uuid.UUID) error {
	return expectOne(s.getDB().ExecContext(ctx,
		`DELETE FROM services WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

// ListServices lists a tenant's catalogue, newest first
func (s *PostgresStore) ListServices(ctx context.Context, tenantID uuid.UUID) ([]*models.Service, error) {
	rows, err := s.getDB().QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []*models.Service{}
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}
