package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

const invoiceColumns = `id, created_at, updated_at, tenant_id, customer_name, customer_phone, items, total_amount, payment_method, created_by`

// CreateInvoice records a sale. A caller-supplied CreatedAt is kept so that
// imports and tests can backdate invoices.
func (s *PostgresStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	inv.UpdatedAt = inv.CreatedAt

	_, err := s.getDB().ExecContext(ctx,
		`INSERT INTO invoices (`+invoiceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		inv.ID, inv.CreatedAt, inv.UpdatedAt, inv.TenantID, inv.CustomerName,
		inv.CustomerPhone, inv.Items, inv.TotalAmount, inv.PaymentMethod, inv.CreatedBy,
	)
	return mapError(err)
}

// ListInvoices lists invoices matching the filters, newest first
func (s *PostgresStore) ListInvoices(ctx context.Context, filters InvoiceFilters) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1`
	args := []interface{}{filters.TenantID}
	argCount := 1

	if filters.StartTime != nil {
		argCount++
		query += fmt.Sprintf(" AND created_at >= $%d", argCount)
		args = append(args, *filters.StartTime)
	}

	if filters.EndTime != nil {
		argCount++
		query += fmt.Sprintf(" AND created_at < $%d", argCount)
		args = append(args, *filters.EndTime)
	}

	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filters.Limit)
	}

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []*models.Invoice{}
	for rows.Next() {
		inv := &models.Invoice{}
		err := rows.Scan(
			&inv.ID, &inv.CreatedAt, &inv.UpdatedAt, &inv.TenantID, &inv.CustomerName,
			&inv.CustomerPhone, &inv.Items, &inv.TotalAmount, &inv.PaymentMethod, &inv.CreatedBy,
		)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// PhoneVisitCounts counts invoices per non-empty customer phone
func (s *PostgresStore) PhoneVisitCounts(ctx context.Context, tenantID uuid.UUID) (map[string]int, error) {
	rows, err := s.getDB().QueryContext(ctx, `
		SELECT customer_phone, COUNT(*)
		FROM invoices
		WHERE tenant_id = $1 AND customer_phone <> ''
		GROUP BY customer_phone`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var phone string
		var n int
		if err := rows.Scan(&phone, &n); err != nil {
			return nil, err
		}
		counts[phone] = n
	}
	return counts, rows.Err()
}
