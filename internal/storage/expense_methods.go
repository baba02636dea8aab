package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

const expenseSelect = `
	SELECT e.id, e.created_at, e.updated_at, e.tenant_id, e.added_by, e.title,
	       e.amount, e.category, e.status, e.date, COALESCE(u.name, '')
	FROM expenses e
	LEFT JOIN users u ON u.id = e.added_by`

func scanExpense(row rowScanner) (*models.Expense, error) {
	exp := &models.Expense{}
	err := row.Scan(
		&exp.ID, &exp.CreatedAt, &exp.UpdatedAt, &exp.TenantID, &exp.AddedBy,
		&exp.Title, &exp.Amount, &exp.Category, &exp.Status, &exp.Date, &exp.AddedByName,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return exp, nil
}

// CreateExpense records an expense
func (s *PostgresStore) CreateExpense(ctx context.Context, exp *models.Expense) error {
	if exp.ID == uuid.Nil {
		exp.ID = uuid.New()
	}
	now := time.Now()
	exp.CreatedAt = now
	exp.UpdatedAt = now
	if exp.Date.IsZero() {
		exp.Date = now
	}

	_, err := s.getDB().ExecContext(ctx, `
		INSERT INTO expenses (
			id, created_at, updated_at, tenant_id, added_by, title, amount,
			category, status, date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		exp.ID, exp.CreatedAt, exp.UpdatedAt, exp.TenantID, exp.AddedBy,
		exp.Title, exp.Amount, exp.Category, exp.Status, exp.Date,
	)
	return mapError(err)
}

// GetExpense gets an expense within a tenant
func (s *PostgresStore) GetExpense(ctx context.Context, tenantID, id uuid.UUID) (*models.Expense, error) {
	return scanExpense(s.getDB().QueryRowContext(ctx,
		expenseSelect+` WHERE e.id = $1 AND e.tenant_id = $2`, id, tenantID))
}

// UpdateExpense saves an expense
func (s *PostgresStore) UpdateExpense(ctx context.Context, exp *models.Expense) error {
	exp.UpdatedAt = time.Now()
	return expectOne(s.getDB().ExecContext(ctx, `
		UPDATE expenses SET
			updated_at = $3, title = $4, amount = $5, category = $6,
			status = $7, date = $8
		WHERE id = $1 AND tenant_id = $2`,
		exp.ID, exp.TenantID, exp.UpdatedAt, exp.Title, exp.Amount,
		exp.Category, exp.Status, exp.Date,
	))
}

// ListExpenses lists expenses matching the filters, newest first
func (s *PostgresStore) ListExpenses(ctx context.Context, filters ExpenseFilters) ([]*models.Expense, error) {
	query := expenseSelect + ` WHERE e.tenant_id = $1`
	args := []interface{}{filters.TenantID}
	argCount := 1

	if filters.Status != nil {
		argCount++
		query += fmt.Sprintf(" AND e.status = $%d", argCount)
		args = append(args, *filters.Status)
	}

	if filters.StartTime != nil {
		argCount++
		query += fmt.Sprintf(" AND e.date >= $%d", argCount)
		args = append(args, *filters.StartTime)
	}

	if filters.EndTime != nil {
		argCount++
		query += fmt.Sprintf(" AND e.date < $%d", argCount)
		args = append(args, *filters.EndTime)
	}

	query += " ORDER BY e.date DESC"

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}
