package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

const userColumns = `id, created_at, updated_at, name, email, phone, password_hash, role, tenant_id, hourly_rate`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Name, &user.Email,
		&user.Phone, &user.PasswordHash, &user.Role, &user.TenantID, &user.HourlyRate,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// CreateUser creates a new user
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.getDB().ExecContext(ctx, query,
		user.ID, user.CreatedAt, user.UpdatedAt, user.Name, user.Email,
		user.Phone, user.PasswordHash, user.Role, user.TenantID, user.HourlyRate,
	)
	return mapError(err)
}

// GetUser gets a user by ID
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.getDB().QueryRowContext(ctx, query, id))
}

// GetUserByEmail gets a user by email
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.getDB().QueryRowContext(ctx, query, email))
}

// UpdateUser updates a user
func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			updated_at = $2, name = $3, email = $4, phone = $5,
			password_hash = $6, role = $7, tenant_id = $8, hourly_rate = $9
		WHERE id = $1`

	return expectOne(s.getDB().ExecContext(ctx, query,
		user.ID, user.UpdatedAt, user.Name, user.Email, user.Phone,
		user.PasswordHash, user.Role, user.TenantID, user.HourlyRate,
	))
}

// SetUserTenant writes only the tenant link, leaving the rest of the row
// untouched so a concurrent profile edit is not clobbered.
func (s *PostgresStore) SetUserTenant(ctx context.Context, userID, tenantID uuid.UUID) error {
	return expectOne(s.getDB().ExecContext(ctx,
		`UPDATE users SET tenant_id = $2, updated_at = $3 WHERE id = $1`,
		userID, tenantID, time.Now(),
	))
}

// DeleteUser deletes a user
func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return expectOne(s.getDB().ExecContext(ctx, "DELETE FROM users WHERE id = $1", id))
}

// ListUsers lists users matching the filters, oldest first
func (s *PostgresStore) ListUsers(ctx context.Context, filters UserFilters) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.TenantID != nil {
		argCount++
		query += fmt.Sprintf(" AND tenant_id = $%d", argCount)
		args = append(args, *filters.TenantID)
	}

	if filters.Role != nil {
		argCount++
		query += fmt.Sprintf(" AND role = $%d", argCount)
		args = append(args, *filters.Role)
	}

	query += " ORDER BY created_at ASC"

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
