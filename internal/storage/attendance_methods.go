package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

const attendanceSelect = `
	SELECT a.id, a.created_at, a.updated_at, a.tenant_id, a.staff_id, a.check_in,
	       a.check_out, a.total_hours, a.salary_earned, COALESCE(u.name, '')
	FROM attendance a
	LEFT JOIN users u ON u.id = a.staff_id`

func scanAttendance(row rowScanner) (*models.Attendance, error) {
	a := &models.Attendance{}
	err := row.Scan(
		&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.TenantID, &a.StaffID, &a.CheckIn,
		&a.CheckOut, &a.TotalHours, &a.SalaryEarned, &a.StaffName,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// CreateAttendance opens a shift
func (s *PostgresStore) CreateAttendance(ctx context.Context, a *models.Attendance) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.CheckIn.IsZero() {
		a.CheckIn = now
	}

	_, err := s.getDB().ExecContext(ctx, `
		INSERT INTO attendance (
			id, created_at, updated_at, tenant_id, staff_id, check_in,
			check_out, total_hours, salary_earned
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.CreatedAt, a.UpdatedAt, a.TenantID, a.StaffID, a.CheckIn,
		a.CheckOut, a.TotalHours, a.SalaryEarned,
	)
	return mapError(err)
}

// UpdateAttendance saves a shift
func (s *PostgresStore) UpdateAttendance(ctx context.Context, a *models.Attendance) error {
	a.UpdatedAt = time.Now()
	return expectOne(s.getDB().ExecContext(ctx, `
		UPDATE attendance SET
			updated_at = $2, check_out = $3, total_hours = $4, salary_earned = $5
		WHERE id = $1`,
		a.ID, a.UpdatedAt, a.CheckOut, a.TotalHours, a.SalaryEarned,
	))
}

// GetOpenAttendance returns the latest shift without a check-out
func (s *PostgresStore) GetOpenAttendance(ctx context.Context, tenantID, staffID uuid.UUID) (*models.Attendance, error) {
	return scanAttendance(s.getDB().QueryRowContext(ctx,
		attendanceSelect+` WHERE a.tenant_id = $1 AND a.staff_id = $2 AND a.check_out IS NULL ORDER BY a.check_in DESC LIMIT 1`,
		tenantID, staffID))
}

// ListAttendance lists shifts matching the filters, newest first
func (s *PostgresStore) ListAttendance(ctx context.Context, filters AttendanceFilters) ([]*models.Attendance, error) {
	query := attendanceSelect + ` WHERE a.tenant_id = $1`
	args := []interface{}{filters.TenantID}
	argCount := 1

	if filters.StaffID != nil {
		argCount++
		query += fmt.Sprintf(" AND a.staff_id = $%d", argCount)
		args = append(args, *filters.StaffID)
	}

	if filters.StartTime != nil {
		argCount++
		query += fmt.Sprintf(" AND a.check_in >= $%d", argCount)
		args = append(args, *filters.StartTime)
	}

	query += " ORDER BY a.check_in DESC"

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*models.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
