package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidData  = errors.New("invalid data")
)

// Store defines the storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// User methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	SetUserTenant(ctx context.Context, userID, tenantID uuid.UUID) error
	ListUsers(ctx context.Context, filters UserFilters) ([]*models.User, error)

	// Tenant methods
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetTenantByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *models.Tenant) error
	// DeleteTenant purges the tenant, its users and all tenant-scoped rows.
	DeleteTenant(ctx context.Context, id uuid.UUID) error
	ListTenants(ctx context.Context) ([]*models.Tenant, error)

	// Service catalogue methods
	CreateService(ctx context.Context, service *models.Service) error
	GetService(ctx context.Context, tenantID, id uuid.UUID) (*models.Service, error)
	UpdateService(ctx context.Context, service *models.Service) error
	DeleteService(ctx context.Context, tenantID, id uuid.UUID) error
	ListServices(ctx context.Context, tenantID uuid.UUID) ([]*models.Service, error)

	// Invoice methods
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	ListInvoices(ctx context.Context, filters InvoiceFilters) ([]*models.Invoice, error)
	// PhoneVisitCounts returns, for every non-empty customer phone of the
	// tenant, the number of invoices carrying it. Not window-scoped.
	PhoneVisitCounts(ctx context.Context, tenantID uuid.UUID) (map[string]int, error)

	// Expense methods
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, tenantID, id uuid.UUID) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	ListExpenses(ctx context.Context, filters ExpenseFilters) ([]*models.Expense, error)

	// Credit methods
	CreateCredit(ctx context.Context, credit *models.Credit) error
	GetCredit(ctx context.Context, tenantID, id uuid.UUID) (*models.Credit, error)
	UpdateCredit(ctx context.Context, credit *models.Credit) error
	ListCredits(ctx context.Context, tenantID uuid.UUID) ([]*models.Credit, error)

	// Attendance methods
	CreateAttendance(ctx context.Context, record *models.Attendance) error
	UpdateAttendance(ctx context.Context, record *models.Attendance) error
	// GetOpenAttendance returns the latest shift of the staff member within
	// the tenant that has not been checked out.
	GetOpenAttendance(ctx context.Context, tenantID, staffID uuid.UUID) (*models.Attendance, error)
	ListAttendance(ctx context.Context, filters AttendanceFilters) ([]*models.Attendance, error)

	// Notification methods
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipientID uuid.UUID, limit int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, recipientID, id uuid.UUID) error

	// Close the store
	Close() error
}

// UserFilters represents filters for user listings
type UserFilters struct {
	TenantID *uuid.UUID
	Role     *models.Role
}

// InvoiceFilters narrows invoice listings to a tenant and optional window
type InvoiceFilters struct {
	TenantID  uuid.UUID
	StartTime *time.Time // inclusive
	EndTime   *time.Time // exclusive
	Limit     int
}

// ExpenseFilters narrows expense listings
type ExpenseFilters struct {
	TenantID  uuid.UUID
	Status    *models.ExpenseStatus
	StartTime *time.Time // inclusive, on the expense date
	EndTime   *time.Time // exclusive, on the expense date
}

// AttendanceFilters narrows attendance listings
type AttendanceFilters struct {
	TenantID  uuid.UUID
	StaffID   *uuid.UUID
	StartTime *time.Time // inclusive, on check-in
}
