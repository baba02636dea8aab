package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

// MemoryStore is an in-process Store used for tests and for running the
// API without a database. Records are copied on every read and write, so
// callers never share state with the store. Transactions are not isolated:
// BeginTx returns the same store and Rollback does not undo writes.
type MemoryStore struct {
	mu sync.RWMutex

	users         map[uuid.UUID]models.User
	tenants       map[uuid.UUID]models.Tenant
	services      map[uuid.UUID]models.Service
	invoices      map[uuid.UUID]models.Invoice
	expenses      map[uuid.UUID]models.Expense
	credits       map[uuid.UUID]models.Credit
	attendance    map[uuid.UUID]models.Attendance
	notifications map[uuid.UUID]models.Notification
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uuid.UUID]models.User),
		tenants:       make(map[uuid.UUID]models.Tenant),
		services:      make(map[uuid.UUID]models.Service),
		invoices:      make(map[uuid.UUID]models.Invoice),
		expenses:      make(map[uuid.UUID]models.Expense),
		credits:       make(map[uuid.UUID]models.Credit),
		attendance:    make(map[uuid.UUID]models.Attendance),
		notifications: make(map[uuid.UUID]models.Notification),
	}
}

// BeginTx returns the store itself
func (m *MemoryStore) BeginTx(ctx context.Context) (Store, error) { return m, nil }

// Commit is a no-op
func (m *MemoryStore) Commit() error { return nil }

// Rollback is a no-op
func (m *MemoryStore) Rollback() error { return nil }

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }

func stamp(id *uuid.UUID, created, updated *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// ========== Users ==========

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateKey
		}
	}
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return ErrNotFound
	}
	for id, u := range m.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateKey
		}
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) SetUserTenant(ctx context.Context, userID, tenantID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	tid := tenantID
	u.TenantID = &tid
	u.UpdatedAt = time.Now()
	m.users[userID] = u
	return nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryStore) ListUsers(ctx context.Context, filters UserFilters) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := []*models.User{}
	for _, u := range m.users {
		if filters.TenantID != nil && (u.TenantID == nil || *u.TenantID != *filters.TenantID) {
			continue
		}
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// ========== Tenants ==========

func (m *MemoryStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tenant.OwnerID != nil {
		for _, t := range m.tenants {
			if t.OwnerID != nil && *t.OwnerID == *tenant.OwnerID {
				return ErrDuplicateKey
			}
		}
	}
	stamp(&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt)
	stored := *tenant
	stored.Owner = nil
	m.tenants[tenant.ID] = stored
	return nil
}

// withOwner returns a copy of t with the owner projection filled in.
// Callers must hold the lock.
func (m *MemoryStore) withOwner(t models.Tenant) *models.Tenant {
	if t.OwnerID != nil {
		if u, ok := m.users[*t.OwnerID]; ok {
			t.Owner = &models.OwnerSummary{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return &t
}

func (m *MemoryStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.withOwner(t), nil
}

func (m *MemoryStore) GetTenantByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.tenants {
		if t.OwnerID != nil && *t.OwnerID == ownerID {
			return m.withOwner(t), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tenants[tenant.ID]; !ok {
		return ErrNotFound
	}
	tenant.UpdatedAt = time.Now()
	stored := *tenant
	stored.Owner = nil
	m.tenants[tenant.ID] = stored
	return nil
}

func (m *MemoryStore) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenants[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.tenants, id)

	removed := make(map[uuid.UUID]bool)
	for uid, u := range m.users {
		if (u.TenantID != nil && *u.TenantID == id) || (t.OwnerID != nil && uid == *t.OwnerID) {
			removed[uid] = true
			delete(m.users, uid)
		}
	}
	for k, v := range m.services {
		if v.TenantID == id {
			delete(m.services, k)
		}
	}
	for k, v := range m.invoices {
		if v.TenantID == id {
			delete(m.invoices, k)
		}
	}
	for k, v := range m.expenses {
		if v.TenantID == id {
			delete(m.expenses, k)
		}
	}
	for k, v := range m.credits {
		if v.TenantID == id {
			delete(m.credits, k)
		}
	}
	for k, v := range m.attendance {
		if v.TenantID == id {
			delete(m.attendance, k)
		}
	}
	for k, v := range m.notifications {
		if removed[v.RecipientID] {
			delete(m.notifications, k)
		}
	}
	return nil
}

func (m *MemoryStore) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tenants := []*models.Tenant{}
	for _, t := range m.tenants {
		tenants = append(tenants, m.withOwner(t))
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].CreatedAt.After(tenants[j].CreatedAt) })
	return tenants, nil
}

// ========== Services ==========

func (m *MemoryStore) CreateService(ctx context.Context, svc *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)
	m.services[svc.ID] = *svc
	return nil
}

func (m *MemoryStore) GetService(ctx context.Context, tenantID, id uuid.UUID) (*models.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	svc, ok := m.services[id]
	if !ok || svc.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return &svc, nil
}

func (m *MemoryStore) UpdateService(ctx context.Context, svc *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.services[svc.ID]
	if !ok || cur.TenantID != svc.TenantID {
		return ErrNotFound
	}
	svc.UpdatedAt = time.Now()
	m.services[svc.ID] = *svc
	return nil
}

func (m *MemoryStore) DeleteService(ctx context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.services[id]
	if !ok || cur.TenantID != tenantID {
		return ErrNotFound
	}
	delete(m.services, id)
	return nil
}

func (m *MemoryStore) ListServices(ctx context.Context, tenantID uuid.UUID) ([]*models.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []*models.Service{}
	for _, svc := range m.services {
		if svc.TenantID == tenantID {
			svc := svc
			list = append(list, &svc)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// ========== Invoices ==========

func (m *MemoryStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	stored := *inv
	stored.Items = append(models.InvoiceItems(nil), inv.Items...)
	m.invoices[inv.ID] = stored
	return nil
}

func (m *MemoryStore) ListInvoices(ctx context.Context, filters InvoiceFilters) ([]*models.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []*models.Invoice{}
	for _, inv := range m.invoices {
		if inv.TenantID != filters.TenantID {
			continue
		}
		if filters.StartTime != nil && inv.CreatedAt.Before(*filters.StartTime) {
			continue
		}
		if filters.EndTime != nil && !inv.CreatedAt.Before(*filters.EndTime) {
			continue
		}
		inv := inv
		inv.Items = append(models.InvoiceItems(nil), inv.Items...)
		list = append(list, &inv)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if filters.Limit > 0 && len(list) > filters.Limit {
		list = list[:filters.Limit]
	}
	return list, nil
}

func (m *MemoryStore) PhoneVisitCounts(ctx context.Context, tenantID uuid.UUID) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, inv := range m.invoices {
		if inv.TenantID == tenantID && inv.CustomerPhone != "" {
			counts[inv.CustomerPhone]++
		}
	}
	return counts, nil
}

// ========== Expenses ==========

func (m *MemoryStore) CreateExpense(ctx context.Context, exp *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&exp.ID, &exp.CreatedAt, &exp.UpdatedAt)
	if exp.Date.IsZero() {
		exp.Date = exp.CreatedAt
	}
	m.expenses[exp.ID] = *exp
	return nil
}

func (m *MemoryStore) expenseView(exp models.Expense) *models.Expense {
	if u, ok := m.users[exp.AddedBy]; ok {
		exp.AddedByName = u.Name
	}
	return &exp
}

func (m *MemoryStore) GetExpense(ctx context.Context, tenantID, id uuid.UUID) (*models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exp, ok := m.expenses[id]
	if !ok || exp.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return m.expenseView(exp), nil
}

func (m *MemoryStore) UpdateExpense(ctx context.Context, exp *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.expenses[exp.ID]
	if !ok || cur.TenantID != exp.TenantID {
		return ErrNotFound
	}
	exp.UpdatedAt = time.Now()
	m.expenses[exp.ID] = *exp
	return nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, filters ExpenseFilters) ([]*models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []*models.Expense{}
	for _, exp := range m.expenses {
		if exp.TenantID != filters.TenantID {
			continue
		}
		if filters.Status != nil && exp.Status != *filters.Status {
			continue
		}
		if filters.StartTime != nil && exp.Date.Before(*filters.StartTime) {
			continue
		}
		if filters.EndTime != nil && !exp.Date.Before(*filters.EndTime) {
			continue
		}
		list = append(list, m.expenseView(exp))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

// ========== Credits ==========

func (m *MemoryStore) CreateCredit(ctx context.Context, c *models.Credit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	stored := *c
	stored.Payments = append(models.CreditPayments(nil), c.Payments...)
	m.credits[c.ID] = stored
	return nil
}

func (m *MemoryStore) GetCredit(ctx context.Context, tenantID, id uuid.UUID) (*models.Credit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.credits[id]
	if !ok || c.TenantID != tenantID {
		return nil, ErrNotFound
	}
	c.Payments = append(models.CreditPayments(nil), c.Payments...)
	return &c, nil
}

func (m *MemoryStore) UpdateCredit(ctx context.Context, c *models.Credit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.credits[c.ID]
	if !ok || cur.TenantID != c.TenantID {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now()
	stored := *c
	stored.Payments = append(models.CreditPayments(nil), c.Payments...)
	m.credits[c.ID] = stored
	return nil
}

func (m *MemoryStore) ListCredits(ctx context.Context, tenantID uuid.UUID) ([]*models.Credit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []*models.Credit{}
	for _, c := range m.credits {
		if c.TenantID == tenantID {
			c := c
			c.Payments = append(models.CreditPayments(nil), c.Payments...)
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// ========== Attendance ==========

func (m *MemoryStore) CreateAttendance(ctx context.Context, a *models.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if a.CheckIn.IsZero() {
		a.CheckIn = a.CreatedAt
	}
	m.attendance[a.ID] = *a
	return nil
}

func (m *MemoryStore) UpdateAttendance(ctx context.Context, a *models.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.attendance[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now()
	m.attendance[a.ID] = *a
	return nil
}

func (m *MemoryStore) attendanceView(a models.Attendance) *models.Attendance {
	if u, ok := m.users[a.StaffID]; ok {
		a.StaffName = u.Name
	}
	return &a
}

func (m *MemoryStore) GetOpenAttendance(ctx context.Context, tenantID, staffID uuid.UUID) (*models.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.Attendance
	for _, a := range m.attendance {
		if a.TenantID != tenantID || a.StaffID != staffID || a.CheckOut != nil {
			continue
		}
		if latest == nil || a.CheckIn.After(latest.CheckIn) {
			latest = m.attendanceView(a)
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (m *MemoryStore) ListAttendance(ctx context.Context, filters AttendanceFilters) ([]*models.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []*models.Attendance{}
	for _, a := range m.attendance {
		if a.TenantID != filters.TenantID {
			continue
		}
		if filters.StaffID != nil && a.StaffID != *filters.StaffID {
			continue
		}
		if filters.StartTime != nil && a.CheckIn.Before(*filters.StartTime) {
			continue
		}
		list = append(list, m.attendanceView(a))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CheckIn.After(list[j].CheckIn) })
	return list, nil
}

// ========== Notifications ==========

func (m *MemoryStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	m.notifications[n.ID] = *n
	return nil
}

func (m *MemoryStore) ListNotifications(ctx context.Context, recipientID uuid.UUID, limit int) ([]*models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []*models.Notification{}
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			n := n
			list = append(list, &n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MemoryStore) MarkNotificationRead(ctx context.Context, recipientID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return ErrNotFound
	}
	n.Read = true
	m.notifications[id] = n
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
