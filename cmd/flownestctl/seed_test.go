package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
	"github.com/flownest/flownest-server/pkg/crypto"
)

func TestSeedCreatesDemoTenant(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	out, err := seed(ctx, store, 7*24*time.Hour, "demo-pass", now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{seedAdminEmail, seedOwnerEmail, seedStaffEmail}, out.Created)
	assert.Empty(t, out.Skipped)

	owner, err := store.GetUserByEmail(ctx, seedOwnerEmail)
	require.NoError(t, err)
	require.NotNil(t, owner.TenantID)
	assert.True(t, crypto.VerifyPassword("demo-pass", owner.PasswordHash))

	tenant, err := store.GetTenant(ctx, *owner.TenantID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionTrial, tenant.SubscriptionStatus)
	require.NotNil(t, tenant.TrialExpiresAt)
	assert.True(t, tenant.TrialExpiresAt.Equal(now.Add(7*24*time.Hour)))

	staff, err := store.GetUserByEmail(ctx, seedStaffEmail)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, staff.Role)
	assert.Equal(t, *owner.TenantID, *staff.TenantID)

	services, err := store.ListServices(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, services, 3)

	admin, err := store.GetUserByEmail(ctx, seedAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperadmin, admin.Role)
	assert.Nil(t, admin.TenantID)
}

func TestSeedIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	_, err := seed(ctx, store, time.Hour, "demo-pass", time.Now())
	require.NoError(t, err)

	out, err := seed(ctx, store, time.Hour, "demo-pass", time.Now())
	require.NoError(t, err)
	assert.Empty(t, out.Created)
	assert.ElementsMatch(t, []string{seedAdminEmail, seedOwnerEmail, seedStaffEmail}, out.Skipped)

	tenants, err := store.ListTenants(ctx)
	require.NoError(t, err)
	assert.Len(t, tenants, 1)
}

func TestSeedRejectsShortPassword(t *testing.T) {
	_, err := seed(context.Background(), storage.NewMemoryStore(), time.Hour, "abc", time.Now())
	assert.ErrorIs(t, err, crypto.ErrPasswordTooShort)
}

func TestReportSendWithMemoryStore(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"report", "send"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"sent": 0`)
}

func TestMigrateRequiresDSN(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate", "status"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.dsn is required")
}
