package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flownest/flownest-server/internal/config"
	"github.com/flownest/flownest-server/internal/models"
)

func newManager(ttl time.Duration) *JWTManager {
	return NewJWTManager(&config.JWTConfig{Secret: "test-secret", AccessTokenTTL: ttl})
}

func TestTokenRoundTrip(t *testing.T) {
	m := newManager(time.Hour)
	user := &models.User{ID: uuid.New(), Role: models.RoleOwner}

	token, expires, err := m.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleOwner, claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	m := newManager(time.Hour)
	user := &models.User{ID: uuid.New(), Role: models.RoleStaff}

	expired, _, err := newManager(-time.Minute).GenerateToken(user)
	require.NoError(t, err)

	otherKey, _, err := NewJWTManager(&config.JWTConfig{Secret: "other", AccessTokenTTL: time.Hour}).GenerateToken(user)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: user.ID}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":   expired,
		"wrong key": otherKey,
		"alg none":  none,
		"garbage":   "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAllowSets(t *testing.T) {
	tests := []struct {
		set     AllowSet
		role    models.Role
		allowed bool
	}{
		{AnyRole, models.RoleStaff, true},
		{TenantMembers, models.RoleSuperadmin, false},
		{OwnerOnly, models.RoleStaff, false},
		{OwnerOnly, models.RoleSuperadmin, false},
		{OwnerOrAdmin, models.RoleSuperadmin, true},
		{OwnerOrAdmin, models.RoleOwner, true},
		{SuperadminOnly, models.RoleOwner, false},
		{AnyRole, models.Role("guest"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.set.Permits(tt.role), "role %s", tt.role)
	}
}

func TestCheckReturnsRoleError(t *testing.T) {
	err := OwnerOnly.Check(models.RoleStaff)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))

	var roleErr *RoleError
	require.ErrorAs(t, err, &roleErr)
	assert.Equal(t, models.RoleStaff, roleErr.Role)
	assert.Contains(t, err.Error(), "Role 'staff' is not authorized")

	assert.NoError(t, OwnerOnly.Check(models.RoleOwner))
}
