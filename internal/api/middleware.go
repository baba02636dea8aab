package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/auth"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

type ctxKey int

const (
	principalKey ctxKey = iota
	tenantKey
	tenantRecordKey
)

// principal returns the authenticated user of the request
func principal(ctx context.Context) *models.User {
	u, _ := ctx.Value(principalKey).(*models.User)
	return u
}

// tenantID returns the tenant resolved for the request
func tenantID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(tenantKey).(uuid.UUID)
	return id
}

// admittedTenant returns the tenant loaded by the subscription gate, or
// nil on ungated routes.
func admittedTenant(ctx context.Context) *models.Tenant {
	t, _ := ctx.Value(tenantRecordKey).(*models.Tenant)
	return t
}

// bearerToken extracts the credential from the Authorization header or,
// failing that, the session cookie.
func (s *RESTServer) bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(s.config.JWT.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// authMiddleware is the authentication middleware
func (s *RESTServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.bearerToken(r)
		if token == "" {
			s.writeError(w, r, unauthorized("Not authorized, no token"))
			return
		}

		claims, err := s.auth.ValidateToken(token)
		if err != nil {
			s.writeError(w, r, unauthorized("Not authorized, token failed"))
			return
		}

		// Reload so role and tenant changes apply to live tokens.
		user, err := s.store.GetUser(r.Context(), claims.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, r, unauthorized("Not authorized, user not found"))
			return
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRoles admits only principals whose role is in the allow-set
func (s *RESTServer) requireRoles(allowed auth.AllowSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := principal(r.Context())
			if user == nil {
				s.writeError(w, r, unauthorized("Not authorized"))
				return
			}
			if err := allowed.Check(user.Role); err != nil {
				s.writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tenantScope resolves the principal's tenant into the request context
func (s *RESTServer) tenantScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.resolver.Resolve(r.Context(), principal(r.Context()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), tenantKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// delegatedTenantScope is tenantScope for routes superadmins also act on.
// A superadmin carries no tenant of their own and names the one they
// act for with the tenantId query parameter.
func (s *RESTServer) delegatedTenantScope(next http.Handler) http.Handler {
	scoped := s.tenantScope(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := principal(r.Context())
		v := r.URL.Query().Get("tenantId")
		if user.Role != models.RoleSuperadmin || user.HasTenant() || v == "" {
			scoped.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(v)
		if err != nil {
			s.writeError(w, r, badRequest("Invalid tenantId"))
			return
		}
		ctx := context.WithValue(r.Context(), tenantKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// subscriptionGate denies tenant-scoped work once the subscription lapses
func (s *RESTServer) subscriptionGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant, err := s.gate.Check(r.Context(), tenantID(r.Context()))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				err = notFound("Tenant not found")
			}
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), tenantRecordKey, tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
