package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/flownest/flownest-server/internal/events"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
	"github.com/flownest/flownest-server/internal/subscription"
	"github.com/flownest/flownest-server/pkg/crypto"
)

// authResponse is returned by register, login and me
type authResponse struct {
	Success   bool                  `json:"success"`
	Token     string                `json:"token,omitempty"`
	ExpiresAt *time.Time            `json:"expiresAt,omitempty"`
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Role      models.Role           `json:"role"`
	TenantID  *uuid.UUID            `json:"tenantId"`
	Tenant    *models.TenantSummary `json:"tenant"`
}

func newAuthResponse(user *models.User, tenant *models.Tenant) authResponse {
	resp := authResponse{
		Success:  true,
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: user.TenantID,
	}
	if tenant != nil {
		resp.Tenant = tenant.Summary()
	}
	return resp
}

// HandleRegister registers an owner together with their tenant
func (s *RESTServer) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name" validate:"required,max=100"`
		Email        string `json:"email" validate:"required,email"`
		Password     string `json:"password" validate:"required,min=6"`
		ShopName     string `json:"shopName" validate:"required,max=200"`
		BusinessType string `json:"businessType"`
		Phone        string `json:"phone"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		s.writeError(w, r, conflict("User already exists"))
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, err)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, badRequest(err.Error()))
		return
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer tx.Rollback()

	user := &models.User{
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         models.RoleOwner,
	}
	if err := tx.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			err = conflict("User already exists")
		}
		s.writeError(w, r, err)
		return
	}

	tenant := &models.Tenant{
		Name:         req.ShopName,
		Phone:        req.Phone,
		BusinessType: firstNonEmpty(req.BusinessType, models.DefaultCategory),
		OwnerID:      &user.ID,
	}
	subscription.StartTrial(tenant, s.now(), s.config.Subscription.TrialPeriod)
	if err := tx.CreateTenant(ctx, tenant); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := tx.SetUserTenant(ctx, user.ID, tenant.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	user.TenantID = &tenant.ID

	if err := tx.Commit(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.IncrementTenantsRegistered()

	hlog.FromRequest(r).Info().
		Str("user_id", user.ID.String()).
		Str("tenant_id", tenant.ID.String()).
		Msg("Owner registered")

	e := events.New(events.UserRegistered, s.now(), models.Variables{
		"name":         user.Name,
		"email":        user.Email,
		"businessName": tenant.Name,
	})
	e.ActorID = &user.ID
	e.TenantID = &tenant.ID
	s.publish(r, e)

	s.sendTokenResponse(w, r, http.StatusCreated, user, tenant)
}

// HandleLogin handles user login
func (s *RESTServer) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Get user
	user, err := s.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, err)
		return
	}

	// Verify password
	if user == nil || !s.auth.VerifyPassword(req.Password, user.PasswordHash) {
		s.writeError(w, r, unauthorized("Invalid email or password"))
		return
	}

	tenant, err := s.loadTenant(r, user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.sendTokenResponse(w, r, http.StatusOK, user, tenant)
}

// HandleLogout clears the session cookie
func (s *RESTServer) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.JWT.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}

// HandleMe returns the current principal
func (s *RESTServer) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := principal(r.Context())
	tenant, err := s.loadTenant(r, user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newAuthResponse(user, tenant))
}

// loadTenant returns the user's tenant, or nil when none is linked
func (s *RESTServer) loadTenant(r *http.Request, user *models.User) (*models.Tenant, error) {
	if !user.HasTenant() {
		return nil, nil
	}
	tenant, err := s.store.GetTenant(r.Context(), *user.TenantID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return tenant, err
}

// sendTokenResponse issues a token, sets the cookie and writes the profile
func (s *RESTServer) sendTokenResponse(w http.ResponseWriter, r *http.Request, status int, user *models.User, tenant *models.Tenant) {
	token, expiresAt, err := s.auth.GenerateToken(user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cookie := &http.Cookie{
		Name:     s.config.JWT.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	}
	if cookie.Secure {
		// cross-origin frontends need None, which browsers only accept with Secure
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, cookie)

	resp := newAuthResponse(user, tenant)
	resp.Token = token
	resp.ExpiresAt = &expiresAt
	s.respondJSON(w, status, resp)
}

// publish hands an event to the bus; failures are logged only
func (s *RESTServer) publish(r *http.Request, e *events.Event) {
	if err := s.events.Publish(r.Context(), e); err != nil {
		hlog.FromRequest(r).Warn().
			Err(err).
			Str("type", string(e.Type)).
			Msg("Failed to publish event")
	}
}
