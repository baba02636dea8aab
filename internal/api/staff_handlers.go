package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
	"github.com/flownest/flownest-server/pkg/crypto"
)

// ========== Staff handlers ==========

type staffRequest struct {
	Name       string  `json:"name" validate:"max=100"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      string  `json:"phone" validate:"max=30"`
	Password   string  `json:"password"`
	HourlyRate float64 `json:"hourlyRate" validate:"gte=0"`
}

// HandleListStaff lists the tenant's staff members
func (s *RESTServer) HandleListStaff(w http.ResponseWriter, r *http.Request) {
	tid := tenantID(r.Context())
	role := models.RoleStaff

	staff, err := s.store.ListUsers(r.Context(), storage.UserFilters{TenantID: &tid, Role: &role})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, staff)
}

// HandleCreateStaff adds a staff member to the tenant
func (s *RESTServer) HandleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		s.writeError(w, r, badRequest("Name, email and password are required"))
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

	tid := tenantID(ctx)
	member := &models.User{
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         models.RoleStaff,
		TenantID:     &tid,
		HourlyRate:   req.HourlyRate,
	}
	if err := s.store.CreateUser(ctx, member); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			err = conflict("User already exists")
		}
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, member)
}

// HandleUpdateStaff updates a staff member; empty fields keep stored values
func (s *RESTServer) HandleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	member, ok := s.loadStaff(w, r)
	if !ok {
		return
	}
	var req staffRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	member.Name = firstNonEmpty(req.Name, member.Name)
	member.Phone = firstNonEmpty(req.Phone, member.Phone)
	if req.Email != "" {
		member.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.HourlyRate > 0 {
		member.HourlyRate = req.HourlyRate
	}
	if req.Password != "" {
		hash, err := crypto.HashPassword(req.Password)
		if err != nil {
			s.writeError(w, r, badRequest(err.Error()))
			return
		}
		member.PasswordHash = hash
	}

	if err := s.store.UpdateUser(r.Context(), member); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			err = conflict("Email already in use")
		}
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, member)
}

// HandleDeleteStaff removes a staff member
func (s *RESTServer) HandleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	member, ok := s.loadStaff(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteUser(r.Context(), member.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Staff removed"})
}

// loadStaff fetches the {id} user and checks it is staff of the request's
// tenant. Anyone else is reported as not found.
func (s *RESTServer) loadStaff(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	member, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	tid := tenantID(r.Context())
	if member.Role != models.RoleStaff || member.TenantID == nil || *member.TenantID != tid {
		s.writeError(w, r, notFound("Staff not found"))
		return nil, false
	}
	return member, true
}
