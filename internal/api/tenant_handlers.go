package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/flownest/flownest-server/internal/events"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

// ========== Tenant profile handlers ==========

// HandleGetTenant returns the caller's tenant with owner details
func (s *RESTServer) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := s.store.GetTenant(r.Context(), tenantID(r.Context()))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = notFound("Tenant not found")
		}
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tenant)
}

// HandleUpdateTenant partially updates the tenant profile. Empty strings
// keep the stored value.
func (s *RESTServer) HandleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name" validate:"max=200"`
		Address      string `json:"address"`
		Phone        string `json:"phone"`
		BusinessType string `json:"businessType"`
		Logo         string `json:"logo"`
		OwnerName    string `json:"ownerName"`
		OwnerEmail   string `json:"ownerEmail" validate:"omitempty,email"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()

	tenant, err := s.store.GetTenant(ctx, tenantID(ctx))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = notFound("Tenant not found")
		}
		s.writeError(w, r, err)
		return
	}

	tenant.Name = firstNonEmpty(req.Name, tenant.Name)
	tenant.Address = firstNonEmpty(req.Address, tenant.Address)
	tenant.Phone = firstNonEmpty(req.Phone, tenant.Phone)
	tenant.BusinessType = firstNonEmpty(req.BusinessType, tenant.BusinessType)
	tenant.Logo = firstNonEmpty(req.Logo, tenant.Logo)

	if (req.OwnerName != "" || req.OwnerEmail != "") && tenant.OwnerID != nil {
		owner, err := s.store.GetUser(ctx, *tenant.OwnerID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		owner.Name = firstNonEmpty(req.OwnerName, owner.Name)
		owner.Email = firstNonEmpty(strings.ToLower(req.OwnerEmail), owner.Email)
		if err := s.store.UpdateUser(ctx, owner); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				err = conflict("Email already in use")
			}
			s.writeError(w, r, err)
			return
		}
	}

	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Re-fetch so the owner projection is current
	updated, err := s.store.GetTenant(ctx, tenant.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

// HandleSubmitProof records payment proof and notifies superadmins
func (s *RESTServer) HandleSubmitProof(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentProof    string `json:"paymentProof" validate:"required"`
		ReferenceNumber string `json:"referenceNumber" validate:"max=100"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	user := principal(ctx)

	tenant, err := s.store.GetTenant(ctx, tenantID(ctx))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = notFound("Tenant not found")
		}
		s.writeError(w, r, err)
		return
	}

	tenant.PaymentProof = req.PaymentProof
	tenant.PaymentReferenceNumber = req.ReferenceNumber
	tenant.PaymentApproved = false
	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		s.writeError(w, r, err)
		return
	}

	ownerName := user.Name
	if tenant.Owner != nil {
		ownerName = tenant.Owner.Name
	}
	e := events.New(events.PaymentProofSubmitted, s.now(), models.Variables{
		"tenantName": tenant.Name,
		"ownerName":  ownerName,
		"reference":  req.ReferenceNumber,
	})
	e.TenantID = &tenant.ID
	e.ActorID = &user.ID
	s.publish(r, e)

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Proof submitted successfully"})
}
