package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/flownest/flownest-server/internal/events"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
	"github.com/flownest/flownest-server/internal/subscription"
)

// ========== Admin handlers ==========

// HandleAdminListTenants lists every tenant with its owner
func (s *RESTServer) HandleAdminListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.store.ListTenants(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tenants)
}

// HandleAdminApprove records the verdict on a tenant's payment proof
func (s *RESTServer) HandleAdminApprove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Approve bool `json:"approve"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutateTenant(w, r, func(t *models.Tenant, now time.Time) {
		subscription.Approve(t, req.Approve, now, s.config.Subscription.ApprovalGrant)
	})
}

// HandleAdminTerminate ends a tenant's access
func (s *RESTServer) HandleAdminTerminate(w http.ResponseWriter, r *http.Request) {
	s.mutateTenant(w, r, subscription.Terminate)
}

// HandleAdminExpire forces a tenant's subscription to lapse
func (s *RESTServer) HandleAdminExpire(w http.ResponseWriter, r *http.Request) {
	s.mutateTenant(w, r, subscription.Expire)
}

// HandleAdminExtend extends a tenant's paid window
func (s *RESTServer) HandleAdminExtend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days   int `json:"days" validate:"gte=0"`
		Months int `json:"months" validate:"gte=0"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Days+req.Months <= 0 {
		s.writeError(w, r, badRequest("Days or months are required"))
		return
	}

	tenant, ok := s.adminTenant(w, r)
	if !ok {
		return
	}
	subscription.Extend(tenant, req.Days, req.Months, s.now())
	if err := s.store.UpdateTenant(r.Context(), tenant); err != nil {
		s.writeError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().
		Str("tenant_id", tenant.ID.String()).
		Time("expires_at", *tenant.SubscriptionExpiresAt).
		Msg("Subscription extended")

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Subscription extended",
		"newExpiry": tenant.SubscriptionExpiresAt,
		"tenant":    tenant,
	})
}

// HandleAdminDeleteTenant purges a tenant and everything scoped to it
func (s *RESTServer) HandleAdminDeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeleteTenant(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = notFound("Tenant not found")
		}
		s.writeError(w, r, err)
		return
	}

	hlog.FromRequest(r).Warn().Str("tenant_id", id.String()).Msg("Tenant deleted")
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Tenant and all associated data deleted"})
}

// HandleAdminMessage sends an in-app message to a user
func (s *RESTServer) HandleAdminMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipientID string `json:"recipientId" validate:"required,uuid"`
		Title       string `json:"title" validate:"required,max=200"`
		Message     string `json:"message" validate:"required,max=2000"`
		Type        string `json:"type" validate:"omitempty,oneof=info warning success error system"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	recipientID := uuid.MustParse(req.RecipientID)

	if _, err := s.store.GetUser(ctx, recipientID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = notFound("Recipient not found")
		}
		s.writeError(w, r, err)
		return
	}

	sender := principal(ctx).ID
	n := &models.Notification{
		RecipientID: recipientID,
		SenderID:    &sender,
		Title:       req.Title,
		Message:     req.Message,
		Type:        models.NotificationType(firstNonEmpty(req.Type, string(models.NotificationInfo))),
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.writeError(w, r, err)
		return
	}

	e := events.New(events.AdminMessage, n.CreatedAt, models.Variables{
		"notificationId": n.ID.String(),
		"title":          n.Title,
		"message":        n.Message,
		"type":           string(n.Type),
	})
	e.ActorID = &sender
	e.RecipientID = &recipientID
	s.publish(r, e)

	s.respondJSON(w, http.StatusCreated, n)
}

// adminTenant loads the {id} tenant
func (s *RESTServer) adminTenant(w http.ResponseWriter, r *http.Request) (*models.Tenant, bool) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	tenant, err := s.store.GetTenant(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = notFound("Tenant not found")
		}
		s.writeError(w, r, err)
		return nil, false
	}
	return tenant, true
}

// mutateTenant applies an administrative override to the {id} tenant and
// returns the stored result.
func (s *RESTServer) mutateTenant(w http.ResponseWriter, r *http.Request, apply func(*models.Tenant, time.Time)) {
	tenant, ok := s.adminTenant(w, r)
	if !ok {
		return
	}
	from := tenant.SubscriptionStatus
	apply(tenant, s.now())

	if err := s.store.UpdateTenant(r.Context(), tenant); err != nil {
		s.writeError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().
		Str("tenant_id", tenant.ID.String()).
		Str("from", string(from)).
		Str("to", string(tenant.SubscriptionStatus)).
		Msg("Tenant subscription overridden")

	s.respondJSON(w, http.StatusOK, tenant)
}
