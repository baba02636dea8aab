package api

import (
	"errors"
	"net/http"

	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

// ========== Service catalogue handlers ==========

type serviceRequest struct {
	Name          string   `json:"name" validate:"max=200"`
	Price         float64  `json:"price" validate:"gte=0"`
	SellPrice     float64  `json:"sellPrice" validate:"gte=0"`
	OriginalPrice *float64 `json:"originalPrice" validate:"omitempty,gte=0"`
	Duration      int      `json:"duration" validate:"gte=0"`
	Category      string   `json:"category" validate:"max=100"`
}

// sell returns sellPrice, falling back to the legacy price field
func (req *serviceRequest) sell() float64 {
	if req.SellPrice > 0 {
		return req.SellPrice
	}
	return req.Price
}

// HandleListServices lists the tenant's services
func (s *RESTServer) HandleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.store.ListServices(r.Context(), tenantID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, services)
}

// HandleCreateService creates a service
func (s *RESTServer) HandleCreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, r, badRequest("Service name is required"))
		return
	}
	if req.sell() <= 0 {
		s.writeError(w, r, badRequest("Sell price is required"))
		return
	}

	service := &models.Service{
		Name:      req.Name,
		SellPrice: req.sell(),
		Duration:  req.Duration,
		Category:  firstNonEmpty(req.Category, models.DefaultCategory),
	}
	service.TenantID = tenantID(r.Context())
	if req.OriginalPrice != nil {
		service.OriginalPrice = *req.OriginalPrice
	}

	if err := s.store.CreateService(r.Context(), service); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, service)
}

// HandleUpdateService updates a service; zero values keep stored fields
func (s *RESTServer) HandleUpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req serviceRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()

	service, err := s.store.GetService(ctx, tenantID(ctx), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = notFound("Service not found")
		}
		s.writeError(w, r, err)
		return
	}

	service.Name = firstNonEmpty(req.Name, service.Name)
	if sell := req.sell(); sell > 0 {
		service.SellPrice = sell
	}
	if req.OriginalPrice != nil {
		service.OriginalPrice = *req.OriginalPrice
	}
	if req.Duration > 0 {
		service.Duration = req.Duration
	}
	service.Category = firstNonEmpty(req.Category, service.Category)

	if err := s.store.UpdateService(ctx, service); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, service)
}

// HandleDeleteService deletes a service
func (s *RESTServer) HandleDeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeleteService(r.Context(), tenantID(r.Context()), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = notFound("Service not found")
		}
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Service removed"})
}
