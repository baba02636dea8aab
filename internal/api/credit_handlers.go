package api

import (
	"net/http"

	"github.com/flownest/flownest-server/internal/models"
)

// ========== Credit handlers ==========

// HandleListCredits lists the tenant's credit notes
func (s *RESTServer) HandleListCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := s.store.ListCredits(r.Context(), tenantID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, credits)
}

// HandleCreateCredit opens a credit note for a customer
func (s *RESTServer) HandleCreateCredit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName  string  `json:"customerName" validate:"max=200"`
		CustomerPhone string  `json:"customerPhone" validate:"max=30"`
		TotalAmount   float64 `json:"totalAmount"`
		Notes         string  `json:"notes" validate:"max=1000"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.CustomerName == "" || req.TotalAmount <= 0 {
		s.writeError(w, r, badRequest("Customer name and amount are required"))
		return
	}

	credit := &models.Credit{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		TotalAmount:     req.TotalAmount,
		RemainingAmount: req.TotalAmount,
		Status:          models.CreditOpen,
		Notes:           req.Notes,
		AddedBy:         principal(r.Context()).ID,
		Payments:        models.CreditPayments{},
	}
	credit.TenantID = tenantID(r.Context())
	credit.CreatedAt = s.now()

	if err := s.store.CreateCredit(r.Context(), credit); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, credit)
}

// HandleCreditPayment records a repayment against a credit note
func (s *RESTServer) HandleCreditPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	credit, err := s.store.GetCredit(r.Context(), tenantID(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := credit.RecordPayment(req.Amount, principal(r.Context()).ID, s.now()); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.UpdateCredit(r.Context(), credit); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, credit)
}
