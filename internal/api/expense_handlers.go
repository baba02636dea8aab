package api

import (
	"net/http"
	"time"

	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

// ========== Expense handlers ==========

// HandleListExpenses lists the tenant's expenses, latest first
func (s *RESTServer) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
	filters := storage.ExpenseFilters{TenantID: tenantID(r.Context())}
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.ExpenseStatus(v)
		filters.Status = &status
	}

	expenses, err := s.store.ListExpenses(r.Context(), filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, expenses)
}

// HandleCreateExpense records an expense. Owners and superadmins approve
// their own entries; staff entries wait for review.
func (s *RESTServer) HandleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string     `json:"title" validate:"max=200"`
		Reason   string     `json:"reason" validate:"max=200"`
		Amount   float64    `json:"amount"`
		Category string     `json:"category" validate:"max=100"`
		Date     *time.Time `json:"date"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	title := firstNonEmpty(req.Title, req.Reason)
	if title == "" || req.Amount <= 0 {
		s.writeError(w, r, badRequest("Amount and Title are required"))
		return
	}

	user := principal(r.Context())
	expense := &models.Expense{
		AddedBy:  user.ID,
		Title:    title,
		Amount:   req.Amount,
		Category: firstNonEmpty(req.Category, "Other"),
		Status:   models.ExpensePending,
		Date:     s.now(),
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}
	if user.Role == models.RoleOwner || user.Role == models.RoleSuperadmin {
		expense.Status = models.ExpenseApproved
	}
	expense.TenantID = tenantID(r.Context())
	expense.CreatedAt = s.now()

	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		s.writeError(w, r, err)
		return
	}
	expense.AddedByName = user.Name
	s.respondJSON(w, http.StatusCreated, expense)
}

// HandleUpdateExpenseStatus approves or rejects an expense
func (s *RESTServer) HandleUpdateExpenseStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Status models.ExpenseStatus `json:"status"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Status != models.ExpenseApproved && req.Status != models.ExpenseRejected {
		s.writeError(w, r, badRequest("Status must be approved or rejected"))
		return
	}

	expense, err := s.store.GetExpense(r.Context(), tenantID(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	expense.Status = req.Status
	if err := s.store.UpdateExpense(r.Context(), expense); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, expense)
}
