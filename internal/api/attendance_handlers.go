package api

import (
	"errors"
	"net/http"

	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/report"
	"github.com/flownest/flownest-server/internal/storage"
)

// ========== Attendance handlers ==========

// HandleCheckIn opens today's shift for the principal
func (s *RESTServer) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := principal(ctx)
	tid := tenantID(ctx)
	now := s.now()
	today := report.StartOfDay(now, s.config.Report.Location())

	existing, err := s.store.ListAttendance(ctx, storage.AttendanceFilters{
		TenantID:  tid,
		StaffID:   &user.ID,
		StartTime: &today,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(existing) > 0 {
		s.writeError(w, r, badRequest("Already checked in today"))
		return
	}

	record := &models.Attendance{
		StaffID: user.ID,
		CheckIn: now,
	}
	record.TenantID = tid
	record.CreatedAt = now

	if err := s.store.CreateAttendance(ctx, record); err != nil {
		s.writeError(w, r, err)
		return
	}
	record.StaffName = user.Name
	s.respondJSON(w, http.StatusCreated, record)
}

// HandleCheckOut closes the principal's open shift
func (s *RESTServer) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := principal(ctx)

	record, err := s.store.GetOpenAttendance(ctx, tenantID(ctx), user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, badRequest("Not checked in"))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	record.Close(s.now(), user.HourlyRate)
	if err := s.store.UpdateAttendance(ctx, record); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

// HandleListAttendance lists shifts; staff only see their own
func (s *RESTServer) HandleListAttendance(w http.ResponseWriter, r *http.Request) {
	user := principal(r.Context())
	filters := storage.AttendanceFilters{TenantID: tenantID(r.Context())}
	if user.Role == models.RoleStaff {
		filters.StaffID = &user.ID
	}

	records, err := s.store.ListAttendance(r.Context(), filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, records)
}
