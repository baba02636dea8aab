package api

import (
	"net/http"
)

// HandleListNotifications lists the principal's notifications
func (s *RESTServer) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListNotifications(r.Context(), principal(r.Context()).ID, queryInt(r, "limit", 50))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

// HandleMarkNotificationRead marks one of the principal's notifications read
func (s *RESTServer) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.MarkNotificationRead(r.Context(), principal(r.Context()).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
