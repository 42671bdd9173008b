package api

import (
	"net/http"

	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// handleListNotifications returns the caller's notifications, newest
// first.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.notificationService.List(r.Context(), currentUser(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, notifications, s.logger)
}

// handleMarkNotificationsRead marks the named notifications as read; an
// empty list marks all of them.
func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	var req service.MarkReadRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.notificationService.MarkRead(r.Context(), currentUser(r.Context()), req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}
