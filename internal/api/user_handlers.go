package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// handleGetCurrentUser returns the caller's own profile.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	response.Success(w, currentUser(r.Context()).Public(), s.logger)
}

// handleGetUser returns a user's public profile by handle.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.GetByHandle(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, user, s.logger)
}

// handleListUserBooks returns a user's published books, newest first.
func (s *Server) handleListUserBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListByAuthor(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, books, s.logger)
}

// handleUpdateProfile edits the caller's bio, location or website.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	user, err := s.userService.UpdateProfile(r.Context(), currentUser(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, user, s.logger)
}

// handleSetUserImage accepts a raw image body as the caller's avatar.
func (s *Server) handleSetUserImage(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	user, err := s.userService.SetImage(r.Context(), currentUser(r.Context()), data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, user, s.logger)
}
