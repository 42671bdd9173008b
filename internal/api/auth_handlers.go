package api

import (
	"net/http"

	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// handleSignup registers a new account and returns the user with an
// access token.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.authService.Signup(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, result, s.logger)
}

// handleLogin authenticates by email and password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
