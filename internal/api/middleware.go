package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUser contextKey = "user"

// requireAuth validates the Bearer token and attaches the live account
// to the request context. Tokens for deleted accounts are rejected.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Missing authorization header", s.logger)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format", s.logger)
			return
		}

		claims, err := s.tokens.VerifyAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token", s.logger)
			return
		}

		user, err := s.userService.GetByID(r.Context(), claims.UserID)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser extracts the authenticated user from the request context.
// Only valid behind requireAuth.
func currentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(contextKeyUser).(*domain.User)
	return user
}

// rateLimit throttles requests per client IP.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.Allow(ip) {
			s.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the request's client address without the port.
// RealIP middleware has already folded proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
