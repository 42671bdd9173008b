// Package service implements the business operations behind the HTTP
// handlers: auth, books, chapters, social interactions, notifications
// and user profiles.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/color"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// AuthService handles signup, login and token issuance.
type AuthService struct {
	store     *store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(s *store.Store, tokens *auth.TokenService, v *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{store: s, tokens: tokens, validator: v, logger: logger}
}

// SignupRequest is the payload for creating an account.
type SignupRequest struct {
	Handle   string `json:"handle" validate:"required,max=40,handle"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult carries the signed-in user and their access token.
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Signup creates a new account and returns an access token.
// Handle and email must both be unused.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	req.Handle = strings.ToLower(strings.TrimSpace(req.Handle))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to hash password")
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate user id")
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Handle:       req.Handle,
		Email:        req.Email,
		PasswordHash: hash,
		AvatarColor:  color.ForHandle(req.Handle),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.Conflict("handle or email already in use")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create user")
	}

	s.logger.Info("user signed up", "handle", user.Handle)
	return s.result(user)
}

// Login verifies credentials and returns an access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.GetByIndex(ctx, "email", req.Email)
	if err != nil {
		// Same response as a wrong password, so callers can't tell
		// which part was wrong.
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.InvalidCredentials("invalid email or password")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to look up user")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to verify password")
	}
	if !ok {
		return nil, errors.InvalidCredentials("invalid email or password")
	}

	return s.result(user)
}

func (s *AuthService) result(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate token")
	}
	return &AuthResult{User: user.Public(), Token: token}, nil
}
