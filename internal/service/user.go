package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/media/images"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// UserService manages profiles and avatars.
type UserService struct {
	store     *store.Store
	avatars   *images.Storage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(s *store.Store, avatars *images.Storage, v *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{store: s, avatars: avatars, validator: v, logger: logger}
}

// UpdateProfileRequest is the payload for editing a profile. Nil
// fields are left unchanged.
type UpdateProfileRequest struct {
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Location *string `json:"location" validate:"omitempty,max=100"`
	Website  *string `json:"website" validate:"omitempty,url,max=200"`
}

// GetByHandle returns a user's public profile.
func (s *UserService) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	user, err := s.store.Users.GetByIndex(ctx, "handle", handle)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("User not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load user")
	}
	public := user.Public()
	return &public, nil
}

// GetByID loads a user by internal ID. Used by the auth middleware to
// resolve token claims to a live account.
func (s *UserService) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.Unauthorized("account no longer exists")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// UpdateProfile edits the user's own profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, user *domain.User, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	updated, err := s.store.Users.Mutate(ctx, user.ID, func(u *domain.User) error {
		if req.Bio != nil {
			u.Bio = *req.Bio
		}
		if req.Location != nil {
			u.Location = *req.Location
		}
		if req.Website != nil {
			u.Website = *req.Website
		}
		u.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to update profile")
	}

	public := updated.Public()
	return &public, nil
}

// SetImage stores an uploaded avatar and records its URL on the user.
// The new URL fans out to the user's books and comments through the
// propagation trigger.
func (s *UserService) SetImage(ctx context.Context, user *domain.User, data []byte) (*domain.User, error) {
	upload, err := images.DecodeUpload(data)
	if err != nil {
		return nil, err
	}

	url, err := s.avatars.Save(images.UploadFilename(upload.Ext()), upload.Data)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to store image")
	}

	updated, err := s.store.Users.Mutate(ctx, user.ID, func(u *domain.User) error {
		u.ImageURL = url
		u.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to update image")
	}

	s.logger.Info("profile image updated", "handle", user.Handle)
	public := updated.Public()
	return &public, nil
}
