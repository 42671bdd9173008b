package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// NotificationService lists and marks notifications for a user.
type NotificationService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(s *store.Store, logger *slog.Logger) *NotificationService {
	return &NotificationService{store: s, logger: logger}
}

// MarkReadRequest names the notifications to mark as read. An empty
// list marks everything.
type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, user *domain.User) ([]*domain.Notification, error) {
	notifications, err := s.store.Notifications.FindByIndex(ctx, "recipient", user.Handle)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to list notifications")
	}
	sortNewestFirst(notifications, func(n *domain.Notification) time.Time { return n.CreatedAt })
	return notifications, nil
}

// MarkRead flags the given notifications as read. Only the recipient's
// own notifications are touched; unknown IDs are skipped.
func (s *NotificationService) MarkRead(ctx context.Context, user *domain.User, req MarkReadRequest) error {
	ids := req.IDs
	if len(ids) == 0 {
		all, err := s.List(ctx, user)
		if err != nil {
			return err
		}
		for _, n := range all {
			ids = append(ids, n.ID)
		}
	}

	for _, notifID := range ids {
		n, err := s.store.Notifications.Get(ctx, notifID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return errors.Wrap(err, errors.CodeInternal, "failed to load notification")
		}
		if n.Recipient != user.Handle || n.Read {
			continue
		}

		if _, err := s.store.Notifications.Mutate(ctx, notifID, func(doc *domain.Notification) error {
			doc.Read = true
			return nil
		}); err != nil && !errors.Is(err, store.ErrNotFound) {
			return errors.Wrap(err, errors.CodeInternal, "failed to mark notification read")
		}
	}
	return nil
}
