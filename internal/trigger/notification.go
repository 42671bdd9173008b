package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/events"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// Notification delivery. Every notification's ID is the ID of the like
// or comment that produced it, and delivery is an upsert, so redelivered
// events overwrite instead of duplicating. Users never get notified
// about their own activity.

func (t *Triggers) onFavouriteCreatedNotify(ctx context.Context, event events.Event) error {
	fav, ok := event.Doc.(*domain.BookFavourite)
	if !ok {
		return fmt.Errorf("notify: unexpected doc type %T", event.Doc)
	}

	book, err := t.store.Books.Get(ctx, fav.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("notify: get book %s: %w", fav.BookID, err)
	}

	return t.deliver(ctx, &domain.Notification{
		ID:          fav.ID,
		Recipient:   book.AuthorHandle,
		Sender:      fav.UserHandle,
		Type:        domain.NotificationLike,
		ContentID:   book.ID,
		ContentKind: domain.ContentBook,
		CreatedAt:   event.Timestamp,
	})
}

func (t *Triggers) onLikeCreatedNotify(ctx context.Context, event events.Event) error {
	like, ok := event.Doc.(*domain.ChapterLike)
	if !ok {
		return fmt.Errorf("notify: unexpected doc type %T", event.Doc)
	}

	author, err := t.chapterAuthor(ctx, like.ChapterID)
	if err != nil || author == "" {
		return err
	}

	return t.deliver(ctx, &domain.Notification{
		ID:          like.ID,
		Recipient:   author,
		Sender:      like.UserHandle,
		Type:        domain.NotificationLike,
		ContentID:   like.ChapterID,
		ContentKind: domain.ContentChapter,
		CreatedAt:   event.Timestamp,
	})
}

func (t *Triggers) onBookCommentCreatedNotify(ctx context.Context, event events.Event) error {
	comment, ok := event.Doc.(*domain.BookComment)
	if !ok {
		return fmt.Errorf("notify: unexpected doc type %T", event.Doc)
	}

	book, err := t.store.Books.Get(ctx, comment.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("notify: get book %s: %w", comment.BookID, err)
	}

	return t.deliver(ctx, &domain.Notification{
		ID:          comment.ID,
		Recipient:   book.AuthorHandle,
		Sender:      comment.UserHandle,
		Type:        domain.NotificationComment,
		ContentID:   book.ID,
		ContentKind: domain.ContentBook,
		CreatedAt:   event.Timestamp,
	})
}

func (t *Triggers) onChapterCommentCreatedNotify(ctx context.Context, event events.Event) error {
	comment, ok := event.Doc.(*domain.ChapterComment)
	if !ok {
		return fmt.Errorf("notify: unexpected doc type %T", event.Doc)
	}

	author, err := t.chapterAuthor(ctx, comment.ChapterID)
	if err != nil || author == "" {
		return err
	}

	return t.deliver(ctx, &domain.Notification{
		ID:          comment.ID,
		Recipient:   author,
		Sender:      comment.UserHandle,
		Type:        domain.NotificationComment,
		ContentID:   comment.ChapterID,
		ContentKind: domain.ContentChapter,
		CreatedAt:   event.Timestamp,
	})
}

// onInteractionDeletedNotify removes the notification produced by a
// deleted like, favourite or comment. The shared notification ID makes
// this a point delete, and deleting a missing notification is a no-op.
func (t *Triggers) onInteractionDeletedNotify(ctx context.Context, event events.Event) error {
	return t.store.Notifications.Delete(ctx, event.ID)
}

// deliver upserts a notification unless it would notify the sender
// about their own activity.
func (t *Triggers) deliver(ctx context.Context, n *domain.Notification) error {
	if n.Recipient == n.Sender {
		return nil
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := t.store.Notifications.Put(ctx, n); err != nil {
		return fmt.Errorf("notify: deliver to %s: %w", n.Recipient, err)
	}
	return nil
}

// chapterAuthor resolves the author of the book a chapter belongs to.
// Returns "" without error when the chapter or book is already gone.
func (t *Triggers) chapterAuthor(ctx context.Context, chapterID string) (string, error) {
	chapter, err := t.store.Chapters.Get(ctx, chapterID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("notify: get chapter %s: %w", chapterID, err)
	}

	book, err := t.store.Books.Get(ctx, chapter.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("notify: get book %s: %w", chapter.BookID, err)
	}
	return book.AuthorHandle, nil
}
