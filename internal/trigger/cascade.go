package trigger

import (
	"context"
	"fmt"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/events"
)

// onBookDeleted removes everything hanging off a deleted book: its
// chapters, favourites, comments and the notifications those produced.
// All deletions commit in one transaction; the chapter deletions then
// fan out through onChapterDeleted to clean up likes and chapter
// comments.
func (t *Triggers) onBookDeleted(ctx context.Context, event events.Event) error {
	bookID := event.ID

	chapters, err := t.store.Chapters.FindByIndex(ctx, "book", bookID)
	if err != nil {
		return fmt.Errorf("cascade: list chapters of %s: %w", bookID, err)
	}
	favourites, err := t.store.BookFavourites.FindByIndex(ctx, "book", bookID)
	if err != nil {
		return fmt.Errorf("cascade: list favourites of %s: %w", bookID, err)
	}
	comments, err := t.store.BookComments.FindByIndex(ctx, "book", bookID)
	if err != nil {
		return fmt.Errorf("cascade: list comments of %s: %w", bookID, err)
	}

	b := t.store.NewBatch()
	for _, ch := range chapters {
		t.store.Chapters.BatchDelete(b, ch.ID)
	}
	for _, f := range favourites {
		t.store.BookFavourites.BatchDelete(b, f.ID)
		t.store.Notifications.BatchDelete(b, f.ID)
	}
	for _, c := range comments {
		t.store.BookComments.BatchDelete(b, c.ID)
		t.store.Notifications.BatchDelete(b, c.ID)
	}

	if err := b.Commit(ctx); err != nil {
		return fmt.Errorf("cascade: delete dependents of book %s: %w", bookID, err)
	}

	if t.logger != nil {
		t.logger.Info("book cascade complete",
			"book", bookID,
			"chapters", len(chapters),
			"favourites", len(favourites),
			"comments", len(comments),
		)
	}
	return nil
}

// onChapterDeleted removes a deleted chapter's likes, comments and
// their notifications in one transaction.
func (t *Triggers) onChapterDeleted(ctx context.Context, event events.Event) error {
	chapterID := event.ID

	likes, err := t.store.ChapterLikes.FindByIndex(ctx, "chapter", chapterID)
	if err != nil {
		return fmt.Errorf("cascade: list likes of %s: %w", chapterID, err)
	}
	comments, err := t.store.ChapterComments.FindByIndex(ctx, "chapter", chapterID)
	if err != nil {
		return fmt.Errorf("cascade: list comments of %s: %w", chapterID, err)
	}

	b := t.store.NewBatch()
	for _, l := range likes {
		t.store.ChapterLikes.BatchDelete(b, l.ID)
		t.store.Notifications.BatchDelete(b, l.ID)
	}
	for _, c := range comments {
		t.store.ChapterComments.BatchDelete(b, c.ID)
		t.store.Notifications.BatchDelete(b, c.ID)
	}

	if err := b.Commit(ctx); err != nil {
		return fmt.Errorf("cascade: delete dependents of chapter %s: %w", chapterID, err)
	}

	if t.logger != nil {
		t.logger.Info("chapter cascade complete",
			"chapter", chapterID,
			"likes", len(likes),
			"comments", len(comments),
		)
	}
	return nil
}

// onUserUpdated propagates a changed profile image onto the user's
// books and comments, so displayed content never shows a stale avatar.
func (t *Triggers) onUserUpdated(ctx context.Context, event events.Event) error {
	user, ok := event.Doc.(*domain.User)
	if !ok {
		return fmt.Errorf("propagate: unexpected doc type %T", event.Doc)
	}
	before, ok := event.Before.(*domain.User)
	if !ok || before.ImageURL == user.ImageURL {
		return nil
	}

	books, err := t.store.Books.FindByIndex(ctx, "author", user.Handle)
	if err != nil {
		return fmt.Errorf("propagate: list books of %s: %w", user.Handle, err)
	}
	bookComments, err := t.store.BookComments.FindByIndex(ctx, "author", user.Handle)
	if err != nil {
		return fmt.Errorf("propagate: list book comments of %s: %w", user.Handle, err)
	}
	chapterComments, err := t.store.ChapterComments.FindByIndex(ctx, "author", user.Handle)
	if err != nil {
		return fmt.Errorf("propagate: list chapter comments of %s: %w", user.Handle, err)
	}

	b := t.store.NewBatch()
	for _, book := range books {
		t.store.Books.BatchUpdate(b, book.ID, func(doc *domain.Book) error {
			doc.AuthorImageURL = user.ImageURL
			return nil
		})
	}
	for _, c := range bookComments {
		t.store.BookComments.BatchUpdate(b, c.ID, func(doc *domain.BookComment) error {
			doc.UserImageURL = user.ImageURL
			return nil
		})
	}
	for _, c := range chapterComments {
		t.store.ChapterComments.BatchUpdate(b, c.ID, func(doc *domain.ChapterComment) error {
			doc.UserImageURL = user.ImageURL
			return nil
		})
	}

	if err := b.Commit(ctx); err != nil {
		return fmt.Errorf("propagate: image of %s: %w", user.Handle, err)
	}
	return nil
}
