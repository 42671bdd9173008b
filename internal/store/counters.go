package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/events"
)

// BookCounter names one of a book's denormalized counters.
type BookCounter string

const (
	BookFavCount     BookCounter = "fav_count"
	BookCommentCount BookCounter = "comment_count"
	BookChapterCount BookCounter = "chapter_count"
)

// ChapterCounter names one of a chapter's denormalized counters.
type ChapterCounter string

const (
	ChapterLikeCount    ChapterCounter = "like_count"
	ChapterCommentCount ChapterCounter = "comment_count"
)

// clampCount applies a delta to a counter, flooring at zero. A decrement
// against an already-zero counter (stale redelivery, historical drift)
// must never push it negative.
func clampCount(current, delta int) int {
	v := current + delta
	if v < 0 {
		v = 0
	}
	return v
}

// AdjustBookCounter atomically applies delta to one of a book's counters.
// Concurrent adjustments serialize through transaction conflict retries,
// so no increment is ever lost. The result is clamped at zero.
func (s *Store) AdjustBookCounter(ctx context.Context, bookID string, counter BookCounter, delta int) (*domain.Book, error) {
	return s.Books.Mutate(ctx, bookID, func(b *domain.Book) error {
		switch counter {
		case BookFavCount:
			b.FavCount = clampCount(b.FavCount, delta)
		case BookCommentCount:
			b.CommentCount = clampCount(b.CommentCount, delta)
		case BookChapterCount:
			b.ChapterCount = clampCount(b.ChapterCount, delta)
		}
		return nil
	})
}

// AdjustChapterCounter atomically applies delta to one of a chapter's
// counters, clamped at zero.
func (s *Store) AdjustChapterCounter(ctx context.Context, chapterID string, counter ChapterCounter, delta int) (*domain.Chapter, error) {
	return s.Chapters.Mutate(ctx, chapterID, func(c *domain.Chapter) error {
		switch counter {
		case ChapterLikeCount:
			c.LikeCount = clampCount(c.LikeCount, delta)
		case ChapterCommentCount:
			c.CommentCount = clampCount(c.CommentCount, delta)
		}
		return nil
	})
}

// Combined operations. Each writes a child document and its parent's
// counter inside one transaction, so the counter can never drift from
// the documents it summarizes: either both land or neither does.

// CreateBookComment stores a book comment and increments the book's
// comment count in one transaction. Returns ErrNotFound if the book
// does not exist.
func (s *Store) CreateBookComment(ctx context.Context, comment *domain.BookComment) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var book, before *domain.Book
	err := s.update(func(txn *badger.Txn) error {
		old, err := s.Books.getTxn(txn, comment.BookID)
		if err != nil {
			return err
		}
		before = old

		updated := *old
		updated.CommentCount++
		if err := s.Books.setTxn(txn, &updated, old); err != nil {
			return err
		}
		book = &updated

		return s.BookComments.createTxn(txn, comment)
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.Event{
		Collection: events.CollectionBookComments,
		Kind:       events.KindCreated,
		ID:         comment.ID,
		Doc:        comment,
	})
	s.emit(events.Event{
		Collection: events.CollectionBooks,
		Kind:       events.KindUpdated,
		ID:         book.ID,
		Doc:        book,
		Before:     before,
	})
	return book, nil
}

// DeleteBookComment removes a book comment and decrements the book's
// comment count in one transaction. Deleting a missing comment is a
// no-op; a missing book (mid-cascade) skips the decrement.
func (s *Store) DeleteBookComment(ctx context.Context, commentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var deleted *domain.BookComment
	var book, before *domain.Book
	err := s.update(func(txn *badger.Txn) error {
		deleted, book, before = nil, nil, nil

		var err error
		deleted, err = s.BookComments.deleteTxn(txn, commentID)
		if err != nil || deleted == nil {
			return err
		}

		old, err := s.Books.getTxn(txn, deleted.BookID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		before = old

		updated := *old
		updated.CommentCount = clampCount(updated.CommentCount, -1)
		book = &updated
		return s.Books.setTxn(txn, &updated, old)
	})
	if err != nil {
		return err
	}

	if deleted != nil {
		s.emit(events.Event{
			Collection: events.CollectionBookComments,
			Kind:       events.KindDeleted,
			ID:         commentID,
			Doc:        deleted,
		})
	}
	if book != nil {
		s.emit(events.Event{
			Collection: events.CollectionBooks,
			Kind:       events.KindUpdated,
			ID:         book.ID,
			Doc:        book,
			Before:     before,
		})
	}
	return nil
}

// CreateChapterComment stores a chapter comment and increments the
// chapter's comment count in one transaction. Returns ErrNotFound if
// the chapter does not exist.
func (s *Store) CreateChapterComment(ctx context.Context, comment *domain.ChapterComment) (*domain.Chapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var chapter, before *domain.Chapter
	err := s.update(func(txn *badger.Txn) error {
		old, err := s.Chapters.getTxn(txn, comment.ChapterID)
		if err != nil {
			return err
		}
		before = old

		updated := *old
		updated.CommentCount++
		if err := s.Chapters.setTxn(txn, &updated, old); err != nil {
			return err
		}
		chapter = &updated

		return s.ChapterComments.createTxn(txn, comment)
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.Event{
		Collection: events.CollectionChapterComments,
		Kind:       events.KindCreated,
		ID:         comment.ID,
		Doc:        comment,
	})
	s.emit(events.Event{
		Collection: events.CollectionChapters,
		Kind:       events.KindUpdated,
		ID:         chapter.ID,
		Doc:        chapter,
		Before:     before,
	})
	return chapter, nil
}

// DeleteChapterComment removes a chapter comment and decrements the
// chapter's comment count in one transaction.
func (s *Store) DeleteChapterComment(ctx context.Context, commentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var deleted *domain.ChapterComment
	var chapter, before *domain.Chapter
	err := s.update(func(txn *badger.Txn) error {
		deleted, chapter, before = nil, nil, nil

		var err error
		deleted, err = s.ChapterComments.deleteTxn(txn, commentID)
		if err != nil || deleted == nil {
			return err
		}

		old, err := s.Chapters.getTxn(txn, deleted.ChapterID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		before = old

		updated := *old
		updated.CommentCount = clampCount(updated.CommentCount, -1)
		chapter = &updated
		return s.Chapters.setTxn(txn, &updated, old)
	})
	if err != nil {
		return err
	}

	if deleted != nil {
		s.emit(events.Event{
			Collection: events.CollectionChapterComments,
			Kind:       events.KindDeleted,
			ID:         commentID,
			Doc:        deleted,
		})
	}
	if chapter != nil {
		s.emit(events.Event{
			Collection: events.CollectionChapters,
			Kind:       events.KindUpdated,
			ID:         chapter.ID,
			Doc:        chapter,
			Before:     before,
		})
	}
	return nil
}

// CreateChapter stores a chapter and increments the book's chapter
// count in one transaction. Returns ErrNotFound if the book does not
// exist. Ownership is the caller's concern.
func (s *Store) CreateChapter(ctx context.Context, chapter *domain.Chapter) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var book, before *domain.Book
	err := s.update(func(txn *badger.Txn) error {
		old, err := s.Books.getTxn(txn, chapter.BookID)
		if err != nil {
			return err
		}
		before = old

		updated := *old
		updated.ChapterCount++
		if err := s.Books.setTxn(txn, &updated, old); err != nil {
			return err
		}
		book = &updated

		return s.Chapters.createTxn(txn, chapter)
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.Event{
		Collection: events.CollectionChapters,
		Kind:       events.KindCreated,
		ID:         chapter.ID,
		Doc:        chapter,
	})
	s.emit(events.Event{
		Collection: events.CollectionBooks,
		Kind:       events.KindUpdated,
		ID:         book.ID,
		Doc:        book,
		Before:     before,
	})
	return book, nil
}

// DeleteChapter removes a chapter and decrements the book's chapter
// count in one transaction. The chapter's likes, comments and their
// notifications are cleaned up by the deletion trigger reacting to the
// emitted event.
func (s *Store) DeleteChapter(ctx context.Context, chapterID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var deleted *domain.Chapter
	var book, before *domain.Book
	err := s.update(func(txn *badger.Txn) error {
		deleted, book, before = nil, nil, nil

		var err error
		deleted, err = s.Chapters.deleteTxn(txn, chapterID)
		if err != nil || deleted == nil {
			return err
		}

		old, err := s.Books.getTxn(txn, deleted.BookID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		before = old

		updated := *old
		updated.ChapterCount = clampCount(updated.ChapterCount, -1)
		book = &updated
		return s.Books.setTxn(txn, &updated, old)
	})
	if err != nil {
		return err
	}

	if deleted != nil {
		s.emit(events.Event{
			Collection: events.CollectionChapters,
			Kind:       events.KindDeleted,
			ID:         chapterID,
			Doc:        deleted,
		})
	}
	if book != nil {
		s.emit(events.Event{
			Collection: events.CollectionBooks,
			Kind:       events.KindUpdated,
			ID:         book.ID,
			Doc:        book,
			Before:     before,
		})
	}
	return nil
}
