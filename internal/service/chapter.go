package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// ChapterService manages chapters within books.
type ChapterService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewChapterService creates a new chapter service.
func NewChapterService(s *store.Store, v *validation.Validator, logger *slog.Logger) *ChapterService {
	return &ChapterService{store: s, validator: v, logger: logger}
}

// CreateChapterRequest is the payload for adding a chapter to a book.
type CreateChapterRequest struct {
	Title string `json:"title" validate:"notblank,max=200"`
	Body  string `json:"body" validate:"notblank"`
}

// UpdateChapterRequest is the payload for editing a chapter.
type UpdateChapterRequest struct {
	Title *string `json:"title" validate:"omitempty,notblank,max=200"`
	Body  *string `json:"body" validate:"omitempty,notblank"`
}

// ChapterDetail is a chapter with its comments, newest first.
type ChapterDetail struct {
	Chapter  *domain.Chapter          `json:"chapter"`
	Comments []*domain.ChapterComment `json:"comments"`
}

// Create adds a chapter to a book. Only the book's author may add
// chapters; the book's chapter count moves in the same transaction as
// the chapter write.
func (s *ChapterService) Create(ctx context.Context, actor string, bookID string, req CreateChapterRequest) (*domain.Chapter, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Book not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load book")
	}
	if !book.IsOwnedBy(actor) {
		return nil, errors.Forbidden("only the author may add chapters")
	}

	chapterID, err := id.Generate(id.PrefixChapter)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate chapter id")
	}

	chapter := &domain.Chapter{
		ID:        chapterID,
		BookID:    bookID,
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: time.Now(),
	}

	if _, err := s.store.CreateChapter(ctx, chapter); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Book not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create chapter")
	}

	s.logger.Info("chapter added", "chapter", chapter.ID, "book", bookID)
	return chapter, nil
}

// Get returns a chapter with its comments, newest first.
func (s *ChapterService) Get(ctx context.Context, chapterID string) (*ChapterDetail, error) {
	chapter, err := s.getChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.ChapterComments.FindByIndex(ctx, "chapter", chapterID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load comments")
	}
	sortNewestFirst(comments, func(c *domain.ChapterComment) time.Time { return c.CreatedAt })

	return &ChapterDetail{Chapter: chapter, Comments: comments}, nil
}

// ListByBook returns a book's chapters in publication order.
func (s *ChapterService) ListByBook(ctx context.Context, bookID string) ([]*domain.Chapter, error) {
	if _, err := s.store.Books.Get(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Book not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load book")
	}

	chapters, err := s.store.Chapters.FindByIndex(ctx, "book", bookID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to list chapters")
	}
	// Oldest first: readers see chapters in the order they were written.
	slices.SortFunc(chapters, func(a, b *domain.Chapter) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return chapters, nil
}

// Update edits a chapter. Only the book's author may edit.
func (s *ChapterService) Update(ctx context.Context, actor string, chapterID string, req UpdateChapterRequest) (*domain.Chapter, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	chapter, err := s.ownedChapter(ctx, actor, chapterID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		chapter.Title = *req.Title
	}
	if req.Body != nil {
		chapter.Body = *req.Body
	}
	chapter.MarkEdited()

	if err := s.store.Chapters.Update(ctx, chapter); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to update chapter")
	}
	return chapter, nil
}

// Delete removes a chapter and decrements the book's chapter count.
// Likes, comments and notifications cascade through the trigger.
func (s *ChapterService) Delete(ctx context.Context, actor string, chapterID string) error {
	if _, err := s.ownedChapter(ctx, actor, chapterID); err != nil {
		return err
	}

	if err := s.store.DeleteChapter(ctx, chapterID); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to delete chapter")
	}

	s.logger.Info("chapter deleted", "chapter", chapterID)
	return nil
}

func (s *ChapterService) getChapter(ctx context.Context, chapterID string) (*domain.Chapter, error) {
	chapter, err := s.store.Chapters.Get(ctx, chapterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Chapter not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load chapter")
	}
	return chapter, nil
}

// ownedChapter loads a chapter and checks the actor owns its book.
func (s *ChapterService) ownedChapter(ctx context.Context, actor string, chapterID string) (*domain.Chapter, error) {
	chapter, err := s.getChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	book, err := s.store.Books.Get(ctx, chapter.BookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Book not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load book")
	}
	if !book.IsOwnedBy(actor) {
		return nil, errors.Forbidden("only the author may do this")
	}
	return chapter, nil
}
