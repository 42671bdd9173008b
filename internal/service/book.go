package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/media/images"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/util"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// BookService manages books and their covers.
type BookService struct {
	store     *store.Store
	covers    *images.Storage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(s *store.Store, covers *images.Storage, v *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{store: s, covers: covers, validator: v, logger: logger}
}

// CreateBookRequest is the payload for publishing a new book.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank,max=5000"`
}

// UpdateBookRequest is the payload for editing a book. Nil fields are
// left unchanged.
type UpdateBookRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,notblank,max=5000"`
}

// BookDetail is a book with its comments, newest first.
type BookDetail struct {
	Book     *domain.Book          `json:"book"`
	Comments []*domain.BookComment `json:"comments"`
}

// Create publishes a new book for the author.
func (s *BookService) Create(ctx context.Context, author *domain.User, req CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	now := time.Now()
	book := &domain.Book{
		ID:             util.BookID(author.Handle, req.Title, now),
		Title:          req.Title,
		Description:    req.Description,
		AuthorHandle:   author.Handle,
		AuthorImageURL: author.ImageURL,
		CreatedAt:      now,
	}

	if err := s.store.Books.Create(ctx, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.Conflict("a book with this title already exists")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create book")
	}

	s.logger.Info("book published", "book", book.ID, "author", author.Handle)
	return book, nil
}

// Get returns a book with its comments, newest comment first.
func (s *BookService) Get(ctx context.Context, bookID string) (*BookDetail, error) {
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.BookComments.FindByIndex(ctx, "book", bookID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load comments")
	}
	sortNewestFirst(comments, func(c *domain.BookComment) time.Time { return c.CreatedAt })

	return &BookDetail{Book: book, Comments: comments}, nil
}

// List returns all books, newest first.
func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.Books.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to list books")
	}
	sortNewestFirst(books, func(b *domain.Book) time.Time { return b.CreatedAt })
	return books, nil
}

// ListByAuthor returns an author's books, newest first.
func (s *BookService) ListByAuthor(ctx context.Context, handle string) ([]*domain.Book, error) {
	books, err := s.store.Books.FindByIndex(ctx, "author", handle)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to list books")
	}
	sortNewestFirst(books, func(b *domain.Book) time.Time { return b.CreatedAt })
	return books, nil
}

// Update edits a book's title or description. Only the author may edit.
func (s *BookService) Update(ctx context.Context, actor string, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	book, err := s.ownedBook(ctx, actor, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	book.MarkEdited()

	if err := s.store.Books.Update(ctx, book); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to update book")
	}
	return book, nil
}

// Complete marks a book as finished. Only the author may do this.
func (s *BookService) Complete(ctx context.Context, actor string, bookID string) (*domain.Book, error) {
	if _, err := s.ownedBook(ctx, actor, bookID); err != nil {
		return nil, err
	}

	book, err := s.store.Books.Mutate(ctx, bookID, func(b *domain.Book) error {
		b.Completed = true
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to complete book")
	}
	return book, nil
}

// Delete removes a book. Dependent chapters, favourites, comments and
// notifications are cleaned up by the cascade trigger.
func (s *BookService) Delete(ctx context.Context, actor string, bookID string) error {
	if _, err := s.ownedBook(ctx, actor, bookID); err != nil {
		return err
	}

	if err := s.store.Books.Delete(ctx, bookID); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to delete book")
	}

	s.logger.Info("book deleted", "book", bookID, "author", actor)
	return nil
}

// SetCover stores an uploaded cover image and records its URL and
// blurhash on the book. Only the author may change the cover.
func (s *BookService) SetCover(ctx context.Context, actor string, bookID string, data []byte) (*domain.Book, error) {
	if _, err := s.ownedBook(ctx, actor, bookID); err != nil {
		return nil, err
	}

	upload, err := images.DecodeUpload(data)
	if err != nil {
		return nil, err
	}

	hash, err := images.ComputeBlurHash(upload.Image)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to compute blurhash")
	}

	url, err := s.covers.Save(images.UploadFilename(upload.Ext()), upload.Data)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to store cover")
	}

	book, err := s.store.Books.Mutate(ctx, bookID, func(b *domain.Book) error {
		b.CoverImageURL = url
		b.CoverBlurhash = hash
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to update cover")
	}
	return book, nil
}

// getBook loads a book, mapping a missing document to a domain 404.
func (s *BookService) getBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Book not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load book")
	}
	return book, nil
}

// ownedBook loads a book and checks the actor is its author.
func (s *BookService) ownedBook(ctx context.Context, actor string, bookID string) (*domain.Book, error) {
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsOwnedBy(actor) {
		return nil, errors.Forbidden("only the author may do this")
	}
	return book, nil
}

// sortNewestFirst orders items by descending timestamp.
func sortNewestFirst[T any](items []*T, at func(*T) time.Time) {
	slices.SortFunc(items, func(a, b *T) int {
		return at(b).Compare(at(a))
	})
}
