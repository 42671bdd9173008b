package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// SocialService handles favourites, likes and comments.
//
// Favouriting and liking follow the same shape: load the parent (404),
// check the unique (user, parent) pair, then create or delete the join
// record. Counter updates and notifications ride the change events.
type SocialService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(s *store.Store, v *validation.Validator, logger *slog.Logger) *SocialService {
	return &SocialService{store: s, validator: v, logger: logger}
}

// BookCommentRequest is the payload for commenting on a book. Every
// book comment carries a 1-5 review rating.
type BookCommentRequest struct {
	Body   string `json:"body" validate:"notblank,max=5000"`
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
}

// ChapterCommentRequest is the payload for commenting on a chapter.
type ChapterCommentRequest struct {
	Body string `json:"body" validate:"notblank,max=5000"`
}

// FavouriteBook marks a book as a favourite of the user.
// Favouriting a book twice is a conflict, not a no-op.
func (s *SocialService) FavouriteBook(ctx context.Context, user *domain.User, bookID string) error {
	if _, err := s.book(ctx, bookID); err != nil {
		return err
	}

	pair := user.Handle + "/" + bookID
	if _, err := s.store.BookFavourites.GetByIndex(ctx, "pair", pair); err == nil {
		return errors.Conflict("Book already favourited")
	} else if !errors.Is(err, store.ErrNotFound) {
		return errors.Wrap(err, errors.CodeInternal, "failed to check favourite")
	}

	favID, err := id.Generate(id.PrefixFavourite)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to generate favourite id")
	}

	fav := &domain.BookFavourite{
		ID:         favID,
		BookID:     bookID,
		UserHandle: user.Handle,
		CreatedAt:  time.Now(),
	}
	if err := s.store.BookFavourites.Create(ctx, fav); err != nil {
		// A concurrent favourite can win the race past the lookup;
		// the unique pair index catches it here.
		if errors.Is(err, store.ErrAlreadyExists) {
			return errors.Conflict("Book already favourited")
		}
		return errors.Wrap(err, errors.CodeInternal, "failed to create favourite")
	}
	return nil
}

// UnfavouriteBook removes a user's favourite from a book.
// Unfavouriting a book that isn't favourited is a conflict.
func (s *SocialService) UnfavouriteBook(ctx context.Context, user *domain.User, bookID string) error {
	if _, err := s.book(ctx, bookID); err != nil {
		return err
	}

	pair := user.Handle + "/" + bookID
	fav, err := s.store.BookFavourites.GetByIndex(ctx, "pair", pair)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.Conflict("Book not favourited")
		}
		return errors.Wrap(err, errors.CodeInternal, "failed to check favourite")
	}

	if err := s.store.BookFavourites.Delete(ctx, fav.ID); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to delete favourite")
	}
	return nil
}

// LikeChapter marks a chapter as liked by the user.
func (s *SocialService) LikeChapter(ctx context.Context, user *domain.User, chapterID string) error {
	if _, err := s.chapter(ctx, chapterID); err != nil {
		return err
	}

	pair := user.Handle + "/" + chapterID
	if _, err := s.store.ChapterLikes.GetByIndex(ctx, "pair", pair); err == nil {
		return errors.Conflict("Chapter already liked")
	} else if !errors.Is(err, store.ErrNotFound) {
		return errors.Wrap(err, errors.CodeInternal, "failed to check like")
	}

	likeID, err := id.Generate(id.PrefixLike)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to generate like id")
	}

	like := &domain.ChapterLike{
		ID:         likeID,
		ChapterID:  chapterID,
		UserHandle: user.Handle,
		CreatedAt:  time.Now(),
	}
	if err := s.store.ChapterLikes.Create(ctx, like); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return errors.Conflict("Chapter already liked")
		}
		return errors.Wrap(err, errors.CodeInternal, "failed to create like")
	}
	return nil
}

// UnlikeChapter removes a user's like from a chapter.
func (s *SocialService) UnlikeChapter(ctx context.Context, user *domain.User, chapterID string) error {
	if _, err := s.chapter(ctx, chapterID); err != nil {
		return err
	}

	pair := user.Handle + "/" + chapterID
	like, err := s.store.ChapterLikes.GetByIndex(ctx, "pair", pair)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.Conflict("Chapter not liked")
		}
		return errors.Wrap(err, errors.CodeInternal, "failed to check like")
	}

	if err := s.store.ChapterLikes.Delete(ctx, like.ID); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to delete like")
	}
	return nil
}

// CommentOnBook validates and stores a book comment. Validation runs
// before any write; the comment and the book's comment counter commit
// together.
func (s *SocialService) CommentOnBook(ctx context.Context, user *domain.User, bookID string, req BookCommentRequest) (*domain.BookComment, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	commentID, err := id.Generate(id.PrefixBookComment)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate comment id")
	}

	comment := &domain.BookComment{
		ID:           commentID,
		BookID:       bookID,
		UserHandle:   user.Handle,
		UserImageURL: user.ImageURL,
		Body:         req.Body,
		Rating:       req.Rating,
		CreatedAt:    time.Now(),
	}

	if _, err := s.store.CreateBookComment(ctx, comment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Book not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create comment")
	}
	return comment, nil
}

// CommentOnChapter validates and stores a chapter comment.
func (s *SocialService) CommentOnChapter(ctx context.Context, user *domain.User, chapterID string, req ChapterCommentRequest) (*domain.ChapterComment, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	commentID, err := id.Generate(id.PrefixChapterComment)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate comment id")
	}

	comment := &domain.ChapterComment{
		ID:           commentID,
		ChapterID:    chapterID,
		UserHandle:   user.Handle,
		UserImageURL: user.ImageURL,
		Body:         req.Body,
		CreatedAt:    time.Now(),
	}

	if _, err := s.store.CreateChapterComment(ctx, comment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Chapter not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create comment")
	}
	return comment, nil
}

func (s *SocialService) book(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Book not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load book")
	}
	return book, nil
}

func (s *SocialService) chapter(ctx context.Context, chapterID string) (*domain.Chapter, error) {
	chapter, err := s.store.Chapters.Get(ctx, chapterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Chapter not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load chapter")
	}
	return chapter, nil
}
