package trigger

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/events"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// Favourite and like counter maintenance. A missing parent is not an
// error here: during a cascade the parent is already gone by the time
// these fire, and there is no counter left to maintain.

func (t *Triggers) onFavouriteCreatedCount(ctx context.Context, event events.Event) error {
	fav, ok := event.Doc.(*domain.BookFavourite)
	if !ok {
		return fmt.Errorf("counter: unexpected doc type %T", event.Doc)
	}
	return t.adjustBookFavCount(ctx, fav.BookID, 1)
}

func (t *Triggers) onFavouriteDeletedCount(ctx context.Context, event events.Event) error {
	fav, ok := event.Doc.(*domain.BookFavourite)
	if !ok {
		return fmt.Errorf("counter: unexpected doc type %T", event.Doc)
	}
	return t.adjustBookFavCount(ctx, fav.BookID, -1)
}

func (t *Triggers) onLikeCreatedCount(ctx context.Context, event events.Event) error {
	like, ok := event.Doc.(*domain.ChapterLike)
	if !ok {
		return fmt.Errorf("counter: unexpected doc type %T", event.Doc)
	}
	return t.adjustChapterLikeCount(ctx, like.ChapterID, 1)
}

func (t *Triggers) onLikeDeletedCount(ctx context.Context, event events.Event) error {
	like, ok := event.Doc.(*domain.ChapterLike)
	if !ok {
		return fmt.Errorf("counter: unexpected doc type %T", event.Doc)
	}
	return t.adjustChapterLikeCount(ctx, like.ChapterID, -1)
}

func (t *Triggers) adjustBookFavCount(ctx context.Context, bookID string, delta int) error {
	_, err := t.store.AdjustBookCounter(ctx, bookID, store.BookFavCount, delta)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (t *Triggers) adjustChapterLikeCount(ctx context.Context, chapterID string, delta int) error {
	_, err := t.store.AdjustChapterCounter(ctx, chapterID, store.ChapterLikeCount, delta)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
