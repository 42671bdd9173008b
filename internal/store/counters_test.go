package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/events"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

func TestAdjustBookCounter_ConcurrentIncrements(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "ada")))

	// Every concurrent increment must land; lost updates would show up
	// as a count below the number of workers.
	const workers = 25
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AdjustBookCounter(ctx, "book-1", store.BookFavCount, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	book, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, workers, book.FavCount)
}

func TestAdjustBookCounter_ClampsAtZero(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "ada")))

	book, err := s.AdjustBookCounter(ctx, "book-1", store.BookFavCount, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, book.FavCount)
}

func TestAdjustBookCounter_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.AdjustBookCounter(context.Background(), "missing", store.BookFavCount, 1)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdjustChapterCounter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Chapters.Create(ctx, testChapter("ch-1", "book-1")))

	ch, err := s.AdjustChapterCounter(ctx, "ch-1", store.ChapterLikeCount, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ch.LikeCount)

	ch, err = s.AdjustChapterCounter(ctx, "ch-1", store.ChapterLikeCount, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, ch.LikeCount)

	ch, err = s.AdjustChapterCounter(ctx, "ch-1", store.ChapterLikeCount, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, ch.LikeCount, "decrement below zero must clamp")
}

func TestCreateBookComment_IncrementsCounter(t *testing.T) {
	s, emitter := setupTestStoreWithEmitter(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "ada")))

	book, err := s.CreateBookComment(ctx, testBookComment("bcom-1", "book-1", "grace"))
	require.NoError(t, err)
	assert.Equal(t, 1, book.CommentCount)

	comment, err := s.BookComments.Get(ctx, "bcom-1")
	require.NoError(t, err)
	assert.Equal(t, "grace", comment.UserHandle)

	// Both the comment creation and the counter update are observable.
	assert.Equal(t, 1, emitter.count(events.CollectionBookComments, events.KindCreated))
	assert.Equal(t, 1, emitter.count(events.CollectionBooks, events.KindUpdated))
}

func TestCreateBookComment_MissingBook(t *testing.T) {
	s, emitter := setupTestStoreWithEmitter(t)
	ctx := context.Background()

	_, err := s.CreateBookComment(ctx, testBookComment("bcom-1", "missing", "grace"))
	require.ErrorIs(t, err, store.ErrNotFound)

	// Nothing written, nothing emitted.
	_, err = s.BookComments.Get(ctx, "bcom-1")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, emitter.all())
}

func TestDeleteBookComment_DecrementsCounter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "ada")))
	_, err := s.CreateBookComment(ctx, testBookComment("bcom-1", "book-1", "grace"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteBookComment(ctx, "bcom-1"))

	book, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 0, book.CommentCount)

	// Deleting again is a no-op and leaves the counter alone.
	require.NoError(t, s.DeleteBookComment(ctx, "bcom-1"))
	book, err = s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 0, book.CommentCount)
}

func TestCreateChapterComment_IncrementsCounter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Chapters.Create(ctx, testChapter("ch-1", "book-1")))

	ch, err := s.CreateChapterComment(ctx, testChapterComment("ccom-1", "ch-1", "grace"))
	require.NoError(t, err)
	assert.Equal(t, 1, ch.CommentCount)

	_, err = s.CreateChapterComment(ctx, testChapterComment("ccom-2", "missing", "grace"))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteChapterComment_DecrementsCounter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Chapters.Create(ctx, testChapter("ch-1", "book-1")))
	_, err := s.CreateChapterComment(ctx, testChapterComment("ccom-1", "ch-1", "grace"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteChapterComment(ctx, "ccom-1"))

	ch, err := s.Chapters.Get(ctx, "ch-1")
	require.NoError(t, err)
	assert.Equal(t, 0, ch.CommentCount)
}

func TestCreateChapter_IncrementsBookCounter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "ada")))

	book, err := s.CreateChapter(ctx, testChapter("ch-1", "book-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, book.ChapterCount)

	_, err = s.CreateChapter(ctx, testChapter("ch-2", "missing"))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteChapter_DecrementsBookCounter(t *testing.T) {
	s, emitter := setupTestStoreWithEmitter(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "ada")))
	_, err := s.CreateChapter(ctx, testChapter("ch-1", "book-1"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteChapter(ctx, "ch-1"))

	book, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 0, book.ChapterCount)

	_, err = s.Chapters.Get(ctx, "ch-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The deleted event fires so the cascade trigger can clean up
	// likes, comments and notifications.
	assert.Equal(t, 1, emitter.count(events.CollectionChapters, events.KindDeleted))
}

func TestDeleteChapter_SurvivesMissingBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// A chapter whose book is already gone (mid-cascade) still deletes
	// cleanly, just without a counter update.
	require.NoError(t, s.Chapters.Create(ctx, testChapter("ch-1", "gone")))
	require.NoError(t, s.DeleteChapter(ctx, "ch-1"))

	_, err := s.Chapters.Get(ctx, "ch-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
