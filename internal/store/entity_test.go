package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/events"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

func TestEntity_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "ada")
	require.NoError(t, s.Books.Create(ctx, book))

	got, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, book.Title, got.Title)
	assert.Equal(t, "ada", got.AuthorHandle)
}

func TestEntity_Create_AlreadyExists(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "ada")))

	err := s.Books.Create(ctx, testBook("book-1", "grace"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Books.Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_UniqueIndex_Conflict(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	fav := testFavourite("fav-1", "book-1", "ada")
	require.NoError(t, s.BookFavourites.Create(ctx, fav))

	// Same (user, book) pair under a different ID must be rejected.
	dup := testFavourite("fav-2", "book-1", "ada")
	err := s.BookFavourites.Create(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// A different user favouriting the same book is fine.
	require.NoError(t, s.BookFavourites.Create(ctx, testFavourite("fav-3", "book-1", "grace")))
}

func TestEntity_GetByIndex(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	fav := testFavourite("fav-1", "book-1", "ada")
	require.NoError(t, s.BookFavourites.Create(ctx, fav))

	got, err := s.BookFavourites.GetByIndex(ctx, "pair", "ada/book-1")
	require.NoError(t, err)
	assert.Equal(t, "fav-1", got.ID)

	_, err = s.BookFavourites.GetByIndex(ctx, "pair", "ada/book-2")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_FindByIndex(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Chapters.Create(ctx, testChapter("ch-1", "book-1")))
	require.NoError(t, s.Chapters.Create(ctx, testChapter("ch-2", "book-1")))
	require.NoError(t, s.Chapters.Create(ctx, testChapter("ch-3", "book-2")))

	chapters, err := s.Chapters.FindByIndex(ctx, "book", "book-1")
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	for _, c := range chapters {
		assert.Equal(t, "book-1", c.BookID)
	}

	none, err := s.Chapters.FindByIndex(ctx, "book", "book-9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEntity_Update_ReindexesChangedValues(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "ada")
	require.NoError(t, s.Books.Create(ctx, book))

	book.AuthorHandle = "grace"
	require.NoError(t, s.Books.Update(ctx, book))

	byOld, err := s.Books.FindByIndex(ctx, "author", "ada")
	require.NoError(t, err)
	assert.Empty(t, byOld)

	byNew, err := s.Books.FindByIndex(ctx, "author", "grace")
	require.NoError(t, err)
	require.Len(t, byNew, 1)
	assert.Equal(t, "book-1", byNew[0].ID)
}

func TestEntity_Update_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.Books.Update(context.Background(), testBook("missing", "ada"))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Put_Upserts(t *testing.T) {
	s, emitter := setupTestStoreWithEmitter(t)
	ctx := context.Background()

	n := &domain.Notification{
		ID:          "like-1",
		Recipient:   "ada",
		Sender:      "grace",
		Type:        domain.NotificationLike,
		ContentID:   "book-1",
		ContentKind: domain.ContentBook,
		CreatedAt:   time.Now(),
	}

	// First Put creates, second replaces without error. This is what
	// keeps notification delivery safe under event redelivery.
	require.NoError(t, s.Notifications.Put(ctx, n))
	require.NoError(t, s.Notifications.Put(ctx, n))

	got, err := s.Notifications.Get(ctx, "like-1")
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Recipient)

	assert.Equal(t, 1, emitter.count(events.CollectionNotifications, events.KindCreated))
	assert.Equal(t, 1, emitter.count(events.CollectionNotifications, events.KindUpdated))
}

func TestEntity_Delete_Idempotent(t *testing.T) {
	s, emitter := setupTestStoreWithEmitter(t)
	ctx := context.Background()

	fav := testFavourite("fav-1", "book-1", "ada")
	require.NoError(t, s.BookFavourites.Create(ctx, fav))

	require.NoError(t, s.BookFavourites.Delete(ctx, "fav-1"))
	require.NoError(t, s.BookFavourites.Delete(ctx, "fav-1"))

	_, err := s.BookFavourites.Get(ctx, "fav-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The second delete was a no-op and must not emit.
	assert.Equal(t, 1, emitter.count(events.CollectionBookFavourites, events.KindDeleted))
}

func TestEntity_Delete_CleansIndexKeys(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	fav := testFavourite("fav-1", "book-1", "ada")
	require.NoError(t, s.BookFavourites.Create(ctx, fav))
	require.NoError(t, s.BookFavourites.Delete(ctx, "fav-1"))

	// Pair key is free again, so the same user can re-favourite.
	refav := testFavourite("fav-2", "book-1", "ada")
	require.NoError(t, s.BookFavourites.Create(ctx, refav))

	got, err := s.BookFavourites.GetByIndex(ctx, "pair", "ada/book-1")
	require.NoError(t, err)
	assert.Equal(t, "fav-2", got.ID)
}

func TestEntity_List_SkipsIndexKeys(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "ada")))
	require.NoError(t, s.Books.Create(ctx, testBook("book-2", "grace")))

	books, err := s.Books.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestEntity_Mutate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Books.Create(ctx, testBook("book-1", "ada")))

	updated, err := s.Books.Mutate(ctx, "book-1", func(b *domain.Book) error {
		b.Completed = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	got, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestEntity_Events_CarryDocAndBefore(t *testing.T) {
	s, emitter := setupTestStoreWithEmitter(t)
	ctx := context.Background()

	book := testBook("book-1", "ada")
	require.NoError(t, s.Books.Create(ctx, book))

	book.Title = "The Hollow Season, Revised"
	require.NoError(t, s.Books.Update(ctx, book))

	all := emitter.all()
	require.Len(t, all, 2)

	created := all[0]
	assert.Equal(t, events.KindCreated, created.Kind)
	assert.Equal(t, "book-1", created.ID)
	require.IsType(t, &domain.Book{}, created.Doc)

	updated := all[1]
	assert.Equal(t, events.KindUpdated, updated.Kind)
	require.IsType(t, &domain.Book{}, updated.Before)
	assert.Equal(t, "The Hollow Season", updated.Before.(*domain.Book).Title)
	assert.Equal(t, "The Hollow Season, Revised", updated.Doc.(*domain.Book).Title)
}
