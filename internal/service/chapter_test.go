package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func TestChapterCreate_BumpsBookCount(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	book := env.publish(t, ada, "The Hollow Season")

	env.addChapter(t, ada, book.ID)
	env.addChapter(t, ada, book.ID)
	env.bus.Drain()

	got, err := env.store.Books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ChapterCount)
}

func TestChapterCreate_NonOwnerForbidden(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")

	_, err := env.chapters.Create(ctx, "grace", book.ID, service.CreateChapterRequest{
		Title: "Stolen Chapter",
		Body:  "Some prose.",
	})
	require.ErrorIs(t, err, domainerrors.ErrForbidden)
	env.bus.Drain()

	got, err := env.store.Books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ChapterCount)
}

func TestChapterCreate_MissingBook(t *testing.T) {
	env := setupServices(t)
	env.signup(t, "ada")

	_, err := env.chapters.Create(context.Background(), "ada", "missing", service.CreateChapterRequest{
		Title: "Orphan",
		Body:  "Some prose.",
	})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestChapterListByBook_PublicationOrder(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	book := env.publish(t, ada, "The Hollow Season")

	first := env.addChapter(t, ada, book.ID)
	second := env.addChapter(t, ada, book.ID)

	chapters, err := env.chapters.ListByBook(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, first.ID, chapters[0].ID)
	assert.Equal(t, second.ID, chapters[1].ID)
}

func TestChapterGet_IncludesComments(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	grace := env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")
	chapter := env.addChapter(t, ada, book.ID)

	_, err := env.social.CommentOnChapter(ctx, grace, chapter.ID, service.ChapterCommentRequest{
		Body: "loved this one",
	})
	require.NoError(t, err)
	env.bus.Drain()

	detail, err := env.chapters.Get(ctx, chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Chapter.CommentCount)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "loved this one", detail.Comments[0].Body)
}

func TestChapterUpdate_OnlyAuthor(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")
	chapter := env.addChapter(t, ada, book.ID)

	newBody := "Rewritten prose."
	_, err := env.chapters.Update(ctx, "grace", chapter.ID, service.UpdateChapterRequest{Body: &newBody})
	require.ErrorIs(t, err, domainerrors.ErrForbidden)

	updated, err := env.chapters.Update(ctx, "ada", chapter.ID, service.UpdateChapterRequest{Body: &newBody})
	require.NoError(t, err)
	assert.Equal(t, newBody, updated.Body)
	assert.NotNil(t, updated.EditedAt)
}

func TestChapterDelete_DecrementsAndCascades(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	grace := env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")
	chapter := env.addChapter(t, ada, book.ID)

	require.NoError(t, env.social.LikeChapter(ctx, grace, chapter.ID))
	env.bus.Drain()

	require.NoError(t, env.chapters.Delete(ctx, "ada", chapter.ID))
	env.bus.Drain()

	got, err := env.store.Books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ChapterCount)

	likes, err := env.store.ChapterLikes.FindByIndex(ctx, "chapter", chapter.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	notifications, err := env.store.Notifications.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestChapterDelete_NonOwner(t *testing.T) {
	env := setupServices(t)

	ada := env.signup(t, "ada")
	env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")
	chapter := env.addChapter(t, ada, book.ID)

	err := env.chapters.Delete(context.Background(), "grace", chapter.ID)
	require.ErrorIs(t, err, domainerrors.ErrForbidden)
}
