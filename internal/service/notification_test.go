package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/service"
)

func TestNotificationList_NewestFirst(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	grace := env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")

	require.NoError(t, env.social.FavouriteBook(ctx, grace, book.ID))
	env.bus.Drain()
	comment, err := env.social.CommentOnBook(ctx, grace, book.ID, service.BookCommentRequest{
		Body:   "lovely",
		Rating: 4,
	})
	require.NoError(t, err)
	env.bus.Drain()

	notifications, err := env.notifications.List(ctx, ada)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, comment.ID, notifications[0].ID)
	assert.False(t, notifications[0].Read)

	// The commenter has none of their own.
	theirs, err := env.notifications.List(ctx, grace)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestNotificationMarkRead_Specific(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	grace := env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")

	require.NoError(t, env.social.FavouriteBook(ctx, grace, book.ID))
	comment, err := env.social.CommentOnBook(ctx, grace, book.ID, service.BookCommentRequest{
		Body:   "lovely",
		Rating: 4,
	})
	require.NoError(t, err)
	env.bus.Drain()

	err = env.notifications.MarkRead(ctx, ada, service.MarkReadRequest{IDs: []string{comment.ID}})
	require.NoError(t, err)

	notifications, err := env.notifications.List(ctx, ada)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		assert.Equal(t, n.ID == comment.ID, n.Read)
	}
}

func TestNotificationMarkRead_EmptyMarksAll(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	grace := env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")
	chapter := env.addChapter(t, ada, book.ID)

	require.NoError(t, env.social.FavouriteBook(ctx, grace, book.ID))
	require.NoError(t, env.social.LikeChapter(ctx, grace, chapter.ID))
	env.bus.Drain()

	require.NoError(t, env.notifications.MarkRead(ctx, ada, service.MarkReadRequest{}))

	notifications, err := env.notifications.List(ctx, ada)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		assert.True(t, n.Read)
	}
}

func TestNotificationMarkRead_SkipsForeignAndUnknown(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	grace := env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")

	require.NoError(t, env.social.FavouriteBook(ctx, grace, book.ID))
	env.bus.Drain()

	adas, err := env.notifications.List(ctx, ada)
	require.NoError(t, err)
	require.Len(t, adas, 1)

	// Another user naming ada's notification has no effect, and an
	// unknown ID is not an error.
	err = env.notifications.MarkRead(ctx, grace, service.MarkReadRequest{
		IDs: []string{adas[0].ID, "no-such-notification"},
	})
	require.NoError(t, err)

	adas, err = env.notifications.List(ctx, ada)
	require.NoError(t, err)
	require.Len(t, adas, 1)
	assert.False(t, adas[0].Read)
}
