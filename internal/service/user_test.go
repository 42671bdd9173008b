package service_test

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func TestUserGetByHandle(t *testing.T) {
	env := setupServices(t)
	env.signup(t, "ada")

	user, err := env.users.GetByHandle(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Handle)
	assert.Empty(t, user.PasswordHash)

	_, err = env.users.GetByHandle(context.Background(), "ghost")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserGetByID_GoneAccountIsUnauthorized(t *testing.T) {
	env := setupServices(t)
	ada := env.signup(t, "ada")

	got, err := env.users.GetByID(context.Background(), ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Handle)

	_, err = env.users.GetByID(context.Background(), "user_gone")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestUserUpdateProfile(t *testing.T) {
	env := setupServices(t)
	ada := env.signup(t, "ada")

	bio := "writes slow-burn mysteries"
	website := "https://ada.example.com"
	updated, err := env.users.UpdateProfile(context.Background(), ada, service.UpdateProfileRequest{
		Bio:     &bio,
		Website: &website,
	})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, website, updated.Website)
	assert.Empty(t, updated.Location, "untouched field stays")
}

func TestUserUpdateProfile_Validation(t *testing.T) {
	env := setupServices(t)
	ada := env.signup(t, "ada")

	website := "not a url"
	_, err := env.users.UpdateProfile(context.Background(), ada, service.UpdateProfileRequest{
		Website: &website,
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUserSetImage_Propagates(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	ada := env.signup(t, "ada")
	grace := env.signup(t, "grace")
	book := env.publish(t, ada, "The Hollow Season")
	env.bus.Drain()

	// Grace comments, then ada changes avatar: the comment's cached
	// image URL must follow.
	book2 := env.publish(t, grace, "Notes From Nowhere")
	_, err := env.social.CommentOnBook(ctx, ada, book2.ID, service.BookCommentRequest{
		Body:   "a fine debut",
		Rating: 4,
	})
	require.NoError(t, err)
	env.bus.Drain()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 32)), nil))

	updated, err := env.users.SetImage(ctx, ada, buf.Bytes())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(updated.ImageURL, "/media/avatars/"), updated.ImageURL)
	env.bus.Drain()

	gotBook, err := env.store.Books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ImageURL, gotBook.AuthorImageURL)

	comments, err := env.store.BookComments.FindByIndex(ctx, "book", book2.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, updated.ImageURL, comments[0].UserImageURL)
}
