package service_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/events"
	"github.com/inkwellapp/inkwell-server/internal/logger"
	"github.com/inkwellapp/inkwell-server/internal/media/images"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/trigger"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// testEnv wires the full backend (store, bus, triggers, services) the
// way the DI container does in production.
type testEnv struct {
	store *store.Store
	bus   *events.Bus

	auth          *service.AuthService
	books         *service.BookService
	chapters      *service.ChapterService
	social        *service.SocialService
	notifications *service.NotificationService
	users         *service.UserService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	log := logger.Discard()

	bus := events.NewBus(log.Logger)
	s, err := store.New(filepath.Join(dir, "db"), log.Logger, bus)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	trigger.Register(bus, s, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)

	tokens, err := auth.NewTokenService(strings.Repeat("0f", 32), time.Hour)
	require.NoError(t, err)

	covers, err := images.NewStorage(dir, "covers")
	require.NoError(t, err)
	avatars, err := images.NewStorage(dir, "avatars")
	require.NoError(t, err)

	v := validation.New()
	return &testEnv{
		store:         s,
		bus:           bus,
		auth:          service.NewAuthService(s, tokens, v, log.Logger),
		books:         service.NewBookService(s, covers, v, log.Logger),
		chapters:      service.NewChapterService(s, v, log.Logger),
		social:        service.NewSocialService(s, v, log.Logger),
		notifications: service.NewNotificationService(s, log.Logger),
		users:         service.NewUserService(s, avatars, v, log.Logger),
	}
}

// signup creates a user through the real signup path.
func (e *testEnv) signup(t *testing.T, handle string) *domain.User {
	t.Helper()

	result, err := e.auth.Signup(context.Background(), service.SignupRequest{
		Handle:   handle,
		Email:    handle + "@example.com",
		Password: "a long enough password",
	})
	require.NoError(t, err)

	user, err := e.store.Users.Get(context.Background(), result.User.ID)
	require.NoError(t, err)
	return user
}

// publish creates a book for the author.
func (e *testEnv) publish(t *testing.T, author *domain.User, title string) *domain.Book {
	t.Helper()

	book, err := e.books.Create(context.Background(), author, service.CreateBookRequest{
		Title:       title,
		Description: "a description",
	})
	require.NoError(t, err)
	return book
}

// addChapter creates a chapter as the book's author.
func (e *testEnv) addChapter(t *testing.T, author *domain.User, bookID string) *domain.Chapter {
	t.Helper()

	chapter, err := e.chapters.Create(context.Background(), author.Handle, bookID, service.CreateChapterRequest{
		Title: "Chapter",
		Body:  "Some prose.",
	})
	require.NoError(t, err)
	return chapter
}
