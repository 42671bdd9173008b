package store_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/events"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// captureEmitter records emitted events for assertions.
type captureEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureEmitter) Emit(e events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureEmitter) all() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event(nil), c.events...)
}

func (c *captureEmitter) count(collection events.Collection, kind events.Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Collection == collection && e.Kind == kind {
			n++
		}
	}
	return n
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func setupTestStoreWithEmitter(t *testing.T) (*store.Store, *captureEmitter) {
	t.Helper()

	emitter := &captureEmitter{}
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil, emitter)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, emitter
}

// Fixtures.

func testBook(id, author string) *domain.Book {
	return &domain.Book{
		ID:           id,
		Title:        "The Hollow Season",
		Description:  "A story told in fragments.",
		AuthorHandle: author,
		CreatedAt:    time.Now(),
	}
}

func testChapter(id, bookID string) *domain.Chapter {
	return &domain.Chapter{
		ID:        id,
		BookID:    bookID,
		Title:     "Chapter One",
		Body:      "It began, as these things do, with a letter.",
		CreatedAt: time.Now(),
	}
}

func testBookComment(id, bookID, author string) *domain.BookComment {
	return &domain.BookComment{
		ID:         id,
		BookID:     bookID,
		UserHandle: author,
		Body:       "Couldn't put it down.",
		Rating:     4,
		CreatedAt:  time.Now(),
	}
}

func testChapterComment(id, chapterID, author string) *domain.ChapterComment {
	return &domain.ChapterComment{
		ID:         id,
		ChapterID:  chapterID,
		UserHandle: author,
		Body:       "That ending!",
		CreatedAt:  time.Now(),
	}
}

func testFavourite(id, bookID, user string) *domain.BookFavourite {
	return &domain.BookFavourite{
		ID:         id,
		BookID:     bookID,
		UserHandle: user,
		CreatedAt:  time.Now(),
	}
}

func testLike(id, chapterID, user string) *domain.ChapterLike {
	return &domain.ChapterLike{
		ID:         id,
		ChapterID:  chapterID,
		UserHandle: user,
		CreatedAt:  time.Now(),
	}
}
