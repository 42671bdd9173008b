package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/events"
)

// TestBatch_FailureRollsBackEverything forces an op in the middle of a
// batch to fail and verifies that none of the earlier deletions were
// applied and no events leaked out.
func TestBatch_FailureRollsBackEverything(t *testing.T) {
	var captured []events.Event
	s, err := New(filepath.Join(t.TempDir(), "test.db"), nil, emitterFunc(func(e events.Event) {
		captured = append(captured, e)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	book := &domain.Book{ID: "book-1", Title: "T", AuthorHandle: "ada", CreatedAt: time.Now()}
	chapter := &domain.Chapter{ID: "ch-1", BookID: "book-1", Title: "C", Body: "b", CreatedAt: time.Now()}
	require.NoError(t, s.Books.Create(ctx, book))
	require.NoError(t, s.Chapters.Create(ctx, chapter))
	captured = nil

	boom := errors.New("boom")
	b := s.NewBatch()
	s.Books.BatchDelete(b, "book-1")
	b.ops = append(b.ops, func(_ *badger.Txn, _ func(events.Event)) error {
		return boom
	})
	s.Chapters.BatchDelete(b, "ch-1")

	require.ErrorIs(t, b.Commit(ctx), boom)

	// The book deletion queued before the failing op must not have
	// been applied.
	_, err = s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	_, err = s.Chapters.Get(ctx, "ch-1")
	require.NoError(t, err)
	assert.Empty(t, captured)
}

type emitterFunc func(events.Event)

func (f emitterFunc) Emit(e events.Event) { f(e) }
