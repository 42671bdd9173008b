// Package store implements the Inkwell document store on top of BadgerDB.
//
// Documents are JSON values keyed by collection prefix + ID, with secondary
// indexes stored as additional keys under the same prefix. Every committed
// mutation emits a change event so triggers (cascades, notifications) can
// react without the request path knowing about them.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/events"
)

// EventEmitter receives change events for committed mutations.
// The store depends on this interface rather than the bus implementation
// so tests can run without a dispatch loop.
type EventEmitter interface {
	Emit(event events.Event)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ events.Event) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// Collection key prefixes. Index keys live under "<prefix>idx:".
const (
	userPrefix           = "user:"
	bookPrefix           = "book:"
	chapterPrefix        = "chapter:"
	bookCommentPrefix    = "bcomment:"
	chapterCommentPrefix = "ccomment:"
	bookFavouritePrefix  = "bookfav:"
	chapterLikePrefix    = "chlike:"
	notificationPrefix   = "notif:"
)

// Store wraps a Badger database instance.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	emitter EventEmitter

	Users           *Entity[domain.User]
	Books           *Entity[domain.Book]
	Chapters        *Entity[domain.Chapter]
	BookComments    *Entity[domain.BookComment]
	ChapterComments *Entity[domain.ChapterComment]
	BookFavourites  *Entity[domain.BookFavourite]
	ChapterLikes    *Entity[domain.ChapterLike]
	Notifications   *Entity[domain.Notification]
}

// New creates a new Store instance with the given database path and emitter.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:      db,
		logger:  logger,
		emitter: emitter,
	}
	s.initEntities()

	if logger != nil {
		logger.Info("document store opened", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing document store")
	}
	return s.db.Close()
}

// initEntities wires up every collection with its secondary indexes.
func (s *Store) initEntities() {
	s.Users = NewEntity(s, userPrefix, events.CollectionUsers,
		func(u *domain.User) string { return u.ID }).
		WithUniqueIndex("handle", func(u *domain.User) []string {
			return []string{u.Handle}
		}).
		WithUniqueIndex("email", func(u *domain.User) []string {
			return []string{u.Email}
		})

	s.Books = NewEntity(s, bookPrefix, events.CollectionBooks,
		func(b *domain.Book) string { return b.ID }).
		WithIndex("author", func(b *domain.Book) []string {
			return []string{b.AuthorHandle}
		})

	s.Chapters = NewEntity(s, chapterPrefix, events.CollectionChapters,
		func(c *domain.Chapter) string { return c.ID }).
		WithIndex("book", func(c *domain.Chapter) []string {
			return []string{c.BookID}
		})

	s.BookComments = NewEntity(s, bookCommentPrefix, events.CollectionBookComments,
		func(c *domain.BookComment) string { return c.ID }).
		WithIndex("book", func(c *domain.BookComment) []string {
			return []string{c.BookID}
		}).
		WithIndex("author", func(c *domain.BookComment) []string {
			return []string{c.UserHandle}
		})

	s.ChapterComments = NewEntity(s, chapterCommentPrefix, events.CollectionChapterComments,
		func(c *domain.ChapterComment) string { return c.ID }).
		WithIndex("chapter", func(c *domain.ChapterComment) []string {
			return []string{c.ChapterID}
		}).
		WithIndex("author", func(c *domain.ChapterComment) []string {
			return []string{c.UserHandle}
		})

	s.BookFavourites = NewEntity(s, bookFavouritePrefix, events.CollectionBookFavourites,
		func(f *domain.BookFavourite) string { return f.ID }).
		WithUniqueIndex("pair", func(f *domain.BookFavourite) []string {
			return []string{f.PairKey()}
		}).
		WithIndex("book", func(f *domain.BookFavourite) []string {
			return []string{f.BookID}
		})

	s.ChapterLikes = NewEntity(s, chapterLikePrefix, events.CollectionChapterLikes,
		func(l *domain.ChapterLike) string { return l.ID }).
		WithUniqueIndex("pair", func(l *domain.ChapterLike) []string {
			return []string{l.PairKey()}
		}).
		WithIndex("chapter", func(l *domain.ChapterLike) []string {
			return []string{l.ChapterID}
		})

	s.Notifications = NewEntity(s, notificationPrefix, events.CollectionNotifications,
		func(n *domain.Notification) string { return n.ID }).
		WithIndex("recipient", func(n *domain.Notification) []string {
			return []string{n.Recipient}
		})
}

// emit forwards a change event to the emitter, if one is configured.
func (s *Store) emit(event events.Event) {
	if s.emitter == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.emitter.Emit(event)
}

// Transaction conflict retry policy. Badger detects read-write conflicts
// at commit; the losing transaction must be re-run against fresh state.
const (
	maxTxnRetries   = 20
	txnRetryBackoff = 2 * time.Millisecond
)

// update runs fn inside a read-write transaction, retrying on commit
// conflicts. This is what makes counter adjustments atomic per document:
// two concurrent increments serialize instead of losing an update.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		time.Sleep(txnRetryBackoff)
	}
	return err
}

// view runs fn inside a read-only transaction.
func (s *Store) view(fn func(txn *badger.Txn) error) error {
	return s.db.View(fn)
}
