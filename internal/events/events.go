// Package events implements the in-process change-event bus that decouples
// store mutations from their side effects (cascading deletes, notifications,
// denormalized-field propagation).
//
// Every committed store mutation emits an Event. Triggers subscribe to a
// (collection, kind) pair and run asynchronously on the dispatch goroutine,
// fully decoupled from the HTTP request that caused the mutation. Delivery
// is at-least-once: a failing handler is retried once, then the error is
// logged and the event dropped. Consumers are therefore written to be
// idempotent (deletes are naturally so; notification writes key on the
// triggering event's ID).
package events

import "time"

// Kind is the type of document change that occurred.
type Kind string

const (
	// KindCreated fires after a document is first written.
	KindCreated Kind = "created"
	// KindUpdated fires after an existing document is rewritten.
	KindUpdated Kind = "updated"
	// KindDeleted fires after a document is removed.
	KindDeleted Kind = "deleted"
)

// Collection identifies a watched document collection.
type Collection string

const (
	// CollectionUsers holds user accounts.
	CollectionUsers Collection = "users"
	// CollectionBooks holds published books.
	CollectionBooks Collection = "books"
	// CollectionChapters holds book chapters.
	CollectionChapters Collection = "chapters"
	// CollectionBookComments holds comments on books.
	CollectionBookComments Collection = "bookComments"
	// CollectionChapterComments holds comments on chapters.
	CollectionChapterComments Collection = "chapterComments"
	// CollectionBookFavourites holds (user, book) favourite join records.
	CollectionBookFavourites Collection = "bookFavourites"
	// CollectionChapterLikes holds (user, chapter) like join records.
	CollectionChapterLikes Collection = "chapterLikes"
	// CollectionNotifications holds user notifications.
	CollectionNotifications Collection = "notifications"
)

// Event is a single document change.
//
// Doc is the document state after the change (for deletes, the state just
// before removal). Before is only set on updates, so triggers can diff.
type Event struct {
	Timestamp  time.Time  `json:"timestamp"`
	Collection Collection `json:"collection"`
	Kind       Kind       `json:"kind"`
	ID         string     `json:"id"`
	Doc        any        `json:"doc,omitempty"`
	Before     any        `json:"before,omitempty"`
}
