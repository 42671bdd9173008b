// Package trigger wires event handlers that react to document changes:
// cascading deletions, favourite/like counter maintenance, notification
// delivery and author image propagation.
//
// Handlers are delivered at least once, so every handler here is written
// to be idempotent: deletes skip missing documents, notifications are
// upserts keyed by the triggering document's ID, and counters clamp at
// zero.
package trigger

import (
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/events"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// Triggers holds the dependencies shared by every handler.
type Triggers struct {
	store  *store.Store
	logger *slog.Logger
}

// Register subscribes every trigger to the bus. Call once at startup,
// before the bus starts dispatching.
func Register(bus *events.Bus, s *store.Store, logger *slog.Logger) *Triggers {
	t := &Triggers{store: s, logger: logger}

	// Cascading deletions.
	bus.Subscribe(events.CollectionBooks, events.KindDeleted, t.onBookDeleted)
	bus.Subscribe(events.CollectionChapters, events.KindDeleted, t.onChapterDeleted)

	// Favourite and like counters. Registered separately from the
	// notification handlers so a notification failure never replays a
	// counter adjustment.
	bus.Subscribe(events.CollectionBookFavourites, events.KindCreated, t.onFavouriteCreatedCount)
	bus.Subscribe(events.CollectionBookFavourites, events.KindDeleted, t.onFavouriteDeletedCount)
	bus.Subscribe(events.CollectionChapterLikes, events.KindCreated, t.onLikeCreatedCount)
	bus.Subscribe(events.CollectionChapterLikes, events.KindDeleted, t.onLikeDeletedCount)

	// Notifications.
	bus.Subscribe(events.CollectionBookFavourites, events.KindCreated, t.onFavouriteCreatedNotify)
	bus.Subscribe(events.CollectionBookFavourites, events.KindDeleted, t.onInteractionDeletedNotify)
	bus.Subscribe(events.CollectionChapterLikes, events.KindCreated, t.onLikeCreatedNotify)
	bus.Subscribe(events.CollectionChapterLikes, events.KindDeleted, t.onInteractionDeletedNotify)
	bus.Subscribe(events.CollectionBookComments, events.KindCreated, t.onBookCommentCreatedNotify)
	bus.Subscribe(events.CollectionBookComments, events.KindDeleted, t.onInteractionDeletedNotify)
	bus.Subscribe(events.CollectionChapterComments, events.KindCreated, t.onChapterCommentCreatedNotify)
	bus.Subscribe(events.CollectionChapterComments, events.KindDeleted, t.onInteractionDeletedNotify)

	// Profile image propagation.
	bus.Subscribe(events.CollectionUsers, events.KindUpdated, t.onUserUpdated)

	return t
}
