package domain

import "time"

// NotificationType distinguishes what prompted a notification.
type NotificationType string

const (
	// NotificationLike is sent when someone favourites a book or likes a chapter.
	NotificationLike NotificationType = "like"
	// NotificationComment is sent when someone comments on a book or chapter.
	NotificationComment NotificationType = "comment"
)

// ContentKind names the kind of content a notification points at.
type ContentKind string

const (
	// ContentBook marks notifications about a book.
	ContentBook ContentKind = "book"
	// ContentChapter marks notifications about a chapter.
	ContentChapter ContentKind = "chapter"
)

// Notification tells a content owner that another user interacted with
// their work.
//
// A notification's ID is always the ID of the like or comment that
// produced it. That makes creation idempotent under event redelivery,
// and lets an unlike delete its notification with a point lookup
// instead of a query.
type Notification struct {
	ID          string           `json:"id"`
	Recipient   string           `json:"recipient"`
	Sender      string           `json:"sender"`
	Type        NotificationType `json:"type"`
	Read        bool             `json:"read"`
	ContentID   string           `json:"content_id"`
	ContentKind ContentKind      `json:"content_kind"`
	CreatedAt   time.Time        `json:"created_at"`
}
