package domain

import "time"

// Rating bounds for book comments. A review score accompanies every
// book comment; chapter comments carry no rating.
const (
	RatingMin = 1
	RatingMax = 5
)

// BookComment is a reader's comment on a book, with a 1-5 review rating.
type BookComment struct {
	ID           string    `json:"id"`
	BookID       string    `json:"book_id"`
	UserHandle   string    `json:"user_handle"`
	UserImageURL string    `json:"user_image_url,omitempty"`
	Body         string    `json:"body"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidRating reports whether a rating is within the accepted range.
func ValidRating(rating int) bool {
	return rating >= RatingMin && rating <= RatingMax
}

// ChapterComment is a reader's comment on a single chapter.
type ChapterComment struct {
	ID           string    `json:"id"`
	ChapterID    string    `json:"chapter_id"`
	UserHandle   string    `json:"user_handle"`
	UserImageURL string    `json:"user_image_url,omitempty"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}
