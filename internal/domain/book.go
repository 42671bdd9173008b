// Package domain contains the core business entities and domain logic for the Inkwell platform.
package domain

import "time"

// Book represents a work published on Inkwell, written chapter by chapter.
//
// FavCount, CommentCount and ChapterCount are denormalized counters kept in
// step with the live BookFavourite, BookComment and Chapter documents by the
// store's atomic counter updates and the cascade triggers. They exist so
// list views never have to count child documents.
type Book struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AuthorHandle   string     `json:"author_handle"`
	AuthorImageURL string     `json:"author_image_url,omitempty"`
	CoverImageURL  string     `json:"cover_image_url,omitempty"`
	CoverBlurhash  string     `json:"cover_blurhash,omitempty"`
	Completed      bool       `json:"completed"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	FavCount       int        `json:"fav_count"`
	CommentCount   int        `json:"comment_count"`
	ChapterCount   int        `json:"chapter_count"`
}

// IsOwnedBy reports whether the given user handle is the book's author.
func (b *Book) IsOwnedBy(handle string) bool {
	return b.AuthorHandle == handle
}

// MarkEdited records an edit timestamp.
func (b *Book) MarkEdited() {
	now := time.Now()
	b.EditedAt = &now
}

// Chapter represents a single chapter of a book.
type Chapter struct {
	ID           string     `json:"id"`
	BookID       string     `json:"book_id"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
}

// MarkEdited records an edit timestamp.
func (c *Chapter) MarkEdited() {
	now := time.Now()
	c.EditedAt = &now
}
