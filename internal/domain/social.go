package domain

import "time"

// BookFavourite is a join record marking that a user favourited a book.
// Its existence is the whole payload; at most one may exist per
// (user, book) pair, enforced by a unique store index on PairKey.
type BookFavourite struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	UserHandle string    `json:"user_handle"`
	CreatedAt  time.Time `json:"created_at"`
}

// PairKey returns the unique (user, book) index value.
func (f *BookFavourite) PairKey() string {
	return f.UserHandle + "/" + f.BookID
}

// ChapterLike is a join record marking that a user liked a chapter.
// Same uniqueness rule as BookFavourite, scoped to (user, chapter).
type ChapterLike struct {
	ID         string    `json:"id"`
	ChapterID  string    `json:"chapter_id"`
	UserHandle string    `json:"user_handle"`
	CreatedAt  time.Time `json:"created_at"`
}

// PairKey returns the unique (user, chapter) index value.
func (l *ChapterLike) PairKey() string {
	return l.UserHandle + "/" + l.ChapterID
}
