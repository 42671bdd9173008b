package domain

import "time"

// User represents a registered Inkwell account.
//
// Handle is the public identity: books, comments, favourites and
// notifications all reference users by handle, never by internal ID.
type User struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	ImageURL     string    `json:"image_url,omitempty"`
	AvatarColor  string    `json:"avatar_color,omitempty"` // Placeholder shown when no image is uploaded
	Bio          string    `json:"bio,omitempty"`
	Location     string    `json:"location,omitempty"`
	Website      string    `json:"website,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns a copy safe for API responses (no password hash).
func (u *User) Public() User {
	pub := *u
	pub.PasswordHash = ""
	return pub
}
