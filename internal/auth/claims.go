package auth

import "time"

// AccessClaims are the claims carried inside a v4.local access token.
// They're encrypted, so nothing here is readable without the server key.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Handle string `json:"handle"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
