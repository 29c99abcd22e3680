package models

import "time"

// RefreshToken is one issued refresh token. Only a bcrypt hash of the opaque
// secret is stored; the plaintext leaves the server exactly once, at issuance.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
