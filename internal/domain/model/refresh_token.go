package model

import "time"

// RefreshToken is the persisted record backing a long-lived credential. The
// token itself is a signed JWT; the record's existence gates refresh.
type RefreshToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
