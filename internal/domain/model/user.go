package model

import (
	"strings"
	"time"
)

const (
	RoleRegular = "regular"
	RoleAdmin   = "admin"
)

// NormalizeRole folds a role string to the closed lowercase set used
// everywhere past the boundary. Unknown values fall back to regular.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleRegular
	}
}

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
