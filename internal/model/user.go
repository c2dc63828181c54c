// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// PasswordHash never appears in outward-facing representations;
// conversion to response shapes happens explicitly in handler/dto.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthContext carries the resolved identity of an authenticated request.
type AuthContext struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
