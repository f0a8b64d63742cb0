// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// User represents an authenticated identity and its stored profile.
// PasswordHash is empty for accounts created through a federated provider.
// FirefliesAPIKey is optional; it is the reverse-lookup key used by the
// webhook ingestion path to attribute transcript deliveries.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	FirefliesAPIKey string    `json:"-"` // Never serialize
	PasswordHash    string    `json:"-"` // Never serialize
	CreatedAt       time.Time `json:"created_at"`
}

// HasAPIKey reports whether a Fireflies API key is stored for the user.
func (u *User) HasAPIKey() bool {
	return u.FirefliesAPIKey != ""
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	HasAPIKey   bool      `json:"has_api_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts a User to its public representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		HasAPIKey:   u.HasAPIKey(),
		CreatedAt:   u.CreatedAt,
	}
}

// DefaultDisplayName returns the fallback display name for an email
// address: the local part before the "@".
func DefaultDisplayName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID  string
	Email   string
	TokenID string
}
