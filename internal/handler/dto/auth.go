// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/flotech/flotech/internal/model"

// SignUpRequest represents the request body for creating an account.
type SignUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	DisplayName     string `json:"display_name,omitempty"`
	FirefliesAPIKey string `json:"fireflies_api_key,omitempty"`
}

// SignInRequest represents the request body for password sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the request body for a password reset.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// ConfirmResetRequest represents the request body completing a
// password reset.
type ConfirmResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UpdateAPIKeyRequest represents the request body replacing the stored
// Fireflies API key.
type UpdateAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// AuthResponse represents a successful signup or sign-in.
type AuthResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

// APIKeyResponse represents the stored Fireflies API key for the
// authenticated user. Set distinguishes "no key stored" from an empty
// string.
type APIKeyResponse struct {
	APIKey string `json:"api_key"`
	Set    bool   `json:"set"`
}

// MessageResponse is a generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
