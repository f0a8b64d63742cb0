package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/flotech/flotech/internal/auth"
	"github.com/flotech/flotech/internal/handler/dto"
	"github.com/flotech/flotech/internal/service"
)

const oauthStateTTL = 10 * time.Minute

// OAuthStateCache stores short-lived state for the federated sign-in
// round trip.
type OAuthStateCache interface {
	SaveOAuthState(ctx context.Context, state, nonce string, ttl time.Duration) error
	ConsumeOAuthState(ctx context.Context, state string) (string, error)
}

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	accounts *service.AccountService
	google   *auth.GoogleProvider
	states   OAuthStateCache
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. google may be nil when the
// federated provider is not configured.
func NewAuthHandler(accounts *service.AccountService, google *auth.GoogleProvider, states OAuthStateCache, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		google:   google,
		states:   states,
		logger:   logger.With("handler", "auth"),
	}
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "Email and password are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.accounts.SignUp(r.Context(), service.SignUpInput{
		Email:           req.Email,
		Password:        req.Password,
		DisplayName:     req.DisplayName,
		FirefliesAPIKey: req.FirefliesAPIKey,
	})
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Token: result.Token,
		User:  result.User.ToResponse(),
	})
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: result.Token,
		User:  result.User.ToResponse(),
	})
}

// GoogleLogin handles GET /api/v1/auth/google
// It stores a one-time state/nonce pair and redirects to the provider.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.writeFederatedDisabled(w)
		return
	}

	state := auth.RandState(24)
	nonce := auth.RandState(24)
	if err := h.states.SaveOAuthState(r.Context(), state, nonce, oauthStateTTL); err != nil {
		h.logger.Error("failed to save oauth state", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to start federated sign-in",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	http.Redirect(w, r, h.google.LoginURL(state, nonce), http.StatusFound)
}

// GoogleCallback handles GET /api/v1/auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.writeFederatedDisabled(w)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "Missing state or code",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	nonce, err := h.states.ConsumeOAuthState(r.Context(), state)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid or expired state",
			Code:  "INVALID_STATE",
		})
		return
	}

	identity, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("federated code exchange failed", "error", err)
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Federated sign-in failed",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	if identity.Nonce != nonce {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Nonce mismatch",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	result, err := h.accounts.FederatedSignIn(r.Context(), identity)
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: result.Token,
		User:  result.User.ToResponse(),
	})
}

// SignOut handles POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeUnauthorized(w)
		return
	}

	if err := h.accounts.SignOut(r.Context(), authCtx.TokenID); err != nil {
		h.logger.Error("sign-out failed", "user_id", authCtx.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to sign out",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Signed out"})
}

// ResetPassword handles POST /api/v1/auth/reset-password
// The response does not reveal whether the email is registered.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "Email is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), req.Email); err != nil {
		h.logger.Error("password reset failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to process reset request",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "If the email is registered, a reset link has been sent",
	})
}

// ConfirmResetPassword handles POST /api/v1/auth/reset-password/confirm
func (h *AuthHandler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "Token and new password are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.accounts.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeAccountError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password updated"})
}

// UpdateAPIKey handles PUT /api/v1/auth/api-key
func (h *AuthHandler) UpdateAPIKey(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeUnauthorized(w)
		return
	}

	var req dto.UpdateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIKey == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "API key is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.accounts.UpdateAPIKey(r.Context(), authCtx.UserID, req.APIKey); err != nil {
		h.logger.Error("API key update failed", "user_id", authCtx.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to update API key",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.APIKeyResponse{APIKey: req.APIKey, Set: true})
}

// GetAPIKey handles GET /api/v1/auth/api-key
func (h *AuthHandler) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeUnauthorized(w)
		return
	}

	lookup := h.accounts.GetAPIKey(r.Context(), authCtx.UserID)
	switch lookup.Status {
	case service.KeyFound:
		writeJSON(w, http.StatusOK, dto.APIKeyResponse{APIKey: lookup.Key, Set: true})
	case service.KeyNotSet:
		writeJSON(w, http.StatusOK, dto.APIKeyResponse{Set: false})
	default:
		h.logger.Error("API key lookup failed", "user_id", authCtx.UserID, "error", lookup.Err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to retrieve API key",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func (h *AuthHandler) writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "WEAK_PASSWORD",
		})
	case errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "EMAIL_TAKEN",
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_CREDENTIALS",
		})
	case errors.Is(err, service.ErrInvalidResetToken):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid or expired reset token",
			Code:  "INVALID_RESET_TOKEN",
		})
	default:
		h.logger.Error("account operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func (h *AuthHandler) writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
		Error: "Authentication required",
		Code:  "UNAUTHORIZED",
	})
}

func (h *AuthHandler) writeFederatedDisabled(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{
		Error: "Federated sign-in is not configured",
		Code:  "FEDERATED_DISABLED",
	})
}
