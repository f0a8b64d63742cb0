package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flotech/flotech/internal/auth"
	"github.com/flotech/flotech/internal/forward"
	"github.com/flotech/flotech/internal/model"
	"github.com/flotech/flotech/internal/repository"
)

// Account service errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const minPasswordLength = 8

// AccountStore is the subset of the repository the account flows need.
type AccountStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetOrCreateUser(ctx context.Context, user *model.User) (*model.User, error)
	UpdateAPIKey(ctx context.Context, userID, apiKey string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// AccountCache holds revoked-token and reset-token state, plus the
// cached API-key resolutions that must be dropped when a key changes.
type AccountCache interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (string, error)
	InvalidateAPIKey(ctx context.Context, apiKey string) error
}

// KeyForwarder pushes an API key to the automation webhook,
// swallowing the outcome.
type KeyForwarder interface {
	ForwardLogged(ctx context.Context, apiKey string)
}

// KeyLookupStatus tags the outcome of an API key retrieval, keeping
// "no key stored" distinct from "lookup failed".
type KeyLookupStatus int

const (
	KeyFound KeyLookupStatus = iota
	KeyNotSet
	KeyLookupFailed
)

// KeyLookup is the tagged result of GetAPIKey.
type KeyLookup struct {
	Status KeyLookupStatus
	Key    string
	Err    error
}

// AccountService implements signup, sign-in, sign-out, password reset,
// and API key retrieval.
type AccountService struct {
	store         AccountStore
	sessions      AccountCache
	tokens        *auth.TokenService
	forwarder     KeyForwarder
	state         *auth.State
	resetTokenTTL time.Duration
	logger        *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	store AccountStore,
	sessions AccountCache,
	tokens *auth.TokenService,
	forwarder KeyForwarder,
	state *auth.State,
	resetTokenTTL time.Duration,
	logger *slog.Logger,
) *AccountService {
	if forwarder == nil {
		forwarder = forward.New("", time.Second, nil, logger)
	}
	return &AccountService{
		store:         store,
		sessions:      sessions,
		tokens:        tokens,
		forwarder:     forwarder,
		state:         state,
		resetTokenTTL: resetTokenTTL,
		logger:        logger.With("component", "service.account"),
	}
}

// SignUpInput defines input for creating an account.
type SignUpInput struct {
	Email           string
	Password        string
	DisplayName     string
	FirefliesAPIKey string
}

// AuthResult is the outcome of a successful signup or sign-in.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignUp creates the identity, defaults the display name to the email
// local part, and, when an API key was supplied, persists it and
// forwards it to the automation webhook. The forward is awaited but
// its failure never fails the signup.
func (s *AccountService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = model.DefaultDisplayName(input.Email)
	}

	user := &model.User{
		ID:              uuid.New().String(),
		Email:           input.Email,
		DisplayName:     displayName,
		FirefliesAPIKey: input.FirefliesAPIKey,
		PasswordHash:    hash,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user signed up",
		"user_id", user.ID,
		"has_api_key", user.HasAPIKey(),
	)

	if user.HasAPIKey() {
		s.forwarder.ForwardLogged(ctx, user.FirefliesAPIKey)
	}

	return s.establishSession(user)
}

// SignIn authenticates with email and password. On success the stored
// API key, if any, is re-forwarded to the automation webhook;
// forwarding failures are logged and swallowed.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.PasswordHash == "" {
		// Federated-only account.
		return nil, ErrInvalidCredentials
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}

	s.forwardStoredKey(ctx, user)

	return s.establishSession(user)
}

// FederatedSignIn completes a federated flow with a verified identity:
// the account is created on first sign-in, then the same post-success
// key forward as the password flow runs.
func (s *AccountService) FederatedSignIn(ctx context.Context, identity *auth.FederatedIdentity) (*AuthResult, error) {
	displayName := identity.Name
	if displayName == "" {
		displayName = model.DefaultDisplayName(identity.Email)
	}

	user, err := s.store.GetOrCreateUser(ctx, &model.User{
		ID:          uuid.New().String(),
		Email:       identity.Email,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}

	s.forwardStoredKey(ctx, user)

	return s.establishSession(user)
}

// SignOut revokes the session token and publishes the signed-out
// transition.
func (s *AccountService) SignOut(ctx context.Context, tokenID string) error {
	if err := s.sessions.RevokeToken(ctx, tokenID, s.tokens.TTL()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if s.state != nil {
		s.state.Set(nil)
	}
	return nil
}

// ResetPassword issues a reset token for the account. The response is
// identical whether or not the email is registered, so callers cannot
// probe for accounts.
func (s *AccountService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token := auth.RandState(32)
	if err := s.sessions.SaveResetToken(ctx, token, user.ID, s.resetTokenTTL); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	// Delivery is delegated to the mail layer; the token is logged at
	// debug level for development setups without one.
	s.logger.Info("password reset token issued", "user_id", user.ID)
	s.logger.Debug("password reset token", "token", token)

	return nil
}

// GetAPIKey retrieves the caller's stored Fireflies API key as a
// tagged outcome so "no key stored" stays distinguishable from
// "lookup failed".
func (s *AccountService) GetAPIKey(ctx context.Context, userID string) KeyLookup {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return KeyLookup{Status: KeyNotSet}
		}
		return KeyLookup{Status: KeyLookupFailed, Err: err}
	}

	if !user.HasAPIKey() {
		return KeyLookup{Status: KeyNotSet}
	}

	return KeyLookup{Status: KeyFound, Key: user.FirefliesAPIKey}
}

// UpdateAPIKey replaces the caller's stored Fireflies API key,
// invalidates the cached resolution of the old key, and forwards the
// new key to the automation webhook the same way signup does.
func (s *AccountService) UpdateAPIKey(ctx context.Context, userID, apiKey string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.store.UpdateAPIKey(ctx, userID, apiKey); err != nil {
		return fmt.Errorf("update api key: %w", err)
	}

	// Drop the stale ingestion-lookup entry; a webhook carrying the old
	// key must stop resolving to this user.
	if user.HasAPIKey() && user.FirefliesAPIKey != apiKey {
		if err := s.sessions.InvalidateAPIKey(ctx, user.FirefliesAPIKey); err != nil {
			s.logger.Warn("failed to invalidate cached API key",
				"user_id", userID,
				"error", err,
			)
		}
	}

	s.logger.Info("API key updated", "user_id", userID)

	if apiKey != "" {
		s.forwarder.ForwardLogged(ctx, apiKey)
	}

	return nil
}

// ConfirmPasswordReset consumes a reset token and sets the new
// password. The token is single-use; a second attempt with the same
// token fails.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	userID, err := s.sessions.ConsumeResetToken(ctx, token)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password reset completed", "user_id", userID)
	return nil
}

// forwardStoredKey re-forwards the user's stored key after a
// successful sign-in. Read and forward failures are logged only.
func (s *AccountService) forwardStoredKey(ctx context.Context, user *model.User) {
	fresh, err := s.store.GetUserByID(ctx, user.ID)
	if err != nil {
		s.logger.Warn("failed to read stored API key after sign-in",
			"user_id", user.ID,
			"error", err,
		)
		return
	}
	if fresh.HasAPIKey() {
		s.forwarder.ForwardLogged(ctx, fresh.FirefliesAPIKey)
	}
}

// establishSession issues a token and publishes the signed-in
// transition.
func (s *AccountService) establishSession(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if s.state != nil {
		s.state.Set(&auth.Session{
			UserID:      user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		})
	}

	return &AuthResult{User: user, Token: token}, nil
}
