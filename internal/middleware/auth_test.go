package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flotech/flotech/internal/auth"
)

type fakeRevocations struct {
	revoked map[string]bool
}

func (f *fakeRevocations) IsTokenRevoked(_ context.Context, tokenID string) bool {
	return f.revoked[tokenID]
}

func newAuthTestChain(t *testing.T, tokens *auth.TokenService, revocations TokenRevocations) (http.Handler, *string) {
	t.Helper()
	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authCtx := auth.AuthFromContext(r.Context()); authCtx != nil {
			seenUserID = authCtx.UserID
		}
		w.WriteHeader(http.StatusOK)
	})

	mw := Auth(AuthConfig{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:      tokens,
		Revocations: revocations,
	})
	return mw(next), &seenUserID
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	handler, seenUserID := newAuthTestChain(t, tokens, nil)

	token, err := tokens.Issue("u1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if *seenUserID != "u1" {
		t.Errorf("user id in context = %q, want u1", *seenUserID)
	}
}

func TestAuth_Rejections(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)

	otherService := auth.NewTokenService("different-secret", time.Hour)
	forged, err := otherService.Issue("u1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong signing key", "Bearer " + forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, seenUserID := newAuthTestChain(t, tokens, nil)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if *seenUserID != "" {
				t.Errorf("handler ran with user %q", *seenUserID)
			}
		})
	}
}

func TestAuth_RevokedToken(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)

	token, err := tokens.Issue("u1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	claims, err := tokens.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	revocations := &fakeRevocations{revoked: map[string]bool{claims.ID: true}}
	handler, _ := newAuthTestChain(t, tokens, revocations)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
