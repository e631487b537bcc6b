package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"himood/pkg/identity"
)

func TestMapUser(t *testing.T) {
	t.Run("maps a confirmed user", func(t *testing.T) {
		w := &identity.User{
			ID:               "3e1c2a90-77b1-4f6e-9a21-0b5a2f1d8c44",
			Email:            "ana@example.com",
			EmailConfirmedAt: "2026-08-20T10:00:00Z",
			UserMetadata:     map[string]any{"full_name": "Ana Torres"},
			CreatedAt:        "2026-08-20T10:00:00Z",
		}

		got := mapUser(w)

		assert.Equal(t, "3e1c2a90-77b1-4f6e-9a21-0b5a2f1d8c44", got.ID)
		assert.Equal(t, "ana@example.com", got.Email)
		assert.Equal(t, "Ana Torres", got.FullName)
		assert.Equal(t, "2026-08-20T10:00:00Z", got.CreatedAt)
		assert.True(t, got.EmailVerified)
	})

	t.Run("legacy confirmed_at field also marks verified", func(t *testing.T) {
		got := mapUser(&identity.User{ID: "u1", ConfirmedAt: "2026-08-20T10:00:00Z"})
		assert.True(t, got.EmailVerified)
	})

	t.Run("unconfirmed user is not verified", func(t *testing.T) {
		got := mapUser(&identity.User{ID: "u1", Email: "ana@example.com"})
		assert.False(t, got.EmailVerified)
	})

	t.Run("missing metadata leaves the name empty", func(t *testing.T) {
		got := mapUser(&identity.User{ID: "u1"})
		assert.Equal(t, "", got.FullName)
	})

	t.Run("non string full_name is dropped, not mapped", func(t *testing.T) {
		got := mapUser(&identity.User{ID: "u1", UserMetadata: map[string]any{"full_name": 42}})
		assert.Equal(t, "", got.FullName)
	})

	t.Run("mapping is deterministic", func(t *testing.T) {
		w := &identity.User{ID: "u1", Email: "ana@example.com", UserMetadata: map[string]any{"full_name": "Ana"}}
		assert.Equal(t, mapUser(w), mapUser(w))
	})
}

func TestMapSession(t *testing.T) {
	t.Run("carries tokens and expiry through", func(t *testing.T) {
		w := &identity.AuthResponse{
			AccessToken:  "access-token",
			TokenType:    "bearer",
			ExpiresIn:    3600,
			ExpiresAt:    1756200000,
			RefreshToken: "refresh-token",
			User:         &identity.User{ID: "u1", Email: "ana@example.com"},
		}

		got := mapSession(w)

		assert.Equal(t, "access-token", got.AccessToken)
		assert.Equal(t, "refresh-token", got.RefreshToken)
		assert.Equal(t, int64(1756200000), got.ExpiresAt)
		assert.Equal(t, "u1", got.User.ID)
	})

	t.Run("missing expiry stays zero", func(t *testing.T) {
		// 0 doubles as "provider reported nothing" and "already expired";
		// consumers cannot tell the two apart from the session alone.
		w := &identity.AuthResponse{
			AccessToken: "access-token",
			User:        &identity.User{ID: "u1"},
		}

		got := mapSession(w)

		assert.Equal(t, int64(0), got.ExpiresAt)
	})
}
