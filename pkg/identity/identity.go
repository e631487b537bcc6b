// Package identity wraps the hosted identity provider's HTTP API behind a
// narrow client interface. Callers never see raw HTTP responses: provider
// rejections surface as *APIError, transport failures as plain errors.
package identity

import (
	"context"
	"fmt"
)

// Client is the slice of the provider API the service consumes.
type Client interface {
	SignUp(ctx context.Context, email, password, fullName string) (*AuthResponse, error)
	SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error)
	SignInWithIDToken(ctx context.Context, grant IDTokenGrant) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	SignOut(ctx context.Context, accessToken string) error
	Recover(ctx context.Context, email, redirectTo string) error
	GetUser(ctx context.Context, accessToken string) (*User, error)
	UpdatePassword(ctx context.Context, accessToken, newPassword string) (*User, error)
	Health(ctx context.Context) error
}

// APIError is a structured rejection from the provider: an HTTP response with
// status >= 400. Its Message carries the provider's free-text reason verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity api error (status %d): %s", e.Status, e.Message)
}

// IDTokenGrant exchanges a verified OIDC id_token from a social provider for
// a provider session.
type IDTokenGrant struct {
	Provider string `json:"provider"`
	IDToken  string `json:"id_token"`
	Nonce    string `json:"nonce,omitempty"`
}

// AuthResponse is the provider's session payload, returned by the token and
// signup endpoints. ExpiresAt stays zero when the provider omits it.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// User is the provider's user record. Confirmation timestamps are kept as the
// raw strings the provider sends; an empty string means not confirmed.
type User struct {
	ID               string         `json:"id"`
	Aud              string         `json:"aud"`
	Email            string         `json:"email"`
	EmailConfirmedAt string         `json:"email_confirmed_at"`
	ConfirmedAt      string         `json:"confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
	CreatedAt        string         `json:"created_at"`
}
