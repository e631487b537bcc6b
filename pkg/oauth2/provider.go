package oauth2

import (
	"context"
)

// Provider defines the base interface for upstream OIDC login providers.
// The verified id_token from a callback is exchanged downstream for a
// first-party session; providers never hand out user records directly.
type Provider interface {
	GetName() string
	GetAuthURL(state string, nonce string) string
	// HandleCallback exchanges the authorization code and returns the raw
	// id_token after verifying its signature and nonce binding.
	HandleCallback(ctx context.Context, code string, nonce string) (string, error)
}
