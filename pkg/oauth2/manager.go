package oauth2

import (
	"context"
	"errors"
	"fmt"
	"time"

	"himood/cfg"
)

var ErrProviderNotFound = errors.New("provider not found")

// Manager runs the browser half of federated sign-in: it hands out provider
// authorization URLs and turns callbacks into verified id_tokens. Session
// creation happens downstream, at the identity provider.
type Manager struct {
	providers    map[string]Provider
	stateStorage StateStorage
	stateTimeout time.Duration
}

// NewManager creates a new manager with the providers enabled in configuration
func NewManager(ctx context.Context, cfg *cfg.OAuth2Config) (*Manager, error) {
	mgr := &Manager{
		providers:    make(map[string]Provider),
		stateStorage: NewInMemoryStorage(),
		stateTimeout: 10 * time.Minute,
	}

	// Initialize Google OIDC provider
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		googleProvider, err := NewGoogleOIDCProvider(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google provider: %w", err)
		}
		mgr.RegisterProvider(googleProvider)
	}

	return mgr, nil
}

// RegisterProvider registers a new authentication provider
func (m *Manager) RegisterProvider(provider Provider) {
	m.providers[provider.GetName()] = provider
}

// Enabled reports whether a provider was configured.
func (m *Manager) Enabled(providerName string) bool {
	_, exists := m.providers[providerName]
	return exists
}

// GetAuthURL generates an authorization URL with fresh state and nonce
func (m *Manager) GetAuthURL(providerName string) (string, error) {
	provider, exists := m.providers[providerName]
	if !exists {
		return "", ErrProviderNotFound
	}

	state, err := GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	nonce, err := GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	expiresAt := time.Now().Add(m.stateTimeout)
	if err := m.stateStorage.SaveState(state, nonce, expiresAt); err != nil {
		return "", fmt.Errorf("failed to save state: %w", err)
	}

	return provider.GetAuthURL(state, nonce), nil
}

// HandleCallback validates the callback state and returns the verified
// id_token together with the nonce it is bound to.
func (m *Manager) HandleCallback(ctx context.Context, providerName, code, state string) (string, string, error) {
	provider, exists := m.providers[providerName]
	if !exists {
		return "", "", ErrProviderNotFound
	}

	nonce, err := m.stateStorage.ConsumeState(state)
	if err != nil {
		return "", "", fmt.Errorf("invalid state: %w", err)
	}

	rawIDToken, err := provider.HandleCallback(ctx, code, nonce)
	if err != nil {
		return "", "", fmt.Errorf("callback failed: %w", err)
	}

	return rawIDToken, nonce, nil
}

// Cleanup cleans up storage resources
func (m *Manager) Cleanup() {
	m.stateStorage.Cleanup()
}
