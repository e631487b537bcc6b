package oauth2

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"himood/cfg"
)

// fakeProvider records the state and nonce it was asked to embed.
type fakeProvider struct {
	lastState string
	lastNonce string
	idToken   string
}

func (f *fakeProvider) GetName() string { return "fake" }

func (f *fakeProvider) GetAuthURL(state string, nonce string) string {
	f.lastState = state
	f.lastNonce = nonce
	return "https://idp.example.com/auth?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) HandleCallback(_ context.Context, code string, nonce string) (string, error) {
	f.lastNonce = nonce
	return f.idToken, nil
}

func newTestManager() (*Manager, *fakeProvider) {
	mgr := &Manager{
		providers:    make(map[string]Provider),
		stateStorage: NewInMemoryStorage(),
		stateTimeout: 10 * time.Minute,
	}
	p := &fakeProvider{idToken: "raw-id-token"}
	mgr.RegisterProvider(p)
	return mgr, p
}

func TestManager_GetAuthURL(t *testing.T) {
	t.Run("embeds fresh state and nonce", func(t *testing.T) {
		mgr, p := newTestManager()
		defer mgr.Cleanup()

		authURL, err := mgr.GetAuthURL("fake")

		require.NoError(t, err)
		assert.Contains(t, authURL, url.QueryEscape(p.lastState))
		assert.NotEmpty(t, p.lastState)
		assert.NotEmpty(t, p.lastNonce)
		assert.NotEqual(t, p.lastState, p.lastNonce)
	})

	t.Run("unknown provider", func(t *testing.T) {
		mgr, _ := newTestManager()
		defer mgr.Cleanup()

		_, err := mgr.GetAuthURL("github")
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})
}

func TestManager_HandleCallback(t *testing.T) {
	t.Run("full round trip", func(t *testing.T) {
		// Arrange: start a flow so a state exists
		mgr, p := newTestManager()
		defer mgr.Cleanup()

		_, err := mgr.GetAuthURL("fake")
		require.NoError(t, err)
		issuedState := p.lastState
		issuedNonce := p.lastNonce

		// Act
		idToken, nonce, err := mgr.HandleCallback(context.Background(), "fake", "auth-code", issuedState)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "raw-id-token", idToken)
		assert.Equal(t, issuedNonce, nonce)
	})

	t.Run("state cannot be replayed", func(t *testing.T) {
		mgr, p := newTestManager()
		defer mgr.Cleanup()

		_, err := mgr.GetAuthURL("fake")
		require.NoError(t, err)

		_, _, err = mgr.HandleCallback(context.Background(), "fake", "auth-code", p.lastState)
		require.NoError(t, err)

		_, _, err = mgr.HandleCallback(context.Background(), "fake", "auth-code", p.lastState)
		assert.ErrorIs(t, err, ErrStateNotFound)
	})

	t.Run("forged state is rejected", func(t *testing.T) {
		mgr, _ := newTestManager()
		defer mgr.Cleanup()

		_, _, err := mgr.HandleCallback(context.Background(), "fake", "auth-code", "made-up")
		assert.ErrorIs(t, err, ErrStateNotFound)
	})

	t.Run("unknown provider", func(t *testing.T) {
		mgr, _ := newTestManager()
		defer mgr.Cleanup()

		_, _, err := mgr.HandleCallback(context.Background(), "github", "auth-code", "state")
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})
}

func TestManager_Enabled(t *testing.T) {
	mgr, _ := newTestManager()
	defer mgr.Cleanup()

	assert.True(t, mgr.Enabled("fake"))
	assert.False(t, mgr.Enabled("github"))
}

func TestNewManager_NoProvidersConfigured(t *testing.T) {
	mgr, err := NewManager(context.Background(), &cfg.OAuth2Config{})

	require.NoError(t, err)
	defer mgr.Cleanup()
	assert.False(t, mgr.Enabled("google"))
}
