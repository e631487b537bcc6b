package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"himood/internal/auth/i18n"
	"himood/internal/session"
	"himood/pkg/identity"
	"himood/pkg/logger"
)

// Service wraps the identity provider behind the app's error contract.
// Writes always return a Result and never panic; reads return nil for any
// failure, because "not signed in" is a state, not an error.
type Service struct {
	provider         identity.Client
	sessions         session.Store
	defaultTTL       time.Duration
	resetRedirectURL string
	logger           logger.Client
}

func NewService(provider identity.Client, sessions session.Store, sessionTTLMinutes int, resetRedirectURL string, logger logger.Client) *Service {
	return &Service{
		provider:         provider,
		sessions:         sessions,
		defaultTTL:       time.Duration(sessionTTLMinutes) * time.Minute,
		resetRedirectURL: resetRedirectURL,
		logger:           logger,
	}
}

// SignIn authenticates with email and password.
func (s *Service) SignIn(ctx context.Context, email, password string) Result[Session] {
	resp, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return Fail[Session](s.classifyErr(ctx, signInPatterns, err))
	}
	if resp.AccessToken == "" || resp.User == nil {
		return Fail[Session](s.missingSession(ctx, "sign-in"))
	}
	return Ok(mapSession(resp))
}

// SignUp registers a new account. Whether the response carries a usable
// session depends on the provider's email confirmation setting; a confirmed
// signup signs the user in directly.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) Result[Session] {
	resp, err := s.provider.SignUp(ctx, email, password, fullName)
	if err != nil {
		return Fail[Session](s.classifyErr(ctx, signUpPatterns, err))
	}
	if resp.AccessToken == "" || resp.User == nil {
		return Fail[Session](s.missingSession(ctx, "sign-up"))
	}
	return Ok(mapSession(resp))
}

// SignInWithIDToken exchanges a verified OIDC id_token from an upstream
// provider (Google) for a first-party session.
func (s *Service) SignInWithIDToken(ctx context.Context, provider, idToken, nonce string) Result[Session] {
	resp, err := s.provider.SignInWithIDToken(ctx, identity.IDTokenGrant{
		Provider: provider,
		IDToken:  idToken,
		Nonce:    nonce,
	})
	if err != nil {
		return Fail[Session](s.classifyErr(ctx, signInPatterns, err))
	}
	if resp.AccessToken == "" || resp.User == nil {
		return Fail[Session](s.missingSession(ctx, "id-token sign-in"))
	}
	return Ok(mapSession(resp))
}

// Refresh exchanges a refresh token for a new provider session. A rejected
// or already consumed refresh token means the session is gone for good.
func (s *Service) Refresh(ctx context.Context, refreshToken string) Result[Session] {
	resp, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return Fail[Session](s.classifyErr(ctx, refreshPatterns, err))
	}
	if resp.AccessToken == "" || resp.User == nil {
		return Fail[Session](s.missingSession(ctx, "refresh"))
	}
	return Ok(mapSession(resp))
}

// SignOut revokes the provider session behind an access token.
func (s *Service) SignOut(ctx context.Context, accessToken string) Result[Empty] {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		return Fail[Empty](s.classifyErr(ctx, nil, err))
	}
	return Ok(Empty{})
}

// RequestPasswordReset asks the provider to mail a recovery link. The
// provider does not reveal whether the address exists, and neither do we.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) Result[Empty] {
	if err := s.provider.Recover(ctx, email, s.resetRedirectURL); err != nil {
		return Fail[Empty](s.classifyErr(ctx, nil, err))
	}
	return Ok(Empty{})
}

// UpdatePassword sets a new password for the account behind the access
// token, typically the short-lived token from a recovery link.
func (s *Service) UpdatePassword(ctx context.Context, accessToken, newPassword string) Result[Empty] {
	if _, err := s.provider.UpdatePassword(ctx, accessToken, newPassword); err != nil {
		return Fail[Empty](s.classifyErr(ctx, updatePasswordPatterns, err))
	}
	return Ok(Empty{})
}

// CurrentUser resolves the account behind an access token, or nil.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) *User {
	if accessToken == "" {
		return nil
	}

	w, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		s.logger.Debug("current user lookup failed", logger.Field{Key: "error", Value: err.Error()})
		return nil
	}
	// A success response with no usable record still reads as signed out.
	if w == nil || w.ID == "" {
		return nil
	}

	u := mapUser(w)
	return &u
}

// CurrentSession resolves the stored session behind a cookie ID. Missing,
// expired and unreadable records all collapse to nil.
func (s *Service) CurrentSession(ctx context.Context, sessionID string) *Session {
	if sessionID == "" {
		return nil
	}

	raw, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.Debug("session lookup failed", logger.Field{Key: "error", Value: err.Error()})
		}
		return nil
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.logger.Error("stored session is unreadable", logger.Field{Key: "error", Value: err.Error()})
		return nil
	}
	return &sess
}

// SaveSession persists a session for cookie transport and returns its ID.
func (s *Service) SaveSession(ctx context.Context, sess Session) (string, error) {
	id, err := session.GenerateID()
	if err != nil {
		return "", err
	}
	if err := s.writeSession(ctx, id, sess); err != nil {
		return "", err
	}
	return id, nil
}

// ReplaceSession overwrites an existing stored session after a refresh, so
// the cookie ID survives the token rotation.
func (s *Service) ReplaceSession(ctx context.Context, sessionID string, sess Session) error {
	return s.writeSession(ctx, sessionID, sess)
}

// DeleteSession drops the stored session on sign-out.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// SessionMaxAge is the cookie lifetime in seconds for a session, matching
// the TTL of its stored record.
func (s *Service) SessionMaxAge(sess Session) int {
	return int(s.sessionTTL(sess).Seconds())
}

func (s *Service) writeSession(ctx context.Context, id string, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.sessions.Save(ctx, id, raw, s.sessionTTL(sess))
}

// sessionTTL follows the access token expiry when the provider reported one.
// Sessions whose token already expired still get the fallback TTL: the
// refresh token inside is what keeps them useful.
func (s *Service) sessionTTL(sess Session) time.Duration {
	if sess.ExpiresAt > 0 {
		if ttl := time.Until(time.Unix(sess.ExpiresAt, 0)); ttl > 0 {
			return ttl
		}
	}
	return s.defaultTTL
}

// classifyErr turns a provider client error into the app Error: transport
// failures become NetworkError, provider rejections go through the
// operation's pattern table. A nil table sends every rejection to
// UnknownError.
func (s *Service) classifyErr(ctx context.Context, patterns []pattern, err error) *Error {
	cat := i18n.FromContext(ctx)

	var apiErr *identity.APIError
	if !errors.As(err, &apiErr) {
		s.logger.Warn("identity transport failure", logger.Field{Key: "error", Value: err.Error()})
		return ClassifyWith(cat, NetworkError, err.Error())
	}

	return ClassifyWith(cat, matchPattern(patterns, apiErr.Message), apiErr.Message)
}

func (s *Service) missingSession(ctx context.Context, op string) *Error {
	s.logger.Warn("provider returned success without a session", logger.Field{Key: "operation", Value: op})
	return ClassifyWith(i18n.FromContext(ctx), UnknownError, "provider returned no session")
}
