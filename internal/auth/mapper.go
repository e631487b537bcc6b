package auth

import "himood/pkg/identity"

// mapUser converts the provider's user record into the app's view of it.
// Unknown metadata shapes degrade to empty fields instead of failing.
func mapUser(w *identity.User) User {
	fullName := ""
	if raw, ok := w.UserMetadata["full_name"]; ok {
		if s, ok := raw.(string); ok {
			fullName = s
		}
	}

	return User{
		ID:            w.ID,
		Email:         w.Email,
		FullName:      fullName,
		CreatedAt:     w.CreatedAt,
		EmailVerified: w.EmailConfirmedAt != "" || w.ConfirmedAt != "",
	}
}

// mapSession converts a provider session payload. The caller must have
// checked that the payload carries a user. A missing expiry stays 0, which
// downstream code reads as already expired.
func mapSession(w *identity.AuthResponse) Session {
	return Session{
		User:         mapUser(w.User),
		AccessToken:  w.AccessToken,
		RefreshToken: w.RefreshToken,
		ExpiresAt:    w.ExpiresAt,
	}
}
