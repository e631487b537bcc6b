// Package tokens validates provider-issued access tokens locally, without a
// round trip to the provider. The provider signs with HS256 and shares the
// secret with this service.
package tokens

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrExpired reports that a token's exp claim is in the past. Callers decide
// whether that means "refresh" or "reject".
var ErrExpired = jwt.ErrTokenExpired

// Claims is the provider's access token payload. Subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Verifier checks access tokens against the shared JWT secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a token. Expired tokens return ErrExpired;
// anything else wrong with the token returns a wrapped parse error.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	return claims, nil
}
