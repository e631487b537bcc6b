package main

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Matches the default secret of a local GoTrue container.
const defaultJWTSecret = "super-secret-jwt-token-with-at-least-32-characters-long"

const tokenLifetime = 3600 // seconds

type MockUser struct {
	ID               string
	Email            string
	Password         string
	FullName         string
	EmailConfirmedAt string
	CreatedAt        string
}

// UserStore keeps accounts and refresh tokens in memory. State resets on
// restart, which is exactly what local testing wants.
type UserStore struct {
	mu          sync.Mutex
	users       map[string]*MockUser // keyed by email
	refresh     map[string]string    // refresh token -> email
	autoConfirm bool
	jwtSecret   []byte
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:       make(map[string]*MockUser),
		refresh:     make(map[string]string),
		autoConfirm: os.Getenv("MOCK_AUTOCONFIRM") != "false",
		jwtSecret:   []byte(jwtSecret()),
	}
}

func jwtSecret() string {
	if s := os.Getenv("GOTRUE_JWT_SECRET"); s != "" {
		return s
	}
	return defaultJWTSecret
}

func (s *UserStore) createUser(email, password, fullName string) *MockUser {
	now := time.Now().UTC().Format(time.RFC3339)
	u := &MockUser{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  password,
		FullName:  fullName,
		CreatedAt: now,
	}
	if s.autoConfirm {
		u.EmailConfirmedAt = now
	}
	s.users[email] = u
	return u
}

// mintAccessToken issues an HS256 JWT shaped like GoTrue's access tokens.
func (s *UserStore) mintAccessToken(u *MockUser) (string, int64, error) {
	expiresAt := time.Now().Add(tokenLifetime * time.Second).Unix()
	claims := jwt.MapClaims{
		"sub":        u.ID,
		"aud":        "authenticated",
		"email":      u.Email,
		"role":       "authenticated",
		"session_id": uuid.NewString(),
		"exp":        expiresAt,
		"iat":        time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	return token, expiresAt, err
}

// parseAccessToken returns the email claim of a valid, unexpired token.
func (s *UserStore) parseAccessToken(raw string) (string, bool) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", false
	}
	email, _ := claims["email"].(string)
	return email, email != ""
}

func (s *UserStore) issueRefreshToken(email string) string {
	token := uuid.NewString()
	s.refresh[token] = email
	return token
}

// emailFromUnverifiedJWT decodes the payload segment of a JWT without
// checking its signature.
func emailFromUnverifiedJWT(raw string) string {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return ""
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}
	return claims.Email
}
