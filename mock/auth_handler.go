package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

type SignupRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data"`
}

type PasswordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshGrantRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type IDTokenGrantRequest struct {
	Provider string `json:"provider"`
	IDToken  string `json:"id_token"`
	Nonce    string `json:"nonce"`
}

type UpdateUserRequest struct {
	Password string `json:"password"`
}

type UserResponse struct {
	ID               string         `json:"id"`
	Aud              string         `json:"aud"`
	Email            string         `json:"email"`
	EmailConfirmedAt string         `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata"`
	CreatedAt        string         `json:"created_at"`
}

type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

func userResponse(u *MockUser) UserResponse {
	meta := map[string]any{}
	if u.FullName != "" {
		meta["full_name"] = u.FullName
	}
	return UserResponse{
		ID:               u.ID,
		Aud:              "authenticated",
		Email:            u.Email,
		EmailConfirmedAt: u.EmailConfirmedAt,
		UserMetadata:     meta,
		CreatedAt:        u.CreatedAt,
	}
}

// The two error body shapes GoTrue actually uses.

func grantError(w http.ResponseWriter, status int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error":             "invalid_grant",
		"error_description": description,
	})
}

func msgError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code": status,
		"msg":  msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// simulateLatency keeps callers honest about timeouts.
func simulateLatency() {
	delay := 20 + rand.Intn(31) // 20 to 50ms
	time.Sleep(time.Duration(delay) * time.Millisecond)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func (s *UserStore) tokenResponse(w http.ResponseWriter, u *MockUser) {
	accessToken, expiresAt, err := s.mintAccessToken(u)
	if err != nil {
		msgError(w, http.StatusInternalServerError, "failed to mint token")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		ExpiresIn:    tokenLifetime,
		ExpiresAt:    expiresAt,
		RefreshToken: s.issueRefreshToken(u.Email),
		User:         userResponse(u),
	})
}

func (s *UserStore) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	simulateLatency()

	var req SignupRequest
	json.NewDecoder(r.Body).Decode(&req)

	if len(req.Password) < 6 {
		msgError(w, http.StatusUnprocessableEntity, "Password should be at least 6 characters")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[req.Email]; exists {
		msgError(w, http.StatusUnprocessableEntity, "User already registered")
		return
	}

	fullName, _ := req.Data["full_name"].(string)
	u := s.createUser(req.Email, req.Password, fullName)

	if !s.autoConfirm {
		// Confirmation pending: GoTrue returns the bare user, no session.
		writeJSON(w, http.StatusOK, userResponse(u))
		return
	}

	s.tokenResponse(w, u)
}

func (s *UserStore) TokenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	simulateLatency()

	switch r.URL.Query().Get("grant_type") {
	case "password":
		s.passwordGrant(w, r)
	case "refresh_token":
		s.refreshGrant(w, r)
	case "id_token":
		s.idTokenGrant(w, r)
	default:
		grantError(w, http.StatusBadRequest, "unsupported_grant_type")
	}
}

func (s *UserStore) passwordGrant(w http.ResponseWriter, r *http.Request) {
	var req PasswordGrantRequest
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[req.Email]
	if !exists || u.Password != req.Password {
		grantError(w, http.StatusBadRequest, "Invalid login credentials")
		return
	}
	if u.EmailConfirmedAt == "" {
		grantError(w, http.StatusBadRequest, "Email not confirmed")
		return
	}

	s.tokenResponse(w, u)
}

func (s *UserStore) refreshGrant(w http.ResponseWriter, r *http.Request) {
	var req RefreshGrantRequest
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.refresh[req.RefreshToken]
	if !ok {
		grantError(w, http.StatusBadRequest, "Invalid Refresh Token: Refresh Token Not Found")
		return
	}

	// Rotation: the old token is dead the moment it is used.
	delete(s.refresh, req.RefreshToken)

	u, exists := s.users[email]
	if !exists {
		grantError(w, http.StatusBadRequest, "Invalid Refresh Token: Refresh Token Not Found")
		return
	}

	s.tokenResponse(w, u)
}

// idTokenGrant trusts any structurally valid JWT and reads its email claim.
// Signature checks belong to the real provider, not a local mock.
func (s *UserStore) idTokenGrant(w http.ResponseWriter, r *http.Request) {
	var req IDTokenGrantRequest
	json.NewDecoder(r.Body).Decode(&req)

	email := emailFromUnverifiedJWT(req.IDToken)
	if email == "" {
		grantError(w, http.StatusBadRequest, "Invalid id_token")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[email]
	if !exists {
		u = s.createUser(email, "", "")
		u.EmailConfirmedAt = u.CreatedAt
	}

	s.tokenResponse(w, u)
}

func (s *UserStore) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	simulateLatency()

	email, ok := s.parseAccessToken(bearerToken(r))
	if !ok {
		msgError(w, http.StatusUnauthorized, "Invalid token: token is expired")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for token, owner := range s.refresh {
		if owner == email {
			delete(s.refresh, token)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *UserStore) RecoverHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	simulateLatency()

	// Same response whether or not the account exists.
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *UserStore) UserHandler(w http.ResponseWriter, r *http.Request) {
	simulateLatency()

	email, ok := s.parseAccessToken(bearerToken(r))
	if !ok {
		msgError(w, http.StatusUnauthorized, "Invalid token: token is expired")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[email]
	if !exists {
		msgError(w, http.StatusNotFound, "User not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, userResponse(u))
	case http.MethodPut:
		var req UpdateUserRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Password != "" {
			if len(req.Password) < 6 {
				msgError(w, http.StatusUnprocessableEntity, "Password should be at least 6 characters")
				return
			}
			u.Password = req.Password
		}
		writeJSON(w, http.StatusOK, userResponse(u))
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
