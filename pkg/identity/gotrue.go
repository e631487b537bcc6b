package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"himood/pkg/logger"
)

// GoTrueClient talks to a GoTrue-compatible auth server (Supabase Auth).
type GoTrueClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     logger.Client
}

func NewGoTrueClient(httpClient *http.Client, baseURL, apiKey string, logger logger.Client) *GoTrueClient {
	return &GoTrueClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

type updateUserRequest struct {
	Password string `json:"password,omitempty"`
}

// apiErrorBody covers the error shapes GoTrue emits depending on endpoint and
// version: {"error","error_description"}, {"msg"} and {"message"}.
type apiErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (c *GoTrueClient) SignUp(ctx context.Context, email, password, fullName string) (*AuthResponse, error) {
	body := signUpRequest{Email: email, Password: password}
	if fullName != "" {
		body.Data = map[string]any{"full_name": fullName}
	}

	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GoTrueClient) SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", passwordGrant{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GoTrueClient) SignInWithIDToken(ctx context.Context, grant IDTokenGrant) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=id_token", "", grant, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GoTrueClient) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", refreshGrant{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GoTrueClient) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *GoTrueClient) Recover(ctx context.Context, email, redirectTo string) error {
	path := "/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return c.do(ctx, http.MethodPost, path, "", recoverRequest{Email: email}, nil)
}

func (c *GoTrueClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GoTrueClient) UpdatePassword(ctx context.Context, accessToken, newPassword string) (*User, error) {
	var out User
	err := c.do(ctx, http.MethodPut, "/user", accessToken, updateUserRequest{Password: newPassword}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GoTrueClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *GoTrueClient) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		c.logger.Error("failed to build identity request",
			logger.Field{Key: "path", Value: path},
			logger.Field{Key: "error", Value: err.Error()},
		)
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("external api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode identity response: %w", err)
	}
	return nil
}

func (c *GoTrueClient) apiError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	var body apiErrorBody
	message := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		message = firstNonEmpty(body.ErrorDescription, body.Msg, body.Message, body.Error)
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}

	c.logger.Debug("identity api rejected request",
		logger.Field{Key: "status", Value: resp.StatusCode},
		logger.Field{Key: "message", Value: message},
	)

	return &APIError{Status: resp.StatusCode, Message: message}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
