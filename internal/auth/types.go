// Package auth is the only boundary between the app and the identity
// provider. It normalizes provider responses into the app's own user and
// session types and collapses the provider's free-text failures into a
// closed set of categories with localized messages.
package auth

// ErrorType is the closed set of failure categories the boundary can
// surface. Handlers and the UI switch on these values, never on provider
// message text.
type ErrorType string

const (
	InvalidCredentials ErrorType = "INVALID_CREDENTIALS"
	UserAlreadyExists  ErrorType = "USER_ALREADY_EXISTS"
	EmailNotVerified   ErrorType = "EMAIL_NOT_VERIFIED"
	WeakPassword       ErrorType = "WEAK_PASSWORD"
	NetworkError       ErrorType = "NETWORK_ERROR"
	UnknownError       ErrorType = "UNKNOWN_ERROR"
	SessionExpired     ErrorType = "SESSION_EXPIRED"
	InvalidToken       ErrorType = "INVALID_TOKEN"
)

// User is the app's view of an account. EmailVerified is true only when the
// provider recorded a confirmation timestamp for the address.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name,omitempty"`
	CreatedAt     string `json:"created_at"`
	EmailVerified bool   `json:"email_verified"`
}

// Session carries the provider tokens alongside the user. ExpiresAt is unix
// seconds; 0 means the provider did not report an expiry, and callers treat
// such a session as already expired.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Error is the single failure shape the rest of the app sees. Message always
// comes from the locale catalogs; Details keeps the raw provider text for
// diagnostics and is never rendered to users.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Type) + ": " + e.Message
}

// Is matches errors by failure category, so errors.Is works across locales.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == other.Type
}

// Result is the outcome union every write operation returns: Data on
// success, Error on failure, never both.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Empty is the payload for operations that return no data.
type Empty struct{}

func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: &data}
}

func Fail[T any](err *Error) Result[T] {
	return Result[T]{Success: false, Error: err}
}
