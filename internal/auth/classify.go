package auth

import (
	"strings"

	"himood/internal/auth/i18n"
)

// pattern binds a provider message substring to a failure category. Tables
// are ordered and the first match wins. Matching is case sensitive because
// the provider emits stable message literals.
type pattern struct {
	substr  string
	errType ErrorType
}

// Per-operation pattern tables. This file is the only place provider message
// text may appear; adding a recognized failure means adding a row here.
var (
	signInPatterns = []pattern{
		{"Invalid login credentials", InvalidCredentials},
		{"Email not confirmed", EmailNotVerified},
	}

	// "User already registered" must stay ahead of the broad "Password" row.
	signUpPatterns = []pattern{
		{"User already registered", UserAlreadyExists},
		{"Password", WeakPassword},
	}

	refreshPatterns = []pattern{
		{"Refresh Token", SessionExpired},
		{"token", SessionExpired},
	}

	updatePasswordPatterns = []pattern{
		{"token", InvalidToken},
	}
)

// matchPattern scans a table in order and returns the first category whose
// substring occurs in the provider message, or UnknownError.
func matchPattern(patterns []pattern, providerMessage string) ErrorType {
	for _, p := range patterns {
		if strings.Contains(providerMessage, p.substr) {
			return p.errType
		}
	}
	return UnknownError
}

// Classify builds the user-facing Error for a failure category using the
// default locale. Raw provider text lands in Details untouched.
func Classify(t ErrorType, details string) *Error {
	return ClassifyWith(i18n.Default(), t, details)
}

// ClassifyWith is Classify against a specific locale catalog. A category
// missing from the catalog collapses to UnknownError so the result always
// renders.
func ClassifyWith(cat *i18n.Catalog, t ErrorType, details string) *Error {
	msg, ok := cat.Message(string(t))
	if !ok {
		t = UnknownError
		msg, _ = cat.Message(string(UnknownError))
	}
	return &Error{Type: t, Message: msg, Details: details}
}
