package i18n

import "golang.org/x/text/language"

var american = &Catalog{
	locale: "en-US",
	tag:    language.AmericanEnglish,
	messages: map[string]string{
		"INVALID_CREDENTIALS": "Incorrect email or password",
		"USER_ALREADY_EXISTS": "This email is already registered",
		"EMAIL_NOT_VERIFIED":  "Please verify your email before signing in",
		"WEAK_PASSWORD":       "Password must be at least 6 characters",
		"NETWORK_ERROR":       "Connection error. Check your internet",
		"UNKNOWN_ERROR":       "Something went wrong. Please try again",
		"SESSION_EXPIRED":     "Your session has expired. Please sign in again",
		"INVALID_TOKEN":       "The link is invalid or has expired",
	},
}
