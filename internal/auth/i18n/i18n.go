// Package i18n holds the fixed user-facing message catalogs for the auth
// boundary. Catalogs are keyed by the string values of the failure categories
// and every locale must define all of them.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// Catalog holds the user-facing messages for one locale.
type Catalog struct {
	locale   string
	tag      language.Tag
	messages map[string]string
}

func (c *Catalog) Locale() string {
	return c.locale
}

// Message returns the localized text for a message key. The boolean reports
// whether the key is known to this catalog.
func (c *Catalog) Message(key string) (string, bool) {
	msg, ok := c.messages[key]
	return msg, ok
}

// Keys returns every message key the catalog defines.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.messages))
	for k := range c.messages {
		keys = append(keys, k)
	}
	return keys
}

// supported lists catalogs in preference order; the first entry is the
// default and the fallback for unmatched languages.
var supported = []*Catalog{spanish, american}

var matcher = language.NewMatcher(supportedTags())

func supportedTags() []language.Tag {
	tags := make([]language.Tag, len(supported))
	for i, c := range supported {
		tags[i] = c.tag
	}
	return tags
}

// Default returns the catalog for the app's primary language.
func Default() *Catalog {
	return supported[0]
}

// Get returns the catalog for an exact locale name, falling back to the
// default catalog when the locale is unknown.
func Get(locale string) *Catalog {
	for _, c := range supported {
		if c.locale == locale {
			return c
		}
	}
	return Default()
}

// Match negotiates the best catalog for an Accept-Language header value.
// Empty or unparseable headers resolve to the default catalog.
func Match(acceptLanguage string) *Catalog {
	if acceptLanguage == "" {
		return Default()
	}
	_, index := language.MatchStrings(matcher, acceptLanguage)
	return supported[index]
}

type ctxKey struct{}

// NewContext returns a context carrying the catalog.
func NewContext(ctx context.Context, cat *Catalog) context.Context {
	return context.WithValue(ctx, ctxKey{}, cat)
}

// FromContext returns the catalog stored in ctx, or the default catalog.
func FromContext(ctx context.Context) *Catalog {
	if cat, ok := ctx.Value(ctxKey{}).(*Catalog); ok {
		return cat
	}
	return Default()
}
