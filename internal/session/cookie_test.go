package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCookieContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func findCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestSetCookie(t *testing.T) {
	c, w := newCookieContext(t)

	SetCookie(c, "abc123", 3600, true)

	cookie := findCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "abc123", cookie.Value)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestClearCookie(t *testing.T) {
	c, w := newCookieContext(t)

	ClearCookie(c, false)

	cookie := findCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestFromRequest(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		c, _ := newCookieContext(t)
		c.Request.AddCookie(&http.Cookie{Name: CookieName, Value: "abc123"})

		id, ok := FromRequest(c)

		assert.True(t, ok)
		assert.Equal(t, "abc123", id)
	})

	t.Run("absent", func(t *testing.T) {
		c, _ := newCookieContext(t)

		_, ok := FromRequest(c)

		assert.False(t, ok)
	})

	t.Run("empty value counts as absent", func(t *testing.T) {
		c, _ := newCookieContext(t)
		c.Request.AddCookie(&http.Cookie{Name: CookieName, Value: ""})

		_, ok := FromRequest(c)

		assert.False(t, ok)
	})
}
