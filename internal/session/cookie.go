package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie. The value is an opaque store ID; tokens
// never travel in cookies.
const CookieName = "himood_session"

const cookiePath = "/"

// SetCookie attaches the session cookie to the response. HttpOnly always,
// Lax same-site; Secure follows the deployment environment.
func SetCookie(c *gin.Context, id string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, maxAge, cookiePath, "", secure, true)
}

// ClearCookie expires the session cookie immediately.
func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, cookiePath, "", secure, true)
}

// FromRequest extracts the session ID from the request cookie.
func FromRequest(c *gin.Context) (string, bool) {
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}
