package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"himood/internal/auth/i18n"
	"himood/internal/session"
	"himood/pkg/logger"
	"himood/pkg/tokens"
)

const sessionKey = "auth_session"

// SessionFrom returns the session RequireSession resolved for this request.
func SessionFrom(c *gin.Context) *Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	return nil
}

// RequireSession resolves the cookie session and verifies its access token
// locally, refreshing an expired token in place. Requests without a usable
// session are rejected with 401 before the handler runs.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		cat := i18n.FromContext(ctx)

		id, ok := session.FromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Fail[Empty](ClassifyWith(cat, SessionExpired, "no session cookie")))
			return
		}

		sess := h.service.CurrentSession(ctx, id)
		if sess == nil {
			session.ClearCookie(c, h.cookieSecure)
			c.AbortWithStatusJSON(http.StatusUnauthorized, Fail[Empty](ClassifyWith(cat, SessionExpired, "session not found")))
			return
		}

		if h.verifier != nil {
			if _, err := h.verifier.Verify(sess.AccessToken); err != nil {
				if !errors.Is(err, tokens.ErrExpired) {
					session.ClearCookie(c, h.cookieSecure)
					c.AbortWithStatusJSON(http.StatusUnauthorized, Fail[Empty](ClassifyWith(cat, InvalidToken, err.Error())))
					return
				}

				sess = h.refreshInPlace(c, id, sess)
				if sess == nil {
					return
				}
			}
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// refreshInPlace rotates an expired session's tokens under the same cookie
// ID. On failure the request is aborted and nil returned.
func (h *Handler) refreshInPlace(c *gin.Context, id string, sess *Session) *Session {
	ctx := c.Request.Context()
	cat := i18n.FromContext(ctx)

	if sess.RefreshToken == "" {
		session.ClearCookie(c, h.cookieSecure)
		c.AbortWithStatusJSON(http.StatusUnauthorized, Fail[Empty](ClassifyWith(cat, SessionExpired, "access token expired")))
		return nil
	}

	res := h.service.Refresh(ctx, sess.RefreshToken)
	if !res.Success {
		session.ClearCookie(c, h.cookieSecure)
		c.AbortWithStatusJSON(statusFor(res.Error.Type), Fail[Empty](res.Error))
		return nil
	}

	if err := h.service.ReplaceSession(ctx, id, *res.Data); err != nil {
		// Keep serving on the fresh tokens; the stale record only costs an
		// extra refresh on the next request.
		h.logger.Error("failed to replace refreshed session", logger.Field{Key: "error", Value: err.Error()})
	}
	session.SetCookie(c, id, h.service.SessionMaxAge(*res.Data), h.cookieSecure)

	return res.Data
}
