package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"himood/internal/auth/i18n"
	"himood/internal/session"
	"himood/pkg/logger"
	"himood/pkg/oauth2"
	"himood/pkg/tokens"
)

type Handler struct {
	service      *Service
	social       *oauth2.Manager
	verifier     *tokens.Verifier
	cookieSecure bool
	logger       logger.Client
}

func NewHandler(service *Service, social *oauth2.Manager, verifier *tokens.Verifier, cookieSecure bool, logger logger.Client) *Handler {
	return &Handler{
		service:      service,
		social:       social,
		verifier:     verifier,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/auth/v1")
	v1.Use(LocaleMiddleware())

	v1.POST("/signup", h.SignUpHandler)
	v1.POST("/login", h.SignInHandler)
	v1.POST("/logout", h.SignOutHandler)
	v1.POST("/recover", h.RecoverHandler)
	v1.POST("/refresh", h.RefreshHandler)
	v1.PUT("/password", h.RequireSession(), h.UpdatePasswordHandler)
	v1.GET("/me", h.MeHandler)
	v1.GET("/session", h.SessionHandler)

	if h.social != nil && h.social.Enabled("google") {
		v1.GET("/login/google", h.GoogleAuthHandler)
		v1.GET("/callback/google", h.GoogleCallbackHandler)
	}
}

// LocaleMiddleware negotiates the response language from Accept-Language
// and stores the matched catalog on the request context.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cat := i18n.Match(c.GetHeader("Accept-Language"))
		c.Request = c.Request.WithContext(i18n.NewContext(c.Request.Context(), cat))
		c.Next()
	}
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RecoverRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// SignUpHandler godoc
// @Summary      Register a new account
// @Description  Creates the account at the identity provider and starts a session when the signup is auto-confirmed
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignUpRequest true "Registration data"
// @Success      200 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Router       /auth/v1/signup [post]
func (h *Handler) SignUpHandler(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res := h.service.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	h.renderSession(c, res)
}

// SignInHandler godoc
// @Summary      Sign in with email and password
// @Description  Authenticates against the identity provider and sets the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Credentials"
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} map[string]interface{}
// @Router       /auth/v1/login [post]
func (h *Handler) SignInHandler(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res := h.service.SignIn(c.Request.Context(), req.Email, req.Password)
	h.renderSession(c, res)
}

// SignOutHandler godoc
// @Summary      Sign out
// @Description  Revokes the provider session and clears the session cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /auth/v1/logout [post]
func (h *Handler) SignOutHandler(c *gin.Context) {
	ctx := c.Request.Context()

	res := Ok(Empty{})
	if id, ok := session.FromRequest(c); ok {
		if sess := h.service.CurrentSession(ctx, id); sess != nil {
			res = h.service.SignOut(ctx, sess.AccessToken)
		}
		if err := h.service.DeleteSession(ctx, id); err != nil {
			h.logger.Warn("failed to delete session record", logger.Field{Key: "error", Value: err.Error()})
		}
	}

	// The cookie goes regardless of the provider outcome.
	session.ClearCookie(c, h.cookieSecure)
	render(c, res)
}

// RecoverHandler godoc
// @Summary      Request a password reset email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RecoverRequest true "Account email"
// @Success      200 {object} map[string]interface{}
// @Router       /auth/v1/recover [post]
func (h *Handler) RecoverHandler(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res := h.service.RequestPasswordReset(c.Request.Context(), req.Email)
	render(c, res)
}

// RefreshHandler rotates the provider tokens behind the current session
// cookie. The cookie ID itself survives the rotation.
func (h *Handler) RefreshHandler(c *gin.Context) {
	ctx := c.Request.Context()
	cat := i18n.FromContext(ctx)

	id, ok := session.FromRequest(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Fail[Session](ClassifyWith(cat, SessionExpired, "no session cookie")))
		return
	}

	sess := h.service.CurrentSession(ctx, id)
	if sess == nil || sess.RefreshToken == "" {
		session.ClearCookie(c, h.cookieSecure)
		c.JSON(http.StatusUnauthorized, Fail[Session](ClassifyWith(cat, SessionExpired, "no session to refresh")))
		return
	}

	res := h.service.Refresh(ctx, sess.RefreshToken)
	if !res.Success {
		session.ClearCookie(c, h.cookieSecure)
		render(c, res)
		return
	}

	if err := h.service.ReplaceSession(ctx, id, *res.Data); err != nil {
		h.storeFailure(c, err)
		return
	}
	session.SetCookie(c, id, h.service.SessionMaxAge(*res.Data), h.cookieSecure)
	c.JSON(http.StatusOK, res)
}

// UpdatePasswordHandler godoc
// @Summary      Set a new password
// @Description  Updates the password for the signed-in account, typically reached from a recovery link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body UpdatePasswordRequest true "New password"
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} map[string]interface{}
// @Router       /auth/v1/password [put]
func (h *Handler) UpdatePasswordHandler(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	sess := SessionFrom(c)
	if sess == nil {
		cat := i18n.FromContext(c.Request.Context())
		c.JSON(http.StatusUnauthorized, Fail[Empty](ClassifyWith(cat, SessionExpired, "no session on request")))
		return
	}

	res := h.service.UpdatePassword(c.Request.Context(), sess.AccessToken, req.Password)
	render(c, res)
}

// MeHandler godoc
// @Summary      Current user
// @Description  Returns the signed-in user, or null when nobody is signed in
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /auth/v1/me [get]
func (h *Handler) MeHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var user *User
	if id, ok := session.FromRequest(c); ok {
		if sess := h.service.CurrentSession(ctx, id); sess != nil {
			user = h.service.CurrentUser(ctx, sess.AccessToken)
		}
	}

	// Signed out is a normal state, not an error.
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SessionHandler godoc
// @Summary      Current session
// @Description  Returns the stored session, or null when nobody is signed in
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /auth/v1/session [get]
func (h *Handler) SessionHandler(c *gin.Context) {
	var sess *Session
	if id, ok := session.FromRequest(c); ok {
		sess = h.service.CurrentSession(c.Request.Context(), id)
	}

	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// GoogleAuthHandler redirects the browser into Google's consent flow.
func (h *Handler) GoogleAuthHandler(c *gin.Context) {
	authURL, err := h.social.GetAuthURL("google")
	if err != nil {
		h.logger.Error("failed to build auth url", logger.Field{Key: "error", Value: err.Error()})
		cat := i18n.FromContext(c.Request.Context())
		c.JSON(http.StatusInternalServerError, Fail[Empty](ClassifyWith(cat, UnknownError, err.Error())))
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallbackHandler finishes the consent flow: the verified id_token is
// exchanged at the identity provider for a first-party session.
func (h *Handler) GoogleCallbackHandler(c *gin.Context) {
	ctx := c.Request.Context()
	cat := i18n.FromContext(ctx)

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, Fail[Session](ClassifyWith(cat, UnknownError, "missing code or state")))
		return
	}

	idToken, nonce, err := h.social.HandleCallback(ctx, "google", code, state)
	if err != nil {
		h.logger.Warn("google callback rejected", logger.Field{Key: "error", Value: err.Error()})
		c.JSON(http.StatusUnauthorized, Fail[Session](ClassifyWith(cat, InvalidToken, err.Error())))
		return
	}

	res := h.service.SignInWithIDToken(ctx, "google", idToken, nonce)
	h.renderSession(c, res)
}

// renderSession renders a session result, creating the cookie transport for
// successful sign-ins.
func (h *Handler) renderSession(c *gin.Context, res Result[Session]) {
	if !res.Success {
		render(c, res)
		return
	}

	id, err := h.service.SaveSession(c.Request.Context(), *res.Data)
	if err != nil {
		h.storeFailure(c, err)
		return
	}

	session.SetCookie(c, id, h.service.SessionMaxAge(*res.Data), h.cookieSecure)
	c.JSON(http.StatusOK, res)
}

func (h *Handler) storeFailure(c *gin.Context, err error) {
	h.logger.Error("failed to persist session", logger.Field{Key: "error", Value: err.Error()})
	cat := i18n.FromContext(c.Request.Context())
	c.JSON(http.StatusInternalServerError, Fail[Session](ClassifyWith(cat, UnknownError, "session store unavailable")))
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	cat := i18n.FromContext(c.Request.Context())
	c.JSON(http.StatusBadRequest, Fail[Empty](ClassifyWith(cat, UnknownError, err.Error())))
}

func render[T any](c *gin.Context, res Result[T]) {
	if res.Success {
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(statusFor(res.Error.Type), res)
}

// statusFor maps failure categories onto HTTP status codes.
func statusFor(t ErrorType) int {
	switch t {
	case InvalidCredentials, InvalidToken, SessionExpired:
		return http.StatusUnauthorized
	case EmailNotVerified:
		return http.StatusForbidden
	case UserAlreadyExists:
		return http.StatusConflict
	case WeakPassword:
		return http.StatusUnprocessableEntity
	case NetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
