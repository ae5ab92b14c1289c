package handlers

import (
	"errors"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prodtrack/internal/auth"
	"prodtrack/internal/middleware"
	"prodtrack/internal/tracking"
)

type AuthHandler struct {
	users  *tracking.UserManager
	tokens *auth.Tokens
	log    *zap.Logger
}

func NewAuthHandler(users *tracking.UserManager, tokens *auth.Tokens, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{users: users, tokens: tokens, log: log.Named("auth")}
}

type loginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login starts a cookie session.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		h.log.Info("login rejected", zap.String("email", form.Email))
		failLogin(c, err)
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserID, user.ID)
	sess.Set(middleware.SessionRole, string(user.Role))
	if err := sess.Save(); err != nil {
		h.log.Error("session save failed", zap.Error(err))
		InternalError(c, "failed to start session")
		return
	}
	Success(c, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
	Success(c, nil)
}

// failLogin reports rejected credentials as 401 even when the request
// already carries a session for someone else.
func failLogin(c *gin.Context, err error) {
	if errors.Is(err, tracking.ErrBadCredentials) {
		_ = c.Error(err)
		Error(c, 40100, tracking.ErrBadCredentials.Message, gin.H{"kind": tracking.KindUnauthorized})
		return
	}
	fail(c, err)
}

type tokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      interface{} `json:"user"`
}

// Token issues a bearer token for API clients.
func (h *AuthHandler) Token(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		failLogin(c, err)
		return
	}
	token, exp, err := h.tokens.Issue(user)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		InternalError(c, "failed to issue token")
		return
	}
	Success(c, tokenResponse{Token: token, ExpiresAt: exp, User: user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, user)
}
