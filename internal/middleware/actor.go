package middleware

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"prodtrack/internal/auth"
	"prodtrack/internal/models"
	"prodtrack/internal/tracking"
)

const (
	SessionUserID = "user_id"
	SessionRole   = "role"

	actorKey = "actor"
)

// UserFinder is the slice of store.Users the resolver needs.
type UserFinder interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
}

// InjectActor resolves the caller from a bearer token or the session cookie
// and stores a tracking.Actor on the context. The role is always re-read from
// the user row so role changes apply immediately. Anonymous requests get the
// zero Actor.
func InjectActor(users UserFinder, tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		var actor tracking.Actor

		if userID := callerID(c, tokens); userID != "" {
			if u, err := users.FindUser(c.Request.Context(), userID); err == nil {
				actor = tracking.Actor{UserID: u.ID, Role: u.Role}
				c.Set("user_id", u.ID)
			}
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

func callerID(c *gin.Context, tokens *auth.Tokens) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && tokens != nil {
			if claims, err := tokens.Parse(strings.TrimSpace(parts[1])); err == nil {
				return claims.UserID
			}
		}
		return ""
	}

	sess := sessions.Default(c)
	if id, ok := sess.Get(SessionUserID).(string); ok {
		return id
	}
	return ""
}

// GetActor returns the actor stored by InjectActor, or the zero Actor.
func GetActor(c *gin.Context) tracking.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(tracking.Actor); ok {
			return a
		}
	}
	return tracking.Actor{}
}
