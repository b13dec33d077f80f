package middleware

import (
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/constants"
	apierrors "github.com/yukikurage/org-task-api/internal/errors"
	"github.com/yukikurage/org-task-api/internal/services"
)

// ActorResolver turns credentials into the current authorization identity.
type ActorResolver interface {
	UserIDFromAccessToken(raw string) (uint64, error)
	ResolveActor(userID uint64) (*authz.Actor, error)
}

// RequireAuth identifies the caller by bearer token or, failing that, by the
// session cookie, and stores the freshly loaded actor in the context.
func RequireAuth(resolver ActorResolver, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := credentialUserID(c, resolver)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		actor, err := resolver.ResolveActor(userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.Unauthorized(c, "")
			} else {
				log.WithError(err).WithField("user_id", userID).Error("Failed to resolve actor")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		// Store user ID and actor in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

func credentialUserID(c *gin.Context, resolver ActorResolver) (uint64, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return 0, false
		}
		userID, err := resolver.UserIDFromAccessToken(raw)
		if err != nil {
			return 0, false
		}
		return userID, true
	}

	session := sessions.Default(c)
	return toUint64(session.Get(constants.ContextKeyUserID))
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

// GetActor retrieves the actor stored by RequireAuth.
func GetActor(c *gin.Context) (*authz.Actor, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return nil, false
	}
	actor, ok := value.(*authz.Actor)
	return actor, ok && actor != nil
}

func toUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
