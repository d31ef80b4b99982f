package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"assistant/models"
	"assistant/pkg/repository"
	"assistant/pkg/session"
)

const (
	ContextUserKey    = "current_user"
	ContextSessionKey = "current_session"
	ContextBearerKey  = "auth_bearer"

	SessionCookieName = "sessionid"
)

// Session resolves the caller from the session cookie or an Authorization
// bearer token. Anonymous requests pass through; use RequireAPIUser or
// RequirePageUser to reject them.
func Session(sessions *session.Manager, users *repository.UserRepo, secureCookie bool, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, bearer := bearerToken(c)
		if !bearer {
			raw, _ = c.Cookie(SessionCookieName)
		}
		if raw == "" {
			c.Next()
			return
		}

		s, err := sessions.Parse(c.Request.Context(), raw)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidToken) && !errors.Is(err, session.ErrRevoked) {
				log.Warn("session lookup failed", zap.Error(err))
			}
			if !bearer {
				ClearSessionCookie(c, secureCookie)
			}
			c.Next()
			return
		}

		u, err := users.GetByID(c.Request.Context(), s.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Warn("session user lookup failed", zap.Uint("user_id", s.UserID), zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(ContextUserKey, u)
		c.Set(ContextSessionKey, s)
		c.Set(ContextBearerKey, bearer)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireAPIUser rejects anonymous API calls with 401.
func RequireAPIUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}
		c.Next()
	}
}

// RequirePageUser sends anonymous browsers to the login page.
func RequirePageUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, "/login/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

func authenticatedByBearer(c *gin.Context) bool {
	return c.GetBool(ContextBearerKey)
}

func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
