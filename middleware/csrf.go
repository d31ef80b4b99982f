package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
	CSRFFormField  = "csrfmiddlewaretoken"

	contextCSRFKey = "csrf_token"
)

// CSRF implements the double-submit check: unsafe requests must echo the
// csrftoken cookie in the X-CSRFToken header or the csrfmiddlewaretoken form
// field. Bearer-authenticated requests carry no ambient credentials and skip
// the check. Must run after Session.
func CSRF(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(CSRFCookieName)
		token := cookie
		if token == "" {
			token = newCSRFToken()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CSRFCookieName, token, 365*24*60*60, "/", "", secure, false)
		}
		c.Set(contextCSRFKey, token)

		if safeMethod(c.Request.Method) || authenticatedByBearer(c) {
			c.Next()
			return
		}

		sent := c.GetHeader(CSRFHeaderName)
		if sent == "" {
			sent = c.PostForm(CSRFFormField)
		}
		if cookie == "" || sent == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(sent)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF verification failed."})
			return
		}
		c.Next()
	}
}

// CSRFToken returns the token for the current request, for templates and
// the token endpoint.
func CSRFToken(c *gin.Context) string {
	return c.GetString(contextCSRFKey)
}

func newCSRFToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
