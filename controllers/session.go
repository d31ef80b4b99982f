package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"assistant/middleware"
)

// Me describes the signed-in user for the frontend.
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := middleware.CurrentUser(c)
		role := ""
		if u.Profile != nil {
			role = u.Profile.Role
		}
		c.JSON(http.StatusOK, gin.H{
			"id":           u.ID,
			"username":     u.Username,
			"is_staff":     u.IsStaff,
			"is_superuser": u.IsSuperuser,
			"role":         role,
		})
	}
}

func CSRFToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"csrfToken": middleware.CSRFToken(c)})
	}
}
