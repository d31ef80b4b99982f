package ui

import (
	"github.com/gin-gonic/gin"

	"assistant/controllers"
	"assistant/middleware"
)

// Register registers the UI shell
func Register(r *gin.Engine) {
	r.GET("/", middleware.RequirePageUser(), controllers.Index())
}
