package auth

import (
	"github.com/gin-gonic/gin"

	"assistant/controllers"
)

// RegisterPublic registers the form routes: /login/, /register/, /logout/
func RegisterPublic(r *gin.Engine, a *controllers.Auth) {
	r.GET("/login/", a.LoginPage)
	r.POST("/login/", a.Login)
	r.GET("/register/", a.RegisterPage)
	r.POST("/register/", a.Register)
	r.POST("/logout/", a.Logout)
}

// RegisterProtected registers API routes that need a signed-in user
func RegisterProtected(g *gin.RouterGroup) {
	g.GET("/me/", controllers.Me())
}
