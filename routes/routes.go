package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"assistant/controllers"
	"assistant/middleware"
	"assistant/pkg/config"
	"assistant/pkg/repository"
	"assistant/pkg/services"
	"assistant/pkg/session"

	authRoutes "assistant/routes/auth"
	chatRoutes "assistant/routes/chat"
	uiRoutes "assistant/routes/ui"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Sessions *session.Manager
	Gateway  services.CompletionGateway
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", controllers.Health(d.DB))

	users := repository.NewUserRepo(d.DB)
	chats := repository.NewChatRepo(d.DB)
	messages := repository.NewMessageRepo(d.DB)
	chatService := services.NewChatService(chats, messages, d.Gateway, d.Log)
	limiter := middleware.NewRateLimiter(d.Config.RateLimitWindow, d.Config.RateLimitCapacity)

	r.Use(middleware.Session(d.Sessions, users, d.Config.SessionCookieSecure, d.Log))
	r.Use(middleware.CSRF(d.Config.SessionCookieSecure))

	uiRoutes.Register(r)
	authRoutes.RegisterPublic(r, &controllers.Auth{
		Users:        users,
		Sessions:     d.Sessions,
		SecureCookie: d.Config.SessionCookieSecure,
		Log:          d.Log,
	})

	api := r.Group("/api")
	api.GET("/csrf-token/", controllers.CSRFToken())

	protected := api.Group("")
	protected.Use(middleware.RequireAPIUser())
	authRoutes.RegisterProtected(protected)
	chatRoutes.Register(protected, chats, messages, chatService, limiter, d.Log)
}
