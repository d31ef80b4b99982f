package chat

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"assistant/controllers"
	"assistant/middleware"
	"assistant/pkg/repository"
	"assistant/pkg/services"
)

// Register registers chat API routes on a group that already requires a user
func Register(g *gin.RouterGroup, chats *repository.ChatRepo, messages *repository.MessageRepo, svc *services.ChatService, limiter *middleware.RateLimiter, log *zap.Logger) {
	g.GET("/chats/", controllers.ListChats(chats, log))
	g.GET("/chats/:id/", controllers.GetChat(chats, log))
	g.GET("/messages/", controllers.ListMessages(chats, messages, log))
	g.POST("/chat/", limiter.Handler(), controllers.SendMessage(svc, log))
}
