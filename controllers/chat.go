package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"assistant/middleware"
	"assistant/pkg/access"
	"assistant/pkg/repository"
	"assistant/pkg/services"
)

const genericUpstreamError = "The assistant could not answer right now. Please try again."

func ListChats(chats *repository.ChatRepo, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := middleware.CurrentUser(c)
		list, err := chats.ListVisible(c.Request.Context(), u)
		if err != nil {
			log.Error("list chats", zap.Uint("user_id", u.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
			return
		}
		c.JSON(http.StatusOK, toChatList(list))
	}
}

func GetChat(chats *repository.ChatRepo, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := middleware.CurrentUser(c)
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
			return
		}

		chat, err := chats.GetByID(c.Request.Context(), uint(id))
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !access.CanRead(u, chat)) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
			return
		}
		if err != nil {
			log.Error("get chat", zap.Uint64("chat_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
			return
		}

		n, err := chats.CountMessages(c.Request.Context(), chat.ID)
		if err != nil {
			log.Error("count messages", zap.Uint("chat_id", chat.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
			return
		}
		c.JSON(http.StatusOK, toChatJSON(*chat, n))
	}
}

// ListMessages answers with an empty list, never an error, when chat_id is
// missing, malformed, unknown or not readable by the caller.
func ListMessages(chats *repository.ChatRepo, messages *repository.MessageRepo, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		empty := []messageJSON{}
		u := middleware.CurrentUser(c)

		id, err := strconv.ParseUint(c.Query("chat_id"), 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusOK, empty)
			return
		}
		chat, err := chats.GetByID(c.Request.Context(), uint(id))
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Error("load chat for messages", zap.Uint64("chat_id", id), zap.Error(err))
			}
			c.JSON(http.StatusOK, empty)
			return
		}
		if !access.CanRead(u, chat) {
			c.JSON(http.StatusOK, empty)
			return
		}

		list, err := messages.ListForChat(c.Request.Context(), chat.ID)
		if err != nil {
			log.Error("list messages", zap.Uint("chat_id", chat.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			return
		}
		c.JSON(http.StatusOK, toMessageList(list))
	}
}

func SendMessage(chatService *services.ChatService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Message string `json:"message"`
			ChatID  *uint  `json:"chat_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		// chat_id 0 starts a new chat, same as omitting it
		if body.ChatID != nil && *body.ChatID == 0 {
			body.ChatID = nil
		}

		res, err := chatService.Send(c.Request.Context(), middleware.CurrentUser(c), body.Message, body.ChatID)
		if err != nil {
			status, msg := sendErrorResponse(err)
			if status == http.StatusInternalServerError {
				log.Error("send message", zap.Error(err))
			}
			c.JSON(status, gin.H{"error": msg})
			return
		}

		c.JSON(http.StatusOK, gin.H{"response": res.Reply, "chat_id": res.ChatID})
	}
}

func sendErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrChatNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrReadOnly):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrCompletionUnavailable):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, genericUpstreamError
	}
}
