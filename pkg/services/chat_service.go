package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"assistant/models"
	"assistant/pkg/access"
	"assistant/pkg/repository"
)

// SendResult is the outcome of one successful round-trip.
type SendResult struct {
	Reply   string
	ChatID  uint
	Created bool
}

type ChatService struct {
	chats    *repository.ChatRepo
	messages *repository.MessageRepo
	gateway  CompletionGateway
	log      *zap.Logger
	slots    *chatSlots
}

// NewChatService wires the round-trip. A nil gateway means the completion API is
// not configured and every Send fails with ErrCompletionUnavailable.
func NewChatService(chats *repository.ChatRepo, messages *repository.MessageRepo, gateway CompletionGateway, log *zap.Logger) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		chats:    chats,
		messages: messages,
		gateway:  gateway,
		log:      log.Named("chat"),
		slots:    newChatSlots(),
	}
}

// Send validates the message, resolves or creates the chat, asks the gateway for a
// reply over the whole history and stores the user/assistant pair.
func (s *ChatService) Send(ctx context.Context, u *models.User, text string, chatID *uint) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if s.gateway == nil {
		return nil, ErrCompletionUnavailable
	}

	chat := &models.Chat{UserID: u.ID}
	history := []ChatMessage{}

	if chatID != nil {
		existing, err := s.chats.GetByID(ctx, *chatID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load chat %d: %w", *chatID, err)
		}
		if !access.CanRead(u, existing) {
			return nil, ErrForbidden
		}
		if !access.CanWrite(u, existing) {
			return nil, ErrReadOnly
		}
		chat = existing

		release, err := s.slots.acquire(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		defer release()

		prior, err := s.messages.ListForChat(ctx, chat.ID)
		if err != nil {
			return nil, fmt.Errorf("load messages for chat %d: %w", chat.ID, err)
		}
		for _, m := range prior {
			history = append(history, ChatMessage{Role: m.Role, Text: m.Text})
		}
	} else {
		title := models.TitleFromMessage(text)
		chat.Title = &title
	}
	history = append(history, ChatMessage{Role: models.RoleUser, Text: text})

	reply, err := s.gateway.Complete(ctx, history)
	if err != nil {
		s.log.Error("completion failed",
			zap.Uint("user_id", u.ID),
			zap.Uint("chat_id", chat.ID),
			zap.Int("context_len", len(history)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	created := chat.ID == 0
	if _, _, err := s.chats.RecordExchange(ctx, chat, text, reply); err != nil {
		return nil, fmt.Errorf("record exchange: %w", err)
	}
	if created {
		s.log.Info("chat created", zap.Uint("user_id", u.ID), zap.Uint("chat_id", chat.ID))
	}

	return &SendResult{Reply: reply, ChatID: chat.ID, Created: created}, nil
}
