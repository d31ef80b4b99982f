package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"assistant/models"
	"assistant/pkg/access"
)

// ChatSummary is a chat row plus the number of messages it holds.
type ChatSummary struct {
	models.Chat
	MessageCount int64
}

type ChatRepo struct {
	db *gorm.DB
}

func NewChatRepo(db *gorm.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// GetByID loads a chat with its owner and the owner's profile.
func (r *ChatRepo) GetByID(ctx context.Context, id uint) (*models.Chat, error) {
	var c models.Chat
	if err := r.db.WithContext(ctx).Preload("User.Profile").First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListVisible returns every chat for privileged users and only their own chats otherwise,
// most recently updated first.
func (r *ChatRepo) ListVisible(ctx context.Context, u *models.User) ([]ChatSummary, error) {
	q := r.db.WithContext(ctx).Preload("User.Profile").Order("updated DESC").Order("id DESC")
	if !access.IsPrivileged(u) {
		q = q.Where("user_id = ?", u.ID)
	}
	var chats []models.Chat
	if err := q.Find(&chats).Error; err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return []ChatSummary{}, nil
	}

	ids := make([]uint, len(chats))
	for i, c := range chats {
		ids[i] = c.ID
	}
	var rows []struct {
		ChatID uint
		N      int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Select("chat_id, COUNT(*) AS n").
		Where("chat_id IN ?", ids).
		Group("chat_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.ChatID] = row.N
	}

	out := make([]ChatSummary, len(chats))
	for i, c := range chats {
		out[i] = ChatSummary{Chat: c, MessageCount: counts[c.ID]}
	}
	return out, nil
}

// CountMessages returns how many messages a chat holds.
func (r *ChatRepo) CountMessages(ctx context.Context, chatID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&n).Error
	return n, err
}

// RecordExchange stores one user/assistant message pair. A chat with a zero ID is
// created first. Everything happens in one transaction and the chat's updated
// timestamp moves to the time of the write.
func (r *ChatRepo) RecordExchange(ctx context.Context, chat *models.Chat, userText, reply string) (userMsg, assistantMsg *models.Message, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if chat.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(chat).Error; err != nil {
				return err
			}
		}

		userMsg = &models.Message{ChatID: chat.ID, Role: models.RoleUser, Text: userText, CreatedAt: now}
		if err := tx.Create(userMsg).Error; err != nil {
			return err
		}
		assistantMsg = &models.Message{ChatID: chat.ID, Role: models.RoleAssistant, Text: reply, CreatedAt: now}
		if err := tx.Create(assistantMsg).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Chat{}).Where("id = ?", chat.ID).UpdateColumn("updated", now).Error; err != nil {
			return err
		}
		chat.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return userMsg, assistantMsg, nil
}
