package repository

import (
	"context"

	"gorm.io/gorm"

	"assistant/models"
)

type MessageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// ListForChat returns the chat's messages oldest first. Messages written in the same
// instant keep their insertion order through the id tie-break.
func (r *MessageRepo) ListForChat(ctx context.Context, chatID uint) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created ASC").
		Order("id ASC").
		Find(&msgs).Error
	return msgs, err
}
