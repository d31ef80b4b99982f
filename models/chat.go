package models

import (
	"time"
	"unicode/utf8"
)

const (
	titleMaxLen   = 50
	titleEllipsis = "..."
)

// Chat is a conversation thread owned by one user.
type Chat struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	Title     *string   `gorm:"size:255"`
	CreatedAt time.Time `gorm:"column:created"`
	UpdatedAt time.Time `gorm:"column:updated;index"`
	Messages  []Message `gorm:"constraint:OnDelete:CASCADE"`
}

// TitleFromMessage derives a chat title from the first message of the chat:
// up to 50 characters, or the first 47 followed by "..." when longer.
func TitleFromMessage(text string) string {
	if utf8.RuneCountInString(text) <= titleMaxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleMaxLen-utf8.RuneCountInString(titleEllipsis)]) + titleEllipsis
}
