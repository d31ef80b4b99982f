package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one turn of a chat. Rows are never updated once written.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	ChatID    uint      `gorm:"not null;index:idx_chat_created,priority:1"`
	Role      Role      `gorm:"size:10;not null"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"column:created;index:idx_chat_created,priority:2"`
}
