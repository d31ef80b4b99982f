package controllers

import (
	"time"

	"assistant/models"
	"assistant/pkg/repository"
)

type chatJSON struct {
	ID             uint      `json:"id"`
	User           uint      `json:"user"`
	Username       string    `json:"username"`
	ActualUsername string    `json:"actual_username"`
	Title          *string   `json:"title"`
	Created        time.Time `json:"created"`
	Updated        time.Time `json:"updated"`
	MessageCount   int64     `json:"message_count"`
}

// username shows the owner's profile role when there is one; actual_username is
// always the login name.
func toChatJSON(c models.Chat, count int64) chatJSON {
	return chatJSON{
		ID:             c.ID,
		User:           c.UserID,
		Username:       c.User.DisplayName(),
		ActualUsername: c.User.Username,
		Title:          c.Title,
		Created:        c.CreatedAt,
		Updated:        c.UpdatedAt,
		MessageCount:   count,
	}
}

func toChatList(list []repository.ChatSummary) []chatJSON {
	out := make([]chatJSON, 0, len(list))
	for _, s := range list {
		out = append(out, toChatJSON(s.Chat, s.MessageCount))
	}
	return out
}

type messageJSON struct {
	ID      uint        `json:"id"`
	ChatID  uint        `json:"chat_id"`
	Role    models.Role `json:"role"`
	Text    string      `json:"text"`
	Created time.Time   `json:"created"`
}

func toMessageList(list []models.Message) []messageJSON {
	out := make([]messageJSON, 0, len(list))
	for _, m := range list {
		out = append(out, messageJSON{ID: m.ID, ChatID: m.ChatID, Role: m.Role, Text: m.Text, Created: m.CreatedAt})
	}
	return out
}
