// Package access decides who may see and who may extend a chat.
package access

import "assistant/models"

// IsPrivileged reports staff or superuser standing.
func IsPrivileged(u *models.User) bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}

// CanRead allows the owner and any privileged user.
func CanRead(u *models.User, c *models.Chat) bool {
	if u == nil || c == nil {
		return false
	}
	return c.UserID == u.ID || IsPrivileged(u)
}

// CanWrite allows the owner only. Privileged access to foreign chats is read-only.
func CanWrite(u *models.User, c *models.Chat) bool {
	if u == nil || c == nil {
		return false
	}
	return c.UserID == u.ID
}
