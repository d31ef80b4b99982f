package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const DefaultProfileRole = "User"

type User struct {
	ID           uint         `gorm:"primaryKey"`
	Username     string       `gorm:"uniqueIndex;size:150;not null"`
	PasswordHash string       `gorm:"size:255;not null"`
	IsStaff      bool         `gorm:"not null;default:false"`
	IsSuperuser  bool         `gorm:"not null;default:false"`
	DateJoined   time.Time    `gorm:"autoCreateTime"`
	LastLogin    *time.Time   `gorm:"column:last_login"`
	Profile      *UserProfile `gorm:"constraint:OnDelete:CASCADE"`
}

// UserProfile extends User 1:1. Role is a display label shown in chat listings.
type UserProfile struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"uniqueIndex;not null"`
	Role   string `gorm:"size:20;not null;default:User"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// DisplayName is the profile role when one is set, otherwise the username.
func (u *User) DisplayName() string {
	if u.Profile != nil && u.Profile.Role != "" {
		return u.Profile.Role
	}
	return u.Username
}
