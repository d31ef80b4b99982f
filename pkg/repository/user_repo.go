package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"assistant/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already exists")
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateWithProfile inserts the user and its profile in one transaction.
// A username collision, including one lost to a concurrent insert, yields ErrUsernameTaken.
func (r *UserRepo) CreateWithProfile(ctx context.Context, u *models.User, role string) error {
	if role == "" {
		role = models.DefaultProfileRole
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", u.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUsernameTaken
		}
		u.Profile = nil
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}
			return err
		}
		profile := &models.UserProfile{UserID: u.ID, Role: role}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		u.Profile = profile
		return nil
	})
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, u *models.User) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Update("last_login", now).Error; err != nil {
		return err
	}
	u.LastLogin = &now
	return nil
}

// SetFlags updates staff and superuser standing.
func (r *UserRepo) SetFlags(ctx context.Context, id uint, staff, superuser bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"is_staff": staff, "is_superuser": superuser})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole changes the display role, creating the profile if the user has none.
func (r *UserRepo) SetRole(ctx context.Context, id uint, role string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, id).Error; err != nil {
			return translate(err)
		}
		var p models.UserProfile
		err := tx.Where("user_id = ?", id).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.UserProfile{UserID: id, Role: role}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&p).Update("role", role).Error
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
