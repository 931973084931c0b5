package db

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"guest-dashboard-guard/pkg/model"
)

// Users is a gorm-backed user directory.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// ListUsers returns every account ordered by ID.
func (u *Users) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := u.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// FindUser looks an account up by name for operator login.
func (u *Users) FindUser(ctx context.Context, name string) (model.User, bool, error) {
	var user model.User
	err := u.db.WithContext(ctx).Where("name = ?", name).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, fmt.Errorf("find user: %w", err)
	}
	return user, true, nil
}

// CreateUser stores user with a bcrypt hash of password. An empty password
// leaves the account without login.
func (u *Users) CreateUser(ctx context.Context, user model.User, password string) (model.User, error) {
	if user.ID == "" {
		return model.User{}, fmt.Errorf("user id is required")
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return model.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if err := u.db.WithContext(ctx).Create(&user).Error; err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
