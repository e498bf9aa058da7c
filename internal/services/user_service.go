package services

import (
	"context"
	"errors"
	"fmt"

	"passtrack/internal/models"
	"passtrack/internal/storage"
)

// UserService определяет интерфейс для работы с пользователями.
type UserService interface {
	Touch(ctx context.Context, user *models.User) (*models.User, error)
	Find(ctx context.Context, id int64) (*models.User, error)
}

// UserServiceImpl реализует UserService.
type UserServiceImpl struct {
	users storage.UserStorage
}

// NewUserService создаёт новый экземпляр UserService.
func NewUserService(users storage.UserStorage) *UserServiceImpl {
	return &UserServiceImpl{users: users}
}

// Touch регистрирует пользователя при первом контакте и обновляет его
// имя и локаль при последующих. Контакт от заблокировавшего ранее
// пользователя снимает флаг блокировки.
func (s *UserServiceImpl) Touch(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Locale == "" {
		user.Locale = "ru"
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	if user.IsBlocked {
		if err := s.users.SetBlocked(ctx, user.ID, false); err != nil {
			return nil, fmt.Errorf("unblock user: %w", err)
		}
		user.IsBlocked = false
	}

	return user, nil
}

// Find возвращает пользователя по telegram id.
func (s *UserServiceImpl) Find(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
