package services

import (
	"context"

	"passtrack/internal/models"
)

// OrderEngine - часть сервиса заказов, нужная планировщику автообновления.
type OrderEngine interface {
	Active(ctx context.Context) ([]*models.Order, error)
	Refresh(ctx context.Context, order *models.Order, userID int64) UpdateResult
	UnsubscribeAll(ctx context.Context, userID int64) ([]*models.Order, error)
}

// UserFinder - доступ к пользователям из планировщика.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
}
