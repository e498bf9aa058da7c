package storage

import (
	"context"

	"passtrack/internal/models"
)

// MockOrderStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockOrderStorage struct {
	CreateFunc              func(ctx context.Context, order *models.Order) error
	GetByUIDFunc            func(ctx context.Context, uid string) (*models.Order, error)
	GetByUserIDFunc         func(ctx context.Context, userID int64) ([]*models.Order, error)
	GetActiveFunc           func(ctx context.Context) ([]*models.Order, error)
	SaveFunc                func(ctx context.Context, order *models.Order) error
	SoftDeleteFunc          func(ctx context.Context, uid string, userID int64) (*models.Order, error)
	SoftDeleteAllByUserFunc func(ctx context.Context, userID int64) ([]*models.Order, error)
}

func (m *MockOrderStorage) Create(ctx context.Context, order *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	return nil
}

func (m *MockOrderStorage) GetByUID(ctx context.Context, uid string) (*models.Order, error) {
	if m.GetByUIDFunc != nil {
		return m.GetByUIDFunc(ctx, uid)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) GetByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderStorage) GetActive(ctx context.Context) ([]*models.Order, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderStorage) Save(ctx context.Context, order *models.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, order)
	}
	return nil
}

func (m *MockOrderStorage) SoftDelete(ctx context.Context, uid string, userID int64) (*models.Order, error) {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, uid, userID)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) SoftDeleteAllByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	if m.SoftDeleteAllByUserFunc != nil {
		return m.SoftDeleteAllByUserFunc(ctx, userID)
	}
	return []*models.Order{}, nil
}

// MockAuditStorage - мок журнала изменений.
type MockAuditStorage struct {
	CreateFunc        func(ctx context.Context, audit *models.OrderAudit) error
	GetByOrderUIDFunc func(ctx context.Context, orderUID string) ([]*models.OrderAudit, error)
}

func (m *MockAuditStorage) Create(ctx context.Context, audit *models.OrderAudit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, audit)
	}
	return nil
}

func (m *MockAuditStorage) GetByOrderUID(ctx context.Context, orderUID string) ([]*models.OrderAudit, error) {
	if m.GetByOrderUIDFunc != nil {
		return m.GetByOrderUIDFunc(ctx, orderUID)
	}
	return []*models.OrderAudit{}, nil
}

// MockUserStorage - мок хранилища пользователей.
type MockUserStorage struct {
	UpsertFunc     func(ctx context.Context, user *models.User) error
	GetByIDFunc    func(ctx context.Context, id int64) (*models.User, error)
	SetBlockedFunc func(ctx context.Context, id int64, blocked bool) error
}

func (m *MockUserStorage) Upsert(ctx context.Context, user *models.User) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, user)
	}
	return nil
}

func (m *MockUserStorage) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStorage) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	if m.SetBlockedFunc != nil {
		return m.SetBlockedFunc(ctx, id, blocked)
	}
	return nil
}
