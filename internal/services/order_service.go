package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"passtrack/internal/midpass"
	"passtrack/internal/models"
	"passtrack/internal/storage"
	"passtrack/internal/uid"
)

var (
	ErrInvalidUID              = errors.New("invalid order uid")
	ErrMaxOrdersPerUser        = errors.New("max tracked orders per user reached")
	ErrOrderOwnedByAnotherUser = errors.New("order tracked by another user")
)

// MaxOrdersPerUser - максимум активных подписок на пользователя.
const MaxOrdersPerUser = 2

// Терминальные внутренние статусы. Заказ считается завершённым только при
// нулевом проценте в сочетании с одной из этих формулировок: нулевой процент
// с "рабочей" формулировкой завершением не является.
var terminalInternalStatuses = map[string]struct{}{
	"паспорт выдан":                {},
	"отмена изготовления паспорта": {},
}

// IsCompleteOrder сообщает, достиг ли заказ терминального статуса.
// Завершённые заказы навсегда исключаются из автообновления.
func IsCompleteOrder(order *models.Order) bool {
	if order.StatusPercent != 0 {
		return false
	}
	_, ok := terminalInternalStatuses[strings.ToLower(order.StatusInternalName)]
	return ok
}

// HasChangesWith сравнивает срез старых статусных полей с обновлённым заказом.
// Учитываются только percent, name и internalName: description, color и
// subscription считаются косметикой и уведомлений не заслуживают.
func HasChangesWith(old models.StatusSnapshot, order *models.Order) bool {
	return old.StatusPercent != order.StatusPercent ||
		old.StatusName != order.StatusName ||
		old.StatusInternalName != order.StatusInternalName
}

// UpdateResult - единый канал результата обновления заказа. Endpoint всегда
// заполнен после сетевой попытки, чтобы ошибки можно было отнести к эндпоинту.
type UpdateResult struct {
	Order    *models.Order
	Endpoint string
	Err      error
}

// OrderService определяет интерфейс работы с подписками на заявления.
type OrderService interface {
	Subscribe(ctx context.Context, orderUID string, user *models.User) (*models.Order, error)
	Refresh(ctx context.Context, order *models.Order, userID int64) UpdateResult
	Unsubscribe(ctx context.Context, orderUID string, userID int64) (*models.Order, error)
	UnsubscribeAll(ctx context.Context, userID int64) ([]*models.Order, error)
	Active(ctx context.Context) ([]*models.Order, error)
	UserOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	AuditTrail(ctx context.Context, orderUID string) ([]*models.OrderAudit, error)
	StatusImagePath(order *models.Order) (string, error)
}

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	orders    storage.OrderStorage
	audits    storage.AuditStorage
	rotator   *midpass.Rotator
	client    midpass.Client
	imagesDir string
	log       *zap.Logger
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(
	orders storage.OrderStorage,
	audits storage.AuditStorage,
	rotator *midpass.Rotator,
	client midpass.Client,
	imagesDir string,
	log *zap.Logger,
) *OrderServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderServiceImpl{
		orders:    orders,
		audits:    audits,
		rotator:   rotator,
		client:    client,
		imagesDir: imagesDir,
		log:       log,
	}
}

// Subscribe оформляет подписку пользователя на заявление.
func (s *OrderServiceImpl) Subscribe(ctx context.Context, orderUID string, user *models.User) (*models.Order, error) {
	if !uid.IsValid(orderUID) {
		return nil, ErrInvalidUID
	}

	existing, err := s.orders.GetByUID(ctx, orderUID)
	if err != nil && !errors.Is(err, storage.ErrOrderNotFound) {
		return nil, fmt.Errorf("check existing order: %w", err)
	}

	if existing != nil {
		if existing.UserID != user.ID {
			return nil, ErrOrderOwnedByAnotherUser
		}
		if !existing.IsDeleted {
			return existing, nil
		}
		// Повторная подписка возвращает мягко удалённый заказ в активный набор.
		if err := s.ensureUnderLimit(ctx, user.ID); err != nil {
			return nil, err
		}
		existing.IsDeleted = false
		if err := s.orders.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("reactivate order: %w", err)
		}
		s.writeAudit(ctx, existing, user.ID, nil)
		return existing, nil
	}

	if err := s.ensureUnderLimit(ctx, user.ID); err != nil {
		return nil, err
	}

	order := &models.Order{
		UID:           orderUID,
		ShortUID:      uid.Short(orderUID),
		UserID:        user.ID,
		ReceptionDate: uid.ParseReceptionDate(orderUID),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.writeAudit(ctx, order, user.ID, nil)

	return order, nil
}

func (s *OrderServiceImpl) ensureUnderLimit(ctx context.Context, userID int64) error {
	orders, err := s.orders.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("count user orders: %w", err)
	}

	active := 0
	for _, o := range orders {
		if !o.IsDeleted {
			active++
		}
	}
	if active >= MaxOrdersPerUser {
		return ErrMaxOrdersPerUser
	}
	return nil
}

// Refresh запрашивает свежий статус заявления и применяет его к заказу.
// При любой ошибке заказ не мутируется; таймаут прокидывается наверх как
// midpass.ErrTimeout - планировщик обрывает по нему весь прогон.
func (s *OrderServiceImpl) Refresh(ctx context.Context, order *models.Order, userID int64) UpdateResult {
	old := order.Snapshot()

	endpoint := s.rotator.Next()
	status, err := s.client.GetStatus(ctx, endpoint, order.UID)
	if err != nil {
		return UpdateResult{Endpoint: endpoint, Err: err}
	}

	order.SourceUID = status.SourceUID
	order.ReceptionDate = status.ReceptionDate
	order.StatusID = status.PassportStatus.ID
	order.StatusName = status.PassportStatus.Name
	order.StatusDescription = status.PassportStatus.Description
	order.StatusColor = status.PassportStatus.Color
	order.StatusSubscription = status.PassportStatus.Subscription
	order.StatusInternalName = status.InternalStatus.Name
	order.StatusPercent = status.InternalStatus.Percent
	// Успешный свежий ответ безусловно возвращает заказ в активный набор,
	// даже если он был мягко удалён между прогонами. Наблюдаемое поведение
	// исходной системы, сохранено осознанно.
	order.IsDeleted = false

	if err := s.orders.Save(ctx, order); err != nil {
		return UpdateResult{Endpoint: endpoint, Err: fmt.Errorf("save order: %w", err)}
	}

	s.writeAudit(ctx, order, userID, &old)

	return UpdateResult{Order: order, Endpoint: endpoint}
}

// Unsubscribe мягко удаляет заказ пользователя.
func (s *OrderServiceImpl) Unsubscribe(ctx context.Context, orderUID string, userID int64) (*models.Order, error) {
	order, err := s.orders.SoftDelete(ctx, orderUID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, storage.ErrOrderNotFound
		}
		return nil, fmt.Errorf("delete order: %w", err)
	}

	s.writeAudit(ctx, order, userID, nil)
	return order, nil
}

// UnsubscribeAll мягко удаляет все активные заказы пользователя.
// Используется и при блокировке бота пользователем.
func (s *OrderServiceImpl) UnsubscribeAll(ctx context.Context, userID int64) ([]*models.Order, error) {
	orders, err := s.orders.SoftDeleteAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("delete user orders: %w", err)
	}

	for _, order := range orders {
		s.writeAudit(ctx, order, userID, nil)
	}
	return orders, nil
}

// Active возвращает рабочий набор автообновления.
func (s *OrderServiceImpl) Active(ctx context.Context) ([]*models.Order, error) {
	return s.orders.GetActive(ctx)
}

// UserOrders возвращает все заказы пользователя.
func (s *OrderServiceImpl) UserOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	return s.orders.GetByUserID(ctx, userID)
}

// AuditTrail возвращает историю изменений заказа.
func (s *OrderServiceImpl) AuditTrail(ctx context.Context, orderUID string) ([]*models.OrderAudit, error) {
	return s.audits.GetByOrderUID(ctx, orderUID)
}

// StatusImagePath подбирает картинку статуса по проценту готовности.
// Без точного совпадения берётся fallback.png; отсутствие и его - это
// ошибка конфигурации, с которой доставка уведомлений невозможна.
func (s *OrderServiceImpl) StatusImagePath(order *models.Order) (string, error) {
	path := filepath.Join(s.imagesDir, fmt.Sprintf("%d.png", order.StatusPercent))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	fallback := filepath.Join(s.imagesDir, "fallback.png")
	if _, err := os.Stat(fallback); err != nil {
		return "", fmt.Errorf("status images missing in %s: %w", s.imagesDir, err)
	}
	return fallback, nil
}

// writeAudit пишет запись журнала. Сбой записи логируется и глотается:
// уже сохранённый статус заказа он отменять не должен.
func (s *OrderServiceImpl) writeAudit(ctx context.Context, order *models.Order, userID int64, old *models.StatusSnapshot) {
	audit := &models.OrderAudit{
		OrderUID:              order.UID,
		UserID:                userID,
		NewStatusID:           order.StatusID,
		NewStatusName:         order.StatusName,
		NewStatusInternalName: order.StatusInternalName,
		NewStatusPercent:      order.StatusPercent,
		IsDeleted:             order.IsDeleted,
	}

	if old != nil {
		audit.OldStatusID = &old.StatusID
		audit.OldStatusName = &old.StatusName
		audit.OldStatusInternalName = &old.StatusInternalName
		audit.OldStatusPercent = &old.StatusPercent
	}

	if err := s.audits.Create(ctx, audit); err != nil {
		s.log.Error("failed to write order audit",
			zap.String("order_uid", order.UID),
			zap.Error(err),
		)
	}
}
