package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"passtrack/internal/models"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
)

// OrderStorage определяет интерфейс для работы с заказами.
type OrderStorage interface {
	Create(ctx context.Context, order *models.Order) error
	GetByUID(ctx context.Context, uid string) (*models.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	GetActive(ctx context.Context) ([]*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	SoftDelete(ctx context.Context, uid string, userID int64) (*models.Order, error)
	SoftDeleteAllByUser(ctx context.Context, userID int64) ([]*models.Order, error)
}

// PostgresOrderStorage реализует OrderStorage для PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

const orderColumns = `
	uid, short_uid, user_id, source_uid, reception_date,
	status_id, status_name, status_description, status_color, status_subscription,
	status_internal_name, status_percent, is_deleted, created_at, updated_at
`

// Create создаёт новую подписку на заявление.
func (s *PostgresOrderStorage) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (uid, short_uid, user_id, source_uid, reception_date, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		order.UID,
		order.ShortUID,
		order.UserID,
		order.SourceUID,
		order.ReceptionDate,
	).Scan(&order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByUID возвращает заказ по номеру заявления.
func (s *PostgresOrderStorage) GetByUID(ctx context.Context, uid string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE uid = $1`
	return scanOrder(s.pool.QueryRow(ctx, query, uid))
}

// GetByUserID возвращает заказы пользователя (сортировка по created_at).
func (s *PostgresOrderStorage) GetByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// GetActive возвращает все неудалённые заказы - рабочий набор автообновления.
func (s *PostgresOrderStorage) GetActive(ctx context.Context) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE is_deleted = false ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// Save перезаписывает статусные поля заказа и обновляет updated_at.
func (s *PostgresOrderStorage) Save(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET source_uid = $1,
			reception_date = $2,
			status_id = $3,
			status_name = $4,
			status_description = $5,
			status_color = $6,
			status_subscription = $7,
			status_internal_name = $8,
			status_percent = $9,
			is_deleted = $10,
			updated_at = NOW()
		WHERE uid = $11
		RETURNING updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		order.SourceUID,
		order.ReceptionDate,
		order.StatusID,
		order.StatusName,
		order.StatusDescription,
		order.StatusColor,
		order.StatusSubscription,
		order.StatusInternalName,
		order.StatusPercent,
		order.IsDeleted,
		order.UID,
	).Scan(&order.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

// SoftDelete помечает заказ пользователя удалённым и возвращает его.
func (s *PostgresOrderStorage) SoftDelete(ctx context.Context, uid string, userID int64) (*models.Order, error) {
	query := `
		UPDATE orders
		SET is_deleted = true, updated_at = NOW()
		WHERE uid = $1 AND user_id = $2
		RETURNING ` + orderColumns

	order, err := scanOrder(s.pool.QueryRow(ctx, query, uid, userID))
	if err != nil {
		return nil, err
	}
	return order, nil
}

// SoftDeleteAllByUser помечает удалёнными все активные заказы пользователя.
func (s *PostgresOrderStorage) SoftDeleteAllByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		UPDATE orders
		SET is_deleted = true, updated_at = NOW()
		WHERE user_id = $1 AND is_deleted = false
		RETURNING ` + orderColumns

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to soft delete user orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// scanOrder сканирует одну строку заказа.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.UID,
		&order.ShortUID,
		&order.UserID,
		&order.SourceUID,
		&order.ReceptionDate,
		&order.StatusID,
		&order.StatusName,
		&order.StatusDescription,
		&order.StatusColor,
		&order.StatusSubscription,
		&order.StatusInternalName,
		&order.StatusPercent,
		&order.IsDeleted,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &order, nil
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return orders, nil
}
