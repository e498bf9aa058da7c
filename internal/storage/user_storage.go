package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"passtrack/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserStorage определяет интерфейс для работы с пользователями.
type UserStorage interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
}

// PostgresUserStorage реализует UserStorage для PostgreSQL.
type PostgresUserStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStorage создаёт новый экземпляр PostgresUserStorage.
func NewPostgresUserStorage(pool *pgxpool.Pool) *PostgresUserStorage {
	return &PostgresUserStorage{pool: pool}
}

// Upsert создаёт пользователя или обновляет его имя и локаль.
func (s *PostgresUserStorage) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, first_name, user_name, locale, is_blocked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
			user_name = EXCLUDED.user_name,
			locale = EXCLUDED.locale,
			updated_at = NOW()
		RETURNING is_blocked, created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.UserName,
		user.Locale,
	).Scan(&user.IsBlocked, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// GetByID возвращает пользователя по telegram id.
func (s *PostgresUserStorage) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, first_name, user_name, locale, is_blocked, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.FirstName,
		&user.UserName,
		&user.Locale,
		&user.IsBlocked,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// SetBlocked помечает пользователя заблокировавшим бота.
func (s *PostgresUserStorage) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	query := `UPDATE users SET is_blocked = $1, updated_at = NOW() WHERE id = $2`

	result, err := s.pool.Exec(ctx, query, blocked, id)
	if err != nil {
		return fmt.Errorf("failed to set user blocked: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
