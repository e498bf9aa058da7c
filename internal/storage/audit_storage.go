package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"passtrack/internal/models"
)

// AuditStorage определяет интерфейс журнала изменений заказов.
// Записи только добавляются, обновления и удаления не предусмотрены.
type AuditStorage interface {
	Create(ctx context.Context, audit *models.OrderAudit) error
	GetByOrderUID(ctx context.Context, orderUID string) ([]*models.OrderAudit, error)
}

// PostgresAuditStorage реализует AuditStorage для PostgreSQL.
type PostgresAuditStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditStorage создаёт новый экземпляр PostgresAuditStorage.
func NewPostgresAuditStorage(pool *pgxpool.Pool) *PostgresAuditStorage {
	return &PostgresAuditStorage{pool: pool}
}

// Create добавляет запись аудита.
func (s *PostgresAuditStorage) Create(ctx context.Context, audit *models.OrderAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}

	query := `
		INSERT INTO order_audits (
			id, order_uid, user_id,
			old_status_id, new_status_id,
			old_status_name, new_status_name,
			old_status_internal_name, new_status_internal_name,
			old_status_percent, new_status_percent,
			is_deleted, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING created_at
	`

	err := s.pool.QueryRow(ctx, query,
		audit.ID,
		audit.OrderUID,
		audit.UserID,
		audit.OldStatusID,
		audit.NewStatusID,
		audit.OldStatusName,
		audit.NewStatusName,
		audit.OldStatusInternalName,
		audit.NewStatusInternalName,
		audit.OldStatusPercent,
		audit.NewStatusPercent,
		audit.IsDeleted,
	).Scan(&audit.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

// GetByOrderUID возвращает историю изменений заказа (от старых к новым).
func (s *PostgresAuditStorage) GetByOrderUID(ctx context.Context, orderUID string) ([]*models.OrderAudit, error) {
	query := `
		SELECT id, order_uid, user_id,
			old_status_id, new_status_id,
			old_status_name, new_status_name,
			old_status_internal_name, new_status_internal_name,
			old_status_percent, new_status_percent,
			is_deleted, created_at
		FROM order_audits
		WHERE order_uid = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, orderUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var audits []*models.OrderAudit
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return audits, nil
}

func scanAudit(row pgx.Row) (*models.OrderAudit, error) {
	var audit models.OrderAudit
	err := row.Scan(
		&audit.ID,
		&audit.OrderUID,
		&audit.UserID,
		&audit.OldStatusID,
		&audit.NewStatusID,
		&audit.OldStatusName,
		&audit.NewStatusName,
		&audit.OldStatusInternalName,
		&audit.NewStatusInternalName,
		&audit.OldStatusPercent,
		&audit.NewStatusPercent,
		&audit.IsDeleted,
		&audit.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit record: %w", err)
	}
	return &audit, nil
}
