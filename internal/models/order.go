package models

import (
	"time"

	"github.com/google/uuid"
)

// Order представляет отслеживаемое заявление на паспорт.
// Статусные поля зеркалируют ответ midpass без преобразований.
type Order struct {
	UID                string    `db:"uid"`
	ShortUID           string    `db:"short_uid"`
	UserID             int64     `db:"user_id"`
	SourceUID          string    `db:"source_uid"`
	ReceptionDate      string    `db:"reception_date"`
	StatusID           int64     `db:"status_id"`
	StatusName         string    `db:"status_name"`
	StatusDescription  string    `db:"status_description"`
	StatusColor        string    `db:"status_color"`
	StatusSubscription bool      `db:"status_subscription"`
	StatusInternalName string    `db:"status_internal_name"`
	StatusPercent      int       `db:"status_percent"`
	IsDeleted          bool      `db:"is_deleted"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// StatusSnapshot фиксирует аудируемые поля заказа до изменения.
type StatusSnapshot struct {
	StatusID           int64
	StatusName         string
	StatusInternalName string
	StatusPercent      int
}

// Snapshot возвращает срез статусных полей для диффа в аудите.
func (o *Order) Snapshot() StatusSnapshot {
	return StatusSnapshot{
		StatusID:           o.StatusID,
		StatusName:         o.StatusName,
		StatusInternalName: o.StatusInternalName,
		StatusPercent:      o.StatusPercent,
	}
}

// OrderAudit - неизменяемая запись перехода статуса заказа.
// Создаётся на каждый create/update/delete и никогда не обновляется.
type OrderAudit struct {
	ID                    uuid.UUID `db:"id"`
	OrderUID              string    `db:"order_uid"`
	UserID                int64     `db:"user_id"`
	OldStatusID           *int64    `db:"old_status_id"`
	NewStatusID           int64     `db:"new_status_id"`
	OldStatusName         *string   `db:"old_status_name"`
	NewStatusName         string    `db:"new_status_name"`
	OldStatusInternalName *string   `db:"old_status_internal_name"`
	NewStatusInternalName string    `db:"new_status_internal_name"`
	OldStatusPercent      *int      `db:"old_status_percent"`
	NewStatusPercent      int       `db:"new_status_percent"`
	IsDeleted             bool      `db:"is_deleted"`
	CreatedAt             time.Time `db:"created_at"`
}

// OrderResponse - ответ для списка заказов в ops API.
type OrderResponse struct {
	UID                string `json:"uid"`
	ShortUID           string `json:"short_uid"`
	UserID             int64  `json:"user_id"`
	ReceptionDate      string `json:"reception_date,omitempty"`
	StatusName         string `json:"status_name,omitempty"`
	StatusInternalName string `json:"status_internal_name,omitempty"`
	StatusPercent      int    `json:"status_percent"`
	IsDeleted          bool   `json:"is_deleted"`
	UpdatedAt          string `json:"updated_at"`
}

// AuditResponse - ответ для истории изменений заказа в ops API.
type AuditResponse struct {
	OrderUID              string  `json:"order_uid"`
	OldStatusName         *string `json:"old_status_name,omitempty"`
	NewStatusName         string  `json:"new_status_name"`
	OldStatusInternalName *string `json:"old_status_internal_name,omitempty"`
	NewStatusInternalName string  `json:"new_status_internal_name"`
	OldStatusPercent      *int    `json:"old_status_percent,omitempty"`
	NewStatusPercent      int     `json:"new_status_percent"`
	IsDeleted             bool    `json:"is_deleted"`
	CreatedAt             string  `json:"created_at"`
}
