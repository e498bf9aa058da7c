package models

import "time"

// User представляет подписчика бота. ID совпадает с telegram chat id.
type User struct {
	ID        int64     `db:"id"`
	FirstName string    `db:"first_name"`
	UserName  string    `db:"user_name"`
	Locale    string    `db:"locale"`
	IsBlocked bool      `db:"is_blocked"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// LoginRequest - запрос на аутентификацию в ops API.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
