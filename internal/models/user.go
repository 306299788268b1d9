package models

import "time"

// User представляет аккаунт в системе
type User struct {
	CreatedAt    time.Time  `json:"created_at"`           // время создания
	LastLogin    *time.Time `json:"last_login,omitempty"` // время последнего успешного входа
	ID           string     `json:"id"`                   // UUID аккаунта
	Username     string     `json:"username"`             // уникальный идентификатор пользователя (user id)
	PasswordHash string     `json:"-"`                    // bcrypt хеш пароля (соль внутри хеша)
}

// Identity описывает аутентифицированного вызывающего
// Передается явно через context, никогда не читается из глобального состояния
type Identity struct {
	AccountID string `json:"account_id"` // UUID аккаунта
	UserID    string `json:"user_id"`    // username
}

// IsZero reports whether the identity is empty.
func (i Identity) IsZero() bool {
	return i.AccountID == "" && i.UserID == ""
}
