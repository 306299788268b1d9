package models

import "time"

// Favorite связывает аккаунт с идентификатором ученого из внешнего API.
// Пара (AccountID, ScholarID) уникальна.
type Favorite struct {
	CreatedAt   time.Time `json:"created_at"`   // время добавления
	ID          string    `json:"id"`           // UUID записи
	AccountID   string    `json:"account_id"`   // UUID аккаунта
	ScholarID   string    `json:"scholar_id"`   // канонический ID ученого (без URI префикса)
	ScholarName string    `json:"scholar_name"` // снимок отображаемого имени на момент добавления
}
