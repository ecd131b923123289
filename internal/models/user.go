// Package models содержит доменные структуры приложения: пользователи,
// события с тарифами билетов и сами билеты. Структуры используются
// в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Возможные роли пользователя.
const (
	RoleUser      = "user"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// User представляет зарегистрированного пользователя системы.
//
// Role — выданный при регистрации уровень прав (user, organizer или admin).
// ActiveRole — режим, в котором аккаунт работает сейчас (user или organizer);
// organizer допустим только при Role ∈ {organizer, admin}.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"` // Никогда не отдается клиенту
	Role         string    `json:"role" bson:"role"`
	ActiveRole   string    `json:"activeRole" bson:"active_role"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

// IsOrganizer сообщает, есть ли у пользователя права организатора.
func (u *User) IsOrganizer() bool {
	return u.Role == RoleOrganizer || u.Role == RoleAdmin
}

// Identity — данные о вызывающем пользователе, извлеченные из JWT.
// UserID и Role берутся из claims токена, без обращения к базе.
type Identity struct {
	UserID string
	Name   string
	Role   string
}

// IsOrganizer сообщает, есть ли у вызывающего права организатора.
func (i Identity) IsOrganizer() bool {
	return i.Role == RoleOrganizer || i.Role == RoleAdmin
}

// CanModifyEvent проверяет, может ли вызывающий изменять событие:
// либо он admin, либо владелец события.
func (i Identity) CanModifyEvent(e *Event) bool {
	return i.Role == RoleAdmin || i.UserID == e.Organizer
}
