package models

import "time"

// Роли пользователей, соответствуют колонке role в таблице users
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет пользователя магазина
type User struct {
	ID        int64
	Name      string
	Email     string
	PassHash  []byte
	Role      string // "user" или "admin"
	CreatedAt time.Time
}
