package models

import (
	"time"

	"github.com/google/uuid"
)

// User зарегистрированный пользователь. Пароль хранится только в виде bcrypt-хэша.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity верифицированная личность, полученная по токену.
// Ядро сервиса ссылок видит только её, не механику аутентификации.
type Identity struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}
