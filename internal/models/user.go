package models

import (
	"time"

	"github.com/google/uuid"
)

// User минимальное представление пользователя.
// Идентичность приходит извне (JWT), здесь хранится только профиль для отображения.
type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Email       string    `db:"email" json:"email"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
