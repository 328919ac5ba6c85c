package dto

import (
	"time"

	"github.com/ignatzorin/bounty-backend/internal/models"
)

// ErrorResponse стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse стандартный ответ с сообщением.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProjectResponse проект вместе с его пулом.
type ProjectResponse struct {
	Project *models.Project    `json:"project"`
	Pool    *models.RewardPool `json:"pool"`
}

// PoolResponse пул вместе с журналом расширений.
type PoolResponse struct {
	Pool       *models.RewardPool          `json:"pool"`
	Expansions []models.PoolExpansionEvent `json:"expansions"`
}

// PayoutResponse выплата вместе с получателями.
type PayoutResponse struct {
	Payout     *models.Payout           `json:"payout"`
	Recipients []models.PayoutRecipient `json:"recipients"`
}

// SweepResponse результат ручного обхода просроченных claims.
type SweepResponse struct {
	Expired int `json:"expired"`
}

// TokenResponse выпущенный access токен.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
