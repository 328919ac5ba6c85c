package models

import (
	"time"

	"github.com/google/uuid"
)

// Bounty описывает единицу работы с наградой в поинтах.
// Points == nil означает неоценённую задачу в бэклоге.
type Bounty struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	ProjectID       uuid.UUID    `db:"project_id" json:"project_id"`
	Title           string       `db:"title" json:"title"`
	Description     string       `db:"description" json:"description"`
	Points          *int64       `db:"points" json:"points,omitempty"`
	Status          BountyStatus `db:"status" json:"status"`
	ClaimMode       ClaimMode    `db:"claim_mode" json:"claim_mode"`
	MaxClaims       *int         `db:"max_claims" json:"max_claims,omitempty"`
	ClaimExpiryDays int          `db:"claim_expiry_days" json:"claim_expiry_days"`
	Labels          []string     `json:"labels,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// BountyClaim фиксирует резервирование баунти контрибьютором.
type BountyClaim struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	BountyID  uuid.UUID   `db:"bounty_id" json:"bounty_id"`
	UserID    uuid.UUID   `db:"user_id" json:"user_id"`
	Status    ClaimStatus `db:"status" json:"status"`
	ExpiresAt time.Time   `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
