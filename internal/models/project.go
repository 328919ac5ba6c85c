package models

import (
	"time"

	"github.com/google/uuid"
)

// Project описывает проект основателя, к которому привязаны баунти и пул вознаграждений.
type Project struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FounderID   uuid.UUID `db:"founder_id" json:"founder_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RewardPool описывает обязательство проекта делиться прибылью.
// PoolCapacity монотонно растёт: меняется только через записанное расширение.
type RewardPool struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	ProjectID             uuid.UUID  `db:"project_id" json:"project_id"`
	PoolPercentage        int        `db:"pool_percentage" json:"pool_percentage"`
	PoolCapacity          int64      `db:"pool_capacity" json:"pool_capacity"`
	PlatformFeePercentage int        `db:"platform_fee_percentage" json:"platform_fee_percentage"`
	PayoutFrequency       string     `db:"payout_frequency" json:"payout_frequency"`
	CommitmentEndsAt      *time.Time `db:"commitment_ends_at" json:"commitment_ends_at,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// PoolExpansionEvent неизменяемая запись о расширении ёмкости пула.
type PoolExpansionEvent struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PoolID           uuid.UUID `db:"pool_id" json:"pool_id"`
	PreviousCapacity int64     `db:"previous_capacity" json:"previous_capacity"`
	NewCapacity      int64     `db:"new_capacity" json:"new_capacity"`
	Reason           string    `db:"reason" json:"reason"`
	DilutionPercent  float64   `db:"dilution_percent" json:"dilution_percent"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// DilutionPercent считает процент размытия существующих поинтов при расширении.
func DilutionPercent(previousCapacity, newCapacity int64) float64 {
	if newCapacity <= 0 {
		return 0
	}
	return float64(newCapacity-previousCapacity) / float64(newCapacity) * 100
}
