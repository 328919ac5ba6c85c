package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission доказательство выполненной работы по взятому баунти.
// PointsAwarded заполняется только при одобрении.
type Submission struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	BountyID      uuid.UUID        `db:"bounty_id" json:"bounty_id"`
	UserID        uuid.UUID        `db:"user_id" json:"user_id"`
	Description   string           `db:"description" json:"description"`
	Status        SubmissionStatus `db:"status" json:"status"`
	PointsAwarded *int64           `db:"points_awarded" json:"points_awarded,omitempty"`
	ReviewNote    *string          `db:"review_note" json:"review_note,omitempty"`
	ReviewedAt    *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}
