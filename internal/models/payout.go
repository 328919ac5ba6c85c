package models

import (
	"time"

	"github.com/google/uuid"
)

// Payout неизменяемый снимок распределения прибыли по контрибьюторам.
// Все денежные поля хранятся в целых центах.
type Payout struct {
	ID                     uuid.UUID     `db:"id" json:"id"`
	ProjectID              uuid.UUID     `db:"project_id" json:"project_id"`
	PeriodStart            time.Time     `db:"period_start" json:"period_start"`
	PeriodEnd              time.Time     `db:"period_end" json:"period_end"`
	PeriodLabel            string        `db:"period_label" json:"period_label"`
	ReportedProfitCents    int64         `db:"reported_profit_cents" json:"reported_profit_cents"`
	PoolAmountCents        int64         `db:"pool_amount_cents" json:"pool_amount_cents"`
	PlatformFeeCents       int64         `db:"platform_fee_cents" json:"platform_fee_cents"`
	StripeFeeCents         int64         `db:"stripe_fee_cents" json:"stripe_fee_cents"`
	DistributedAmountCents int64         `db:"distributed_amount_cents" json:"distributed_amount_cents"`
	PoolCapacityAtPayout   int64         `db:"pool_capacity_at_payout" json:"pool_capacity_at_payout"`
	PaymentStatus          PaymentStatus `db:"payment_status" json:"payment_status"`
	CreatedBy              uuid.UUID     `db:"created_by" json:"created_by"`
	CreatedAt              time.Time     `db:"created_at" json:"created_at"`
}

// PayoutRecipient строка выплаты для одного контрибьютора.
// PointsAtPayout и AmountCents фиксируются при создании и никогда не пересчитываются.
type PayoutRecipient struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	PayoutID       uuid.UUID       `db:"payout_id" json:"payout_id"`
	UserID         uuid.UUID       `db:"user_id" json:"user_id"`
	PointsAtPayout int64           `db:"points_at_payout" json:"points_at_payout"`
	AmountCents    int64           `db:"amount_cents" json:"amount_cents"`
	Status         RecipientStatus `db:"status" json:"status"`
	DisputeReason  *string         `db:"dispute_reason" json:"dispute_reason,omitempty"`
	PaidAt         *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// ContributorStanding агрегированная позиция контрибьютора в проекте.
// Считается заново на каждое чтение, денормализация не хранится.
type ContributorStanding struct {
	UserID                uuid.UUID `db:"user_id" json:"user_id"`
	Points                int64     `db:"points" json:"points"`
	LifetimeEarningsCents int64     `db:"lifetime_earnings_cents" json:"lifetime_earnings_cents"`
	SharePercent          float64   `json:"share_percent"`
}
