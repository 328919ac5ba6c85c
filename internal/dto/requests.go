package dto

// CreateProjectRequest запрос на создание проекта с пулом вознаграждений.
type CreateProjectRequest struct {
	Name                  string `json:"name" binding:"required"`
	Description           string `json:"description"`
	PoolPercentage        int    `json:"pool_percentage" binding:"required,min=1,max=100"`
	PoolCapacity          int64  `json:"pool_capacity" binding:"min=0"`
	PlatformFeePercentage int    `json:"platform_fee_percentage" binding:"min=0,max=100"`
	PayoutFrequency       string `json:"payout_frequency"`
	CommitmentEndsAt      string `json:"commitment_ends_at"`
}

// CreateBountyRequest запрос на создание баунти.
type CreateBountyRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Points          *int64 `json:"points"`
	ClaimMode       string `json:"claim_mode"`
	MaxClaims       *int   `json:"max_claims"`
	ClaimExpiryDays int    `json:"claim_expiry_days"`
}

// UpdateBountyRequest запрос на редактирование баунти.
type UpdateBountyRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Points      *int64 `json:"points"`
}

// CreateSubmissionRequest запрос на сдачу работы.
type CreateSubmissionRequest struct {
	Description string `json:"description" binding:"required"`
	Draft       bool   `json:"draft"`
}

// UpdateSubmissionRequest запрос на редактирование сабмишена.
type UpdateSubmissionRequest struct {
	Description string `json:"description" binding:"required"`
}

// ReviewSubmissionRequest запрос на ревью сабмишена.
type ReviewSubmissionRequest struct {
	Action         string  `json:"action" binding:"required,oneof=approve reject request_info"`
	Note           *string `json:"note"`
	PointsOverride *int64  `json:"points_override"`
}

// PayoutPreviewRequest запрос на расчёт выплаты без создания.
type PayoutPreviewRequest struct {
	ReportedProfitCents int64 `json:"reported_profit_cents" binding:"min=0"`
}

// CreatePayoutRequest запрос на создание выплаты.
type CreatePayoutRequest struct {
	PeriodStart         string `json:"period_start" binding:"required"`
	PeriodEnd           string `json:"period_end" binding:"required"`
	PeriodLabel         string `json:"period_label" binding:"required"`
	ReportedProfitCents int64  `json:"reported_profit_cents" binding:"min=0"`
	StripeFeeCents      int64  `json:"stripe_fee_cents" binding:"min=0"`
}

// PaymentCallbackRequest колбэк платёжного провайдера.
type PaymentCallbackRequest struct {
	PayoutID string `json:"payout_id" binding:"required,uuid"`
	Status   string `json:"status" binding:"required,oneof=processing paid failed refunded"`
}

// ConfirmReceiptRequest подтверждение или спор получателя выплаты.
type ConfirmReceiptRequest struct {
	Confirmed     bool    `json:"confirmed"`
	DisputeReason *string `json:"dispute_reason"`
}

// DevTokenRequest запрос на выпуск токена (только development).
type DevTokenRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}
