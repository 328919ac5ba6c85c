package models

// BountyStatus статус баунти.
type BountyStatus string

const (
	BountyStatusBacklog   BountyStatus = "backlog"
	BountyStatusOpen      BountyStatus = "open"
	BountyStatusClaimed   BountyStatus = "claimed"
	BountyStatusCompleted BountyStatus = "completed"
	BountyStatusClosed    BountyStatus = "closed"
)

// bountyTransitions задаёт допустимые переходы статусов баунти.
// COMPLETED — терминальный статус, из CLOSED возможно только переоткрытие основателем.
var bountyTransitions = map[BountyStatus][]BountyStatus{
	BountyStatusBacklog:   {BountyStatusOpen, BountyStatusClosed},
	BountyStatusOpen:      {BountyStatusBacklog, BountyStatusClaimed, BountyStatusCompleted, BountyStatusClosed},
	BountyStatusClaimed:   {BountyStatusOpen, BountyStatusCompleted, BountyStatusClosed},
	BountyStatusCompleted: {},
	BountyStatusClosed:    {BountyStatusBacklog, BountyStatusOpen, BountyStatusClaimed},
}

// CanTransitionTo проверяет допустимость перехода.
func (s BountyStatus) CanTransitionTo(next BountyStatus) bool {
	for _, allowed := range bountyTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal возвращает true для статусов, в которых баунти нельзя редактировать.
func (s BountyStatus) IsTerminal() bool {
	return s == BountyStatusCompleted || s == BountyStatusClosed
}

// IsClaimable возвращает true, если баунти в принципе доступно для взятия.
func (s BountyStatus) IsClaimable() bool {
	return s == BountyStatusOpen || s == BountyStatusClaimed
}

// ClaimMode режим взятия баунти.
type ClaimMode string

const (
	ClaimModeSingle   ClaimMode = "single"
	ClaimModeMultiple ClaimMode = "multiple"
)

// ClaimStatus статус взятия баунти контрибьютором.
type ClaimStatus string

const (
	ClaimStatusActive    ClaimStatus = "active"
	ClaimStatusSubmitted ClaimStatus = "submitted"
	ClaimStatusCompleted ClaimStatus = "completed"
	ClaimStatusExpired   ClaimStatus = "expired"
)

var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusActive:    {ClaimStatusSubmitted, ClaimStatusExpired},
	ClaimStatusSubmitted: {ClaimStatusActive, ClaimStatusCompleted, ClaimStatusExpired},
	ClaimStatusCompleted: {},
	ClaimStatusExpired:   {},
}

// CanTransitionTo проверяет допустимость перехода статуса claim.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOutstanding возвращает true, пока claim удерживает баунти (active или submitted).
func (s ClaimStatus) IsOutstanding() bool {
	return s == ClaimStatusActive || s == ClaimStatusSubmitted
}

// SubmissionStatus статус сабмишена.
type SubmissionStatus string

const (
	SubmissionStatusDraft     SubmissionStatus = "draft"
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusNeedsInfo SubmissionStatus = "needs_info"
	SubmissionStatusApproved  SubmissionStatus = "approved"
	SubmissionStatusRejected  SubmissionStatus = "rejected"
	SubmissionStatusWithdrawn SubmissionStatus = "withdrawn"
)

// REJECTED не полностью терминален: основатель может ретроактивно одобрить.
var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionStatusDraft:     {SubmissionStatusPending, SubmissionStatusWithdrawn},
	SubmissionStatusPending:   {SubmissionStatusNeedsInfo, SubmissionStatusApproved, SubmissionStatusRejected, SubmissionStatusWithdrawn},
	SubmissionStatusNeedsInfo: {SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected, SubmissionStatusWithdrawn},
	SubmissionStatusApproved:  {},
	SubmissionStatusRejected:  {SubmissionStatusApproved},
	SubmissionStatusWithdrawn: {},
}

// CanTransitionTo проверяет допустимость перехода статуса сабмишена.
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	for _, allowed := range submissionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsEditable возвращает true, пока автор может редактировать сабмишен.
func (s SubmissionStatus) IsEditable() bool {
	return s == SubmissionStatusDraft || s == SubmissionStatusPending || s == SubmissionStatusNeedsInfo
}

// IsResolved возвращает true для статусов, не считающихся "висящими" на баунти.
func (s SubmissionStatus) IsResolved() bool {
	return s == SubmissionStatusRejected || s == SubmissionStatusWithdrawn
}

// PaymentStatus статус оплаты выплаты внешним платёжным провайдером.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusFailed},
	PaymentStatusProcessing: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:       {PaymentStatusRefunded},
	PaymentStatusFailed:     {PaymentStatusProcessing},
	PaymentStatusRefunded:   {},
}

// CanTransitionTo проверяет допустимость перехода статуса оплаты.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsPaidAdjacent возвращает true, когда получатель уже может подтверждать получение.
func (s PaymentStatus) IsPaidAdjacent() bool {
	return s == PaymentStatusProcessing || s == PaymentStatusPaid
}

// RecipientStatus статус подтверждения получателя выплаты.
type RecipientStatus string

const (
	RecipientStatusPending   RecipientStatus = "pending"
	RecipientStatusConfirmed RecipientStatus = "confirmed"
	RecipientStatusDisputed  RecipientStatus = "disputed"
)
