package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/bounty-backend/internal/logger"
	"github.com/ignatzorin/bounty-backend/internal/models"
	"github.com/ignatzorin/bounty-backend/internal/pkg/apperror"
	"github.com/ignatzorin/bounty-backend/internal/repository"
)

// PayoutRepository хранилище выплат.
type PayoutRepository interface {
	Create(ctx context.Context, payout *models.Payout, recipients []models.PayoutRecipient) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Payout, error)
	ListRecipients(ctx context.Context, payoutID uuid.UUID) ([]models.PayoutRecipient, error)
	UpdatePaymentStatus(ctx context.Context, payoutID uuid.UUID, next models.PaymentStatus) (*models.Payout, error)
	ConfirmReceipt(ctx context.Context, payoutID, userID uuid.UUID, confirmed bool, disputeReason *string) (*models.PayoutRecipient, error)
}

// ContributorReader источник заработанных поинтов.
type ContributorReader interface {
	EarnedPoints(ctx context.Context, projectID uuid.UUID) ([]models.ContributorStanding, error)
}

// PoolReader источник пулов вознаграждений.
type PoolReader interface {
	GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.RewardPool, error)
}

// FounderReader источник владельца проекта.
type FounderReader interface {
	GetFounderID(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
}

// PayoutBreakdown расчёт выплаты до её создания.
type PayoutBreakdown struct {
	ReportedProfitCents    int64            `json:"reported_profit_cents"`
	PoolAmountCents        int64            `json:"pool_amount_cents"`
	PlatformFeeCents       int64            `json:"platform_fee_cents"`
	DistributedAmountCents int64            `json:"distributed_amount_cents"`
	TotalPoints            int64            `json:"total_points"`
	PoolCapacity           int64            `json:"pool_capacity"`
	Recipients             []RecipientShare `json:"recipients"`
}

// CreatePayoutInput параметры создания выплаты.
type CreatePayoutInput struct {
	ProjectID           uuid.UUID
	PeriodStart         time.Time
	PeriodEnd           time.Time
	PeriodLabel         string
	ReportedProfitCents int64
	StripeFeeCents      int64
}

// PayoutService калькулятор и жизненный цикл выплат.
type PayoutService struct {
	payouts      PayoutRepository
	contributors ContributorReader
	pools        PoolReader
	projects     FounderReader
	notifier     EventNotifier
}

// NewPayoutService создаёт сервис выплат.
func NewPayoutService(payouts PayoutRepository, contributors ContributorReader, pools PoolReader, projects FounderReader) *PayoutService {
	return &PayoutService{payouts: payouts, contributors: contributors, pools: pools, projects: projects}
}

// SetNotifier подключает доставку событий получателям.
func (s *PayoutService) SetNotifier(n EventNotifier) {
	s.notifier = n
}

// Preview считает разбивку выплаты, ничего не записывая.
func (s *PayoutService) Preview(ctx context.Context, actorID, projectID uuid.UUID, reportedProfitCents int64) (*PayoutBreakdown, error) {
	pool, _, err := s.authorizeFounder(ctx, actorID, projectID, reportedProfitCents)
	if err != nil {
		return nil, err
	}
	return s.breakdown(ctx, pool, reportedProfitCents)
}

// Create создаёт неизменяемую выплату: снимок ёмкости пула и поинтов каждого
// получателя фиксируется навсегда, последующие расширения пула и новые
// одобрения исторические выплаты не меняют.
func (s *PayoutService) Create(ctx context.Context, actorID uuid.UUID, input CreatePayoutInput) (*models.Payout, []models.PayoutRecipient, error) {
	pool, founderID, err := s.authorizeFounder(ctx, actorID, input.ProjectID, input.ReportedProfitCents)
	if err != nil {
		return nil, nil, err
	}
	if input.StripeFeeCents < 0 {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "комиссия провайдера не может быть отрицательной")
	}

	breakdown, err := s.breakdown(ctx, pool, input.ReportedProfitCents)
	if err != nil {
		return nil, nil, err
	}

	payout := &models.Payout{
		ProjectID:              input.ProjectID,
		PeriodStart:            input.PeriodStart,
		PeriodEnd:              input.PeriodEnd,
		PeriodLabel:            input.PeriodLabel,
		ReportedProfitCents:    input.ReportedProfitCents,
		PoolAmountCents:        breakdown.PoolAmountCents,
		PlatformFeeCents:       breakdown.PlatformFeeCents,
		StripeFeeCents:         input.StripeFeeCents,
		DistributedAmountCents: breakdown.DistributedAmountCents,
		PoolCapacityAtPayout:   pool.PoolCapacity,
		CreatedBy:              founderID,
	}

	recipients := make([]models.PayoutRecipient, len(breakdown.Recipients))
	for i, share := range breakdown.Recipients {
		recipients[i] = models.PayoutRecipient{
			UserID:         share.UserID,
			PointsAtPayout: share.PointsAtPayout,
			AmountCents:    share.AmountCents,
		}
	}

	if err := s.payouts.Create(ctx, payout, recipients); err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать выплату")
	}

	s.notifyRecipients(recipients, "payout.created", payout.ID)

	return payout, recipients, nil
}

// Get возвращает выплату с получателями.
func (s *PayoutService) Get(ctx context.Context, payoutID uuid.UUID) (*models.Payout, []models.PayoutRecipient, error) {
	payout, err := s.payouts.GetByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, repository.ErrPayoutNotFound) {
			return nil, nil, apperror.ErrPayoutNotFound
		}
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить выплату")
	}
	recipients, err := s.payouts.ListRecipients(ctx, payoutID)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить получателей выплаты")
	}
	return payout, recipients, nil
}

// ListByProject возвращает выплаты проекта.
func (s *PayoutService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Payout, error) {
	payouts, err := s.payouts.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить выплаты")
	}
	return payouts, nil
}

// ApplyPaymentStatus применяет колбэк платёжного провайдера.
func (s *PayoutService) ApplyPaymentStatus(ctx context.Context, payoutID uuid.UUID, next models.PaymentStatus) (*models.Payout, error) {
	payout, err := s.payouts.UpdatePaymentStatus(ctx, payoutID, next)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPayoutNotFound):
			return nil, apperror.ErrPayoutNotFound
		case errors.Is(err, repository.ErrPaymentStatusTransition):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "недопустимый переход статуса оплаты")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус оплаты")
	}

	if next == models.PaymentStatusPaid && s.notifier != nil {
		recipients, listErr := s.payouts.ListRecipients(ctx, payoutID)
		if listErr == nil {
			s.notifyRecipients(recipients, "payout.paid", payoutID)
		} else if logger.Log != nil {
			logger.Log.WithError(listErr).Warn("payout: не удалось получить получателей для уведомления")
		}
	}

	return payout, nil
}

// ConfirmReceipt фиксирует подтверждение или спор получателя.
func (s *PayoutService) ConfirmReceipt(ctx context.Context, payoutID, userID uuid.UUID, confirmed bool, disputeReason *string) (*models.PayoutRecipient, error) {
	if !confirmed && (disputeReason == nil || *disputeReason == "") {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите причину спора")
	}
	recipient, err := s.payouts.ConfirmReceipt(ctx, payoutID, userID, confirmed, disputeReason)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPayoutNotFound):
			return nil, apperror.ErrPayoutNotFound
		case errors.Is(err, repository.ErrRecipientNotFound):
			return nil, apperror.ErrRecipientNotFound
		case errors.Is(err, repository.ErrPayoutNotPaid):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "выплата ещё не отправлена провайдером")
		case errors.Is(err, repository.ErrReceiptAlreadyRecorded):
			return nil, apperror.New(apperror.ErrCodeConflict, "получение уже подтверждено или оспорено")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось подтвердить получение")
	}
	return recipient, nil
}

// authorizeFounder валидирует вход и возвращает пул и основателя проекта.
func (s *PayoutService) authorizeFounder(ctx context.Context, actorID, projectID uuid.UUID, reportedProfitCents int64) (*models.RewardPool, uuid.UUID, error) {
	if reportedProfitCents < 0 {
		return nil, uuid.Nil, apperror.New(apperror.ErrCodeValidation, "прибыль не может быть отрицательной")
	}

	founderID, err := s.projects.GetFounderID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, uuid.Nil, apperror.ErrProjectNotFound
		}
		return nil, uuid.Nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}
	if founderID != actorID {
		return nil, uuid.Nil, apperror.New(apperror.ErrCodeForbidden, "выплаты может создавать только основатель проекта")
	}

	pool, err := s.pools.GetByProjectID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrPoolNotFound) {
			return nil, uuid.Nil, apperror.New(apperror.ErrCodeBadRequest, "у проекта нет пула вознаграждений")
		}
		return nil, uuid.Nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пул")
	}

	return pool, founderID, nil
}

// breakdown выполняет общий алгоритм preview/create на целых центах.
func (s *PayoutService) breakdown(ctx context.Context, pool *models.RewardPool, reportedProfitCents int64) (*PayoutBreakdown, error) {
	contributors, err := s.contributors.EarnedPoints(ctx, pool.ProjectID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить поинты контрибьюторов")
	}

	var totalPoints int64
	for _, c := range contributors {
		totalPoints += c.Points
	}

	poolAmount := poolAmountCents(reportedProfitCents, pool.PoolPercentage)
	breakdown := &PayoutBreakdown{
		ReportedProfitCents: reportedProfitCents,
		PoolAmountCents:     poolAmount,
		PlatformFeeCents:    platformFeeCents(poolAmount, pool.PlatformFeePercentage),
		TotalPoints:         totalPoints,
		PoolCapacity:        pool.PoolCapacity,
	}

	// Без заработанных поинтов распределять нечего.
	if totalPoints == 0 {
		return breakdown, nil
	}

	breakdown.Recipients = distributeByLargestRemainder(poolAmount, contributors)
	breakdown.DistributedAmountCents = poolAmount
	return breakdown, nil
}

// notifyRecipients рассылает событие получателям, не блокируя операцию.
func (s *PayoutService) notifyRecipients(recipients []models.PayoutRecipient, event string, payoutID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	for _, recipient := range recipients {
		if err := s.notifier.BroadcastToUser(recipient.UserID, event, map[string]any{
			"payout_id":    payoutID,
			"amount_cents": recipient.AmountCents,
		}); err != nil && logger.Log != nil {
			logger.Log.WithError(err).Warn("payout: не удалось отправить уведомление")
		}
	}
}
