package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/bounty-backend/internal/models"
)

var (
	ErrPayoutNotFound          = errors.New("payout not found")
	ErrRecipientNotFound       = errors.New("payout recipient not found")
	ErrPayoutNotPaid           = errors.New("payout is not in a paid-adjacent status")
	ErrReceiptAlreadyRecorded  = errors.New("receipt already confirmed or disputed")
	ErrPaymentStatusTransition = errors.New("invalid payment status transition")
)

// PayoutRepository отвечает за выплаты и их получателей.
type PayoutRepository struct {
	db *sqlx.DB
}

// NewPayoutRepository создаёт новый экземпляр.
func NewPayoutRepository(db *sqlx.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

const payoutColumns = `id, project_id, period_start, period_end, period_label, reported_profit_cents,
	pool_amount_cents, platform_fee_cents, stripe_fee_cents, distributed_amount_cents,
	pool_capacity_at_payout, payment_status, created_by, created_at`

const recipientColumns = `id, payout_id, user_id, points_at_payout, amount_cents, status, dispute_reason, paid_at, created_at`

// Create сохраняет выплату и всех получателей одной транзакцией: частично
// записанная выплата сломала бы проверяемость суммы распределения.
func (r *PayoutRepository) Create(ctx context.Context, payout *models.Payout, recipients []models.PayoutRecipient) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("payout repository: create begin tx %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, payout, `
		INSERT INTO payouts (project_id, period_start, period_end, period_label,
			reported_profit_cents, pool_amount_cents, platform_fee_cents, stripe_fee_cents,
			distributed_amount_cents, pool_capacity_at_payout, payment_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending', $11)
		RETURNING `+payoutColumns,
		payout.ProjectID, payout.PeriodStart, payout.PeriodEnd, payout.PeriodLabel,
		payout.ReportedProfitCents, payout.PoolAmountCents, payout.PlatformFeeCents,
		payout.StripeFeeCents, payout.DistributedAmountCents, payout.PoolCapacityAtPayout,
		payout.CreatedBy)
	if err != nil {
		return fmt.Errorf("payout repository: create %w", err)
	}

	for i := range recipients {
		recipient := &recipients[i]
		err = tx.GetContext(ctx, recipient, `
			INSERT INTO payout_recipients (payout_id, user_id, points_at_payout, amount_cents, status)
			VALUES ($1, $2, $3, $4, 'pending')
			RETURNING `+recipientColumns,
			payout.ID, recipient.UserID, recipient.PointsAtPayout, recipient.AmountCents)
		if err != nil {
			return fmt.Errorf("payout repository: create recipient %w", err)
		}
	}

	return tx.Commit()
}

// GetByID возвращает выплату по идентификатору.
func (r *PayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`
	if err := r.db.GetContext(ctx, &payout, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("payout repository: get by id %w", err)
	}
	return &payout, nil
}

// ListByProject возвращает выплаты проекта.
func (r *PayoutRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Payout, error) {
	var payouts []models.Payout
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE project_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &payouts, query, projectID); err != nil {
		return nil, fmt.Errorf("payout repository: list by project %w", err)
	}
	return payouts, nil
}

// ListRecipients возвращает получателей выплаты.
func (r *PayoutRepository) ListRecipients(ctx context.Context, payoutID uuid.UUID) ([]models.PayoutRecipient, error) {
	var recipients []models.PayoutRecipient
	query := `SELECT ` + recipientColumns + ` FROM payout_recipients WHERE payout_id = $1 ORDER BY user_id`
	if err := r.db.SelectContext(ctx, &recipients, query, payoutID); err != nil {
		return nil, fmt.Errorf("payout repository: list recipients %w", err)
	}
	return recipients, nil
}

// UpdatePaymentStatus применяет колбэк платёжного провайдера. Переход
// проверяется по таблице статусов; при PAID всем получателям ставится paid_at.
func (r *PayoutRepository) UpdatePaymentStatus(ctx context.Context, payoutID uuid.UUID, next models.PaymentStatus) (*models.Payout, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("payout repository: payment status begin tx %w", err)
	}
	defer tx.Rollback()

	payout, err := lockPayout(ctx, tx, payoutID)
	if err != nil {
		return nil, err
	}
	if !payout.PaymentStatus.CanTransitionTo(next) {
		return nil, ErrPaymentStatusTransition
	}

	err = tx.GetContext(ctx, payout, `
		UPDATE payouts SET payment_status = $2 WHERE id = $1
		RETURNING `+payoutColumns, payoutID, next)
	if err != nil {
		return nil, fmt.Errorf("payout repository: payment status %w", err)
	}

	if next == models.PaymentStatusPaid {
		_, err = tx.ExecContext(ctx, `
			UPDATE payout_recipients SET paid_at = NOW() WHERE payout_id = $1 AND paid_at IS NULL
		`, payoutID)
		if err != nil {
			return nil, fmt.Errorf("payout repository: stamp paid_at %w", err)
		}
	}

	return payout, tx.Commit()
}

// ConfirmReceipt записывает подтверждение или спор получателя. Доступно
// только после того, как провайдер перевёл выплату в paid-adjacent статус.
func (r *PayoutRepository) ConfirmReceipt(ctx context.Context, payoutID, userID uuid.UUID, confirmed bool, disputeReason *string) (*models.PayoutRecipient, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("payout repository: confirm begin tx %w", err)
	}
	defer tx.Rollback()

	payout, err := lockPayout(ctx, tx, payoutID)
	if err != nil {
		return nil, err
	}
	if !payout.PaymentStatus.IsPaidAdjacent() {
		return nil, ErrPayoutNotPaid
	}

	var recipient models.PayoutRecipient
	err = tx.GetContext(ctx, &recipient, `
		SELECT `+recipientColumns+` FROM payout_recipients
		WHERE payout_id = $1 AND user_id = $2
		FOR UPDATE
	`, payoutID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("payout repository: confirm lock recipient %w", err)
	}
	if recipient.Status != models.RecipientStatusPending {
		return nil, ErrReceiptAlreadyRecorded
	}

	status := models.RecipientStatusConfirmed
	if !confirmed {
		status = models.RecipientStatusDisputed
	}

	err = tx.GetContext(ctx, &recipient, `
		UPDATE payout_recipients SET status = $3, dispute_reason = $4
		WHERE payout_id = $1 AND user_id = $2
		RETURNING `+recipientColumns, payoutID, userID, status, disputeReason)
	if err != nil {
		return nil, fmt.Errorf("payout repository: confirm %w", err)
	}

	return &recipient, tx.Commit()
}

// lockPayout читает выплату под блокировкой строки.
func lockPayout(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &payout, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("payout repository: lock payout %w", err)
	}
	return &payout, nil
}
