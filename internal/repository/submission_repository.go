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
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrClaimNotActive      = errors.New("no active claim for this bounty")
	ErrDuplicateSubmission = errors.New("user already has a live submission for this bounty")
	ErrSubmissionNotDraft  = errors.New("submission is not a draft")
	ErrSubmissionLocked    = errors.New("submission can no longer be edited")
	ErrReviewNotAllowed    = errors.New("review action not allowed in current status")
)

// SubmissionRepository отвечает за сабмишены и цикл ревью.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository создаёт новый экземпляр.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, bounty_id, user_id, description, status, points_awarded, review_note, reviewed_at, created_at, updated_at`

// Create создаёт сабмишен. Требуется ACTIVE claim автора на баунти; claim
// переводится в SUBMITTED той же транзакцией.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("submission repository: create begin tx %w", err)
	}
	defer tx.Rollback()

	var claimID uuid.UUID
	err = tx.GetContext(ctx, &claimID, `
		SELECT id FROM bounty_claims
		WHERE bounty_id = $1 AND user_id = $2 AND status = 'active'
		FOR UPDATE
	`, submission.BountyID, submission.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClaimNotActive
		}
		return fmt.Errorf("submission repository: create lock claim %w", err)
	}

	err = tx.GetContext(ctx, submission, `
		INSERT INTO submissions (bounty_id, user_id, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+submissionColumns,
		submission.BountyID, submission.UserID, submission.Description, submission.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("submission repository: create %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bounty_claims SET status = 'submitted', updated_at = NOW() WHERE id = $1
	`, claimID)
	if err != nil {
		return fmt.Errorf("submission repository: create update claim %w", err)
	}

	return tx.Commit()
}

// GetByID возвращает сабмишен по идентификатору.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("submission repository: get by id %w", err)
	}
	return &submission, nil
}

// GetWithFounder возвращает сабмишен вместе с баунти и основателем проекта.
func (r *SubmissionRepository) GetWithFounder(ctx context.Context, id uuid.UUID) (*models.Submission, *models.Bounty, uuid.UUID, error) {
	var row struct {
		SubID       uuid.UUID               `db:"sub_id"`
		SubUserID   uuid.UUID               `db:"sub_user_id"`
		SubStatus   models.SubmissionStatus `db:"sub_status"`
		Description string                  `db:"sub_description"`
		FounderID   uuid.UUID               `db:"founder_id"`
		models.Bounty
	}
	query := `
		SELECT s.id AS sub_id, s.user_id AS sub_user_id, s.status AS sub_status,
		       s.description AS sub_description, p.founder_id,
		       b.id, b.project_id, b.title, b.description, b.points, b.status, b.claim_mode,
		       b.max_claims, b.claim_expiry_days, b.created_at, b.updated_at
		FROM submissions s
		JOIN bounties b ON b.id = s.bounty_id
		JOIN projects p ON p.id = b.project_id
		WHERE s.id = $1
	`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, uuid.Nil, ErrSubmissionNotFound
		}
		return nil, nil, uuid.Nil, fmt.Errorf("submission repository: get with founder %w", err)
	}
	submission := &models.Submission{
		ID:          row.SubID,
		BountyID:    row.Bounty.ID,
		UserID:      row.SubUserID,
		Description: row.Description,
		Status:      row.SubStatus,
	}
	return submission, &row.Bounty, row.FounderID, nil
}

// ListByBounty возвращает сабмишены баунти.
func (r *SubmissionRepository) ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.Submission, error) {
	var submissions []models.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE bounty_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &submissions, query, bountyID); err != nil {
		return nil, fmt.Errorf("submission repository: list by bounty %w", err)
	}
	return submissions, nil
}

// UpdateContent обновляет описание. Разрешено только в редактируемых статусах,
// проверка выполняется тем же UPDATE, что и запись.
func (r *SubmissionRepository) UpdateContent(ctx context.Context, id uuid.UUID, description string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.GetContext(ctx, &submission, `
		UPDATE submissions SET description = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ('draft', 'pending', 'needs_info')
		RETURNING `+submissionColumns, id, description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionLocked
		}
		return nil, fmt.Errorf("submission repository: update content %w", err)
	}
	return &submission, nil
}

// SubmitDraft переводит черновик в PENDING.
func (r *SubmissionRepository) SubmitDraft(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.GetContext(ctx, &submission, `
		UPDATE submissions SET status = 'pending', updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
		RETURNING `+submissionColumns, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotDraft
		}
		return nil, fmt.Errorf("submission repository: submit draft %w", err)
	}
	return &submission, nil
}

// Approve одобряет сабмишен: начисляет поинты, завершает claim автора и,
// если на баунти не осталось незакрытых claims, завершает само баунти.
// Возвращает сабмишен и признак завершения баунти.
func (r *SubmissionRepository) Approve(ctx context.Context, id uuid.UUID, pointsAwarded int64, note *string) (*models.Submission, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("submission repository: approve begin tx %w", err)
	}
	defer tx.Rollback()

	submission, err := lockSubmission(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if !submission.Status.CanTransitionTo(models.SubmissionStatusApproved) {
		return nil, false, ErrReviewNotAllowed
	}

	bounty, err := lockBounty(ctx, tx, submission.BountyID)
	if err != nil {
		return nil, false, err
	}

	err = tx.GetContext(ctx, submission, `
		UPDATE submissions
		SET status = 'approved', points_awarded = $2, review_note = $3, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING `+submissionColumns, id, pointsAwarded, note)
	if err != nil {
		return nil, false, fmt.Errorf("submission repository: approve %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bounty_claims SET status = 'completed', updated_at = NOW()
		WHERE bounty_id = $1 AND user_id = $2 AND status IN ('active', 'submitted')
	`, submission.BountyID, submission.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("submission repository: approve complete claim %w", err)
	}

	var outstanding int
	err = tx.GetContext(ctx, &outstanding, `
		SELECT COUNT(*) FROM bounty_claims
		WHERE bounty_id = $1 AND status IN ('active', 'submitted')
	`, submission.BountyID)
	if err != nil {
		return nil, false, fmt.Errorf("submission repository: approve claim count %w", err)
	}

	bountyCompleted := false
	if outstanding == 0 && bounty.Status.CanTransitionTo(models.BountyStatusCompleted) {
		_, err = tx.ExecContext(ctx, `UPDATE bounties SET status = 'completed', updated_at = NOW() WHERE id = $1`, bounty.ID)
		if err != nil {
			return nil, false, fmt.Errorf("submission repository: approve complete bounty %w", err)
		}
		bountyCompleted = true
	}

	return submission, bountyCompleted, tx.Commit()
}

// Reject отклоняет сабмишен. Claim автора возвращается в ACTIVE: контрибьютор
// может доработать и отправить заново, пока claim не просрочен.
func (r *SubmissionRepository) Reject(ctx context.Context, id uuid.UUID, note *string) (*models.Submission, error) {
	return r.review(ctx, id, models.SubmissionStatusRejected, note, true)
}

// RequestInfo запрашивает уточнение у автора. Claim остаётся в SUBMITTED.
func (r *SubmissionRepository) RequestInfo(ctx context.Context, id uuid.UUID, note *string) (*models.Submission, error) {
	return r.review(ctx, id, models.SubmissionStatusNeedsInfo, note, false)
}

func (r *SubmissionRepository) review(ctx context.Context, id uuid.UUID, next models.SubmissionStatus, note *string, reactivateClaim bool) (*models.Submission, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("submission repository: review begin tx %w", err)
	}
	defer tx.Rollback()

	submission, err := lockSubmission(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !submission.Status.CanTransitionTo(next) {
		return nil, ErrReviewNotAllowed
	}

	err = tx.GetContext(ctx, submission, `
		UPDATE submissions
		SET status = $2, review_note = $3, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING `+submissionColumns, id, next, note)
	if err != nil {
		return nil, fmt.Errorf("submission repository: review %w", err)
	}

	if reactivateClaim {
		_, err = tx.ExecContext(ctx, `
			UPDATE bounty_claims SET status = 'active', updated_at = NOW()
			WHERE bounty_id = $1 AND user_id = $2 AND status = 'submitted'
		`, submission.BountyID, submission.UserID)
		if err != nil {
			return nil, fmt.Errorf("submission repository: review reactivate claim %w", err)
		}
	}

	return submission, tx.Commit()
}

// lockSubmission читает сабмишен под блокировкой строки.
func lockSubmission(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &submission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("submission repository: lock submission %w", err)
	}
	return &submission, nil
}
