package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/bounty-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrBountyNotFound       = errors.New("bounty not found")
	ErrClaimNotFound        = errors.New("claim not found")
	ErrBountyNotClaimable   = errors.New("bounty is not claimable")
	ErrBountyAlreadyClaimed = errors.New("bounty already claimed")
	ErrDuplicateClaim       = errors.New("user already has a claim on this bounty")
	ErrClaimLimitReached    = errors.New("claim limit reached")
	ErrClaimNotOutstanding  = errors.New("claim is not active or submitted")
	ErrBountyNotEditable    = errors.New("bounty is completed or closed")
	ErrBountyClaimedBacklog = errors.New("claimed bounty cannot move to backlog")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

const uniqueViolation = "23505"

// BountyRepository отвечает за баунти, claims и связанную ёмкость пула.
type BountyRepository struct {
	db *sqlx.DB
}

// NewBountyRepository создаёт новый экземпляр.
func NewBountyRepository(db *sqlx.DB) *BountyRepository {
	return &BountyRepository{db: db}
}

const bountyColumns = `id, project_id, title, description, points, status, claim_mode, max_claims, claim_expiry_days, created_at, updated_at`

// GetByID возвращает баунти по идентификатору.
func (r *BountyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	var bounty models.Bounty
	query := `SELECT ` + bountyColumns + ` FROM bounties WHERE id = $1`
	if err := r.db.GetContext(ctx, &bounty, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBountyNotFound
		}
		return nil, fmt.Errorf("bounty repository: get by id %w", err)
	}
	return &bounty, nil
}

// GetWithFounder возвращает баунти вместе с идентификатором основателя проекта.
func (r *BountyRepository) GetWithFounder(ctx context.Context, id uuid.UUID) (*models.Bounty, uuid.UUID, error) {
	var row struct {
		models.Bounty
		FounderID uuid.UUID `db:"founder_id"`
	}
	query := `
		SELECT b.id, b.project_id, b.title, b.description, b.points, b.status, b.claim_mode,
		       b.max_claims, b.claim_expiry_days, b.created_at, b.updated_at, p.founder_id
		FROM bounties b
		JOIN projects p ON p.id = b.project_id
		WHERE b.id = $1
	`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, uuid.Nil, ErrBountyNotFound
		}
		return nil, uuid.Nil, fmt.Errorf("bounty repository: get with founder %w", err)
	}
	return &row.Bounty, row.FounderID, nil
}

// ListByProject возвращает баунти проекта.
func (r *BountyRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bounty, error) {
	var bounties []models.Bounty
	query := `SELECT ` + bountyColumns + ` FROM bounties WHERE project_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bounties, query, projectID); err != nil {
		return nil, fmt.Errorf("bounty repository: list by project %w", err)
	}
	return bounties, nil
}

// Create создаёт баунти. Если указаны поинты, резервирование ёмкости пула
// выполняется в той же транзакции, что и вставка баунти: расширение и запись
// баунти фиксируются или откатываются вместе.
func (r *BountyRepository) Create(ctx context.Context, bounty *models.Bounty) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bounty repository: create begin tx %w", err)
	}
	defer tx.Rollback()

	if bounty.Points != nil {
		reason := fmt.Sprintf("bounty created: %s", bounty.Title)
		if err := reservePoolCapacity(ctx, tx, bounty.ProjectID, *bounty.Points, reason); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO bounties (project_id, title, description, points, status, claim_mode, max_claims, claim_expiry_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bountyColumns
	err = tx.GetContext(ctx, bounty, query,
		bounty.ProjectID, bounty.Title, bounty.Description, bounty.Points,
		bounty.Status, bounty.ClaimMode, bounty.MaxClaims, bounty.ClaimExpiryDays)
	if err != nil {
		return fmt.Errorf("bounty repository: create %w", err)
	}

	return tx.Commit()
}

// Update обновляет редактируемые поля баунти. Увеличение поинтов проходит
// через резервирование ёмкости пула в той же транзакции. Проверки
// редактируемости повторяются внутри транзакции под блокировкой строки.
func (r *BountyRepository) Update(ctx context.Context, id uuid.UUID, title, description string, points *int64) (*models.Bounty, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: update begin tx %w", err)
	}
	defer tx.Rollback()

	current, err := lockBounty(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if current.Status.IsTerminal() {
		return nil, ErrBountyNotEditable
	}
	if points == nil && current.Status == models.BountyStatusClaimed {
		return nil, ErrBountyClaimedBacklog
	}

	// Рост зарезервированных поинтов требует места в пуле.
	var oldPoints int64
	if current.Points != nil {
		oldPoints = *current.Points
	}
	if points != nil && *points > oldPoints {
		reason := fmt.Sprintf("bounty points increased: %s", title)
		if err := reservePoolCapacity(ctx, tx, current.ProjectID, *points-oldPoints, reason); err != nil {
			return nil, err
		}
	}

	// Назначение поинтов выводит задачу из бэклога, снятие — возвращает.
	status := current.Status
	if points == nil && status == models.BountyStatusOpen {
		status = models.BountyStatusBacklog
	}
	if points != nil && status == models.BountyStatusBacklog {
		status = models.BountyStatusOpen
	}

	var updated models.Bounty
	query := `
		UPDATE bounties
		SET title = $2, description = $3, points = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bountyColumns
	if err := tx.GetContext(ctx, &updated, query, id, title, description, points, status); err != nil {
		return nil, fmt.Errorf("bounty repository: update %w", err)
	}

	return &updated, tx.Commit()
}

// Claim создаёт claim на баунти. Все предусловия перепроверяются внутри
// транзакции под блокировкой строки баунти: из N конкурентных попыток на
// SINGLE-баунти ровно одна фиксируется.
func (r *BountyRepository) Claim(ctx context.Context, bountyID, userID uuid.UUID) (*models.BountyClaim, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: claim begin tx %w", err)
	}
	defer tx.Rollback()

	bounty, err := lockBounty(ctx, tx, bountyID)
	if err != nil {
		return nil, err
	}

	if !bounty.Status.IsClaimable() {
		return nil, ErrBountyNotClaimable
	}
	if bounty.Status == models.BountyStatusClaimed && bounty.ClaimMode == models.ClaimModeSingle {
		return nil, ErrBountyAlreadyClaimed
	}

	var duplicate int
	err = tx.GetContext(ctx, &duplicate, `
		SELECT COUNT(*) FROM bounty_claims
		WHERE bounty_id = $1 AND user_id = $2 AND status IN ('active', 'submitted')
	`, bountyID, userID)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: claim duplicate check %w", err)
	}
	if duplicate > 0 {
		return nil, ErrDuplicateClaim
	}

	var nonExpired int
	err = tx.GetContext(ctx, &nonExpired, `
		SELECT COUNT(*) FROM bounty_claims WHERE bounty_id = $1 AND status <> 'expired'
	`, bountyID)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: claim count check %w", err)
	}
	if bounty.ClaimMode == models.ClaimModeSingle && nonExpired > 0 {
		return nil, ErrBountyAlreadyClaimed
	}
	if bounty.MaxClaims != nil && nonExpired >= *bounty.MaxClaims {
		return nil, ErrClaimLimitReached
	}

	expiresAt := time.Now().Add(time.Duration(bounty.ClaimExpiryDays) * 24 * time.Hour)

	var claim models.BountyClaim
	err = tx.GetContext(ctx, &claim, `
		INSERT INTO bounty_claims (bounty_id, user_id, status, expires_at)
		VALUES ($1, $2, 'active', $3)
		RETURNING id, bounty_id, user_id, status, expires_at, created_at, updated_at
	`, bountyID, userID, expiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateClaim
		}
		return nil, fmt.Errorf("bounty repository: claim insert %w", err)
	}

	if bounty.ClaimMode == models.ClaimModeSingle {
		_, err = tx.ExecContext(ctx, `UPDATE bounties SET status = 'claimed', updated_at = NOW() WHERE id = $1`, bountyID)
		if err != nil {
			return nil, fmt.Errorf("bounty repository: claim bounty status %w", err)
		}
	}

	return &claim, tx.Commit()
}

// GetClaimWithBounty возвращает claim вместе с баунти и основателем проекта.
func (r *BountyRepository) GetClaimWithBounty(ctx context.Context, claimID uuid.UUID) (*models.BountyClaim, *models.Bounty, uuid.UUID, error) {
	var row struct {
		ClaimID        uuid.UUID          `db:"claim_id"`
		ClaimStatus    models.ClaimStatus `db:"claim_status"`
		ClaimUserID    uuid.UUID          `db:"claim_user_id"`
		ClaimExpiresAt time.Time          `db:"claim_expires_at"`
		ClaimCreatedAt time.Time          `db:"claim_created_at"`
		ClaimUpdatedAt time.Time          `db:"claim_updated_at"`
		FounderID      uuid.UUID          `db:"founder_id"`
		models.Bounty
	}
	query := `
		SELECT c.id AS claim_id, c.status AS claim_status, c.user_id AS claim_user_id,
		       c.expires_at AS claim_expires_at, c.created_at AS claim_created_at, c.updated_at AS claim_updated_at,
		       p.founder_id,
		       b.id, b.project_id, b.title, b.description, b.points, b.status, b.claim_mode,
		       b.max_claims, b.claim_expiry_days, b.created_at, b.updated_at
		FROM bounty_claims c
		JOIN bounties b ON b.id = c.bounty_id
		JOIN projects p ON p.id = b.project_id
		WHERE c.id = $1
	`
	if err := r.db.GetContext(ctx, &row, query, claimID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, uuid.Nil, ErrClaimNotFound
		}
		return nil, nil, uuid.Nil, fmt.Errorf("bounty repository: get claim %w", err)
	}
	claim := &models.BountyClaim{
		ID:        row.ClaimID,
		BountyID:  row.Bounty.ID,
		UserID:    row.ClaimUserID,
		Status:    row.ClaimStatus,
		ExpiresAt: row.ClaimExpiresAt,
		CreatedAt: row.ClaimCreatedAt,
		UpdatedAt: row.ClaimUpdatedAt,
	}
	return claim, &row.Bounty, row.FounderID, nil
}

// ListClaimsByBounty возвращает claims баунти.
func (r *BountyRepository) ListClaimsByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.BountyClaim, error) {
	var claims []models.BountyClaim
	query := `
		SELECT id, bounty_id, user_id, status, expires_at, created_at, updated_at
		FROM bounty_claims WHERE bounty_id = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &claims, query, bountyID); err != nil {
		return nil, fmt.Errorf("bounty repository: list claims %w", err)
	}
	return claims, nil
}

// ListClaimsByUser возвращает claims пользователя.
func (r *BountyRepository) ListClaimsByUser(ctx context.Context, userID uuid.UUID) ([]models.BountyClaim, error) {
	var claims []models.BountyClaim
	query := `
		SELECT id, bounty_id, user_id, status, expires_at, created_at, updated_at
		FROM bounty_claims WHERE user_id = $1 ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &claims, query, userID); err != nil {
		return nil, fmt.Errorf("bounty repository: list user claims %w", err)
	}
	return claims, nil
}

// ReleaseClaim помечает claim просроченным и возвращает SINGLE-баунти в OPEN.
// Живой сабмишен клейманта отзывается в той же транзакции.
func (r *BountyRepository) ReleaseClaim(ctx context.Context, claimID uuid.UUID) (*models.BountyClaim, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: release begin tx %w", err)
	}
	defer tx.Rollback()

	var claim models.BountyClaim
	err = tx.GetContext(ctx, &claim, `
		SELECT id, bounty_id, user_id, status, expires_at, created_at, updated_at
		FROM bounty_claims WHERE id = $1 FOR UPDATE
	`, claimID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("bounty repository: release lock claim %w", err)
	}

	if !claim.Status.IsOutstanding() {
		return nil, ErrClaimNotOutstanding
	}

	if err := expireClaimTx(ctx, tx, &claim); err != nil {
		return nil, err
	}

	return &claim, tx.Commit()
}

// ExpireOverdueClaims переводит все просроченные ACTIVE claims в EXPIRED и
// возвращает SINGLE-баунти в OPEN. Идемпотентна: повторный запуск на тех же
// данных ничего не меняет.
func (r *BountyRepository) ExpireOverdueClaims(ctx context.Context, now time.Time) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("bounty repository: sweep begin tx %w", err)
	}
	defer tx.Rollback()

	var expired []struct {
		BountyID uuid.UUID `db:"bounty_id"`
		UserID   uuid.UUID `db:"user_id"`
	}
	err = tx.SelectContext(ctx, &expired, `
		UPDATE bounty_claims SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND expires_at < $1
		RETURNING bounty_id, user_id
	`, now)
	if err != nil {
		return 0, fmt.Errorf("bounty repository: sweep expire %w", err)
	}

	if len(expired) == 0 {
		return 0, tx.Commit()
	}

	bountyIDs := make([]uuid.UUID, len(expired))
	userIDs := make([]uuid.UUID, len(expired))
	for i, e := range expired {
		bountyIDs[i] = e.BountyID
		userIDs[i] = e.UserID
	}

	// Черновики клеймантов без живого claim отзываются вместе с claim.
	_, err = tx.ExecContext(ctx, `
		UPDATE submissions s SET status = 'withdrawn', updated_at = NOW()
		FROM unnest($1::uuid[], $2::uuid[]) AS e(bounty_id, user_id)
		WHERE s.bounty_id = e.bounty_id AND s.user_id = e.user_id AND s.status = 'draft'
	`, pq.Array(bountyIDs), pq.Array(userIDs))
	if err != nil {
		return 0, fmt.Errorf("bounty repository: sweep withdraw drafts %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bounties SET status = 'open', updated_at = NOW()
		WHERE id = ANY($1) AND status = 'claimed' AND claim_mode = 'single'
	`, pq.Array(bountyIDs))
	if err != nil {
		return 0, fmt.Errorf("bounty repository: sweep reopen %w", err)
	}

	return len(expired), tx.Commit()
}

// Close закрывает баунти: все незакрытые claims просрочиваются, висящие
// сабмишены отзываются — одной транзакцией.
func (r *BountyRepository) Close(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: close begin tx %w", err)
	}
	defer tx.Rollback()

	bounty, err := lockBounty(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !bounty.Status.CanTransitionTo(models.BountyStatusClosed) {
		return nil, ErrInvalidTransition
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bounty_claims SET status = 'expired', updated_at = NOW()
		WHERE bounty_id = $1 AND status IN ('active', 'submitted')
	`, id)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: close expire claims %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE submissions SET status = 'withdrawn', updated_at = NOW()
		WHERE bounty_id = $1 AND status IN ('pending', 'needs_info')
	`, id)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: close withdraw submissions %w", err)
	}

	var closed models.Bounty
	err = tx.GetContext(ctx, &closed, `
		UPDATE bounties SET status = 'closed', updated_at = NOW() WHERE id = $1
		RETURNING `+bountyColumns, id)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: close %w", err)
	}

	return &closed, tx.Commit()
}

// Reopen переоткрывает закрытое баунти. Новый статус выводится из текущего
// состояния claims и наличия оценки в поинтах.
func (r *BountyRepository) Reopen(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: reopen begin tx %w", err)
	}
	defer tx.Rollback()

	bounty, err := lockBounty(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if bounty.Status != models.BountyStatusClosed {
		return nil, ErrInvalidTransition
	}

	var outstanding int
	err = tx.GetContext(ctx, &outstanding, `
		SELECT COUNT(*) FROM bounty_claims
		WHERE bounty_id = $1 AND status IN ('active', 'submitted')
	`, id)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: reopen claim count %w", err)
	}

	status := models.BountyStatusOpen
	switch {
	case bounty.Points == nil:
		status = models.BountyStatusBacklog
	case outstanding > 0 && bounty.ClaimMode == models.ClaimModeSingle:
		status = models.BountyStatusClaimed
	}

	var reopened models.Bounty
	err = tx.GetContext(ctx, &reopened, `
		UPDATE bounties SET status = $2, updated_at = NOW() WHERE id = $1
		RETURNING `+bountyColumns, id, status)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: reopen %w", err)
	}

	return &reopened, tx.Commit()
}

// lockBounty читает баунти под блокировкой строки.
func lockBounty(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Bounty, error) {
	var bounty models.Bounty
	query := `SELECT ` + bountyColumns + ` FROM bounties WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &bounty, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBountyNotFound
		}
		return nil, fmt.Errorf("bounty repository: lock bounty %w", err)
	}
	return &bounty, nil
}

// expireClaimTx просрочивает claim внутри открытой транзакции: отзывает живой
// сабмишен клейманта и возвращает SINGLE-баунти в OPEN, если оно не терминально.
func expireClaimTx(ctx context.Context, tx *sqlx.Tx, claim *models.BountyClaim) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bounty_claims SET status = 'expired', updated_at = NOW() WHERE id = $1
	`, claim.ID)
	if err != nil {
		return fmt.Errorf("bounty repository: expire claim %w", err)
	}
	claim.Status = models.ClaimStatusExpired

	_, err = tx.ExecContext(ctx, `
		UPDATE submissions SET status = 'withdrawn', updated_at = NOW()
		WHERE bounty_id = $1 AND user_id = $2 AND status IN ('draft', 'pending', 'needs_info')
	`, claim.BountyID, claim.UserID)
	if err != nil {
		return fmt.Errorf("bounty repository: expire claim withdraw submission %w", err)
	}

	bounty, err := lockBounty(ctx, tx, claim.BountyID)
	if err != nil {
		return err
	}
	if bounty.ClaimMode == models.ClaimModeSingle && bounty.Status == models.BountyStatusClaimed {
		_, err = tx.ExecContext(ctx, `UPDATE bounties SET status = 'open', updated_at = NOW() WHERE id = $1`, bounty.ID)
		if err != nil {
			return fmt.Errorf("bounty repository: expire claim reopen bounty %w", err)
		}
	}
	return nil
}

// isUniqueViolation распознаёт нарушение уникального индекса PostgreSQL.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
