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

var ErrPoolNotFound = errors.New("reward pool not found")

// PoolRepository отвечает за пулы вознаграждений и журнал расширений ёмкости.
type PoolRepository struct {
	db *sqlx.DB
}

// NewPoolRepository создаёт новый экземпляр.
func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

const poolColumns = `id, project_id, pool_percentage, pool_capacity, platform_fee_percentage, payout_frequency, commitment_ends_at, created_at, updated_at`

// GetByProjectID возвращает пул проекта.
func (r *PoolRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.RewardPool, error) {
	var pool models.RewardPool
	query := `SELECT ` + poolColumns + ` FROM reward_pools WHERE project_id = $1`
	if err := r.db.GetContext(ctx, &pool, query, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("pool repository: get by project %w", err)
	}
	return &pool, nil
}

// ListExpansions возвращает журнал расширений ёмкости пула.
func (r *PoolRepository) ListExpansions(ctx context.Context, poolID uuid.UUID) ([]models.PoolExpansionEvent, error) {
	var events []models.PoolExpansionEvent
	query := `
		SELECT id, pool_id, previous_capacity, new_capacity, reason, dilution_percent, created_at
		FROM pool_expansion_events WHERE pool_id = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &events, query, poolID); err != nil {
		return nil, fmt.Errorf("pool repository: list expansions %w", err)
	}
	return events, nil
}

// reservePoolCapacity резервирует additionalPoints поинтов в пуле проекта.
// Вызывается внутри транзакции, которая выполняет породившую запись баунти:
// расширение ёмкости и запись баунти фиксируются или откатываются вместе.
//
// Пул блокируется на строке; выделенные поинты считаются по баунти в статусах
// open/claimed/completed (бэклог с NULL-поинтами даёт ноль). Если новая сумма
// превышает ёмкость, ёмкость поднимается до суммы и пишется событие расширения.
func reservePoolCapacity(ctx context.Context, tx *sqlx.Tx, projectID uuid.UUID, additionalPoints int64, reason string) error {
	if additionalPoints <= 0 {
		return nil
	}

	var pool models.RewardPool
	query := `SELECT ` + poolColumns + ` FROM reward_pools WHERE project_id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &pool, query, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPoolNotFound
		}
		return fmt.Errorf("pool repository: lock pool %w", err)
	}

	var allocated int64
	err := tx.GetContext(ctx, &allocated, `
		SELECT COALESCE(SUM(points), 0) FROM bounties
		WHERE project_id = $1 AND status IN ('open', 'claimed', 'completed')
	`, projectID)
	if err != nil {
		return fmt.Errorf("pool repository: sum allocated %w", err)
	}

	newCapacity := nextCapacity(allocated, additionalPoints, pool.PoolCapacity)
	if newCapacity == pool.PoolCapacity {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE reward_pools SET pool_capacity = $2, updated_at = NOW() WHERE id = $1
	`, pool.ID, newCapacity)
	if err != nil {
		return fmt.Errorf("pool repository: expand capacity %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pool_expansion_events (pool_id, previous_capacity, new_capacity, reason, dilution_percent)
		VALUES ($1, $2, $3, $4, $5)
	`, pool.ID, pool.PoolCapacity, newCapacity, reason, models.DilutionPercent(pool.PoolCapacity, newCapacity))
	if err != nil {
		return fmt.Errorf("pool repository: record expansion %w", err)
	}

	return nil
}

// nextCapacity возвращает ёмкость пула после резервирования additional поинтов
// при allocated уже выделенных. Ёмкость никогда не уменьшается: пока сумма
// помещается, она остаётся прежней, иначе поднимается ровно до суммы.
func nextCapacity(allocated, additional, capacity int64) int64 {
	newTotal := allocated + additional
	if newTotal <= capacity {
		return capacity
	}
	return newTotal
}
