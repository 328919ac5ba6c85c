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

var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository отвечает за проекты.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository создаёт новый экземпляр.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create создаёт проект вместе с его пулом вознаграждений одной транзакцией.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project, pool *models.RewardPool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("project repository: create begin tx %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, project, `
		INSERT INTO projects (founder_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, founder_id, name, description, created_at, updated_at
	`, project.FounderID, project.Name, project.Description)
	if err != nil {
		return fmt.Errorf("project repository: create project %w", err)
	}

	err = tx.GetContext(ctx, pool, `
		INSERT INTO reward_pools (project_id, pool_percentage, pool_capacity, platform_fee_percentage, payout_frequency, commitment_ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+poolColumns, project.ID, pool.PoolPercentage, pool.PoolCapacity,
		pool.PlatformFeePercentage, pool.PayoutFrequency, pool.CommitmentEndsAt)
	if err != nil {
		return fmt.Errorf("project repository: create pool %w", err)
	}

	return tx.Commit()
}

// GetByID возвращает проект по идентификатору.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	query := `SELECT id, founder_id, name, description, created_at, updated_at FROM projects WHERE id = $1`
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("project repository: get by id %w", err)
	}
	return &project, nil
}

// GetFounderID возвращает основателя проекта.
func (r *ProjectRepository) GetFounderID(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	var founderID uuid.UUID
	err := r.db.GetContext(ctx, &founderID, `SELECT founder_id FROM projects WHERE id = $1`, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrProjectNotFound
		}
		return uuid.Nil, fmt.Errorf("project repository: get founder %w", err)
	}
	return founderID, nil
}
