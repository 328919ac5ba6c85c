package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/bounty-backend/internal/models"
	"github.com/ignatzorin/bounty-backend/internal/pkg/apperror"
	"github.com/ignatzorin/bounty-backend/internal/repository"
)

// ProjectRepository хранилище проектов.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project, pool *models.RewardPool) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetFounderID(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
}

// PoolRepository хранилище пулов вознаграждений.
type PoolRepository interface {
	GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.RewardPool, error)
	ListExpansions(ctx context.Context, poolID uuid.UUID) ([]models.PoolExpansionEvent, error)
}

// CreateProjectInput параметры создания проекта с пулом.
type CreateProjectInput struct {
	Name                  string
	Description           string
	PoolPercentage        int
	PoolCapacity          int64
	PlatformFeePercentage int
	PayoutFrequency       string
	CommitmentEndsAt      *time.Time
}

// ProjectService проекты и их пулы вознаграждений.
type ProjectService struct {
	projects ProjectRepository
	pools    PoolRepository
}

// NewProjectService создаёт сервис проектов.
func NewProjectService(projects ProjectRepository, pools PoolRepository) *ProjectService {
	return &ProjectService{projects: projects, pools: pools}
}

// Create создаёт проект вместе с пулом вознаграждений.
func (s *ProjectService) Create(ctx context.Context, founderID uuid.UUID, input CreateProjectInput) (*models.Project, *models.RewardPool, error) {
	if input.Name == "" {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "название проекта обязательно")
	}
	if input.PoolPercentage < 1 || input.PoolPercentage > 100 {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "процент пула должен быть от 1 до 100")
	}
	if input.PoolCapacity < 0 {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "ёмкость пула не может быть отрицательной")
	}
	if input.PlatformFeePercentage < 0 || input.PlatformFeePercentage > 100 {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "комиссия платформы должна быть от 0 до 100")
	}
	if input.PayoutFrequency == "" {
		input.PayoutFrequency = "monthly"
	}

	project := &models.Project{
		FounderID:   founderID,
		Name:        input.Name,
		Description: input.Description,
	}
	pool := &models.RewardPool{
		PoolPercentage:        input.PoolPercentage,
		PoolCapacity:          input.PoolCapacity,
		PlatformFeePercentage: input.PlatformFeePercentage,
		PayoutFrequency:       input.PayoutFrequency,
		CommitmentEndsAt:      input.CommitmentEndsAt,
	}
	if err := s.projects.Create(ctx, project, pool); err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать проект")
	}
	return project, pool, nil
}

// Get возвращает проект.
func (s *ProjectService) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}
	return project, nil
}

// GetPool возвращает пул проекта вместе с журналом расширений ёмкости.
func (s *ProjectService) GetPool(ctx context.Context, projectID uuid.UUID) (*models.RewardPool, []models.PoolExpansionEvent, error) {
	pool, err := s.pools.GetByProjectID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrPoolNotFound) {
			return nil, nil, apperror.ErrPoolNotFound
		}
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пул")
	}
	events, err := s.pools.ListExpansions(ctx, pool.ID)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить журнал расширений")
	}
	return pool, events, nil
}
