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

// Срок жизни claim по умолчанию, в днях.
const defaultClaimExpiryDays = 14

// BountyRepository хранилище баунти и claims.
type BountyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error)
	GetWithFounder(ctx context.Context, id uuid.UUID) (*models.Bounty, uuid.UUID, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bounty, error)
	Create(ctx context.Context, bounty *models.Bounty) error
	Update(ctx context.Context, id uuid.UUID, title, description string, points *int64) (*models.Bounty, error)
	Claim(ctx context.Context, bountyID, userID uuid.UUID) (*models.BountyClaim, error)
	GetClaimWithBounty(ctx context.Context, claimID uuid.UUID) (*models.BountyClaim, *models.Bounty, uuid.UUID, error)
	ListClaimsByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.BountyClaim, error)
	ListClaimsByUser(ctx context.Context, userID uuid.UUID) ([]models.BountyClaim, error)
	ReleaseClaim(ctx context.Context, claimID uuid.UUID) (*models.BountyClaim, error)
	ExpireOverdueClaims(ctx context.Context, now time.Time) (int, error)
	Close(ctx context.Context, id uuid.UUID) (*models.Bounty, error)
	Reopen(ctx context.Context, id uuid.UUID) (*models.Bounty, error)
}

// CreateBountyInput параметры создания баунти.
type CreateBountyInput struct {
	ProjectID       uuid.UUID
	Title           string
	Description     string
	Points          *int64
	ClaimMode       models.ClaimMode
	MaxClaims       *int
	ClaimExpiryDays int
}

// UpdateBountyInput параметры редактирования баунти.
type UpdateBountyInput struct {
	Title       string
	Description string
	Points      *int64
}

// BountyService жизненный цикл баунти и claims.
type BountyService struct {
	bounties BountyRepository
	projects FounderReader
	notifier EventNotifier
}

// NewBountyService создаёт сервис баунти.
func NewBountyService(bounties BountyRepository, projects FounderReader) *BountyService {
	return &BountyService{bounties: bounties, projects: projects}
}

// SetNotifier подключает доставку событий.
func (s *BountyService) SetNotifier(n EventNotifier) {
	s.notifier = n
}

// Create создаёт баунти. Без поинтов задача попадает в бэклог, с поинтами —
// сразу открывается, и её стоимость резервируется в пуле проекта.
func (s *BountyService) Create(ctx context.Context, actorID uuid.UUID, input CreateBountyInput) (*models.Bounty, error) {
	if err := s.requireFounder(ctx, actorID, input.ProjectID); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название баунти обязательно")
	}
	if input.Points != nil && *input.Points <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "поинты должны быть положительными")
	}

	claimMode := input.ClaimMode
	if claimMode == "" {
		claimMode = models.ClaimModeSingle
	}
	if claimMode != models.ClaimModeSingle && claimMode != models.ClaimModeMultiple {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный режим claim")
	}
	if input.MaxClaims != nil {
		if claimMode == models.ClaimModeSingle {
			return nil, apperror.New(apperror.ErrCodeValidation, "max_claims применим только к режиму multiple")
		}
		if *input.MaxClaims < 1 {
			return nil, apperror.New(apperror.ErrCodeValidation, "max_claims должен быть не меньше 1")
		}
	}

	expiryDays := input.ClaimExpiryDays
	if expiryDays == 0 {
		expiryDays = defaultClaimExpiryDays
	}
	if expiryDays < 1 {
		return nil, apperror.New(apperror.ErrCodeValidation, "срок claim должен быть не меньше одного дня")
	}

	status := models.BountyStatusBacklog
	if input.Points != nil {
		status = models.BountyStatusOpen
	}

	bounty := &models.Bounty{
		ProjectID:       input.ProjectID,
		Title:           input.Title,
		Description:     input.Description,
		Points:          input.Points,
		Status:          status,
		ClaimMode:       claimMode,
		MaxClaims:       input.MaxClaims,
		ClaimExpiryDays: expiryDays,
	}
	if err := s.bounties.Create(ctx, bounty); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать баунти")
	}
	return bounty, nil
}

// Update редактирует баунти. Смена статуса выводится из наличия поинтов,
// терминальные баунти не редактируются.
func (s *BountyService) Update(ctx context.Context, actorID, bountyID uuid.UUID, input UpdateBountyInput) (*models.Bounty, error) {
	if _, err := s.requireBountyFounder(ctx, actorID, bountyID); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название баунти обязательно")
	}
	if input.Points != nil && *input.Points <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "поинты должны быть положительными")
	}

	bounty, err := s.bounties.Update(ctx, bountyID, input.Title, input.Description, input.Points)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBountyNotFound):
			return nil, apperror.ErrBountyNotFound
		case errors.Is(err, repository.ErrBountyNotEditable):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "завершённое или закрытое баунти нельзя редактировать")
		case errors.Is(err, repository.ErrBountyClaimedBacklog):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "нельзя снять оценку со взятого баунти")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить баунти")
	}
	return bounty, nil
}

// Get возвращает баунти.
func (s *BountyService) Get(ctx context.Context, bountyID uuid.UUID) (*models.Bounty, error) {
	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return nil, apperror.ErrBountyNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	return bounty, nil
}

// ListByProject возвращает баунти проекта.
func (s *BountyService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bounty, error) {
	bounties, err := s.bounties.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти проекта")
	}
	return bounties, nil
}

// Claim берёт баунти в работу от имени контрибьютора.
func (s *BountyService) Claim(ctx context.Context, userID, bountyID uuid.UUID) (*models.BountyClaim, error) {
	claim, err := s.bounties.Claim(ctx, bountyID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBountyNotFound):
			return nil, apperror.ErrBountyNotFound
		case errors.Is(err, repository.ErrBountyNotClaimable):
			return nil, apperror.New(apperror.ErrCodeBadRequest, "баунти нельзя взять в текущем статусе")
		case errors.Is(err, repository.ErrBountyAlreadyClaimed):
			return nil, apperror.New(apperror.ErrCodeConflict, "баунти уже взято другим контрибьютором")
		case errors.Is(err, repository.ErrDuplicateClaim):
			return nil, apperror.New(apperror.ErrCodeConflict, "у вас уже есть claim на это баунти")
		case errors.Is(err, repository.ErrClaimLimitReached):
			return nil, apperror.New(apperror.ErrCodeConflict, "лимит claims на баунти исчерпан")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось взять баунти")
	}

	s.notify(userID, "claim.created", map[string]any{
		"claim_id":   claim.ID,
		"bounty_id":  bountyID,
		"expires_at": claim.ExpiresAt,
	})

	return claim, nil
}

// ReleaseClaim снимает claim досрочно. Доступно клейманту и основателю проекта.
func (s *BountyService) ReleaseClaim(ctx context.Context, actorID, claimID uuid.UUID) (*models.BountyClaim, error) {
	claim, _, founderID, err := s.bounties.GetClaimWithBounty(ctx, claimID)
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotFound) {
			return nil, apperror.ErrClaimNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить claim")
	}
	if actorID != claim.UserID && actorID != founderID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "снять claim может только его владелец или основатель проекта")
	}

	released, err := s.bounties.ReleaseClaim(ctx, claimID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClaimNotFound):
			return nil, apperror.ErrClaimNotFound
		case errors.Is(err, repository.ErrClaimNotOutstanding):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "claim уже завершён или просрочен")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось снять claim")
	}

	s.notify(claim.UserID, "claim.released", map[string]any{
		"claim_id":  claimID,
		"bounty_id": claim.BountyID,
	})

	return released, nil
}

// ListClaims возвращает claims баунти.
func (s *BountyService) ListClaims(ctx context.Context, bountyID uuid.UUID) ([]models.BountyClaim, error) {
	claims, err := s.bounties.ListClaimsByBounty(ctx, bountyID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить claims")
	}
	return claims, nil
}

// ListUserClaims возвращает claims пользователя.
func (s *BountyService) ListUserClaims(ctx context.Context, userID uuid.UUID) ([]models.BountyClaim, error) {
	claims, err := s.bounties.ListClaimsByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить claims пользователя")
	}
	return claims, nil
}

// Close закрывает баунти без выплаты награды.
func (s *BountyService) Close(ctx context.Context, actorID, bountyID uuid.UUID) (*models.Bounty, error) {
	if _, err := s.requireBountyFounder(ctx, actorID, bountyID); err != nil {
		return nil, err
	}
	bounty, err := s.bounties.Close(ctx, bountyID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBountyNotFound):
			return nil, apperror.ErrBountyNotFound
		case errors.Is(err, repository.ErrInvalidTransition):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "баунти нельзя закрыть в текущем статусе")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть баунти")
	}
	return bounty, nil
}

// Reopen переоткрывает закрытое баунти.
func (s *BountyService) Reopen(ctx context.Context, actorID, bountyID uuid.UUID) (*models.Bounty, error) {
	if _, err := s.requireBountyFounder(ctx, actorID, bountyID); err != nil {
		return nil, err
	}
	bounty, err := s.bounties.Reopen(ctx, bountyID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBountyNotFound):
			return nil, apperror.ErrBountyNotFound
		case errors.Is(err, repository.ErrInvalidTransition):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "переоткрыть можно только закрытое баунти")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось переоткрыть баунти")
	}
	return bounty, nil
}

// ExpireOverdue просрочивает все истёкшие claims. Вызывается планировщиком.
func (s *BountyService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.bounties.ExpireOverdueClaims(ctx, now)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось просрочить claims")
	}
	return expired, nil
}

func (s *BountyService) requireFounder(ctx context.Context, actorID, projectID uuid.UUID) error {
	founderID, err := s.projects.GetFounderID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return apperror.ErrProjectNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}
	if founderID != actorID {
		return apperror.New(apperror.ErrCodeForbidden, "операция доступна только основателю проекта")
	}
	return nil
}

func (s *BountyService) requireBountyFounder(ctx context.Context, actorID, bountyID uuid.UUID) (*models.Bounty, error) {
	bounty, founderID, err := s.bounties.GetWithFounder(ctx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return nil, apperror.ErrBountyNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	if founderID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "операция доступна только основателю проекта")
	}
	return bounty, nil
}

func (s *BountyService) notify(userID uuid.UUID, event string, data map[string]any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Warn("bounty: не удалось отправить уведомление")
	}
}
