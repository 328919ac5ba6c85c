package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/bounty-backend/internal/logger"
	"github.com/ignatzorin/bounty-backend/internal/models"
	"github.com/ignatzorin/bounty-backend/internal/pkg/apperror"
	"github.com/ignatzorin/bounty-backend/internal/repository"
)

// SubmissionRepository хранилище сабмишенов.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	GetWithFounder(ctx context.Context, id uuid.UUID) (*models.Submission, *models.Bounty, uuid.UUID, error)
	ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.Submission, error)
	UpdateContent(ctx context.Context, id uuid.UUID, description string) (*models.Submission, error)
	SubmitDraft(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	Approve(ctx context.Context, id uuid.UUID, pointsAwarded int64, note *string) (*models.Submission, bool, error)
	Reject(ctx context.Context, id uuid.UUID, note *string) (*models.Submission, error)
	RequestInfo(ctx context.Context, id uuid.UUID, note *string) (*models.Submission, error)
}

// ReviewAction действие ревьюера над сабмишеном.
type ReviewAction string

const (
	ReviewActionApprove     ReviewAction = "approve"
	ReviewActionReject      ReviewAction = "reject"
	ReviewActionRequestInfo ReviewAction = "request_info"
)

// ReviewInput параметры ревью сабмишена.
type ReviewInput struct {
	Action ReviewAction
	Note   *string
	// PointsOverride позволяет начислить не столько, сколько стоит баунти.
	PointsOverride *int64
}

// SubmissionService цикл сдачи и ревью работы.
type SubmissionService struct {
	submissions SubmissionRepository
	notifier    EventNotifier
}

// NewSubmissionService создаёт сервис сабмишенов.
func NewSubmissionService(submissions SubmissionRepository) *SubmissionService {
	return &SubmissionService{submissions: submissions}
}

// SetNotifier подключает доставку событий.
func (s *SubmissionService) SetNotifier(n EventNotifier) {
	s.notifier = n
}

// Create создаёт сабмишен по взятому баунти: черновик или сразу на ревью.
func (s *SubmissionService) Create(ctx context.Context, userID, bountyID uuid.UUID, description string, asDraft bool) (*models.Submission, error) {
	if description == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "описание работы обязательно")
	}

	status := models.SubmissionStatusPending
	if asDraft {
		status = models.SubmissionStatusDraft
	}
	submission := &models.Submission{
		BountyID:    bountyID,
		UserID:      userID,
		Description: description,
		Status:      status,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		switch {
		case errors.Is(err, repository.ErrClaimNotActive):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "для сдачи работы нужен активный claim на баунти")
		case errors.Is(err, repository.ErrDuplicateSubmission):
			return nil, apperror.New(apperror.ErrCodeConflict, "у вас уже есть незакрытый сабмишен по этому баунти")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать сабмишен")
	}
	return submission, nil
}

// Get возвращает сабмишен.
func (s *SubmissionService) Get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "сабмишен не найден")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сабмишен")
	}
	return submission, nil
}

// ListByBounty возвращает сабмишены баунти.
func (s *SubmissionService) ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.Submission, error) {
	submissions, err := s.submissions.ListByBounty(ctx, bountyID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сабмишены")
	}
	return submissions, nil
}

// UpdateContent редактирует описание. Доступно только автору, пока сабмишен
// не ушёл в терминальный статус.
func (s *SubmissionService) UpdateContent(ctx context.Context, actorID, id uuid.UUID, description string) (*models.Submission, error) {
	if description == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "описание работы обязательно")
	}
	if err := s.requireAuthor(ctx, actorID, id); err != nil {
		return nil, err
	}

	submission, err := s.submissions.UpdateContent(ctx, id, description)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionLocked) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "сабмишен больше нельзя редактировать")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить сабмишен")
	}
	return submission, nil
}

// SubmitDraft отправляет черновик на ревью.
func (s *SubmissionService) SubmitDraft(ctx context.Context, actorID, id uuid.UUID) (*models.Submission, error) {
	if err := s.requireAuthor(ctx, actorID, id); err != nil {
		return nil, err
	}

	submission, err := s.submissions.SubmitDraft(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotDraft) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "на ревью можно отправить только черновик")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отправить сабмишен")
	}
	return submission, nil
}

// Review выполняет действие ревьюера. Доступно только основателю проекта.
// При одобрении начисляются поинты баунти либо указанное переопределение.
func (s *SubmissionService) Review(ctx context.Context, actorID, id uuid.UUID, input ReviewInput) (*models.Submission, error) {
	submission, bounty, founderID, err := s.submissions.GetWithFounder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "сабмишен не найден")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сабмишен")
	}
	if founderID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "ревью доступно только основателю проекта")
	}

	var reviewed *models.Submission
	switch input.Action {
	case ReviewActionApprove:
		points, pointsErr := s.resolvePoints(bounty, input.PointsOverride)
		if pointsErr != nil {
			return nil, pointsErr
		}
		var bountyCompleted bool
		reviewed, bountyCompleted, err = s.submissions.Approve(ctx, id, points, input.Note)
		if err == nil && bountyCompleted && logger.Log != nil {
			logger.Log.WithField("bounty_id", bounty.ID).Info("баунти завершено последним одобрением")
		}
	case ReviewActionReject:
		reviewed, err = s.submissions.Reject(ctx, id, input.Note)
	case ReviewActionRequestInfo:
		reviewed, err = s.submissions.RequestInfo(ctx, id, input.Note)
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестное действие ревью")
	}

	if err != nil {
		if errors.Is(err, repository.ErrReviewNotAllowed) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "действие недоступно в текущем статусе сабмишена")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось выполнить ревью")
	}

	s.notifyAuthor(submission.UserID, reviewed)

	return reviewed, nil
}

// resolvePoints выбирает начисляемые поинты: переопределение ревьюера или
// текущая оценка баунти.
func (s *SubmissionService) resolvePoints(bounty *models.Bounty, override *int64) (int64, error) {
	if override != nil {
		if *override <= 0 {
			return 0, apperror.New(apperror.ErrCodeValidation, "начисляемые поинты должны быть положительными")
		}
		return *override, nil
	}
	if bounty.Points == nil {
		return 0, apperror.New(apperror.ErrCodeValidation, "у баунти нет оценки: укажите поинты явно")
	}
	return *bounty.Points, nil
}

func (s *SubmissionService) requireAuthor(ctx context.Context, actorID, id uuid.UUID) error {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "сабмишен не найден")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сабмишен")
	}
	if submission.UserID != actorID {
		return apperror.New(apperror.ErrCodeForbidden, "сабмишен можно менять только его автору")
	}
	return nil
}

func (s *SubmissionService) notifyAuthor(userID uuid.UUID, submission *models.Submission) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, "submission.reviewed", map[string]any{
		"submission_id":  submission.ID,
		"status":         submission.Status,
		"points_awarded": submission.PointsAwarded,
	}); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Warn("submission: не удалось отправить уведомление")
	}
}
