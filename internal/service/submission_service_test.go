package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/bounty-backend/internal/models"
	"github.com/ignatzorin/bounty-backend/internal/pkg/apperror"
	"github.com/ignatzorin/bounty-backend/internal/repository"
)

type mockSubmissionRepo struct {
	mock.Mock
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) GetWithFounder(ctx context.Context, id uuid.UUID) (*models.Submission, *models.Bounty, uuid.UUID, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, uuid.Nil, args.Error(3)
	}
	return args.Get(0).(*models.Submission), args.Get(1).(*models.Bounty), args.Get(2).(uuid.UUID), args.Error(3)
}

func (m *mockSubmissionRepo) ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.Submission, error) {
	args := m.Called(ctx, bountyID)
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) UpdateContent(ctx context.Context, id uuid.UUID, description string) (*models.Submission, error) {
	args := m.Called(ctx, id, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) SubmitDraft(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) Approve(ctx context.Context, id uuid.UUID, pointsAwarded int64, note *string) (*models.Submission, bool, error) {
	args := m.Called(ctx, id, pointsAwarded, note)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.Submission), args.Bool(1), args.Error(2)
}

func (m *mockSubmissionRepo) Reject(ctx context.Context, id uuid.UUID, note *string) (*models.Submission, error) {
	args := m.Called(ctx, id, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) RequestInfo(ctx context.Context, id uuid.UUID, note *string) (*models.Submission, error) {
	args := m.Called(ctx, id, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func TestSubmissionService_Create_Pending(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Submission")).Return(nil)

	submission, err := svc.Create(ctx, uuid.New(), uuid.New(), "сделал интеграцию", false)

	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusPending, submission.Status)
}

func TestSubmissionService_Create_Draft(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Submission")).Return(nil)

	submission, err := svc.Create(ctx, uuid.New(), uuid.New(), "черновик", true)

	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusDraft, submission.Status)
}

func TestSubmissionService_Create_NoActiveClaim(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Submission")).Return(repository.ErrClaimNotActive)

	_, err := svc.Create(ctx, uuid.New(), uuid.New(), "работа", false)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestSubmissionService_Create_Duplicate(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Submission")).Return(repository.ErrDuplicateSubmission)

	_, err := svc.Create(ctx, uuid.New(), uuid.New(), "работа", false)
	assert.True(t, apperror.IsConflict(err))
}

func TestSubmissionService_Review_NotFounder(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	submissionID := uuid.New()
	submission := &models.Submission{ID: submissionID, Status: models.SubmissionStatusPending}
	repo.On("GetWithFounder", ctx, submissionID).Return(submission, &models.Bounty{}, uuid.New(), nil)

	_, err := svc.Review(ctx, uuid.New(), submissionID, ReviewInput{Action: ReviewActionApprove})
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Approve")
}

func TestSubmissionService_Review_ApproveUsesBountyPoints(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	founderID := uuid.New()
	submissionID := uuid.New()
	points := int64(40)
	submission := &models.Submission{ID: submissionID, UserID: uuid.New(), Status: models.SubmissionStatusPending}
	bounty := &models.Bounty{ID: uuid.New(), Points: &points}
	approved := &models.Submission{ID: submissionID, Status: models.SubmissionStatusApproved, PointsAwarded: &points}

	repo.On("GetWithFounder", ctx, submissionID).Return(submission, bounty, founderID, nil)
	repo.On("Approve", ctx, submissionID, int64(40), (*string)(nil)).Return(approved, false, nil)

	reviewed, err := svc.Review(ctx, founderID, submissionID, ReviewInput{Action: ReviewActionApprove})

	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusApproved, reviewed.Status)
	repo.AssertExpectations(t)
}

func TestSubmissionService_Review_ApproveOverride(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	founderID := uuid.New()
	submissionID := uuid.New()
	points := int64(40)
	override := int64(25)
	submission := &models.Submission{ID: submissionID, UserID: uuid.New(), Status: models.SubmissionStatusPending}
	bounty := &models.Bounty{ID: uuid.New(), Points: &points}
	approved := &models.Submission{ID: submissionID, Status: models.SubmissionStatusApproved, PointsAwarded: &override}

	repo.On("GetWithFounder", ctx, submissionID).Return(submission, bounty, founderID, nil)
	repo.On("Approve", ctx, submissionID, int64(25), (*string)(nil)).Return(approved, false, nil)

	_, err := svc.Review(ctx, founderID, submissionID, ReviewInput{
		Action:         ReviewActionApprove,
		PointsOverride: &override,
	})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSubmissionService_Review_ApproveUnpricedBounty(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	founderID := uuid.New()
	submissionID := uuid.New()
	submission := &models.Submission{ID: submissionID, Status: models.SubmissionStatusPending}
	repo.On("GetWithFounder", ctx, submissionID).Return(submission, &models.Bounty{}, founderID, nil)

	// Без оценки баунти и без переопределения одобрить нельзя.
	_, err := svc.Review(ctx, founderID, submissionID, ReviewInput{Action: ReviewActionApprove})
	assert.True(t, apperror.IsValidation(err))
}

func TestSubmissionService_Review_RejectNotAllowed(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	founderID := uuid.New()
	submissionID := uuid.New()
	submission := &models.Submission{ID: submissionID, Status: models.SubmissionStatusApproved}
	repo.On("GetWithFounder", ctx, submissionID).Return(submission, &models.Bounty{}, founderID, nil)
	repo.On("Reject", ctx, submissionID, (*string)(nil)).Return(nil, repository.ErrReviewNotAllowed)

	_, err := svc.Review(ctx, founderID, submissionID, ReviewInput{Action: ReviewActionReject})
	assert.True(t, apperror.IsInvalidState(err))
}

func TestSubmissionService_UpdateContent_NotAuthor(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	submissionID := uuid.New()
	submission := &models.Submission{ID: submissionID, UserID: uuid.New()}
	repo.On("GetByID", ctx, submissionID).Return(submission, nil)

	_, err := svc.UpdateContent(ctx, uuid.New(), submissionID, "новое описание")
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "UpdateContent")
}

func TestSubmissionService_SubmitDraft_NotDraft(t *testing.T) {
	repo := new(mockSubmissionRepo)
	svc := NewSubmissionService(repo)
	ctx := context.Background()

	userID := uuid.New()
	submissionID := uuid.New()
	submission := &models.Submission{ID: submissionID, UserID: userID, Status: models.SubmissionStatusPending}
	repo.On("GetByID", ctx, submissionID).Return(submission, nil)
	repo.On("SubmitDraft", ctx, submissionID).Return(nil, repository.ErrSubmissionNotDraft)

	_, err := svc.SubmitDraft(ctx, userID, submissionID)
	assert.True(t, apperror.IsInvalidState(err))
}
