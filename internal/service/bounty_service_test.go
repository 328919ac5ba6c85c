package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/bounty-backend/internal/models"
	"github.com/ignatzorin/bounty-backend/internal/pkg/apperror"
	"github.com/ignatzorin/bounty-backend/internal/repository"
)

type mockBountyRepo struct {
	mock.Mock
}

func (m *mockBountyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bounty), args.Error(1)
}

func (m *mockBountyRepo) GetWithFounder(ctx context.Context, id uuid.UUID) (*models.Bounty, uuid.UUID, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, uuid.Nil, args.Error(2)
	}
	return args.Get(0).(*models.Bounty), args.Get(1).(uuid.UUID), args.Error(2)
}

func (m *mockBountyRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bounty, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.Bounty), args.Error(1)
}

func (m *mockBountyRepo) Create(ctx context.Context, bounty *models.Bounty) error {
	args := m.Called(ctx, bounty)
	return args.Error(0)
}

func (m *mockBountyRepo) Update(ctx context.Context, id uuid.UUID, title, description string, points *int64) (*models.Bounty, error) {
	args := m.Called(ctx, id, title, description, points)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bounty), args.Error(1)
}

func (m *mockBountyRepo) Claim(ctx context.Context, bountyID, userID uuid.UUID) (*models.BountyClaim, error) {
	args := m.Called(ctx, bountyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BountyClaim), args.Error(1)
}

func (m *mockBountyRepo) GetClaimWithBounty(ctx context.Context, claimID uuid.UUID) (*models.BountyClaim, *models.Bounty, uuid.UUID, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, nil, uuid.Nil, args.Error(3)
	}
	return args.Get(0).(*models.BountyClaim), args.Get(1).(*models.Bounty), args.Get(2).(uuid.UUID), args.Error(3)
}

func (m *mockBountyRepo) ListClaimsByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.BountyClaim, error) {
	args := m.Called(ctx, bountyID)
	return args.Get(0).([]models.BountyClaim), args.Error(1)
}

func (m *mockBountyRepo) ListClaimsByUser(ctx context.Context, userID uuid.UUID) ([]models.BountyClaim, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.BountyClaim), args.Error(1)
}

func (m *mockBountyRepo) ReleaseClaim(ctx context.Context, claimID uuid.UUID) (*models.BountyClaim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BountyClaim), args.Error(1)
}

func (m *mockBountyRepo) ExpireOverdueClaims(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *mockBountyRepo) Close(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bounty), args.Error(1)
}

func (m *mockBountyRepo) Reopen(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bounty), args.Error(1)
}

type mockFounderReader struct {
	mock.Mock
}

func (m *mockFounderReader) GetFounderID(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestBountyService_Create_Backlog(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	founderID := uuid.New()
	projectID := uuid.New()
	projects.On("GetFounderID", ctx, projectID).Return(founderID, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Bounty")).Return(nil)

	bounty, err := svc.Create(ctx, founderID, CreateBountyInput{
		ProjectID: projectID,
		Title:     "Починить пагинацию",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.BountyStatusBacklog, bounty.Status)
	assert.Equal(t, models.ClaimModeSingle, bounty.ClaimMode)
	assert.Equal(t, defaultClaimExpiryDays, bounty.ClaimExpiryDays)
	assert.Nil(t, bounty.Points)
	repo.AssertExpectations(t)
}

func TestBountyService_Create_OpenWithPoints(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	founderID := uuid.New()
	projectID := uuid.New()
	points := int64(50)
	projects.On("GetFounderID", ctx, projectID).Return(founderID, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Bounty")).Return(nil)

	bounty, err := svc.Create(ctx, founderID, CreateBountyInput{
		ProjectID: projectID,
		Title:     "Интеграция с CRM",
		Points:    &points,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.BountyStatusOpen, bounty.Status)
	assert.Equal(t, int64(50), *bounty.Points)
}

func TestBountyService_Create_NotFounder(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	projectID := uuid.New()
	projects.On("GetFounderID", ctx, projectID).Return(uuid.New(), nil)

	_, err := svc.Create(ctx, uuid.New(), CreateBountyInput{ProjectID: projectID, Title: "x"})

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Create")
}

func TestBountyService_Create_Validation(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	founderID := uuid.New()
	projectID := uuid.New()
	projects.On("GetFounderID", ctx, projectID).Return(founderID, nil)

	_, err := svc.Create(ctx, founderID, CreateBountyInput{ProjectID: projectID})
	assert.True(t, apperror.IsValidation(err))

	negative := int64(-5)
	_, err = svc.Create(ctx, founderID, CreateBountyInput{ProjectID: projectID, Title: "x", Points: &negative})
	assert.True(t, apperror.IsValidation(err))

	// max_claims несовместим с режимом single.
	limit := 3
	_, err = svc.Create(ctx, founderID, CreateBountyInput{
		ProjectID: projectID, Title: "x", ClaimMode: models.ClaimModeSingle, MaxClaims: &limit,
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestBountyService_Claim_Conflicts(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	bountyID := uuid.New()
	userID := uuid.New()
	repo.On("Claim", ctx, bountyID, userID).Return(nil, repository.ErrBountyAlreadyClaimed).Once()

	_, err := svc.Claim(ctx, userID, bountyID)
	assert.True(t, apperror.IsConflict(err))

	repo.On("Claim", ctx, bountyID, userID).Return(nil, repository.ErrBountyNotClaimable).Once()
	_, err = svc.Claim(ctx, userID, bountyID)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeBadRequest, appErr.Code)

	repo.On("Claim", ctx, bountyID, userID).Return(nil, repository.ErrClaimLimitReached).Once()
	_, err = svc.Claim(ctx, userID, bountyID)
	assert.True(t, apperror.IsConflict(err))
}

func TestBountyService_Claim_Success(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	bountyID := uuid.New()
	userID := uuid.New()
	expected := &models.BountyClaim{
		ID:        uuid.New(),
		BountyID:  bountyID,
		UserID:    userID,
		Status:    models.ClaimStatusActive,
		ExpiresAt: time.Now().Add(14 * 24 * time.Hour),
	}
	repo.On("Claim", ctx, bountyID, userID).Return(expected, nil)

	claim, err := svc.Claim(ctx, userID, bountyID)
	assert.NoError(t, err)
	assert.Equal(t, expected, claim)
}

func TestBountyService_ReleaseClaim_Forbidden(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	claimID := uuid.New()
	claimant := uuid.New()
	founderID := uuid.New()
	claim := &models.BountyClaim{ID: claimID, UserID: claimant, Status: models.ClaimStatusActive}
	repo.On("GetClaimWithBounty", ctx, claimID).Return(claim, &models.Bounty{}, founderID, nil)

	// Посторонний пользователь не может снять чужой claim.
	_, err := svc.ReleaseClaim(ctx, uuid.New(), claimID)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "ReleaseClaim")
}

func TestBountyService_ReleaseClaim_ByFounder(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	claimID := uuid.New()
	claimant := uuid.New()
	founderID := uuid.New()
	claim := &models.BountyClaim{ID: claimID, UserID: claimant, Status: models.ClaimStatusActive}
	released := &models.BountyClaim{ID: claimID, UserID: claimant, Status: models.ClaimStatusExpired}

	repo.On("GetClaimWithBounty", ctx, claimID).Return(claim, &models.Bounty{}, founderID, nil)
	repo.On("ReleaseClaim", ctx, claimID).Return(released, nil)

	got, err := svc.ReleaseClaim(ctx, founderID, claimID)
	assert.NoError(t, err)
	assert.Equal(t, models.ClaimStatusExpired, got.Status)
}

func TestBountyService_Update_InvalidState(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	founderID := uuid.New()
	bountyID := uuid.New()
	bounty := &models.Bounty{ID: bountyID, Status: models.BountyStatusCompleted}
	repo.On("GetWithFounder", ctx, bountyID).Return(bounty, founderID, nil)
	repo.On("Update", ctx, bountyID, "t", "", (*int64)(nil)).Return(nil, repository.ErrBountyNotEditable)

	_, err := svc.Update(ctx, founderID, bountyID, UpdateBountyInput{Title: "t"})
	assert.True(t, apperror.IsInvalidState(err))
}

func TestBountyService_ExpireOverdue(t *testing.T) {
	repo := new(mockBountyRepo)
	projects := new(mockFounderReader)
	svc := NewBountyService(repo, projects)
	ctx := context.Background()

	now := time.Now()
	repo.On("ExpireOverdueClaims", ctx, now).Return(3, nil)

	expired, err := svc.ExpireOverdue(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, 3, expired)
}
