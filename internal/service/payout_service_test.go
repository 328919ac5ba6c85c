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

type mockPayoutRepo struct {
	mock.Mock
}

func (m *mockPayoutRepo) Create(ctx context.Context, payout *models.Payout, recipients []models.PayoutRecipient) error {
	args := m.Called(ctx, payout, recipients)
	return args.Error(0)
}

func (m *mockPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Payout, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) ListRecipients(ctx context.Context, payoutID uuid.UUID) ([]models.PayoutRecipient, error) {
	args := m.Called(ctx, payoutID)
	return args.Get(0).([]models.PayoutRecipient), args.Error(1)
}

func (m *mockPayoutRepo) UpdatePaymentStatus(ctx context.Context, payoutID uuid.UUID, next models.PaymentStatus) (*models.Payout, error) {
	args := m.Called(ctx, payoutID, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) ConfirmReceipt(ctx context.Context, payoutID, userID uuid.UUID, confirmed bool, disputeReason *string) (*models.PayoutRecipient, error) {
	args := m.Called(ctx, payoutID, userID, confirmed, disputeReason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PayoutRecipient), args.Error(1)
}

type mockContributorReader struct {
	mock.Mock
}

func (m *mockContributorReader) EarnedPoints(ctx context.Context, projectID uuid.UUID) ([]models.ContributorStanding, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.ContributorStanding), args.Error(1)
}

type mockPoolReader struct {
	mock.Mock
}

func (m *mockPoolReader) GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.RewardPool, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewardPool), args.Error(1)
}

func newPayoutFixture(t *testing.T) (*mockPayoutRepo, *mockContributorReader, *mockPoolReader, *mockFounderReader, *PayoutService) {
	t.Helper()
	payouts := new(mockPayoutRepo)
	contributors := new(mockContributorReader)
	pools := new(mockPoolReader)
	projects := new(mockFounderReader)
	svc := NewPayoutService(payouts, contributors, pools, projects)
	return payouts, contributors, pools, projects, svc
}

func TestPayoutService_Preview_Breakdown(t *testing.T) {
	_, contributors, pools, projects, svc := newPayoutFixture(t)
	ctx := context.Background()

	founderID := uuid.New()
	projectID := uuid.New()
	pool := &models.RewardPool{
		ProjectID:             projectID,
		PoolPercentage:        20,
		PoolCapacity:          1000,
		PlatformFeePercentage: 10,
	}
	projects.On("GetFounderID", ctx, projectID).Return(founderID, nil)
	pools.On("GetByProjectID", ctx, projectID).Return(pool, nil)
	contributors.On("EarnedPoints", ctx, projectID).Return([]models.ContributorStanding{
		{UserID: fixedUUID(1), Points: 2},
		{UserID: fixedUUID(2), Points: 1},
	}, nil)

	breakdown, err := svc.Preview(ctx, founderID, projectID, 10000)

	assert.NoError(t, err)
	assert.Equal(t, int64(2000), breakdown.PoolAmountCents)
	assert.Equal(t, int64(200), breakdown.PlatformFeeCents)
	assert.Equal(t, int64(2000), breakdown.DistributedAmountCents)
	assert.Equal(t, int64(3), breakdown.TotalPoints)
	assert.Equal(t, int64(1000), breakdown.PoolCapacity)
	assert.Len(t, breakdown.Recipients, 2)
	assert.Equal(t, int64(1333), breakdown.Recipients[0].AmountCents)
	assert.Equal(t, int64(667), breakdown.Recipients[1].AmountCents)
}

func TestPayoutService_Preview_NoContributors(t *testing.T) {
	_, contributors, pools, projects, svc := newPayoutFixture(t)
	ctx := context.Background()

	founderID := uuid.New()
	projectID := uuid.New()
	projects.On("GetFounderID", ctx, projectID).Return(founderID, nil)
	pools.On("GetByProjectID", ctx, projectID).Return(&models.RewardPool{ProjectID: projectID, PoolPercentage: 20}, nil)
	contributors.On("EarnedPoints", ctx, projectID).Return([]models.ContributorStanding{}, nil)

	breakdown, err := svc.Preview(ctx, founderID, projectID, 10000)

	assert.NoError(t, err)
	assert.Equal(t, int64(2000), breakdown.PoolAmountCents)
	assert.Equal(t, int64(0), breakdown.DistributedAmountCents)
	assert.Empty(t, breakdown.Recipients)
}

func TestPayoutService_Preview_NegativeProfit(t *testing.T) {
	_, _, _, _, svc := newPayoutFixture(t)

	_, err := svc.Preview(context.Background(), uuid.New(), uuid.New(), -1)
	assert.True(t, apperror.IsValidation(err))
}

func TestPayoutService_Preview_NotFounder(t *testing.T) {
	_, _, _, projects, svc := newPayoutFixture(t)
	ctx := context.Background()

	projectID := uuid.New()
	projects.On("GetFounderID", ctx, projectID).Return(uuid.New(), nil)

	_, err := svc.Preview(ctx, uuid.New(), projectID, 10000)
	assert.True(t, apperror.IsForbidden(err))
}

func TestPayoutService_Preview_NoPool(t *testing.T) {
	_, _, pools, projects, svc := newPayoutFixture(t)
	ctx := context.Background()

	founderID := uuid.New()
	projectID := uuid.New()
	projects.On("GetFounderID", ctx, projectID).Return(founderID, nil)
	pools.On("GetByProjectID", ctx, projectID).Return(nil, repository.ErrPoolNotFound)

	_, err := svc.Preview(ctx, founderID, projectID, 10000)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeBadRequest, appErr.Code)
}

func TestPayoutService_Create_Snapshot(t *testing.T) {
	payouts, contributors, pools, projects, svc := newPayoutFixture(t)
	ctx := context.Background()

	founderID := uuid.New()
	projectID := uuid.New()
	pool := &models.RewardPool{
		ProjectID:             projectID,
		PoolPercentage:        20,
		PoolCapacity:          1000,
		PlatformFeePercentage: 10,
	}
	projects.On("GetFounderID", ctx, projectID).Return(founderID, nil)
	pools.On("GetByProjectID", ctx, projectID).Return(pool, nil)
	contributors.On("EarnedPoints", ctx, projectID).Return([]models.ContributorStanding{
		{UserID: fixedUUID(1), Points: 3},
	}, nil)
	payouts.On("Create", ctx, mock.AnythingOfType("*models.Payout"), mock.AnythingOfType("[]models.PayoutRecipient")).Return(nil)

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	payout, recipients, err := svc.Create(ctx, founderID, CreatePayoutInput{
		ProjectID:           projectID,
		PeriodStart:         start,
		PeriodEnd:           end,
		PeriodLabel:         "июль 2026",
		ReportedProfitCents: 10000,
		StripeFeeCents:      120,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(2000), payout.PoolAmountCents)
	assert.Equal(t, int64(200), payout.PlatformFeeCents)
	assert.Equal(t, int64(120), payout.StripeFeeCents)
	assert.Equal(t, int64(1000), payout.PoolCapacityAtPayout)
	assert.Equal(t, founderID, payout.CreatedBy)
	assert.Len(t, recipients, 1)
	assert.Equal(t, int64(3), recipients[0].PointsAtPayout)
	assert.Equal(t, int64(2000), recipients[0].AmountCents)
	payouts.AssertExpectations(t)
}

func TestPayoutService_ConfirmReceipt_DisputeNeedsReason(t *testing.T) {
	_, _, _, _, svc := newPayoutFixture(t)

	_, err := svc.ConfirmReceipt(context.Background(), uuid.New(), uuid.New(), false, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestPayoutService_ConfirmReceipt_NotPaid(t *testing.T) {
	payouts, _, _, _, svc := newPayoutFixture(t)
	ctx := context.Background()

	payoutID := uuid.New()
	userID := uuid.New()
	payouts.On("ConfirmReceipt", ctx, payoutID, userID, true, (*string)(nil)).Return(nil, repository.ErrPayoutNotPaid)

	_, err := svc.ConfirmReceipt(ctx, payoutID, userID, true, nil)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestPayoutService_ApplyPaymentStatus_InvalidTransition(t *testing.T) {
	payouts, _, _, _, svc := newPayoutFixture(t)
	ctx := context.Background()

	payoutID := uuid.New()
	payouts.On("UpdatePaymentStatus", ctx, payoutID, models.PaymentStatusPaid).Return(nil, repository.ErrPaymentStatusTransition)

	_, err := svc.ApplyPaymentStatus(ctx, payoutID, models.PaymentStatusPaid)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestPayoutService_ApplyPaymentStatus_Success(t *testing.T) {
	payouts, _, _, _, svc := newPayoutFixture(t)
	ctx := context.Background()

	payoutID := uuid.New()
	updated := &models.Payout{ID: payoutID, PaymentStatus: models.PaymentStatusProcessing}
	payouts.On("UpdatePaymentStatus", ctx, payoutID, models.PaymentStatusProcessing).Return(updated, nil)

	payout, err := svc.ApplyPaymentStatus(ctx, payoutID, models.PaymentStatusProcessing)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusProcessing, payout.PaymentStatus)
}
