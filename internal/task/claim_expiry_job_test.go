package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/bounty-backend/internal/logger"
)

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func TestClaimExpiryJob_Execute(t *testing.T) {
	logger.Init("error")

	sweeper := new(mockSweeper)
	sweeper.On("ExpireOverdue", mock.Anything, mock.AnythingOfType("time.Time")).Return(3, nil)

	job := NewClaimExpiryJob(sweeper, time.Minute)
	job.Execute(context.Background())

	sweeper.AssertExpectations(t)
}

func TestClaimExpiryJob_ExecuteError(t *testing.T) {
	logger.Init("error")

	sweeper := new(mockSweeper)
	sweeper.On("ExpireOverdue", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, errors.New("db down"))

	job := NewClaimExpiryJob(sweeper, time.Minute)
	job.Execute(context.Background())

	sweeper.AssertExpectations(t)
}

func TestNewScheduler(t *testing.T) {
	logger.Init("error")

	sweeper := new(mockSweeper)
	job := NewClaimExpiryJob(sweeper, time.Hour)

	s, err := NewScheduler(job)
	assert.NoError(t, err)
	assert.NotNil(t, s)

	s.Stop()
}
