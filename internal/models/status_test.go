package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBountyStatus_Transitions(t *testing.T) {
	assert.True(t, BountyStatusBacklog.CanTransitionTo(BountyStatusOpen))
	assert.True(t, BountyStatusOpen.CanTransitionTo(BountyStatusClaimed))
	assert.True(t, BountyStatusClaimed.CanTransitionTo(BountyStatusOpen))
	assert.True(t, BountyStatusClaimed.CanTransitionTo(BountyStatusCompleted))
	assert.True(t, BountyStatusClosed.CanTransitionTo(BountyStatusOpen))

	// COMPLETED терминален.
	assert.False(t, BountyStatusCompleted.CanTransitionTo(BountyStatusOpen))
	assert.False(t, BountyStatusCompleted.CanTransitionTo(BountyStatusClosed))
	// Из бэклога нельзя сразу в claimed.
	assert.False(t, BountyStatusBacklog.CanTransitionTo(BountyStatusClaimed))
}

func TestBountyStatus_Helpers(t *testing.T) {
	assert.True(t, BountyStatusCompleted.IsTerminal())
	assert.True(t, BountyStatusClosed.IsTerminal())
	assert.False(t, BountyStatusOpen.IsTerminal())

	assert.True(t, BountyStatusOpen.IsClaimable())
	assert.True(t, BountyStatusClaimed.IsClaimable())
	assert.False(t, BountyStatusBacklog.IsClaimable())
	assert.False(t, BountyStatusClosed.IsClaimable())
}

func TestClaimStatus_Transitions(t *testing.T) {
	assert.True(t, ClaimStatusActive.CanTransitionTo(ClaimStatusSubmitted))
	assert.True(t, ClaimStatusActive.CanTransitionTo(ClaimStatusExpired))
	// Отклонённый сабмишен возвращает claim в работу.
	assert.True(t, ClaimStatusSubmitted.CanTransitionTo(ClaimStatusActive))
	assert.True(t, ClaimStatusSubmitted.CanTransitionTo(ClaimStatusCompleted))

	assert.False(t, ClaimStatusCompleted.CanTransitionTo(ClaimStatusActive))
	assert.False(t, ClaimStatusExpired.CanTransitionTo(ClaimStatusActive))

	assert.True(t, ClaimStatusActive.IsOutstanding())
	assert.True(t, ClaimStatusSubmitted.IsOutstanding())
	assert.False(t, ClaimStatusCompleted.IsOutstanding())
	assert.False(t, ClaimStatusExpired.IsOutstanding())
}

func TestSubmissionStatus_Transitions(t *testing.T) {
	assert.True(t, SubmissionStatusDraft.CanTransitionTo(SubmissionStatusPending))
	assert.True(t, SubmissionStatusPending.CanTransitionTo(SubmissionStatusNeedsInfo))
	assert.True(t, SubmissionStatusNeedsInfo.CanTransitionTo(SubmissionStatusPending))
	assert.True(t, SubmissionStatusPending.CanTransitionTo(SubmissionStatusApproved))
	assert.True(t, SubmissionStatusPending.CanTransitionTo(SubmissionStatusRejected))

	// Ретроактивное одобрение отклонённого сабмишена.
	assert.True(t, SubmissionStatusRejected.CanTransitionTo(SubmissionStatusApproved))

	assert.False(t, SubmissionStatusApproved.CanTransitionTo(SubmissionStatusRejected))
	assert.False(t, SubmissionStatusWithdrawn.CanTransitionTo(SubmissionStatusPending))
	assert.False(t, SubmissionStatusDraft.CanTransitionTo(SubmissionStatusApproved))
}

func TestPaymentStatus_Transitions(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusProcessing))
	assert.True(t, PaymentStatusProcessing.CanTransitionTo(PaymentStatusPaid))
	assert.True(t, PaymentStatusProcessing.CanTransitionTo(PaymentStatusFailed))
	assert.True(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusProcessing))
	assert.True(t, PaymentStatusPaid.CanTransitionTo(PaymentStatusRefunded))

	assert.False(t, PaymentStatusPending.CanTransitionTo(PaymentStatusPaid))
	assert.False(t, PaymentStatusRefunded.CanTransitionTo(PaymentStatusProcessing))

	assert.True(t, PaymentStatusProcessing.IsPaidAdjacent())
	assert.True(t, PaymentStatusPaid.IsPaidAdjacent())
	assert.False(t, PaymentStatusPending.IsPaidAdjacent())
	assert.False(t, PaymentStatusFailed.IsPaidAdjacent())
}
