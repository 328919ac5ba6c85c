package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/bounty-backend/internal/models"
)

func fixedUUID(last byte) uuid.UUID {
	var id uuid.UUID
	id[15] = last
	return id
}

func TestPoolAmountCents_Floor(t *testing.T) {
	assert.Equal(t, int64(99), poolAmountCents(999, 10))
	assert.Equal(t, int64(2000), poolAmountCents(10000, 20))
	assert.Equal(t, int64(0), poolAmountCents(9, 10))
}

func TestPlatformFeeCents_HalfUp(t *testing.T) {
	// 10% от 1005 = 100.5, округляется вверх
	assert.Equal(t, int64(101), platformFeeCents(1005, 10))
	// 10% от 1004 = 100.4, округляется вниз
	assert.Equal(t, int64(100), platformFeeCents(1004, 10))
	assert.Equal(t, int64(0), platformFeeCents(1000, 0))
}

func TestDistribute_EqualPoints(t *testing.T) {
	contributors := []models.ContributorStanding{
		{UserID: fixedUUID(1), Points: 1},
		{UserID: fixedUUID(2), Points: 1},
		{UserID: fixedUUID(3), Points: 1},
	}

	shares := distributeByLargestRemainder(1000, contributors)

	assert.Len(t, shares, 3)
	var total int64
	for _, s := range shares {
		total += s.AmountCents
	}
	assert.Equal(t, int64(1000), total)

	// Остатки равны, лишний цент уходит наименьшему идентификатору.
	assert.Equal(t, int64(334), shares[0].AmountCents)
	assert.Equal(t, int64(333), shares[1].AmountCents)
	assert.Equal(t, int64(333), shares[2].AmountCents)
}

func TestDistribute_ProportionalToPoints(t *testing.T) {
	contributors := []models.ContributorStanding{
		{UserID: fixedUUID(1), Points: 2},
		{UserID: fixedUUID(2), Points: 1},
	}

	shares := distributeByLargestRemainder(2000, contributors)

	assert.Len(t, shares, 2)
	// 2000*2/3 = 1333 остаток 1, 2000*1/3 = 666 остаток 2: цент уходит второму.
	assert.Equal(t, int64(1333), shares[0].AmountCents)
	assert.Equal(t, int64(667), shares[1].AmountCents)
}

func TestDistribute_SumAlwaysExact(t *testing.T) {
	contributors := []models.ContributorStanding{
		{UserID: fixedUUID(1), Points: 7},
		{UserID: fixedUUID(2), Points: 11},
		{UserID: fixedUUID(3), Points: 13},
		{UserID: fixedUUID(4), Points: 17},
	}

	for _, pool := range []int64{1, 99, 1000, 12345, 9999999} {
		shares := distributeByLargestRemainder(pool, contributors)
		var total int64
		for _, s := range shares {
			total += s.AmountCents
		}
		assert.Equal(t, pool, total, "pool=%d", pool)
	}
}

func TestDistribute_SkipsZeroPoints(t *testing.T) {
	contributors := []models.ContributorStanding{
		{UserID: fixedUUID(1), Points: 5},
		{UserID: fixedUUID(2), Points: 0},
	}

	shares := distributeByLargestRemainder(1000, contributors)

	assert.Len(t, shares, 1)
	assert.Equal(t, fixedUUID(1), shares[0].UserID)
	assert.Equal(t, int64(1000), shares[0].AmountCents)
}

func TestDistribute_NoPoints(t *testing.T) {
	assert.Nil(t, distributeByLargestRemainder(1000, nil))
	assert.Nil(t, distributeByLargestRemainder(1000, []models.ContributorStanding{}))
}
