package service

import (
	"bytes"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/bounty-backend/internal/models"
)

// RecipientShare доля одного контрибьютора в распределении.
type RecipientShare struct {
	UserID         uuid.UUID `json:"user_id"`
	PointsAtPayout int64     `json:"points_at_payout"`
	AmountCents    int64     `json:"amount_cents"`
}

// poolAmountCents считает долю пула от заявленной прибыли (целые центы, floor).
func poolAmountCents(reportedProfitCents int64, poolPercentage int) int64 {
	return reportedProfitCents * int64(poolPercentage) / 100
}

// platformFeeCents считает комиссию платформы (целые центы, округление half-up).
// Комиссия добавляется к счёту основателя и не вычитается из сумм получателей.
func platformFeeCents(poolAmountCents int64, feePercentage int) int64 {
	return (poolAmountCents*int64(feePercentage) + 50) / 100
}

// distributeByLargestRemainder распределяет poolAmount по поинтам методом
// наибольших остатков: каждому floor(доли), затем оставшиеся центы по одному
// контрибьюторам с наибольшим дробным остатком, при равенстве — по
// возрастанию идентификатора пользователя. Сумма долей всегда равна
// poolAmount в точности.
func distributeByLargestRemainder(poolAmount int64, contributors []models.ContributorStanding) []RecipientShare {
	var totalPoints int64
	for _, c := range contributors {
		totalPoints += c.Points
	}
	if totalPoints <= 0 {
		return nil
	}

	type share struct {
		RecipientShare
		remainder int64
	}

	shares := make([]share, 0, len(contributors))
	var distributed int64
	for _, c := range contributors {
		if c.Points <= 0 {
			continue
		}
		raw := poolAmount * c.Points
		base := raw / totalPoints
		shares = append(shares, share{
			RecipientShare: RecipientShare{
				UserID:         c.UserID,
				PointsAtPayout: c.Points,
				AmountCents:    base,
			},
			remainder: raw % totalPoints,
		})
		distributed += base
	}

	// Недораспределённые центы уходят наибольшим остаткам.
	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		return bytes.Compare(shares[i].UserID[:], shares[j].UserID[:]) < 0
	})

	leftover := poolAmount - distributed
	for k := 0; leftover > 0 && k < len(order); k++ {
		shares[order[k]].AmountCents++
		leftover--
	}

	result := make([]RecipientShare, len(shares))
	for i, s := range shares {
		result[i] = s.RecipientShare
	}
	return result
}
