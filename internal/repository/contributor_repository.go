package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/bounty-backend/internal/models"
)

// ContributorRepository — проекция позиций контрибьюторов. Ничего не пишет;
// суммы считаются заново на каждое чтение, это аудиторский след для выплат.
type ContributorRepository struct {
	db *sqlx.DB
}

// NewContributorRepository создаёт новый экземпляр.
func NewContributorRepository(db *sqlx.DB) *ContributorRepository {
	return &ContributorRepository{db: db}
}

// ListStandings возвращает позиции контрибьюторов проекта: поинты по
// одобренным сабмишенам и исторический заработок по подтверждённым выплатам.
func (r *ContributorRepository) ListStandings(ctx context.Context, projectID uuid.UUID) ([]models.ContributorStanding, error) {
	query := `
		SELECT user_id,
		       COALESCE(SUM(points), 0) AS points,
		       COALESCE(SUM(earnings), 0) AS lifetime_earnings_cents
		FROM (
			SELECT s.user_id, SUM(s.points_awarded) AS points, 0 AS earnings
			FROM submissions s
			JOIN bounties b ON b.id = s.bounty_id
			WHERE b.project_id = $1 AND s.status = 'approved'
			GROUP BY s.user_id

			UNION ALL

			SELECT pr.user_id, 0 AS points, SUM(pr.amount_cents) AS earnings
			FROM payout_recipients pr
			JOIN payouts p ON p.id = pr.payout_id
			WHERE p.project_id = $1 AND pr.status = 'confirmed'
			GROUP BY pr.user_id
		) combined
		GROUP BY user_id
		ORDER BY user_id
	`
	var standings []models.ContributorStanding
	if err := r.db.SelectContext(ctx, &standings, query, projectID); err != nil {
		return nil, fmt.Errorf("contributor repository: list standings %w", err)
	}
	return standings, nil
}

// EarnedPoints возвращает только заработанные поинты по пользователям проекта.
// Используется калькулятором выплат как вход распределения.
func (r *ContributorRepository) EarnedPoints(ctx context.Context, projectID uuid.UUID) ([]models.ContributorStanding, error) {
	query := `
		SELECT s.user_id, SUM(s.points_awarded) AS points, 0 AS lifetime_earnings_cents
		FROM submissions s
		JOIN bounties b ON b.id = s.bounty_id
		WHERE b.project_id = $1 AND s.status = 'approved'
		GROUP BY s.user_id
		ORDER BY s.user_id
	`
	var standings []models.ContributorStanding
	if err := r.db.SelectContext(ctx, &standings, query, projectID); err != nil {
		return nil, fmt.Errorf("contributor repository: earned points %w", err)
	}
	return standings, nil
}
