package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/bounty-backend/internal/models"
	"github.com/ignatzorin/bounty-backend/internal/pkg/apperror"
)

// StandingsReader источник позиций контрибьюторов.
type StandingsReader interface {
	ListStandings(ctx context.Context, projectID uuid.UUID) ([]models.ContributorStanding, error)
}

// ContributorService отчёт по позициям контрибьюторов проекта.
type ContributorService struct {
	contributors StandingsReader
}

// NewContributorService создаёт сервис контрибьюторов.
func NewContributorService(contributors StandingsReader) *ContributorService {
	return &ContributorService{contributors: contributors}
}

// ListStandings возвращает позиции контрибьюторов. Доля каждого считается от
// суммы заработанных поинтов заново при каждом чтении, кэша нет.
func (s *ContributorService) ListStandings(ctx context.Context, projectID uuid.UUID) ([]models.ContributorStanding, error) {
	standings, err := s.contributors.ListStandings(ctx, projectID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить позиции контрибьюторов")
	}

	var totalPoints int64
	for _, standing := range standings {
		totalPoints += standing.Points
	}
	if totalPoints > 0 {
		for i := range standings {
			standings[i].SharePercent = float64(standings[i].Points) / float64(totalPoints) * 100
		}
	}
	return standings, nil
}
