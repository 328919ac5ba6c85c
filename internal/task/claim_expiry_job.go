package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ignatzorin/bounty-backend/internal/logger"
)

// ClaimSweeper просрочивает истёкшие claims.
type ClaimSweeper interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// ClaimExpiryJob периодический обход просроченных claims. Обход идемпотентен,
// поэтому интервал можно менять без риска двойной обработки.
type ClaimExpiryJob struct {
	sweeper  ClaimSweeper
	interval time.Duration
}

// NewClaimExpiryJob создаёт задачу обхода.
func NewClaimExpiryJob(sweeper ClaimSweeper, interval time.Duration) *ClaimExpiryJob {
	return &ClaimExpiryJob{sweeper: sweeper, interval: interval}
}

// Name имя задачи в планировщике.
func (j *ClaimExpiryJob) Name() string {
	return "claim_expiry_sweep"
}

// Schedule конфигурация расписания.
func (j *ClaimExpiryJob) Schedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute выполняет один обход.
func (j *ClaimExpiryJob) Execute(ctx context.Context) {
	expired, err := j.sweeper.ExpireOverdue(ctx, time.Now())
	if err != nil {
		logger.Log.WithError(err).Error("claim sweep: обход завершился ошибкой")
		return
	}
	if expired > 0 {
		logger.Log.WithField("expired", expired).Info("claim sweep: просрочены истёкшие claims")
	}
}

// Scheduler обёртка над gocron с задачами приложения.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler создаёт планировщик и регистрирует задачу обхода claims.
func NewScheduler(job *ClaimExpiryJob) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		job.Schedule(),
		gocron.NewTask(job.Execute, context.Background()),
		gocron.WithName(job.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return &Scheduler{scheduler: s}, nil
}

// Start запускает планировщик.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	logger.Log.Info("планировщик запущен")
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		logger.Log.WithError(err).Error("не удалось остановить планировщик")
	}
}
