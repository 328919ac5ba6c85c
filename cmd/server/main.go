package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/bounty-backend/internal/config"
	"github.com/ignatzorin/bounty-backend/internal/db"
	httpHandlers "github.com/ignatzorin/bounty-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/bounty-backend/internal/http/router"
	"github.com/ignatzorin/bounty-backend/internal/logger"
	"github.com/ignatzorin/bounty-backend/internal/repository"
	"github.com/ignatzorin/bounty-backend/internal/service"
	"github.com/ignatzorin/bounty-backend/internal/task"
	"github.com/ignatzorin/bounty-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Репозитории.
	projectRepo := repository.NewProjectRepository(dbConn)
	poolRepo := repository.NewPoolRepository(dbConn)
	bountyRepo := repository.NewBountyRepository(dbConn)
	submissionRepo := repository.NewSubmissionRepository(dbConn)
	contributorRepo := repository.NewContributorRepository(dbConn)
	payoutRepo := repository.NewPayoutRepository(dbConn)

	// Сервисы.
	projectService := service.NewProjectService(projectRepo, poolRepo)
	bountyService := service.NewBountyService(bountyRepo, projectRepo)
	submissionService := service.NewSubmissionService(submissionRepo)
	contributorService := service.NewContributorService(contributorRepo)
	payoutService := service.NewPayoutService(payoutRepo, contributorRepo, poolRepo, projectRepo)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()
	bountyService.SetNotifier(hub)
	submissionService.SetNotifier(hub)
	payoutService.SetNotifier(hub)

	// Фоновая очистка просроченных claims.
	sweepJob := task.NewClaimExpiryJob(bountyService, cfg.ClaimSweepInterval)
	scheduler, err := task.NewScheduler(sweepJob)
	if err != nil {
		log.Fatalf("main: не удалось создать планировщик: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP хэндлеры.
	projectHandler := httpHandlers.NewProjectHandler(projectService)
	bountyHandler := httpHandlers.NewBountyHandler(bountyService)
	submissionHandler := httpHandlers.NewSubmissionHandler(submissionService)
	contributorHandler := httpHandlers.NewContributorHandler(contributorService)
	payoutHandler := httpHandlers.NewPayoutHandler(payoutService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	devTokenHandler := httpHandlers.NewDevTokenHandler(tokenManager)

	engine := httpRouter.SetupRouter(cfg, projectHandler, bountyHandler, submissionHandler,
		contributorHandler, payoutHandler, wsHandler, healthHandler, devTokenHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
