package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/bounty-backend/internal/config"
	"github.com/ignatzorin/bounty-backend/internal/http/handlers"
	"github.com/ignatzorin/bounty-backend/internal/http/middleware"
	"github.com/ignatzorin/bounty-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	projectHandler *handlers.ProjectHandler,
	bountyHandler *handlers.BountyHandler,
	submissionHandler *handlers.SubmissionHandler,
	contributorHandler *handlers.ContributorHandler,
	payoutHandler *handlers.PayoutHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	devTokenHandler *handlers.DevTokenHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	if devTokenHandler != nil && cfg.Env == "development" {
		api.POST("/auth/dev-token", devTokenHandler.Issue)
	}

	// Публичные маршруты: доска баунти и отчётность читаются без авторизации.
	api.GET("/ws", wsHandler.Handle)
	api.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Get)
	api.GET("/projects/:id/pool", middleware.UUIDValidator("id"), projectHandler.GetPool)
	api.GET("/projects/:id/bounties", middleware.UUIDValidator("id"), bountyHandler.List)
	api.GET("/projects/:id/contributors", middleware.UUIDValidator("id"), contributorHandler.ListStandings)
	api.GET("/projects/:id/payouts", middleware.UUIDValidator("id"), payoutHandler.List)
	api.GET("/bounties/:id", middleware.UUIDValidator("id"), bountyHandler.Get)
	api.GET("/bounties/:id/claims", middleware.UUIDValidator("id"), bountyHandler.ListClaims)
	api.GET("/bounties/:id/submissions", middleware.UUIDValidator("id"), submissionHandler.List)
	api.GET("/payouts/:id", middleware.UUIDValidator("id"), payoutHandler.Get)

	// Колбэк платёжного провайдера.
	api.POST("/payments/callback", payoutHandler.PaymentCallback)

	// Защищённые маршруты.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/projects", projectHandler.Create)
		protected.POST("/projects/:id/bounties", middleware.UUIDValidator("id"), bountyHandler.Create)
		protected.POST("/projects/:id/payouts", middleware.UUIDValidator("id"), payoutHandler.Create)
		protected.POST("/projects/:id/payouts/preview", middleware.UUIDValidator("id"), payoutHandler.Preview)

		protected.PUT("/bounties/:id", middleware.UUIDValidator("id"), bountyHandler.Update)
		protected.POST("/bounties/:id/close", middleware.UUIDValidator("id"), bountyHandler.Close)
		protected.POST("/bounties/:id/reopen", middleware.UUIDValidator("id"), bountyHandler.Reopen)
		protected.POST("/bounties/:id/claims", middleware.UUIDValidator("id"), bountyHandler.Claim)
		protected.POST("/bounties/:id/submissions", middleware.UUIDValidator("id"), submissionHandler.Create)

		protected.GET("/claims/my", bountyHandler.ListMyClaims)
		protected.DELETE("/claims/:id", middleware.UUIDValidator("id"), bountyHandler.ReleaseClaim)

		protected.GET("/submissions/:id", middleware.UUIDValidator("id"), submissionHandler.Get)
		protected.PUT("/submissions/:id", middleware.UUIDValidator("id"), submissionHandler.Update)
		protected.POST("/submissions/:id/submit", middleware.UUIDValidator("id"), submissionHandler.Submit)
		protected.POST("/submissions/:id/review", middleware.UUIDValidator("id"), submissionHandler.Review)

		protected.POST("/payouts/:id/confirm", middleware.UUIDValidator("id"), payoutHandler.ConfirmReceipt)
	}

	return r
}
