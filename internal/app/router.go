package app

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/auditnet/validator-backend/internal/http/middleware"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

func wireRouter(cfg Config, log *logger.Logger, h Handlers) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORSAllowOrigins))
	router.Use(middleware.AttachRequestContext())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.RequestLogger(log))

	router.GET("/healthcheck", h.Health.HealthCheck)

	validation := router.Group("/validation")
	{
		validation.POST("/start", h.Validation.StartSession)
		validation.GET("/sessions/recent", h.Validation.ListRecent)
		validation.GET("/sessions/stats", h.Analytics.SessionStats)
		validation.GET("/:id", h.Validation.GetSession)
		validation.POST("/:id/challenge", h.Validation.RecordChallenge)
		validation.POST("/:id/ground-truth", h.Validation.RecordGroundTruth)
		validation.POST("/:id/miner-response", h.Validation.RecordMinerResponse)
		validation.POST("/:id/miner-reward", h.Validation.RecordMinerReward)
		validation.POST("/:id/rewards-update", h.Validation.RecordRewardsBatch)
		validation.POST("/:id/subnet-snapshot", h.Validation.RecordSubnetSnapshot)
		validation.POST("/:id/error", h.Validation.LogError)
		validation.POST("/:id/complete", h.Validation.CompleteSession)
	}

	router.GET("/miners/:uid/history", h.Analytics.MinerHistory)
	router.GET("/leaderboard", h.Analytics.Leaderboard)
	router.GET("/project/:id/summary", h.Analytics.ProjectSummary)

	reports := router.Group("/reports")
	{
		reports.POST("", h.Reports.Create)
		reports.GET("", h.Reports.List)
		reports.GET("/:reportId", h.Reports.Get)
		reports.PUT("/:reportId", h.Reports.Replace)
		reports.DELETE("/:reportId", h.Reports.Delete)
	}

	return router
}
