package app

import (
	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/clients/redis"
	"github.com/auditnet/validator-backend/internal/platform/logger"
	"github.com/auditnet/validator-backend/internal/services"
)

type Services struct {
	Validation services.ValidationService
	Analytics  services.AnalyticsService
	Reports    services.ReportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) Services {
	var cache services.LeaderboardCache
	if cfg.RedisAddr != "" {
		c, err := redis.NewLeaderboardCache(log, cfg.RedisAddr, cfg.LeaderboardCacheTTL)
		if err != nil {
			log.Warn("leaderboard cache disabled", "error", err)
		} else {
			cache = c
		}
	}

	return Services{
		Validation: services.NewValidationService(db, log, reposet.Sessions, reposet.MinerHistory, reposet.RewardUpdates),
		Analytics:  services.NewAnalyticsService(db, log, reposet.Sessions, reposet.MinerHistory, cache),
		Reports:    services.NewReportService(db, log, reposet.AuditReports),
	}
}
