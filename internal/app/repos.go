package app

import (
	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/data/repos"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

type Repos struct {
	Sessions      repos.SessionRepo
	MinerHistory  repos.MinerHistoryRepo
	RewardUpdates repos.RewardUpdateRepo
	AuditReports  repos.AuditReportRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Sessions:      repos.NewSessionRepo(db, log),
		MinerHistory:  repos.NewMinerHistoryRepo(db, log),
		RewardUpdates: repos.NewRewardUpdateRepo(db, log),
		AuditReports:  repos.NewAuditReportRepo(db, log),
	}
}
