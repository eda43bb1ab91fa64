package repos

import (
	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/data/repos/reports"
	"github.com/auditnet/validator-backend/internal/data/repos/validation"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

type SessionRepo = validation.SessionRepo
type MinerHistoryRepo = validation.MinerHistoryRepo
type RewardUpdateRepo = validation.RewardUpdateRepo
type AuditReportRepo = reports.AuditReportRepo

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return validation.NewSessionRepo(db, baseLog)
}
func NewMinerHistoryRepo(db *gorm.DB, baseLog *logger.Logger) MinerHistoryRepo {
	return validation.NewMinerHistoryRepo(db, baseLog)
}
func NewRewardUpdateRepo(db *gorm.DB, baseLog *logger.Logger) RewardUpdateRepo {
	return validation.NewRewardUpdateRepo(db, baseLog)
}
func NewAuditReportRepo(db *gorm.DB, baseLog *logger.Logger) AuditReportRepo {
	return reports.NewAuditReportRepo(db, baseLog)
}
