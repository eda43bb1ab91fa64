package validation

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/domain"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

// MinerLifetimeStats aggregates a miner's entire history, independent of any
// listing window.
type MinerLifetimeStats struct {
	AvgReward           float64  `json:"avg_reward"`
	TotalParticipations int64    `json:"total_participations"`
	SuccessCount        int64    `json:"success_count"`
	FailureCount        int64    `json:"failure_count"`
	AvgAccuracy         *float64 `json:"avg_accuracy,omitempty"`
}

// LeaderboardRow is one grouped miner inside a time window. AvgAccuracy stays
// nil when no entry in the window carried an accuracy value.
type LeaderboardRow struct {
	MinerUID       int64    `json:"miner_uid"`
	TotalReward    float64  `json:"total_reward"`
	AvgReward      float64  `json:"avg_reward"`
	Participations int64    `json:"participations"`
	SuccessCount   int64    `json:"success_count"`
	AvgAccuracy    *float64 `json:"avg_accuracy,omitempty"`
}

type MinerHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *domain.MinerHistory) error
	ListByMiner(ctx context.Context, tx *gorm.DB, minerUID int64, limit int) ([]*domain.MinerHistory, error)
	StatsByMiner(ctx context.Context, tx *gorm.DB, minerUID int64) (*MinerLifetimeStats, error)
	LeaderboardSince(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*LeaderboardRow, error)
}

type minerHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMinerHistoryRepo(db *gorm.DB, baseLog *logger.Logger) MinerHistoryRepo {
	return &minerHistoryRepo{db: db, log: baseLog.With("repo", "MinerHistoryRepo")}
}

func (r *minerHistoryRepo) Create(ctx context.Context, tx *gorm.DB, entry *domain.MinerHistory) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if entry == nil {
		return nil
	}
	return t.WithContext(ctx).Create(entry).Error
}

func (r *minerHistoryRepo) ListByMiner(ctx context.Context, tx *gorm.DB, minerUID int64, limit int) ([]*domain.MinerHistory, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	var out []*domain.MinerHistory
	if err := t.WithContext(ctx).
		Where("miner_uid = ?", minerUID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *minerHistoryRepo) StatsByMiner(ctx context.Context, tx *gorm.DB, minerUID int64) (*MinerLifetimeStats, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var row MinerLifetimeStats
	err := t.WithContext(ctx).Raw(`
		SELECT
			COALESCE(AVG(reward_score), 0) AS avg_reward,
			COUNT(*) AS total_participations,
			COUNT(*) FILTER (WHERE status = ?) AS success_count,
			COUNT(*) FILTER (WHERE status = ?) AS failure_count,
			AVG(accuracy) AS avg_accuracy
		FROM miner_history
		WHERE miner_uid = ?`,
		domain.HistoryStatusSuccess, domain.HistoryStatusFailed, minerUID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *minerHistoryRepo) LeaderboardSince(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*LeaderboardRow, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	var out []*LeaderboardRow
	// Ties on total reward break by ascending uid so ranks stay deterministic.
	err := t.WithContext(ctx).Raw(`
		SELECT
			miner_uid,
			SUM(reward_score) AS total_reward,
			AVG(reward_score) AS avg_reward,
			COUNT(*) AS participations,
			COUNT(*) FILTER (WHERE status = ?) AS success_count,
			AVG(accuracy) AS avg_accuracy
		FROM miner_history
		WHERE created_at >= ?
		GROUP BY miner_uid
		ORDER BY total_reward DESC, miner_uid ASC
		LIMIT ?`,
		domain.HistoryStatusSuccess, since, limit,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
