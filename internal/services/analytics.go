package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/data/repos"
	"github.com/auditnet/validator-backend/internal/data/repos/validation"
	"github.com/auditnet/validator-backend/internal/domain"
	"github.com/auditnet/validator-backend/internal/platform/apierr"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

const avgAccuracyUnavailable = "not available"

// LeaderboardCache is an advisory read-through cache; a nil cache or any
// cache failure falls through to the store.
type LeaderboardCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
}

type SessionStats struct {
	TimeRange          string  `json:"time_range"`
	TotalSessions      int64   `json:"total_sessions"`
	CompletedSessions  int64   `json:"completed_sessions"`
	FailedSessions     int64   `json:"failed_sessions"`
	AvgRewardScore     float64 `json:"avg_reward_score"`
	TotalMinersSampled int64   `json:"total_miners_sampled"`
	AvgQueryTime       float64 `json:"avg_query_time"`
}

// MinerHistoryResult pairs the most recent entries with stats computed over
// the miner's entire history; the two windows intentionally differ.
type MinerHistoryResult struct {
	MinerUID int64                          `json:"miner_uid"`
	Entries  []*domain.MinerHistory         `json:"entries"`
	Stats    *validation.MinerLifetimeStats `json:"stats"`
}

type LeaderboardEntry struct {
	Rank           int         `json:"rank"`
	MinerUID       int64       `json:"miner_uid"`
	TotalReward    float64     `json:"total_reward"`
	AvgReward      float64     `json:"avg_reward"`
	Participations int64       `json:"participations"`
	SuccessRate    string      `json:"success_rate"`
	AvgAccuracy    interface{} `json:"avg_accuracy"`
}

type ProjectSummary struct {
	ProjectID          string     `json:"project_id"`
	TotalRuns          int        `json:"total_runs"`
	SucceededRuns      int        `json:"succeeded_runs"`
	FailedRuns         int        `json:"failed_runs"`
	TotalMinersSampled int        `json:"total_miners_sampled"`
	AvgReward          float64    `json:"avg_reward"`
	LastRun            *time.Time `json:"last_run,omitempty"`
}

type AnalyticsService interface {
	SessionStats(ctx context.Context, tx *gorm.DB, timeRange string) (*SessionStats, error)
	MinerHistory(ctx context.Context, tx *gorm.DB, minerUID int64, limit int) (*MinerHistoryResult, error)
	Leaderboard(ctx context.Context, tx *gorm.DB, timeRange string, limit int) ([]LeaderboardEntry, error)
	ProjectSummary(ctx context.Context, tx *gorm.DB, projectID string) (*ProjectSummary, error)
}

type analyticsService struct {
	db       *gorm.DB
	log      *logger.Logger
	sessions repos.SessionRepo
	history  repos.MinerHistoryRepo
	cache    LeaderboardCache
}

func NewAnalyticsService(db *gorm.DB, baseLog *logger.Logger, sessions repos.SessionRepo, history repos.MinerHistoryRepo, cache LeaderboardCache) AnalyticsService {
	return &analyticsService{
		db:       db,
		log:      baseLog.With("service", "AnalyticsService"),
		sessions: sessions,
		history:  history,
		cache:    cache,
	}
}

func (s *analyticsService) SessionStats(ctx context.Context, tx *gorm.DB, timeRange string) (*SessionStats, error) {
	tr, since := ResolveWindow(timeRange, "24h", time.Now().UTC())
	row, err := s.sessions.StatsSince(ctx, tx, since)
	if err != nil {
		return nil, apierr.Store(err)
	}
	return &SessionStats{
		TimeRange:          tr,
		TotalSessions:      row.TotalSessions,
		CompletedSessions:  row.CompletedSessions,
		FailedSessions:     row.FailedSessions,
		AvgRewardScore:     row.AvgRewardScore,
		TotalMinersSampled: row.TotalMinersSampled,
		AvgQueryTime:       row.AvgQueryTime,
	}, nil
}

func (s *analyticsService) MinerHistory(ctx context.Context, tx *gorm.DB, minerUID int64, limit int) (*MinerHistoryResult, error) {
	var (
		entries []*domain.MinerHistory
		stats   *validation.MinerLifetimeStats
	)

	if tx != nil {
		// A caller-supplied transaction cannot be shared across goroutines.
		var err error
		if entries, err = s.history.ListByMiner(ctx, tx, minerUID, limit); err != nil {
			return nil, apierr.Store(err)
		}
		if stats, err = s.history.StatsByMiner(ctx, tx, minerUID); err != nil {
			return nil, apierr.Store(err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			entries, err = s.history.ListByMiner(gctx, nil, minerUID, limit)
			return err
		})
		g.Go(func() error {
			var err error
			stats, err = s.history.StatsByMiner(gctx, nil, minerUID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, apierr.Store(err)
		}
	}

	if entries == nil {
		entries = []*domain.MinerHistory{}
	}
	return &MinerHistoryResult{MinerUID: minerUID, Entries: entries, Stats: stats}, nil
}

func (s *analyticsService) Leaderboard(ctx context.Context, tx *gorm.DB, timeRange string, limit int) ([]LeaderboardEntry, error) {
	tr, since := ResolveWindow(timeRange, "30d", time.Now().UTC())
	if limit <= 0 {
		limit = 100
	}

	key := fmt.Sprintf("leaderboard:%s:%d", tr, limit)
	if s.cache != nil && tx == nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached []LeaderboardEntry
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	rows, err := s.history.LeaderboardSince(ctx, tx, since, limit)
	if err != nil {
		return nil, apierr.Store(err)
	}
	entries := BuildLeaderboard(rows)

	if s.cache != nil && tx == nil {
		if raw, err := json.Marshal(entries); err == nil {
			s.cache.Set(ctx, key, raw)
		}
	}
	return entries, nil
}

func (s *analyticsService) ProjectSummary(ctx context.Context, tx *gorm.DB, projectID string) (*ProjectSummary, error) {
	if projectID == "" {
		return nil, apierr.Validation("project_id is required")
	}
	sessions, err := s.sessions.ListByProjectID(ctx, tx, projectID)
	if err != nil {
		return nil, apierr.Store(err)
	}
	return SummarizeProject(projectID, sessions), nil
}

// ResolveWindow maps a time range token onto its window start. Unknown tokens
// fall back to the default range.
func ResolveWindow(timeRange, defaultRange string, now time.Time) (string, time.Time) {
	tr := timeRange
	switch tr {
	case "24h", "7d", "30d":
	default:
		tr = defaultRange
	}
	switch tr {
	case "7d":
		return tr, now.Add(-7 * 24 * time.Hour)
	case "30d":
		return tr, now.Add(-30 * 24 * time.Hour)
	default:
		return tr, now.Add(-24 * time.Hour)
	}
}

// BuildLeaderboard formats grouped rows into ranked entries. Rows arrive
// sorted by total reward descending; ranks are dense 1..N by position.
func BuildLeaderboard(rows []*validation.LeaderboardRow) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		successRate := 0.0
		if row.Participations > 0 {
			successRate = float64(row.SuccessCount) / float64(row.Participations) * 100
		}
		var avgAccuracy interface{} = avgAccuracyUnavailable
		if row.AvgAccuracy != nil {
			avgAccuracy = round4(*row.AvgAccuracy)
		}
		entries = append(entries, LeaderboardEntry{
			Rank:           i + 1,
			MinerUID:       row.MinerUID,
			TotalReward:    row.TotalReward,
			AvgReward:      round4(row.AvgReward),
			Participations: row.Participations,
			SuccessRate:    fmt.Sprintf("%.2f%%", successRate),
			AvgAccuracy:    avgAccuracy,
		})
	}
	return entries
}

// SummarizeProject rolls up all sessions for one project. Zero sessions yield
// a zeroed summary rather than an undefined average.
func SummarizeProject(projectID string, sessions []*domain.ValidationSession) *ProjectSummary {
	out := &ProjectSummary{ProjectID: projectID}
	if len(sessions) == 0 {
		return out
	}
	var rewardSum float64
	for _, session := range sessions {
		out.TotalRuns++
		switch session.State {
		case domain.SessionCompleted:
			out.SucceededRuns++
		case domain.SessionFailed:
			out.FailedRuns++
		}
		out.TotalMinersSampled += session.SampledMinerCount
		rewardSum += session.Metrics.AverageRewardScore
	}
	out.AvgReward = rewardSum / float64(len(sessions))
	// Sessions arrive sorted by timestamp descending.
	ts := sessions[0].Timestamp
	out.LastRun = &ts
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
