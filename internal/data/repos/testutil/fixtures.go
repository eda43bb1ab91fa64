package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/domain"
)

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, uids []int64) *domain.ValidationSession {
	tb.Helper()
	session := &domain.ValidationSession{
		ID:                uuid.New(),
		Timestamp:         time.Now().UTC(),
		State:             domain.SessionPending,
		SampledMinerCount: len(uids),
		SampledMinerUIDs:  datatypes.NewJSONSlice(uids),
		MinerResponses:    datatypes.NewJSONSlice([]domain.MinerResponse{}),
		ComputedRewards:   datatypes.NewJSONSlice([]domain.ComputedReward{}),
		ValidationErrors:  datatypes.NewJSONSlice([]domain.ValidationFault{}),
	}
	if err := tx.WithContext(ctx).Create(session).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return session
}

func SeedHistory(tb testing.TB, ctx context.Context, tx *gorm.DB, minerUID int64, sessionID uuid.UUID, score float64, accuracy *float64, at time.Time) *domain.MinerHistory {
	tb.Helper()
	status := domain.HistoryStatusFailed
	if score > 0 {
		status = domain.HistoryStatusSuccess
	}
	entry := &domain.MinerHistory{
		ID:          uuid.New(),
		MinerUID:    minerUID,
		SessionID:   sessionID,
		RewardScore: score,
		Status:      status,
		Accuracy:    accuracy,
		CreatedAt:   at,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		tb.Fatalf("seed history: %v", err)
	}
	return entry
}

func PtrFloat(v float64) *float64 { return &v }
