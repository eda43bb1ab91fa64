package validation

import (
	"context"
	"testing"
	"time"

	"github.com/auditnet/validator-backend/internal/data/repos/testutil"
)

func TestMinerHistoryRepoListByMiner(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewMinerHistoryRepo(db, testutil.Logger(t))

	session := testutil.SeedSession(t, ctx, tx, []int64{10})
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		testutil.SeedHistory(t, ctx, tx, 10, session.ID, float64(i+1), nil, base.Add(time.Duration(i)*time.Minute))
	}
	testutil.SeedHistory(t, ctx, tx, 11, session.ID, 9, nil, base)

	rows, err := repo.ListByMiner(ctx, tx, 10, 0)
	if err != nil {
		t.Fatalf("ListByMiner: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len = %d, want 3", len(rows))
	}
	if rows[0].RewardScore != 3 {
		t.Fatalf("expected newest entry first, got score %v", rows[0].RewardScore)
	}

	rows, err = repo.ListByMiner(ctx, tx, 10, 2)
	if err != nil || len(rows) != 2 {
		t.Fatalf("limited ListByMiner: len=%d err=%v", len(rows), err)
	}

	rows, err = repo.ListByMiner(ctx, tx, 999, 0)
	if err != nil || len(rows) != 0 {
		t.Fatalf("unknown miner: len=%d err=%v", len(rows), err)
	}
}

func TestMinerHistoryRepoStatsByMiner(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewMinerHistoryRepo(db, testutil.Logger(t))

	session := testutil.SeedSession(t, ctx, tx, []int64{20})
	now := time.Now().UTC()
	testutil.SeedHistory(t, ctx, tx, 20, session.ID, 4, testutil.PtrFloat(0.9), now)
	testutil.SeedHistory(t, ctx, tx, 20, session.ID, 2, testutil.PtrFloat(0.7), now)
	testutil.SeedHistory(t, ctx, tx, 20, session.ID, 0, nil, now)

	stats, err := repo.StatsByMiner(ctx, tx, 20)
	if err != nil {
		t.Fatalf("StatsByMiner: %v", err)
	}
	if stats.TotalParticipations != 3 || stats.SuccessCount != 2 || stats.FailureCount != 1 {
		t.Fatalf("counts = %d/%d/%d", stats.TotalParticipations, stats.SuccessCount, stats.FailureCount)
	}
	if stats.AvgReward != 2 {
		t.Fatalf("AvgReward = %v, want 2", stats.AvgReward)
	}
	// AVG(accuracy) ignores the NULL row.
	if stats.AvgAccuracy == nil || *stats.AvgAccuracy != 0.8 {
		t.Fatalf("AvgAccuracy = %v, want 0.8", stats.AvgAccuracy)
	}

	stats, err = repo.StatsByMiner(ctx, tx, 999)
	if err != nil {
		t.Fatalf("StatsByMiner unknown: %v", err)
	}
	if stats.TotalParticipations != 0 || stats.AvgReward != 0 || stats.AvgAccuracy != nil {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}

func TestMinerHistoryRepoLeaderboardSince(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewMinerHistoryRepo(db, testutil.Logger(t))

	session := testutil.SeedSession(t, ctx, tx, []int64{1, 2, 3})
	now := time.Now().UTC()

	testutil.SeedHistory(t, ctx, tx, 1, session.ID, 5, nil, now)
	testutil.SeedHistory(t, ctx, tx, 1, session.ID, 5, nil, now)
	testutil.SeedHistory(t, ctx, tx, 2, session.ID, 10, testutil.PtrFloat(0.5), now)
	// Same total as miner 2; the tie breaks toward the lower uid.
	testutil.SeedHistory(t, ctx, tx, 3, session.ID, 10, nil, now)
	// Outside the window, must not count.
	testutil.SeedHistory(t, ctx, tx, 1, session.ID, 100, nil, now.Add(-48*time.Hour))

	rows, err := repo.LeaderboardSince(ctx, tx, now.Add(-24*time.Hour), 0)
	if err != nil {
		t.Fatalf("LeaderboardSince: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len = %d, want 3", len(rows))
	}
	if rows[0].MinerUID != 2 || rows[1].MinerUID != 3 || rows[2].MinerUID != 1 {
		t.Fatalf("order = %d,%d,%d, want 2,3,1", rows[0].MinerUID, rows[1].MinerUID, rows[2].MinerUID)
	}
	if rows[2].TotalReward != 10 || rows[2].Participations != 2 {
		t.Fatalf("miner 1 row = %+v", rows[2])
	}
	if rows[0].AvgAccuracy == nil || *rows[0].AvgAccuracy != 0.5 {
		t.Fatalf("miner 2 AvgAccuracy = %v, want 0.5", rows[0].AvgAccuracy)
	}
	if rows[1].AvgAccuracy != nil {
		t.Fatalf("miner 3 AvgAccuracy = %v, want nil", rows[1].AvgAccuracy)
	}

	rows, err = repo.LeaderboardSince(ctx, tx, now.Add(-24*time.Hour), 1)
	if err != nil || len(rows) != 1 || rows[0].MinerUID != 2 {
		t.Fatalf("limited leaderboard: %v err=%v", rows, err)
	}
}
