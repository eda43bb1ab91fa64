package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/auditnet/validator-backend/internal/data/repos/validation"
	"github.com/auditnet/validator-backend/internal/domain"
)

func TestResolveWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		in        string
		def       string
		wantRange string
		wantBack  time.Duration
	}{
		{"24h", "24h", "24h", 24 * time.Hour},
		{"7d", "24h", "7d", 7 * 24 * time.Hour},
		{"30d", "24h", "30d", 30 * 24 * time.Hour},
		{"", "24h", "24h", 24 * time.Hour},
		{"1y", "30d", "30d", 30 * 24 * time.Hour},
		{"", "30d", "30d", 30 * 24 * time.Hour},
	}
	for _, tc := range cases {
		tr, since := ResolveWindow(tc.in, tc.def, now)
		if tr != tc.wantRange {
			t.Fatalf("ResolveWindow(%q,%q) range = %q, want %q", tc.in, tc.def, tr, tc.wantRange)
		}
		if got := now.Sub(since); got != tc.wantBack {
			t.Fatalf("ResolveWindow(%q,%q) window = %v, want %v", tc.in, tc.def, got, tc.wantBack)
		}
	}
}

func TestBuildLeaderboard(t *testing.T) {
	acc := 0.87654
	rows := []*validation.LeaderboardRow{
		{MinerUID: 7, TotalReward: 12.5, AvgReward: 6.25, Participations: 2, SuccessCount: 2, AvgAccuracy: &acc},
		{MinerUID: 3, TotalReward: 4, AvgReward: 1.333333, Participations: 3, SuccessCount: 1},
	}
	entries := BuildLeaderboard(rows)
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("ranks = %d,%d, want 1,2", entries[0].Rank, entries[1].Rank)
	}
	if entries[0].SuccessRate != "100.00%" {
		t.Fatalf("SuccessRate = %q, want 100.00%%", entries[0].SuccessRate)
	}
	if entries[1].SuccessRate != "33.33%" {
		t.Fatalf("SuccessRate = %q, want 33.33%%", entries[1].SuccessRate)
	}
	if entries[0].AvgAccuracy != 0.8765 {
		t.Fatalf("AvgAccuracy = %v, want 0.8765", entries[0].AvgAccuracy)
	}
	if entries[1].AvgAccuracy != "not available" {
		t.Fatalf("AvgAccuracy = %v, want sentinel", entries[1].AvgAccuracy)
	}
	if entries[1].AvgReward != 1.3333 {
		t.Fatalf("AvgReward = %v, want 1.3333", entries[1].AvgReward)
	}
}

func TestBuildLeaderboardEmpty(t *testing.T) {
	entries := BuildLeaderboard(nil)
	if len(entries) != 0 {
		t.Fatalf("len = %d, want 0", len(entries))
	}
}

func TestSummarizeProjectZeroSessions(t *testing.T) {
	out := SummarizeProject("proj-1", nil)
	if out.TotalRuns != 0 || out.AvgReward != 0 || out.LastRun != nil {
		t.Fatalf("expected zeroed summary, got %+v", out)
	}
}

func TestSummarizeProject(t *testing.T) {
	newest := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	sessions := []*domain.ValidationSession{
		{
			ID:                uuid.New(),
			Timestamp:         newest,
			State:             domain.SessionCompleted,
			SampledMinerCount: 3,
			Metrics:           domain.SessionMetrics{AverageRewardScore: 4},
			SampledMinerUIDs:  datatypes.NewJSONSlice([]int64{1, 2, 3}),
		},
		{
			ID:                uuid.New(),
			Timestamp:         newest.Add(-time.Hour),
			State:             domain.SessionFailed,
			SampledMinerCount: 2,
			Metrics:           domain.SessionMetrics{AverageRewardScore: 2},
			SampledMinerUIDs:  datatypes.NewJSONSlice([]int64{4, 5}),
		},
	}
	out := SummarizeProject("proj-1", sessions)
	if out.TotalRuns != 2 || out.SucceededRuns != 1 || out.FailedRuns != 1 {
		t.Fatalf("run counts = %d/%d/%d", out.TotalRuns, out.SucceededRuns, out.FailedRuns)
	}
	if out.TotalMinersSampled != 5 {
		t.Fatalf("TotalMinersSampled = %d, want 5", out.TotalMinersSampled)
	}
	if out.AvgReward != 3 {
		t.Fatalf("AvgReward = %v, want 3", out.AvgReward)
	}
	if out.LastRun == nil || !out.LastRun.Equal(newest) {
		t.Fatalf("LastRun = %v, want %v", out.LastRun, newest)
	}
}
