package validation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/auditnet/validator-backend/internal/data/repos/testutil"
	"github.com/auditnet/validator-backend/internal/domain"
)

func TestSessionRepoCreateGet(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSessionRepo(db, testutil.Logger(t))

	seeded := testutil.SeedSession(t, ctx, tx, []int64{1, 2, 3})

	got, err := repo.GetByID(ctx, tx, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.State != domain.SessionPending {
		t.Fatalf("state = %q, want pending", got.State)
	}
	if got.SampledMinerCount != 3 {
		t.Fatalf("sampled_miner_count = %d, want 3", got.SampledMinerCount)
	}
	if len(got.MinerResponses) != 0 {
		t.Fatalf("miner_responses = %d entries, want 0", len(got.MinerResponses))
	}
	if len(got.SampledMinerUIDs) != 3 || got.SampledMinerUIDs[0] != 1 {
		t.Fatalf("sampled_miner_uids = %v", got.SampledMinerUIDs)
	}

	if _, err := repo.GetByID(ctx, tx, uuid.New()); err == nil {
		t.Fatalf("GetByID: expected error for unknown id")
	}
}

func TestSessionRepoUpdateFields(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSessionRepo(db, testutil.Logger(t))

	seeded := testutil.SeedSession(t, ctx, tx, []int64{1})

	now := time.Now().UTC()
	matched, err := repo.UpdateFields(ctx, tx, seeded.ID, map[string]interface{}{
		"challenge_project_id": "proj-9",
		"challenge_created_at": now,
		"state":                domain.SessionInProgress,
	})
	if err != nil || matched != 1 {
		t.Fatalf("UpdateFields: matched=%d err=%v", matched, err)
	}

	got, err := repo.GetByID(ctx, tx, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.State != domain.SessionInProgress || got.Challenge.ProjectID != "proj-9" {
		t.Fatalf("patch not applied: state=%q project=%q", got.State, got.Challenge.ProjectID)
	}

	matched, err = repo.UpdateFields(ctx, tx, uuid.New(), map[string]interface{}{"state": domain.SessionFailed})
	if err != nil || matched != 0 {
		t.Fatalf("UpdateFields unknown id: matched=%d err=%v", matched, err)
	}
}

func TestSessionRepoAppends(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSessionRepo(db, testutil.Logger(t))

	seeded := testutil.SeedSession(t, ctx, tx, []int64{1, 2})

	for i, uid := range []int64{1, 2, 1} {
		matched, err := repo.AppendMinerResponse(ctx, tx, seeded.ID, domain.MinerResponse{
			MinerUID:     uid,
			ResponseTime: float64(i),
			Success:      true,
			Timestamp:    time.Now().UTC(),
		})
		if err != nil || matched != 1 {
			t.Fatalf("AppendMinerResponse #%d: matched=%d err=%v", i, matched, err)
		}
	}

	got, err := repo.GetByID(ctx, tx, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	// Append order is preserved; duplicates are allowed.
	if len(got.MinerResponses) != 3 {
		t.Fatalf("miner_responses = %d entries, want 3", len(got.MinerResponses))
	}
	if got.MinerResponses[0].MinerUID != 1 || got.MinerResponses[2].MinerUID != 1 {
		t.Fatalf("append order broken: %v", got.MinerResponses)
	}

	for i := 0; i < 2; i++ {
		if _, err := repo.AppendValidationFault(ctx, tx, seeded.ID, domain.ValidationFault{
			Stage:     "challenge",
			Message:   "boom",
			Timestamp: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("AppendValidationFault: %v", err)
		}
		got, err = repo.GetByID(ctx, tx, seeded.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if len(got.ValidationErrors) != i+1 {
			t.Fatalf("validation_errors = %d entries, want %d", len(got.ValidationErrors), i+1)
		}
	}

	matched, err := repo.AppendMinerResponse(ctx, tx, uuid.New(), domain.MinerResponse{MinerUID: 1})
	if err != nil || matched != 0 {
		t.Fatalf("append on unknown id: matched=%d err=%v", matched, err)
	}
}

func TestSessionRepoSetMinerResponses(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSessionRepo(db, testutil.Logger(t))

	seeded := testutil.SeedSession(t, ctx, tx, []int64{4})
	if _, err := repo.AppendMinerResponse(ctx, tx, seeded.ID, domain.MinerResponse{MinerUID: 4, Timestamp: time.Now().UTC()}); err != nil {
		t.Fatalf("AppendMinerResponse: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	responses := []domain.MinerResponse(got.MinerResponses)
	score := 1.5
	responses[0].RewardScore = &score
	responses[0].RewardReason = "exact match"

	if _, err := repo.SetMinerResponses(ctx, tx, seeded.ID, responses); err != nil {
		t.Fatalf("SetMinerResponses: %v", err)
	}

	got, err = repo.GetByID(ctx, tx, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.MinerResponses[0].RewardScore == nil || *got.MinerResponses[0].RewardScore != 1.5 {
		t.Fatalf("reward patch lost: %+v", got.MinerResponses[0])
	}
	if got.MinerResponses[0].RewardReason != "exact match" {
		t.Fatalf("reward reason lost: %+v", got.MinerResponses[0])
	}
}

func TestSessionRepoListRecent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSessionRepo(db, testutil.Logger(t))

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		s := testutil.SeedSession(t, ctx, tx, []int64{1})
		// Spread timestamps so ordering is deterministic.
		ts := time.Now().UTC().Add(time.Duration(i) * time.Minute)
		if _, err := repo.UpdateFields(ctx, tx, s.ID, map[string]interface{}{"timestamp": ts}); err != nil {
			t.Fatalf("UpdateFields: %v", err)
		}
		ids = append(ids, s.ID)
	}

	rows, total, err := repo.ListRecent(ctx, tx, 2, 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].ID != ids[2] {
		t.Fatalf("expected newest first")
	}

	rows, total, err = repo.ListRecent(ctx, tx, 2, 2)
	if err != nil || total != 3 || len(rows) != 1 {
		t.Fatalf("paginated ListRecent: total=%d len=%d err=%v", total, len(rows), err)
	}
}

func TestSessionRepoListByProjectID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSessionRepo(db, testutil.Logger(t))

	a := testutil.SeedSession(t, ctx, tx, []int64{1})
	b := testutil.SeedSession(t, ctx, tx, []int64{2})
	testutil.SeedSession(t, ctx, tx, []int64{3})

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		if _, err := repo.UpdateFields(ctx, tx, id, map[string]interface{}{"challenge_project_id": "proj-x"}); err != nil {
			t.Fatalf("UpdateFields: %v", err)
		}
	}

	rows, err := repo.ListByProjectID(ctx, tx, "proj-x")
	if err != nil {
		t.Fatalf("ListByProjectID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
}

func TestSessionRepoStatsSince(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSessionRepo(db, testutil.Logger(t))

	s1 := testutil.SeedSession(t, ctx, tx, []int64{1, 2})
	s2 := testutil.SeedSession(t, ctx, tx, []int64{3})
	if _, err := repo.UpdateFields(ctx, tx, s1.ID, map[string]interface{}{
		"state":                        domain.SessionCompleted,
		"metrics_average_reward_score": 4.0,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if _, err := repo.UpdateFields(ctx, tx, s2.ID, map[string]interface{}{
		"metrics_average_reward_score": 2.0,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	stats, err := repo.StatsSince(ctx, tx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("StatsSince: %v", err)
	}
	if stats.TotalSessions != 2 || stats.CompletedSessions != 1 || stats.FailedSessions != 0 {
		t.Fatalf("counts = %d/%d/%d", stats.TotalSessions, stats.CompletedSessions, stats.FailedSessions)
	}
	if stats.AvgRewardScore != 3 {
		t.Fatalf("AvgRewardScore = %v, want 3", stats.AvgRewardScore)
	}
	if stats.TotalMinersSampled != 3 {
		t.Fatalf("TotalMinersSampled = %v, want 3", stats.TotalMinersSampled)
	}

	// Empty window yields zeros, not an error.
	stats, err = repo.StatsSince(ctx, tx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("StatsSince empty: %v", err)
	}
	if stats.TotalSessions != 0 || stats.AvgRewardScore != 0 || stats.TotalMinersSampled != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}
