package validation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/auditnet/validator-backend/internal/data/repos/testutil"
	"github.com/auditnet/validator-backend/internal/domain"
)

func TestRewardUpdateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRewardUpdateRepo(db, testutil.Logger(t))

	session := testutil.SeedSession(t, ctx, tx, []int64{1, 2})
	other := testutil.SeedSession(t, ctx, tx, []int64{3})

	for i := 0; i < 2; i++ {
		err := repo.Create(ctx, tx, &domain.RewardUpdate{
			ID:        uuid.New(),
			SessionID: session.ID,
			MinerUIDs: datatypes.NewJSONSlice([]int64{1, 2}),
			Rewards:   datatypes.NewJSONSlice([]float64{float64(i), 1}),
		})
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}

	rows, err := repo.ListBySession(ctx, tx, session.ID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Confirmed {
		t.Fatalf("Confirmed should default to false")
	}
	if len(rows[0].MinerUIDs) != 2 || rows[0].MinerUIDs[1] != 2 {
		t.Fatalf("MinerUIDs = %v", rows[0].MinerUIDs)
	}

	rows, err = repo.ListBySession(ctx, tx, other.ID)
	if err != nil || len(rows) != 0 {
		t.Fatalf("other session: len=%d err=%v", len(rows), err)
	}
}
