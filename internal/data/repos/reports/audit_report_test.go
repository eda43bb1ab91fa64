package reports

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/auditnet/validator-backend/internal/data/repos/testutil"
	"github.com/auditnet/validator-backend/internal/domain"
)

func TestAuditReportRepoCRUD(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAuditReportRepo(db, testutil.Logger(t))

	id := uuid.New()
	payload, _ := json.Marshal(map[string]interface{}{"verdict": "pass", "score": 0.91})
	if err := repo.Create(ctx, tx, &domain.AuditReport{
		ID:        id,
		ProjectID: "proj-1",
		Payload:   datatypes.JSON(payload),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ProjectID != "proj-1" {
		t.Fatalf("ProjectID = %q, want proj-1", got.ProjectID)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(got.Payload, &decoded); err != nil {
		t.Fatalf("payload decode: %v", err)
	}
	if decoded["verdict"] != "pass" {
		t.Fatalf("payload = %v", decoded)
	}

	rows, total, err := repo.List(ctx, tx, 10, 0)
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("List: total=%d len=%d err=%v", total, len(rows), err)
	}

	updated, _ := json.Marshal(map[string]interface{}{"verdict": "fail"})
	matched, err := repo.Update(ctx, tx, id, map[string]interface{}{"payload": datatypes.JSON(updated)})
	if err != nil || matched != 1 {
		t.Fatalf("Update: matched=%d err=%v", matched, err)
	}

	matched, err = repo.Update(ctx, tx, uuid.New(), map[string]interface{}{"project_id": "x"})
	if err != nil || matched != 0 {
		t.Fatalf("Update unknown id: matched=%d err=%v", matched, err)
	}

	matched, err = repo.Delete(ctx, tx, id)
	if err != nil || matched != 1 {
		t.Fatalf("Delete: matched=%d err=%v", matched, err)
	}
	if _, err := repo.GetByID(ctx, tx, id); err == nil {
		t.Fatalf("GetByID after delete: expected error")
	}

	matched, err = repo.Delete(ctx, tx, id)
	if err != nil || matched != 0 {
		t.Fatalf("Delete again: matched=%d err=%v", matched, err)
	}
}
