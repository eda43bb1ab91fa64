package validation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/domain"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

// SessionWindowStats is the aggregate row behind the windowed session stats
// query. Averages are zero when no session falls in the window.
type SessionWindowStats struct {
	TotalSessions      int64   `json:"total_sessions"`
	CompletedSessions  int64   `json:"completed_sessions"`
	FailedSessions     int64   `json:"failed_sessions"`
	AvgRewardScore     float64 `json:"avg_reward_score"`
	TotalMinersSampled int64   `json:"total_miners_sampled"`
	AvgQueryTime       float64 `json:"avg_query_time"`
}

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *domain.ValidationSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.ValidationSession, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit, skip int) ([]*domain.ValidationSession, int64, error)
	ListByProjectID(ctx context.Context, tx *gorm.DB, projectID string) ([]*domain.ValidationSession, error)

	// UpdateFields patches the named columns on one session. Returns the
	// number of rows matched so callers can distinguish a missing session.
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error)

	// AppendMinerResponse and AppendValidationFault push one element onto the
	// respective jsonb array in a single UPDATE.
	AppendMinerResponse(ctx context.Context, tx *gorm.DB, id uuid.UUID, resp domain.MinerResponse) (int64, error)
	AppendValidationFault(ctx context.Context, tx *gorm.DB, id uuid.UUID, fault domain.ValidationFault) (int64, error)

	// SetMinerResponses writes the whole array back; used by the in-place
	// reward patch, which is a read-modify-write by design.
	SetMinerResponses(ctx context.Context, tx *gorm.DB, id uuid.UUID, responses []domain.MinerResponse) (int64, error)

	StatsSince(ctx context.Context, tx *gorm.DB, since time.Time) (*SessionWindowStats, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, session *domain.ValidationSession) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if session == nil {
		return nil
	}
	return t.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.ValidationSession, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var row domain.ValidationSession
	if err := t.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *sessionRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit, skip int) ([]*domain.ValidationSession, int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	if skip < 0 {
		skip = 0
	}

	var total int64
	if err := t.WithContext(ctx).Model(&domain.ValidationSession{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []*domain.ValidationSession
	if err := t.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Offset(skip).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *sessionRepo) ListByProjectID(ctx context.Context, tx *gorm.DB, projectID string) ([]*domain.ValidationSession, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ValidationSession
	if projectID == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("challenge_project_id = ?", projectID).
		Order("timestamp DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(fields) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Model(&domain.ValidationSession{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *sessionRepo) AppendMinerResponse(ctx context.Context, tx *gorm.DB, id uuid.UUID, resp domain.MinerResponse) (int64, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return 0, err
	}
	return r.appendJSONB(ctx, tx, id, "miner_responses", raw)
}

func (r *sessionRepo) AppendValidationFault(ctx context.Context, tx *gorm.DB, id uuid.UUID, fault domain.ValidationFault) (int64, error) {
	raw, err := json.Marshal(fault)
	if err != nil {
		return 0, err
	}
	return r.appendJSONB(ctx, tx, id, "validation_errors", raw)
}

func (r *sessionRepo) appendJSONB(ctx context.Context, tx *gorm.DB, id uuid.UUID, column string, element []byte) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).
		Model(&domain.ValidationSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column: gorm.Expr("COALESCE("+column+", '[]'::jsonb) || ?::jsonb", string(element)),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *sessionRepo) SetMinerResponses(ctx context.Context, tx *gorm.DB, id uuid.UUID, responses []domain.MinerResponse) (int64, error) {
	raw, err := json.Marshal(responses)
	if err != nil {
		return 0, err
	}
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).
		Model(&domain.ValidationSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"miner_responses": gorm.Expr("?::jsonb", string(raw)),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *sessionRepo) StatsSince(ctx context.Context, tx *gorm.DB, since time.Time) (*SessionWindowStats, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var row SessionWindowStats
	err := t.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_sessions,
			COUNT(*) FILTER (WHERE state = ?) AS completed_sessions,
			COUNT(*) FILTER (WHERE state = ?) AS failed_sessions,
			COALESCE(AVG(metrics_average_reward_score), 0) AS avg_reward_score,
			COALESCE(SUM(sampled_miner_count), 0) AS total_miners_sampled,
			COALESCE(AVG(metrics_total_query_time), 0) AS avg_query_time
		FROM validation_session
		WHERE timestamp >= ?`,
		domain.SessionCompleted, domain.SessionFailed, since,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
