package validation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/domain"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

type RewardUpdateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, update *domain.RewardUpdate) error
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*domain.RewardUpdate, error)
}

type rewardUpdateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRewardUpdateRepo(db *gorm.DB, baseLog *logger.Logger) RewardUpdateRepo {
	return &rewardUpdateRepo{db: db, log: baseLog.With("repo", "RewardUpdateRepo")}
}

func (r *rewardUpdateRepo) Create(ctx context.Context, tx *gorm.DB, update *domain.RewardUpdate) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if update == nil {
		return nil
	}
	return t.WithContext(ctx).Create(update).Error
}

func (r *rewardUpdateRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*domain.RewardUpdate, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.RewardUpdate
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
