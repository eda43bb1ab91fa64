package reports

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/domain"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

type AuditReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, report *domain.AuditReport) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.AuditReport, error)
	List(ctx context.Context, tx *gorm.DB, limit, skip int) ([]*domain.AuditReport, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
}

type auditReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditReportRepo(db *gorm.DB, baseLog *logger.Logger) AuditReportRepo {
	return &auditReportRepo{db: db, log: baseLog.With("repo", "AuditReportRepo")}
}

func (r *auditReportRepo) Create(ctx context.Context, tx *gorm.DB, report *domain.AuditReport) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if report == nil {
		return nil
	}
	return t.WithContext(ctx).Create(report).Error
}

func (r *auditReportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.AuditReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var row domain.AuditReport
	if err := t.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *auditReportRepo) List(ctx context.Context, tx *gorm.DB, limit, skip int) ([]*domain.AuditReport, int64, error) {
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
	if err := t.WithContext(ctx).Model(&domain.AuditReport{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []*domain.AuditReport
	if err := t.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(skip).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *auditReportRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(fields) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Model(&domain.AuditReport{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *auditReportRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).Where("id = ?", id).Delete(&domain.AuditReport{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
