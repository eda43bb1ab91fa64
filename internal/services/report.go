package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/auditnet/validator-backend/internal/data/repos"
	"github.com/auditnet/validator-backend/internal/domain"
	"github.com/auditnet/validator-backend/internal/platform/apierr"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

type ReportInput struct {
	ProjectID string                 `json:"project_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

type ReportService interface {
	Create(ctx context.Context, tx *gorm.DB, in ReportInput) (*domain.AuditReport, error)
	Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.AuditReport, error)
	List(ctx context.Context, tx *gorm.DB, limit, skip int) ([]*domain.AuditReport, int64, error)
	Replace(ctx context.Context, tx *gorm.DB, id uuid.UUID, in ReportInput) (*domain.AuditReport, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type reportService struct {
	db      *gorm.DB
	log     *logger.Logger
	reports repos.AuditReportRepo
}

func NewReportService(db *gorm.DB, baseLog *logger.Logger, reports repos.AuditReportRepo) ReportService {
	return &reportService{
		db:      db,
		log:     baseLog.With("service", "ReportService"),
		reports: reports,
	}
}

func (s *reportService) Create(ctx context.Context, tx *gorm.DB, in ReportInput) (*domain.AuditReport, error) {
	payload, err := marshalRawData(in.Payload)
	if err != nil {
		return nil, apierr.Validation("payload is not serializable: %v", err)
	}
	now := time.Now().UTC()
	report := &domain.AuditReport{
		ID:        uuid.New(),
		ProjectID: in.ProjectID,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reports.Create(ctx, tx, report); err != nil {
		return nil, apierr.Store(err)
	}
	return report, nil
}

func (s *reportService) Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.AuditReport, error) {
	report, err := s.reports.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("report %s not found", id)
		}
		return nil, apierr.Store(err)
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, tx *gorm.DB, limit, skip int) ([]*domain.AuditReport, int64, error) {
	rows, total, err := s.reports.List(ctx, tx, limit, skip)
	if err != nil {
		return nil, 0, apierr.Store(err)
	}
	return rows, total, nil
}

func (s *reportService) Replace(ctx context.Context, tx *gorm.DB, id uuid.UUID, in ReportInput) (*domain.AuditReport, error) {
	raw, err := json.Marshal(in.Payload)
	if err != nil {
		return nil, apierr.Validation("payload is not serializable: %v", err)
	}
	fields := map[string]interface{}{
		"project_id": in.ProjectID,
		"payload":    datatypes.JSON(raw),
	}
	matched, err := s.reports.Update(ctx, tx, id, fields)
	if err != nil {
		return nil, apierr.Store(err)
	}
	if matched == 0 {
		return nil, apierr.NotFound("report %s not found", id)
	}
	return s.Get(ctx, tx, id)
}

func (s *reportService) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	matched, err := s.reports.Delete(ctx, tx, id)
	if err != nil {
		return apierr.Store(err)
	}
	if matched == 0 {
		return apierr.NotFound("report %s not found", id)
	}
	return nil
}
