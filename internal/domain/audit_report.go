package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditReport is the standalone report document family; plain CRUD, outside
// the session lifecycle.
type AuditReport struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"report_id"`
	ProjectID string         `gorm:"index" json:"project_id,omitempty"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (AuditReport) TableName() string { return "audit_report" }
