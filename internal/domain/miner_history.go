package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	HistoryStatusSuccess = "success"
	HistoryStatusFailed  = "failed"
)

// MinerHistory is an append-only log with one entry per reward event for a
// (miner, session) pair. Entries are never updated or deleted.
type MinerHistory struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MinerUID     int64     `gorm:"not null;index" json:"miner_uid"`
	SessionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	RewardScore  float64   `gorm:"not null" json:"reward_score"`
	RewardReason string    `json:"reward_reason,omitempty"`
	Status       string    `gorm:"not null;index" json:"status"`
	Accuracy     *float64  `json:"accuracy,omitempty"`
	ResponseTime float64   `json:"response_time"`
	CreatedAt    time.Time `gorm:"not null;index;default:now()" json:"created_at"`
}

func (MinerHistory) TableName() string { return "miner_history" }
