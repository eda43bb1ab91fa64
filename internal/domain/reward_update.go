package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RewardUpdate records one batch reward submission. Confirmed is reserved for
// a future acknowledgement flow; no operation sets it.
type RewardUpdate struct {
	ID        uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"update_id"`
	SessionID uuid.UUID                    `gorm:"type:uuid;not null;index" json:"session_id"`
	MinerUIDs datatypes.JSONSlice[int64]   `gorm:"type:jsonb" json:"miner_uids"`
	Rewards   datatypes.JSONSlice[float64] `gorm:"type:jsonb" json:"rewards"`
	Confirmed bool                         `gorm:"not null;default:false" json:"confirmed"`
	CreatedAt time.Time                    `gorm:"not null;default:now()" json:"created_at"`
}

func (RewardUpdate) TableName() string { return "reward_update" }
