package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionState string

const (
	SessionPending    SessionState = "pending"
	SessionInProgress SessionState = "in-progress"
	SessionCompleted  SessionState = "completed"
	SessionFailed     SessionState = "failed"
)

// ChallengeInfo is written once when the challenge stage completes. A repeat
// call overwrites it wholesale (last call wins).
type ChallengeInfo struct {
	ProjectID   string         `gorm:"index" json:"project_id,omitempty"`
	Description string         `json:"description,omitempty"`
	Difficulty  string         `json:"difficulty,omitempty"`
	RawData     datatypes.JSON `gorm:"type:jsonb" json:"raw_data,omitempty"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
}

type GroundTruth struct {
	ReportID        string         `json:"report_id,omitempty"`
	Vulnerabilities datatypes.JSON `gorm:"type:jsonb" json:"vulnerabilities,omitempty"`
	CriticalIssues  int            `json:"critical_issues"`
	RawData         datatypes.JSON `gorm:"type:jsonb" json:"raw_data,omitempty"`
	RecordedAt      *time.Time     `json:"recorded_at,omitempty"`
}

type SubnetSnapshot struct {
	NetUID           int64      `json:"netuid"`
	Block            int64      `json:"block"`
	ActiveValidators int        `json:"active_validators"`
	ActiveMiners     int        `json:"active_miners"`
	TotalStake       float64    `json:"total_stake"`
	EmissionPerBlock float64    `json:"emission_per_block"`
	CapturedAt       *time.Time `json:"captured_at,omitempty"`
}

type SessionMetrics struct {
	SuccessRate        float64 `json:"success_rate"`
	AverageRewardScore float64 `json:"average_reward_score"`
	FailureCount       int     `json:"failure_count"`
	TotalQueryTime     float64 `json:"total_query_time"`
}

// MinerResponse entries are append-only; only RewardScore/RewardReason may be
// amended in place after the fact.
type MinerResponse struct {
	MinerUID         int64                  `json:"miner_uid"`
	GithubURL        string                 `json:"github_url,omitempty"`
	ResponseTime     float64                `json:"response_time"`
	Success          bool                   `json:"success"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
	AgentPerformance map[string]interface{} `json:"agent_performance,omitempty"`
	RewardScore      *float64               `json:"reward_score,omitempty"`
	RewardReason     string                 `json:"reward_reason,omitempty"`
	Timestamp        time.Time              `json:"timestamp"`
}

type ComputedReward struct {
	MinerUID    int64     `json:"miner_uid"`
	RewardScore float64   `json:"reward_score"`
	Timestamp   time.Time `json:"timestamp"`
}

type ValidationFault struct {
	Stage      string    `json:"stage"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	StackTrace string    `json:"stack_trace,omitempty"`
}

// ValidationSession is one end-to-end validation run against a sampled set of
// miners. State advances pending -> in-progress -> completed; "failed" exists
// in the schema but no API operation transitions into it.
type ValidationSession struct {
	ID                uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"session_id"`
	Timestamp         time.Time                            `gorm:"not null;index" json:"timestamp"`
	State             SessionState                         `gorm:"type:text;not null;default:pending;index" json:"state"`
	SampledMinerCount int                                  `gorm:"not null" json:"sampled_miner_count"`
	SampledMinerUIDs  datatypes.JSONSlice[int64]           `gorm:"type:jsonb" json:"sampled_miner_uids"`
	Challenge         ChallengeInfo                        `gorm:"embedded;embeddedPrefix:challenge_" json:"challenge_info"`
	GroundTruth       GroundTruth                          `gorm:"embedded;embeddedPrefix:ground_truth_" json:"ground_truth"`
	MinerResponses    datatypes.JSONSlice[MinerResponse]   `gorm:"type:jsonb" json:"miner_responses"`
	ComputedRewards   datatypes.JSONSlice[ComputedReward]  `gorm:"type:jsonb" json:"computed_rewards"`
	Metrics           SessionMetrics                       `gorm:"embedded;embeddedPrefix:metrics_" json:"metrics"`
	Subnet            SubnetSnapshot                       `gorm:"embedded;embeddedPrefix:subnet_" json:"subnet_snapshot"`
	ValidationErrors  datatypes.JSONSlice[ValidationFault] `gorm:"type:jsonb" json:"validation_errors"`
	Metadata          datatypes.JSON                       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt         time.Time                            `gorm:"not null;default:now()" json:"-"`
	UpdatedAt         time.Time                            `gorm:"not null;default:now()" json:"-"`
}

func (ValidationSession) TableName() string { return "validation_session" }
