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

type CreateSessionInput struct {
	SampledMinerUIDs  []int64                `json:"sampled_miner_uids"`
	SampledMinerCount *int                   `json:"sampled_miner_count,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

type ChallengeInput struct {
	ProjectID   string                 `json:"project_id"`
	Description string                 `json:"description,omitempty"`
	Difficulty  string                 `json:"difficulty,omitempty"`
	RawData     map[string]interface{} `json:"raw_data,omitempty"`
}

type GroundTruthInput struct {
	ReportID        string                 `json:"report_id"`
	Vulnerabilities []interface{}          `json:"vulnerabilities,omitempty"`
	CriticalIssues  int                    `json:"critical_issues,omitempty"`
	RawData         map[string]interface{} `json:"raw_data,omitempty"`
}

type MinerResponseInput struct {
	MinerUID         *int64                 `json:"miner_uid"`
	GithubURL        string                 `json:"github_url,omitempty"`
	ResponseTime     float64                `json:"response_time"`
	Success          bool                   `json:"success"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
	AgentPerformance map[string]interface{} `json:"agent_performance,omitempty"`
}

type MinerRewardInput struct {
	MinerUID     *int64  `json:"miner_uid"`
	RewardScore  float64 `json:"reward_score"`
	RewardReason string  `json:"reward_reason,omitempty"`
}

type RewardsBatchInput struct {
	MinerUIDs []int64   `json:"miner_uids"`
	Rewards   []float64 `json:"rewards"`
}

type SubnetSnapshotInput struct {
	NetUID           *int64  `json:"netuid"`
	Block            *int64  `json:"block"`
	ActiveValidators int     `json:"active_validators,omitempty"`
	ActiveMiners     int     `json:"active_miners,omitempty"`
	TotalStake       float64 `json:"total_stake,omitempty"`
	EmissionPerBlock float64 `json:"emission_per_block,omitempty"`
}

type FaultInput struct {
	Stage      string `json:"stage"`
	Message    string `json:"message"`
	StackTrace string `json:"stack_trace,omitempty"`
}

// CompleteSessionInput carries a partial metrics patch: nil fields leave the
// stored value untouched.
type CompleteSessionInput struct {
	SuccessRate        *float64 `json:"success_rate,omitempty"`
	AverageRewardScore *float64 `json:"average_reward_score,omitempty"`
	FailureCount       *int     `json:"failure_count,omitempty"`
	TotalQueryTime     *float64 `json:"total_query_time,omitempty"`
}

// ValidationService is the session lifecycle controller: it owns the state
// machine pending -> in-progress -> completed and validates every incremental
// write before it reaches the store.
type ValidationService interface {
	CreateSession(ctx context.Context, tx *gorm.DB, in CreateSessionInput) (*domain.ValidationSession, error)
	RecordChallenge(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in ChallengeInput) error
	RecordGroundTruth(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in GroundTruthInput) error
	RecordMinerResponse(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in MinerResponseInput) error
	RecordMinerReward(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in MinerRewardInput) error
	RecordRewardsBatch(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in RewardsBatchInput) (*domain.RewardUpdate, error)
	RecordSubnetSnapshot(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in SubnetSnapshotInput) error
	LogError(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in FaultInput) error
	CompleteSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in CompleteSessionInput) error
	GetSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*domain.ValidationSession, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit, skip int) ([]*domain.ValidationSession, int64, error)
}

type validationService struct {
	db       *gorm.DB
	log      *logger.Logger
	sessions repos.SessionRepo
	history  repos.MinerHistoryRepo
	rewards  repos.RewardUpdateRepo
}

func NewValidationService(db *gorm.DB, baseLog *logger.Logger, sessions repos.SessionRepo, history repos.MinerHistoryRepo, rewards repos.RewardUpdateRepo) ValidationService {
	return &validationService{
		db:       db,
		log:      baseLog.With("service", "ValidationService"),
		sessions: sessions,
		history:  history,
		rewards:  rewards,
	}
}

func (s *validationService) CreateSession(ctx context.Context, tx *gorm.DB, in CreateSessionInput) (*domain.ValidationSession, error) {
	if in.SampledMinerUIDs == nil {
		return nil, apierr.Validation("sampled_miner_uids must be a list of integers")
	}
	count := len(in.SampledMinerUIDs)
	if in.SampledMinerCount != nil {
		count = *in.SampledMinerCount
	}

	now := time.Now().UTC()
	session := &domain.ValidationSession{
		ID:                uuid.New(),
		Timestamp:         now,
		State:             domain.SessionPending,
		SampledMinerCount: count,
		SampledMinerUIDs:  datatypes.NewJSONSlice(in.SampledMinerUIDs),
		MinerResponses:    datatypes.NewJSONSlice([]domain.MinerResponse{}),
		ComputedRewards:   datatypes.NewJSONSlice([]domain.ComputedReward{}),
		ValidationErrors:  datatypes.NewJSONSlice([]domain.ValidationFault{}),
	}
	if in.Metadata != nil {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, apierr.Validation("metadata is not serializable: %v", err)
		}
		session.Metadata = datatypes.JSON(raw)
	}

	if err := s.sessions.Create(ctx, tx, session); err != nil {
		s.log.Error("session create failed", "error", err)
		return nil, apierr.Store(err)
	}
	s.log.Info("validation session created", "session_id", session.ID.String(), "sampled_miner_count", count)
	return session, nil
}

func (s *validationService) RecordChallenge(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in ChallengeInput) error {
	if in.ProjectID == "" {
		return apierr.Validation("project_id is required")
	}
	raw, err := marshalRawData(in.RawData)
	if err != nil {
		return apierr.Validation("raw_data is not serializable: %v", err)
	}

	now := time.Now().UTC()
	// Last call wins: the whole challenge block is overwritten and the state
	// moves to in-progress even if the session is already past that stage.
	fields := map[string]interface{}{
		"challenge_project_id":  in.ProjectID,
		"challenge_description": in.Description,
		"challenge_difficulty":  in.Difficulty,
		"challenge_raw_data":    raw,
		"challenge_created_at":  now,
		"state":                 domain.SessionInProgress,
	}
	return s.patchSession(ctx, tx, sessionID, fields)
}

func (s *validationService) RecordGroundTruth(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in GroundTruthInput) error {
	if in.ReportID == "" {
		return apierr.Validation("report_id is required")
	}
	raw, err := marshalRawData(in.RawData)
	if err != nil {
		return apierr.Validation("raw_data is not serializable: %v", err)
	}
	var vulns datatypes.JSON
	if in.Vulnerabilities != nil {
		b, err := json.Marshal(in.Vulnerabilities)
		if err != nil {
			return apierr.Validation("vulnerabilities is not serializable: %v", err)
		}
		vulns = datatypes.JSON(b)
	}

	now := time.Now().UTC()
	fields := map[string]interface{}{
		"ground_truth_report_id":       in.ReportID,
		"ground_truth_vulnerabilities": vulns,
		"ground_truth_critical_issues": in.CriticalIssues,
		"ground_truth_raw_data":        raw,
		"ground_truth_recorded_at":     now,
	}
	return s.patchSession(ctx, tx, sessionID, fields)
}

func (s *validationService) RecordMinerResponse(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in MinerResponseInput) error {
	if in.MinerUID == nil {
		return apierr.Validation("miner_uid must be an integer")
	}
	resp := domain.MinerResponse{
		MinerUID:         *in.MinerUID,
		GithubURL:        in.GithubURL,
		ResponseTime:     in.ResponseTime,
		Success:          in.Success,
		ErrorMessage:     in.ErrorMessage,
		AgentPerformance: in.AgentPerformance,
		Timestamp:        time.Now().UTC(),
	}
	matched, err := s.sessions.AppendMinerResponse(ctx, tx, sessionID, resp)
	if err != nil {
		s.log.Error("miner response append failed", "session_id", sessionID.String(), "error", err)
		return apierr.Store(err)
	}
	if matched == 0 {
		return apierr.NotFound("session %s not found", sessionID)
	}
	return nil
}

func (s *validationService) RecordMinerReward(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in MinerRewardInput) error {
	if in.MinerUID == nil {
		return apierr.Validation("miner_uid must be an integer")
	}
	uid := *in.MinerUID

	run := func(t *gorm.DB) error {
		session, err := s.sessions.GetByID(ctx, t, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("session %s not found", sessionID)
			}
			return apierr.Store(err)
		}

		// Patch the first response matching the uid; a miner may have several
		// appended entries and only the earliest one takes the reward.
		responses := []domain.MinerResponse(session.MinerResponses)
		idx := -1
		for i := range responses {
			if responses[i].MinerUID == uid {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apierr.NotFound("no response from miner %d in session %s", uid, sessionID)
		}
		score := in.RewardScore
		responses[idx].RewardScore = &score
		responses[idx].RewardReason = in.RewardReason

		if _, err := s.sessions.SetMinerResponses(ctx, t, sessionID, responses); err != nil {
			return apierr.Store(err)
		}

		status := domain.HistoryStatusFailed
		if in.RewardScore > 0 {
			status = domain.HistoryStatusSuccess
		}
		entry := &domain.MinerHistory{
			ID:           uuid.New(),
			MinerUID:     uid,
			SessionID:    sessionID,
			RewardScore:  in.RewardScore,
			RewardReason: in.RewardReason,
			Status:       status,
			Accuracy:     accuracyFromPerformance(responses[idx].AgentPerformance),
			ResponseTime: responses[idx].ResponseTime,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.history.Create(ctx, t, entry); err != nil {
			return apierr.Store(err)
		}
		return nil
	}

	if tx != nil {
		return run(tx)
	}
	// Response patch and history append land in one transaction so the two
	// collections cannot diverge on a partial failure.
	return s.db.Transaction(func(t *gorm.DB) error { return run(t) })
}

func (s *validationService) RecordRewardsBatch(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in RewardsBatchInput) (*domain.RewardUpdate, error) {
	if in.MinerUIDs == nil || in.Rewards == nil {
		return nil, apierr.Validation("miner_uids and rewards must be lists")
	}
	if len(in.MinerUIDs) != len(in.Rewards) {
		return nil, apierr.Validation("miner_uids and rewards must have the same length")
	}

	var update *domain.RewardUpdate
	run := func(t *gorm.DB) error {
		// The session is checked up front so a missing session surfaces as
		// not-found instead of leaving an orphan reward-update entry.
		if _, err := s.sessions.GetByID(ctx, t, sessionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("session %s not found", sessionID)
			}
			return apierr.Store(err)
		}

		now := time.Now().UTC()
		update = &domain.RewardUpdate{
			ID:        uuid.New(),
			SessionID: sessionID,
			MinerUIDs: datatypes.NewJSONSlice(in.MinerUIDs),
			Rewards:   datatypes.NewJSONSlice(in.Rewards),
			CreatedAt: now,
		}
		if err := s.rewards.Create(ctx, t, update); err != nil {
			return apierr.Store(err)
		}

		computed := make([]domain.ComputedReward, 0, len(in.MinerUIDs))
		for i := range in.MinerUIDs {
			computed = append(computed, domain.ComputedReward{
				MinerUID:    in.MinerUIDs[i],
				RewardScore: in.Rewards[i],
				Timestamp:   now,
			})
		}
		rawComputed, err := json.Marshal(computed)
		if err != nil {
			return apierr.Store(err)
		}

		metrics := ComputeBatchMetrics(in.Rewards)
		fields := map[string]interface{}{
			"computed_rewards":             gorm.Expr("?::jsonb", string(rawComputed)),
			"metrics_success_rate":         metrics.SuccessRate,
			"metrics_average_reward_score": metrics.AverageRewardScore,
			"metrics_failure_count":        metrics.FailureCount,
		}
		if _, err := s.sessions.UpdateFields(ctx, t, sessionID, fields); err != nil {
			return apierr.Store(err)
		}
		return nil
	}

	var err error
	if tx != nil {
		err = run(tx)
	} else {
		err = s.db.Transaction(func(t *gorm.DB) error { return run(t) })
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("rewards batch recorded", "session_id", sessionID.String(), "update_id", update.ID.String(), "miners", len(in.MinerUIDs))
	return update, nil
}

func (s *validationService) RecordSubnetSnapshot(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in SubnetSnapshotInput) error {
	if in.NetUID == nil {
		return apierr.Validation("netuid must be an integer")
	}
	if in.Block == nil {
		return apierr.Validation("block must be an integer")
	}

	now := time.Now().UTC()
	// Last write wins; no snapshot history is kept.
	fields := map[string]interface{}{
		"subnet_net_uid":            *in.NetUID,
		"subnet_block":              *in.Block,
		"subnet_active_validators":  in.ActiveValidators,
		"subnet_active_miners":      in.ActiveMiners,
		"subnet_total_stake":        in.TotalStake,
		"subnet_emission_per_block": in.EmissionPerBlock,
		"subnet_captured_at":        now,
	}
	return s.patchSession(ctx, tx, sessionID, fields)
}

func (s *validationService) LogError(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in FaultInput) error {
	if in.Stage == "" {
		return apierr.Validation("stage is required")
	}
	if in.Message == "" {
		return apierr.Validation("message is required")
	}
	fault := domain.ValidationFault{
		Stage:      in.Stage,
		Message:    in.Message,
		Timestamp:  time.Now().UTC(),
		StackTrace: in.StackTrace,
	}
	matched, err := s.sessions.AppendValidationFault(ctx, tx, sessionID, fault)
	if err != nil {
		s.log.Error("fault append failed", "session_id", sessionID.String(), "error", err)
		return apierr.Store(err)
	}
	if matched == 0 {
		return apierr.NotFound("session %s not found", sessionID)
	}
	return nil
}

func (s *validationService) CompleteSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, in CompleteSessionInput) error {
	fields := map[string]interface{}{
		"state": domain.SessionCompleted,
	}
	if in.SuccessRate != nil {
		fields["metrics_success_rate"] = *in.SuccessRate
	}
	if in.AverageRewardScore != nil {
		fields["metrics_average_reward_score"] = *in.AverageRewardScore
	}
	if in.FailureCount != nil {
		fields["metrics_failure_count"] = *in.FailureCount
	}
	if in.TotalQueryTime != nil {
		fields["metrics_total_query_time"] = *in.TotalQueryTime
	}
	if err := s.patchSession(ctx, tx, sessionID, fields); err != nil {
		return err
	}
	s.log.Info("validation session completed", "session_id", sessionID.String())
	return nil
}

func (s *validationService) GetSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*domain.ValidationSession, error) {
	session, err := s.sessions.GetByID(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("session %s not found", sessionID)
		}
		return nil, apierr.Store(err)
	}
	return session, nil
}

func (s *validationService) ListRecent(ctx context.Context, tx *gorm.DB, limit, skip int) ([]*domain.ValidationSession, int64, error) {
	sessions, total, err := s.sessions.ListRecent(ctx, tx, limit, skip)
	if err != nil {
		return nil, 0, apierr.Store(err)
	}
	return sessions, total, nil
}

func (s *validationService) patchSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, fields map[string]interface{}) error {
	matched, err := s.sessions.UpdateFields(ctx, tx, sessionID, fields)
	if err != nil {
		s.log.Error("session patch failed", "session_id", sessionID.String(), "error", err)
		return apierr.Store(err)
	}
	if matched == 0 {
		return apierr.NotFound("session %s not found", sessionID)
	}
	return nil
}

// ComputeBatchMetrics derives the summary metrics for one reward batch: a
// reward counts as a success when it is strictly positive.
func ComputeBatchMetrics(rewards []float64) domain.SessionMetrics {
	m := domain.SessionMetrics{}
	if len(rewards) == 0 {
		return m
	}
	var sum float64
	successes := 0
	for _, r := range rewards {
		sum += r
		if r > 0 {
			successes++
		}
	}
	m.SuccessRate = float64(successes) / float64(len(rewards)) * 100
	m.AverageRewardScore = sum / float64(len(rewards))
	m.FailureCount = len(rewards) - successes
	return m
}

func accuracyFromPerformance(perf map[string]interface{}) *float64 {
	if perf == nil {
		return nil
	}
	v, ok := perf["accuracy"]
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func marshalRawData(raw map[string]interface{}) (datatypes.JSON, error) {
	if raw == nil {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
