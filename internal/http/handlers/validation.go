package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/auditnet/validator-backend/internal/http/response"
	"github.com/auditnet/validator-backend/internal/platform/apierr"
	"github.com/auditnet/validator-backend/internal/services"
)

type ValidationHandler struct {
	validation services.ValidationService
}

func NewValidationHandler(validation services.ValidationService) *ValidationHandler {
	return &ValidationHandler{validation: validation}
}

func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFromError(c, apierr.NotFound("session %s not found", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func (h *ValidationHandler) StartSession(c *gin.Context) {
	var in services.CreateSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	session, err := h.validation.CreateSession(c.Request.Context(), nil, in)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"session_id": session.ID,
		"session":    session,
	})
}

func (h *ValidationHandler) RecordChallenge(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var in services.ChallengeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := h.validation.RecordChallenge(c.Request.Context(), nil, id, in); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session_id": id})
}

func (h *ValidationHandler) RecordGroundTruth(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var in services.GroundTruthInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := h.validation.RecordGroundTruth(c.Request.Context(), nil, id, in); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session_id": id})
}

func (h *ValidationHandler) RecordMinerResponse(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var in services.MinerResponseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := h.validation.RecordMinerResponse(c.Request.Context(), nil, id, in); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session_id": id})
}

func (h *ValidationHandler) RecordMinerReward(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var in services.MinerRewardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := h.validation.RecordMinerReward(c.Request.Context(), nil, id, in); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session_id": id})
}

func (h *ValidationHandler) RecordRewardsBatch(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var in services.RewardsBatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	update, err := h.validation.RecordRewardsBatch(c.Request.Context(), nil, id, in)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"session_id": id,
		"update_id":  update.ID,
	})
}

func (h *ValidationHandler) RecordSubnetSnapshot(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var in services.SubnetSnapshotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := h.validation.RecordSubnetSnapshot(c.Request.Context(), nil, id, in); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session_id": id})
}

func (h *ValidationHandler) LogError(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var in services.FaultInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := h.validation.LogError(c.Request.Context(), nil, id, in); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session_id": id})
}

func (h *ValidationHandler) CompleteSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var in services.CompleteSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := h.validation.CompleteSession(c.Request.Context(), nil, id, in); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session_id": id})
}

func (h *ValidationHandler) GetSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	session, err := h.validation.GetSession(c.Request.Context(), nil, id)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

func (h *ValidationHandler) ListRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	sessions, total, err := h.validation.ListRecent(c.Request.Context(), nil, limit, skip)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"sessions": sessions,
		"total":    total,
		"limit":    limit,
		"skip":     skip,
	})
}
