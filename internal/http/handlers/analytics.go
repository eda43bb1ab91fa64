package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/auditnet/validator-backend/internal/http/response"
	"github.com/auditnet/validator-backend/internal/platform/apierr"
	"github.com/auditnet/validator-backend/internal/services"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) SessionStats(c *gin.Context) {
	stats, err := h.analytics.SessionStats(c.Request.Context(), nil, c.Query("timeRange"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}

func (h *AnalyticsHandler) MinerHistory(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.analytics.MinerHistory(c.Request.Context(), nil, uid, limit)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"miner_uid": result.MinerUID,
		"history":   result.Entries,
		"stats":     result.Stats,
	})
}

func (h *AnalyticsHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.analytics.Leaderboard(c.Request.Context(), nil, c.Query("timeRange"), limit)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"leaderboard": entries})
}

func (h *AnalyticsHandler) ProjectSummary(c *gin.Context) {
	summary, err := h.analytics.ProjectSummary(c.Request.Context(), nil, c.Param("id"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}
