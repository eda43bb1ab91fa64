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

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func reportIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		response.RespondFromError(c, apierr.NotFound("report %s not found", c.Param("reportId")))
		return uuid.Nil, false
	}
	return id, true
}

func (h *ReportHandler) Create(c *gin.Context) {
	var in services.ReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	report, err := h.reports.Create(c.Request.Context(), nil, in)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"report": report})
}

func (h *ReportHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	rows, total, err := h.reports.List(c.Request.Context(), nil, limit, skip)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"reports": rows,
		"total":   total,
		"limit":   limit,
		"skip":    skip,
	})
}

func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := reportIDParam(c)
	if !ok {
		return
	}
	report, err := h.reports.Get(c.Request.Context(), nil, id)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

func (h *ReportHandler) Replace(c *gin.Context) {
	id, ok := reportIDParam(c)
	if !ok {
		return
	}
	var in services.ReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	report, err := h.reports.Replace(c.Request.Context(), nil, id, in)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

func (h *ReportHandler) Delete(c *gin.Context) {
	id, ok := reportIDParam(c)
	if !ok {
		return
	}
	if err := h.reports.Delete(c.Request.Context(), nil, id); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report_id": id})
}
