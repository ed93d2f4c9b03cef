package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/courier/internal/http/dto"
	"basegraph.app/courier/internal/http/middleware"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/service"
)

type SupportHandler struct {
	supportService service.SupportService
}

func NewSupportHandler(supportService service.SupportService) *SupportHandler {
	return &SupportHandler{supportService: supportService}
}

func (h *SupportHandler) Escalate(c *gin.Context) {
	ctx := c.Request.Context()

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}

	var req dto.EscalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc, err := h.supportService.Escalate(ctx, threadID, middleware.UserID(c), service.EscalateInput{
		Reason:   req.Reason,
		Priority: req.PriorityOrDefault(),
	})
	if err != nil {
		respondError(c, err, "escalate thread")
		return
	}

	c.JSON(http.StatusOK, dto.ToSupportCaseResponse(sc))
}

func (h *SupportHandler) Assign(c *gin.Context) {
	ctx := c.Request.Context()

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc, err := h.supportService.Assign(ctx, threadID, middleware.UserID(c), req.AgentID, req.ShouldNotify())
	if err != nil {
		respondError(c, err, "assign support case")
		return
	}

	c.JSON(http.StatusOK, dto.ToSupportCaseResponse(sc))
}

func (h *SupportHandler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}

	var req dto.UpdateCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc, err := h.supportService.UpdateStatus(ctx, threadID, middleware.UserID(c), service.UpdateStatusInput{
		Status:            model.CaseStatus(req.Status),
		ResolutionSummary: req.ResolutionSummary,
	})
	if err != nil {
		respondError(c, err, "update support case")
		return
	}

	c.JSON(http.StatusOK, dto.ToSupportCaseResponse(sc))
}

func (h *SupportHandler) Get(c *gin.Context) {
	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}

	sc, err := h.supportService.GetCase(c.Request.Context(), threadID, middleware.UserID(c))
	if err != nil {
		respondError(c, err, "get support case")
		return
	}

	c.JSON(http.StatusOK, dto.ToSupportCaseResponse(sc))
}
