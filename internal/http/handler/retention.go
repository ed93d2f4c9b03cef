package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/courier/internal/http/dto"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/retention"
)

// RetentionRunner is satisfied by *retention.Scheduler.
type RetentionRunner interface {
	Status() retention.Status
	RunNow(ctx context.Context) (*retention.CycleReport, bool)
}

type AuditReader interface {
	ListByThread(ctx context.Context, threadID int64, limit int) ([]model.RetentionAudit, error)
	ListByRun(ctx context.Context, runID string) ([]model.RetentionAudit, error)
}

type RetentionHandler struct {
	runner RetentionRunner
	audits AuditReader
}

func NewRetentionHandler(runner RetentionRunner, audits AuditReader) *RetentionHandler {
	return &RetentionHandler{runner: runner, audits: audits}
}

func (h *RetentionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Status())
}

// Run executes a cycle synchronously. A client disconnect does not abort it.
func (h *RetentionHandler) Run(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())

	report, ok := h.runner.RunNow(ctx)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "retention cycle already running"})
		return
	}

	slog.InfoContext(ctx, "manual retention cycle finished", "run_id", report.RunID)
	c.JSON(http.StatusOK, report)
}

func (h *RetentionHandler) ThreadAudits(c *gin.Context) {
	ctx := c.Request.Context()

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}
	page, ok := parsePage(c)
	if !ok {
		return
	}

	audits, err := h.audits.ListByThread(ctx, threadID, page.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list retention audits", "error", err, "thread_id", threadID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list retention audits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": dto.ToRetentionAuditResponses(audits)})
}

func (h *RetentionHandler) RunAudits(c *gin.Context) {
	ctx := c.Request.Context()
	runID := c.Param("runId")

	audits, err := h.audits.ListByRun(ctx, runID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list retention audits", "error", err, "run_id", runID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list retention audits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": dto.ToRetentionAuditResponses(audits)})
}
