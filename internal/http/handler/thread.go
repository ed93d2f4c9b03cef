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

type ThreadHandler struct {
	threadService service.ThreadService
}

func NewThreadHandler(threadService service.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: threadService}
}

func (h *ThreadHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	thread, err := h.threadService.Create(ctx, req.ToInput(middleware.UserID(c)))
	if err != nil {
		respondError(c, err, "create thread")
		return
	}

	c.JSON(http.StatusCreated, dto.ToThreadResponse(thread))
}

func (h *ThreadHandler) Get(c *gin.Context) {
	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}

	view, err := h.threadService.Get(c.Request.Context(), threadID, middleware.UserID(c))
	if err != nil {
		respondError(c, err, "get thread")
		return
	}

	c.JSON(http.StatusOK, dto.ToThreadDetailResponse(view))
}

func (h *ThreadHandler) Inbox(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}

	entries, err := h.threadService.ListInbox(c.Request.Context(), middleware.UserID(c), page)
	if err != nil {
		respondError(c, err, "list inbox")
		return
	}

	c.JSON(http.StatusOK, dto.ToInboxResponse(entries, page))
}

func (h *ThreadHandler) SetState(c *gin.Context) {
	ctx := c.Request.Context()

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}

	var req dto.SetThreadStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	thread, err := h.threadService.SetState(ctx, threadID, middleware.UserID(c), model.ThreadState(req.State))
	if err != nil {
		respondError(c, err, "update thread state")
		return
	}

	c.JSON(http.StatusOK, dto.ToThreadResponse(thread))
}

func (h *ThreadHandler) AddParticipant(c *gin.Context) {
	ctx := c.Request.Context()

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}

	var req dto.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.threadService.AddParticipant(ctx, threadID, middleware.UserID(c), req.UserID, model.ParticipantRole(req.Role))
	if err != nil {
		respondError(c, err, "add participant")
		return
	}

	c.JSON(http.StatusOK, dto.ToParticipantResponse(p))
}
