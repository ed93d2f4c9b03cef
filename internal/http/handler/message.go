package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/courier/internal/http/dto"
	"basegraph.app/courier/internal/http/middleware"
	"basegraph.app/courier/internal/service"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) List(c *gin.Context) {
	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}
	page, ok := parsePage(c)
	if !ok {
		return
	}

	messages, err := h.messageService.List(c.Request.Context(), threadID, middleware.UserID(c), page)
	if err != nil {
		respondError(c, err, "list messages")
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageListResponse(messages, page))
}

func (h *MessageHandler) Append(c *gin.Context) {
	ctx := c.Request.Context()

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}

	var req dto.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageService.Append(ctx, threadID, middleware.UserID(c), req.ToInput())
	if err != nil {
		respondError(c, err, "append message")
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageResponse(msg))
}

// MarkRead accepts an empty body, which marks everything read up to now.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		return
	}

	var req dto.MarkReadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.WarnContext(ctx, "invalid request body", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	p, err := h.messageService.MarkRead(ctx, threadID, middleware.UserID(c), req.UpTo)
	if err != nil {
		respondError(c, err, "mark thread read")
		return
	}

	c.JSON(http.StatusOK, dto.ToParticipantResponse(p))
}
