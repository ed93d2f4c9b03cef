package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/courier/internal/http/handler"
)

func ThreadRouter(rg *gin.RouterGroup, h *handler.ThreadHandler) {
	rg.POST("", h.Create)
	rg.GET("/:threadId", h.Get)
	rg.PUT("/:threadId/state", h.SetState)
	rg.POST("/:threadId/participants", h.AddParticipant)
}

func InboxRouter(rg *gin.RouterGroup, h *handler.ThreadHandler) {
	rg.GET("", h.Inbox)
}

func MessageRouter(rg *gin.RouterGroup, h *handler.MessageHandler) {
	rg.GET("/:threadId/messages", h.List)
	rg.POST("/:threadId/messages", h.Append)
	rg.POST("/:threadId/read", h.MarkRead)
}

// SupportRouter mounts the case lifecycle under its thread; a thread has at most one case.
func SupportRouter(rg *gin.RouterGroup, h *handler.SupportHandler) {
	rg.GET("/:threadId/support", h.Get)
	rg.POST("/:threadId/support/escalate", h.Escalate)
	rg.POST("/:threadId/support/assign", h.Assign)
	rg.PUT("/:threadId/support/status", h.UpdateStatus)
}
