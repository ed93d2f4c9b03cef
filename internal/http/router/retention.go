package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/courier/internal/http/handler"
)

// RetentionRouter sets up operator routes. The caller applies the admin API key guard.
func RetentionRouter(rg *gin.RouterGroup, h *handler.RetentionHandler) {
	rg.GET("/status", h.Status)
	rg.POST("/run", h.Run)
	rg.GET("/threads/:threadId/audits", h.ThreadAudits)
	rg.GET("/runs/:runId/audits", h.RunAudits)
}
