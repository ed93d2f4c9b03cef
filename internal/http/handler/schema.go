package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/courier/internal/model"
)

// MetadataSchemas serves the JSON schema of each metadata type so clients can
// discover the known keys.
func MetadataSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, model.MetadataSchemas())
}
