package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health. It does not touch the vault.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

// NotFound answers every unmatched route.
func NotFound(c *gin.Context) {
	writeError(c, http.StatusNotFound, "not found")
}

func writeError(c *gin.Context, status int, message string) {
	c.String(status, message+"\n")
}
