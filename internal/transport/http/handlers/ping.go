package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping handles GET /ping, used by scenario S1 and by process supervisors
// to check liveness.
func Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
