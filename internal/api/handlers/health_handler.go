package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EveryDayApps/LinkLock-sub001/internal/version"
)

// HealthHandler reports liveness and build info.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "ok",
		"name":    version.Name,
		"version": version.Full(),
	})
}
