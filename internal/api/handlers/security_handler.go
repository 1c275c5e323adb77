package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// SecurityHandler exposes the process-wide security settings.
type SecurityHandler struct {
	app *services.App
}

func NewSecurityHandler(app *services.App) *SecurityHandler {
	return &SecurityHandler{app: app}
}

// Get returns the security config. The password hash never serializes.
func (h *SecurityHandler) Get(c *gin.Context) {
	respondOK(c, gin.H{"config": h.app.SecurityConfig()})
}

type updateSecurityRequest struct {
	FailedAttemptLimit         int  `json:"failed_attempt_limit" binding:"required"`
	CooldownDurationMinutes    int  `json:"cooldown_duration_minutes" binding:"required"`
	RequireMasterAfterCooldown bool `json:"require_master_after_cooldown"`
}

// Update changes the cooldown limits.
func (h *SecurityHandler) Update(c *gin.Context) {
	var req updateSecurityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	cfg, err := h.app.UpdateSecurityConfig(req.FailedAttemptLimit, req.CooldownDurationMinutes, req.RequireMasterAfterCooldown)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	respondOK(c, gin.H{"config": cfg})
}
