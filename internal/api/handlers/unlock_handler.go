package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// UnlockHandler exposes the unlock, lock and snooze commands.
type UnlockHandler struct {
	app *services.App
}

func NewUnlockHandler(app *services.App) *UnlockHandler {
	return &UnlockHandler{app: app}
}

type unlockRequest struct {
	Domain   string `json:"domain" binding:"required"`
	Password string `json:"password" binding:"required"`
	RuleID   string `json:"rule_id" binding:"required"`
}

// Unlock attempts a password unlock for a domain's lock rule.
func (h *UnlockHandler) Unlock(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	outcome, err := h.app.HandleUnlockAttempt(req.Domain, req.Password, req.RuleID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"success":            false,
			"error":              err.Error(),
			"triggered_cooldown": outcome.TriggeredCooldown,
		})
		return
	}
	respondOK(c, gin.H{"outcome": outcome})
}

type lockRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// Lock explicitly re-locks a domain within the active profile.
func (h *UnlockHandler) Lock(c *gin.Context) {
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.app.LockDomain(req.Domain); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, nil)
}

type snoozeRequest struct {
	Domain  string `json:"domain" binding:"required"`
	Minutes int    `json:"minutes"`
}

// Snooze pauses the lock gate for 5 or 30 minutes, or the rest of the day
// when minutes is 0.
func (h *UnlockHandler) Snooze(c *gin.Context) {
	var req snoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.app.HandleSnooze(req.Domain, req.Minutes); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, nil)
}
