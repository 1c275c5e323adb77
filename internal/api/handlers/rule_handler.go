package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// RuleHandler exposes rule lifecycle management.
type RuleHandler struct {
	rules    *services.RuleService
	profiles *services.ProfileService
}

func NewRuleHandler(rules *services.RuleService, profiles *services.ProfileService) *RuleHandler {
	return &RuleHandler{rules: rules, profiles: profiles}
}

// List returns rules, optionally scoped to one profile via ?profile_id=.
func (h *RuleHandler) List(c *gin.Context) {
	if profileID := c.Query("profile_id"); profileID != "" {
		respondOK(c, gin.H{"rules": h.rules.ListByProfile(profileID)})
		return
	}
	respondOK(c, gin.H{"rules": h.rules.List()})
}

type createRuleRequest struct {
	URLPattern      string                  `json:"url_pattern" binding:"required"`
	Action          models.RuleAction       `json:"action" binding:"required"`
	LockOptions     *models.LockOptions     `json:"lock_options"`
	RedirectOptions *models.RedirectOptions `json:"redirect_options"`
	ProfileID       string                  `json:"profile_id"`
	Enabled         *bool                   `json:"enabled"`
}

// Create validates and stores a new rule. Without an explicit profile the
// rule lands in the active one.
func (h *RuleHandler) Create(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	profileID := req.ProfileID
	if profileID == "" {
		if active := h.profiles.Active(); active != nil {
			profileID = active.ID
		}
	} else if _, err := h.profiles.Get(profileID); err != nil {
		respondErr(c, err)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule, err := h.rules.Create(models.Rule{
		URLPattern:      req.URLPattern,
		Action:          req.Action,
		LockOptions:     req.LockOptions,
		RedirectOptions: req.RedirectOptions,
		ProfileID:       profileID,
		Enabled:         enabled,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"rule": rule})
}

type updateRuleRequest struct {
	URLPattern      *string                 `json:"url_pattern"`
	Action          *models.RuleAction      `json:"action"`
	LockOptions     *models.LockOptions     `json:"lock_options"`
	RedirectOptions *models.RedirectOptions `json:"redirect_options"`
	Enabled         *bool                   `json:"enabled"`
}

// Update applies a partial rule update.
func (h *RuleHandler) Update(c *gin.Context) {
	var req updateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	rule, err := h.rules.Update(c.Param("id"), services.RuleUpdate{
		URLPattern:      req.URLPattern,
		Action:          req.Action,
		LockOptions:     req.LockOptions,
		RedirectOptions: req.RedirectOptions,
		Enabled:         req.Enabled,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"rule": rule})
}

// Toggle flips a rule's enabled flag.
func (h *RuleHandler) Toggle(c *gin.Context) {
	rule, err := h.rules.Toggle(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"rule": rule})
}

// Delete removes a rule.
func (h *RuleHandler) Delete(c *gin.Context) {
	if err := h.rules.Delete(c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, nil)
}

type copyRulesRequest struct {
	SourceProfileID string `json:"source_profile_id" binding:"required"`
	TargetProfileID string `json:"target_profile_id" binding:"required"`
}

// Copy clones one profile's rules into another.
func (h *RuleHandler) Copy(c *gin.Context) {
	var req copyRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	for _, id := range []string{req.SourceProfileID, req.TargetProfileID} {
		if _, err := h.profiles.Get(id); err != nil {
			respondErr(c, err)
			return
		}
	}

	copied, err := h.rules.CopyRules(req.SourceProfileID, req.TargetProfileID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"copied": copied})
}
