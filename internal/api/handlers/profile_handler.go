package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// ProfileHandler exposes profile lifecycle management.
type ProfileHandler struct {
	app *services.App
}

func NewProfileHandler(app *services.App) *ProfileHandler {
	return &ProfileHandler{app: app}
}

// List returns all profiles.
func (h *ProfileHandler) List(c *gin.Context) {
	respondOK(c, gin.H{"profiles": h.app.Profiles.List()})
}

type profileNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create adds a profile.
func (h *ProfileHandler) Create(c *gin.Context) {
	var req profileNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	profile, err := h.app.Profiles.Create(req.Name)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"profile": profile})
}

// Rename changes a profile's name.
func (h *ProfileHandler) Rename(c *gin.Context) {
	var req profileNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	profile, err := h.app.Profiles.Rename(c.Param("id"), req.Name)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"profile": profile})
}

// Delete removes a non-active, non-last profile. Rules are not cascaded;
// use DeleteRules for that.
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.app.Profiles.Delete(c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, nil)
}

type switchProfileRequest struct {
	Password string `json:"password" binding:"required"`
}

// Switch activates a profile after master password verification.
func (h *ProfileHandler) Switch(c *gin.Context) {
	var req switchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	profile, err := h.app.SwitchProfile(c.Param("id"), req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"profile": profile})
}

// DeleteRules cascades deletion of a profile's rules.
func (h *ProfileHandler) DeleteRules(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.app.Profiles.Get(id); err != nil {
		respondErr(c, err)
		return
	}
	deleted := h.app.Rules.DeleteProfileRules(id)
	respondOK(c, gin.H{"deleted": deleted})
}
