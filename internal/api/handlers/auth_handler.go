package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EveryDayApps/LinkLock-sub001/internal/api/middleware"
	"github.com/EveryDayApps/LinkLock-sub001/internal/crypto"
	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// AuthHandler issues management-session tokens against the master password.
type AuthHandler struct {
	app       *services.App
	jwtSecret string
}

func NewAuthHandler(app *services.App, jwtSecret string) *AuthHandler {
	return &AuthHandler{app: app, jwtSecret: jwtSecret}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login verifies the master password and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if !h.app.VerifyMasterPassword(req.Password) {
		respondErr(c, crypto.ErrInvalidPassword)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to issue token"})
		return
	}
	respondOK(c, gin.H{"token": token})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword rotates the master password and re-encrypts stored
// records.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.app.ChangeMasterPassword(req.OldPassword, req.NewPassword); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, nil)
}
