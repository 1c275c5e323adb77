package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// EvaluateHandler exposes the URL classification data path.
type EvaluateHandler struct {
	app *services.App
}

func NewEvaluateHandler(app *services.App) *EvaluateHandler {
	return &EvaluateHandler{app: app}
}

type evaluateRequest struct {
	URL string `json:"url" binding:"required"`
}

// Evaluate classifies one URL against the active profile's rules.
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	decision, err := h.app.EvaluateURL(req.URL)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"decision": decision})
}
