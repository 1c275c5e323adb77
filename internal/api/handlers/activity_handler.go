package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// ActivityHandler exposes the activity log.
type ActivityHandler struct {
	activity *services.ActivityService
}

func NewActivityHandler(activity *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List returns the newest activity entries, up to ?limit= (default 100).
func (h *ActivityHandler) List(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	respondOK(c, gin.H{"activity": h.activity.List(limit)})
}
