package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// Start schedules the background maintenance jobs: a minutely expiry sweep
// backing up the per-key timers, and daily activity-log pruning. The
// returned cron is already running.
func Start(app *services.App) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc("@every 1m", app.Sweep); err != nil {
		return nil, fmt.Errorf("schedule expiry sweep: %w", err)
	}
	if _, err := c.AddFunc("@daily", app.PruneActivity); err != nil {
		return nil, fmt.Errorf("schedule activity pruning: %w", err)
	}

	c.Start()
	return c, nil
}
