package models

import "time"

// ActivityType classifies activity log entries.
type ActivityType string

const (
	ActivityBlocked        ActivityType = "blocked"
	ActivityRedirected     ActivityType = "redirected"
	ActivityUnlockRequired ActivityType = "unlock_required"
	ActivityUnlocked       ActivityType = "unlocked"
	ActivityUnlockFailed   ActivityType = "unlock_failed"
	ActivityLocked         ActivityType = "locked"
	ActivitySnoozed        ActivityType = "snoozed"
	ActivityCooldown       ActivityType = "cooldown_triggered"
	ActivityProfileSwitch  ActivityType = "profile_switched"
)

// ActivityEntry records a policy event for the activity view.
type ActivityEntry struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Domain    string       `json:"domain,omitempty"`
	ProfileID string       `json:"profile_id,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
