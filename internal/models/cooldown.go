package models

import "time"

// CooldownState tracks failed unlock attempts for a domain. Cooldowns are
// domain-scoped, not profile-scoped: failures against one profile's rule
// penalize unlock attempts for that domain everywhere.
type CooldownState struct {
	Domain         string     `json:"domain"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	// RequireMaster sticks after a triggered cooldown when the security
	// config demands the master password post-cooldown. Cleared only by a
	// successful unlock.
	RequireMaster bool `json:"require_master,omitempty"`
}
