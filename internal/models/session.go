package models

import "time"

// UnlockSession is a credentialed grant that suppresses the lock gate for a
// domain within one profile. A nil ExpiresAt means the grant lasts until an
// explicit lock or process restart.
type UnlockSession struct {
	Domain     string     `json:"domain"`
	ProfileID  string     `json:"profile_id"`
	UnlockedAt time.Time  `json:"unlocked_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// SnoozeState is a courtesy pause of the lock gate. Unlike an unlock session
// it requires no password and does not reset failed-attempt counters.
type SnoozeState struct {
	Domain       string    `json:"domain"`
	ProfileID    string    `json:"profile_id"`
	SnoozedUntil time.Time `json:"snoozed_until"`
}
