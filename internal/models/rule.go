package models

import "time"

// RuleAction describes what happens when a URL matches a rule's pattern.
type RuleAction string

const (
	ActionLock     RuleAction = "lock"
	ActionBlock    RuleAction = "block"
	ActionRedirect RuleAction = "redirect"
)

// UnlockDuration controls how long a successful unlock suppresses the gate.
// Zero means the password is asked on every visit, UnlockSessionScoped means
// the grant lasts until an explicit lock or process restart, positive values
// are minutes.
type UnlockDuration int

const (
	UnlockAlwaysAsk     UnlockDuration = 0
	UnlockSessionScoped UnlockDuration = -1
)

// Valid reports whether the duration is AlwaysAsk, SessionScoped or positive
// minutes.
func (d UnlockDuration) Valid() bool {
	return d >= UnlockAlwaysAsk || d == UnlockSessionScoped
}

// LockOptions configure the password gate of a lock rule.
type LockOptions struct {
	UnlockDuration     UnlockDuration `json:"unlock_duration"`
	UseCustomPassword  bool           `json:"use_custom_password"`
	CustomPasswordHash string         `json:"custom_password_hash,omitempty"`
}

// RedirectOptions configure the target of a redirect rule.
type RedirectOptions struct {
	TargetURL string `json:"target_url"`
}

// Rule binds a URL pattern to an action within one profile.
// LockOptions are present iff Action is lock, RedirectOptions iff redirect.
type Rule struct {
	ID              string           `json:"id"`
	URLPattern      string           `json:"url_pattern"`
	Action          RuleAction       `json:"action"`
	LockOptions     *LockOptions     `json:"lock_options,omitempty"`
	RedirectOptions *RedirectOptions `json:"redirect_options,omitempty"`
	ProfileID       string           `json:"profile_id"`
	Enabled         bool             `json:"enabled"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
