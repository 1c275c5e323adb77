package models

import "time"

// SecurityConfig holds the process-wide security settings, loaded once at
// initialization. It is stored as a plaintext row because the master password
// hash must be readable before any record key can be derived.
type SecurityConfig struct {
	ID                         uint      `json:"id" gorm:"primaryKey"`
	MasterPasswordHash         string    `json:"-" gorm:"column:master_password_hash"`
	FailedAttemptLimit         int       `json:"failed_attempt_limit" gorm:"default:5"`
	CooldownDurationMinutes    int       `json:"cooldown_duration_minutes" gorm:"default:5"`
	RequireMasterAfterCooldown bool      `json:"require_master_after_cooldown"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}
