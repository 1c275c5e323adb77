package models

import "time"

// Profile is a named, mutually exclusive policy context. Exactly one profile
// is active whenever at least one exists.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
