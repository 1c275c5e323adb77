package models

import "time"

// StoredRecord is one encrypted named blob in the key-value table that backs
// the storage layer. The salt and IV travel alongside the ciphertext so each
// record decrypts independently.
type StoredRecord struct {
	ID         uint      `gorm:"primaryKey"`
	Key        string    `gorm:"uniqueIndex"`
	Salt       []byte    `gorm:"type:blob"`
	IV         []byte    `gorm:"type:blob"`
	Ciphertext []byte    `gorm:"type:blob"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
