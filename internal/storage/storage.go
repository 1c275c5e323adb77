package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/EveryDayApps/LinkLock-sub001/internal/crypto"
	"github.com/EveryDayApps/LinkLock-sub001/internal/logger"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
)

// Logical record keys. Each names one encrypted blob whose plaintext is a
// JSON array of the corresponding entity.
const (
	KeyRules          = "rules"
	KeyProfiles       = "profiles"
	KeyUnlockSessions = "unlock_sessions"
	KeySnoozeStates   = "snooze_states"
	KeyCooldownStates = "cooldown_states"
	KeyActivityLogs   = "activity_logs"
)

// RecordKeys lists every logical record, used for bulk re-encryption.
var RecordKeys = []string{
	KeyRules,
	KeyProfiles,
	KeyUnlockSessions,
	KeySnoozeStates,
	KeyCooldownStates,
	KeyActivityLogs,
}

var errRecordCorrupt = errors.New("stored record corrupt or wrong key")

// Service persists named, encrypted records through the key-value table.
// A record that fails to decrypt or parse behaves exactly like a missing
// one, so a single corrupted row cannot wedge the whole load path.
type Service struct {
	db  *gorm.DB
	enc *crypto.EncryptionService
}

func NewService(db *gorm.DB, enc *crypto.EncryptionService) *Service {
	return &Service{db: db, enc: enc}
}

// Save serializes the value, encrypts it under the password hash and upserts
// the record.
func (s *Service) Save(key string, value any, passwordHash string) error {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record %q: %w", key, err)
	}

	env, err := s.enc.Encrypt(plaintext, passwordHash)
	if err != nil {
		return fmt.Errorf("encrypt record %q: %w", key, err)
	}

	var rec models.StoredRecord
	if err := s.db.Where("key = ?", key).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = models.StoredRecord{Key: key, Salt: env.Salt, IV: env.IV, Ciphertext: env.Ciphertext}
			return s.db.Create(&rec).Error
		}
		return err
	}

	rec.Salt = env.Salt
	rec.IV = env.IV
	rec.Ciphertext = env.Ciphertext
	return s.db.Save(&rec).Error
}

// Load decrypts and deserializes the record into out. It reports false when
// the record is missing, undecryptable or unparsable; only infrastructure
// failures surface as errors.
func (s *Service) Load(key, passwordHash string, out any) (bool, error) {
	err := s.load(key, passwordHash, out)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if errors.Is(err, errRecordCorrupt) {
		logger.WithFields(map[string]interface{}{"key": key}).Warn("stored record unreadable, treating as missing")
		return false, nil
	}
	return false, err
}

func (s *Service) load(key, passwordHash string, out any) error {
	var rec models.StoredRecord
	if err := s.db.Where("key = ?", key).First(&rec).Error; err != nil {
		return err
	}

	env := crypto.Envelope{Salt: rec.Salt, IV: rec.IV, Ciphertext: rec.Ciphertext}
	plaintext, err := s.enc.Decrypt(env, passwordHash)
	if err != nil {
		return fmt.Errorf("%w: %s", errRecordCorrupt, key)
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("%w: %s", errRecordCorrupt, key)
	}
	return nil
}

// Remove deletes a record. Removing a missing record is a no-op.
func (s *Service) Remove(key string) error {
	return s.db.Where("key = ?", key).Delete(&models.StoredRecord{}).Error
}

// Clear deletes every stored record.
func (s *Service) Clear() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StoredRecord{}).Error
}

// ReEncrypt rewrites every readable record under a new password hash.
// Records that cannot be decrypted with the old hash are dropped; they were
// unreadable before the change as well.
func (s *Service) ReEncrypt(oldHash, newHash string) error {
	for _, key := range RecordKeys {
		var raw json.RawMessage
		found, err := s.Load(key, oldHash, &raw)
		if err != nil {
			return fmt.Errorf("re-encrypt %q: %w", key, err)
		}
		if !found {
			if err := s.Remove(key); err != nil {
				return fmt.Errorf("drop unreadable record %q: %w", key, err)
			}
			continue
		}
		if err := s.Save(key, raw, newHash); err != nil {
			return fmt.Errorf("re-encrypt %q: %w", key, err)
		}
	}
	return nil
}
