package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/EveryDayApps/LinkLock-sub001/internal/crypto"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/storage"
)

var (
	testPasswords  = crypto.NewPasswordService()
	testMasterHash = testPasswords.HashPassword("master99")
)

func testHashFn() string { return testMasterHash }

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(&models.StoredRecord{}, &models.SecurityConfig{}, &models.Notification{})
	assert.NoError(t, err)
	return db
}

func setupTestStore(t *testing.T) *storage.Service {
	t.Helper()
	return storage.NewService(setupServiceTestDB(t), crypto.NewEncryptionService())
}
