package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/EveryDayApps/LinkLock-sub001/internal/crypto"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
)

func setupStorageTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.StoredRecord{}))
	return NewService(db, crypto.NewEncryptionService())
}

var testHash = crypto.NewPasswordService().HashPassword("master99")

type testEntity struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStorage_RoundTrip(t *testing.T) {
	svc := setupStorageTest(t)

	in := []testEntity{{Name: "a", Count: 1}, {Name: "b", Count: 2}}
	assert.NoError(t, svc.Save(KeyRules, in, testHash))

	var out []testEntity
	found, err := svc.Load(KeyRules, testHash, &out)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestStorage_OverwriteKeepsSingleRecord(t *testing.T) {
	svc := setupStorageTest(t)

	assert.NoError(t, svc.Save(KeyRules, []testEntity{{Name: "a"}}, testHash))
	assert.NoError(t, svc.Save(KeyRules, []testEntity{{Name: "b"}}, testHash))

	var out []testEntity
	found, err := svc.Load(KeyRules, testHash, &out)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, out, 1)
	assert.Equal(t, "b", out[0].Name)
}

func TestStorage_WrongHashBehavesLikeMissing(t *testing.T) {
	svc := setupStorageTest(t)

	assert.NoError(t, svc.Save(KeyProfiles, []testEntity{{Name: "a"}}, testHash))

	var out []testEntity
	otherHash := crypto.NewPasswordService().HashPassword("other111")
	found, err := svc.Load(KeyProfiles, otherHash, &out)
	assert.NoError(t, err, "wrong key must not surface an error")
	assert.False(t, found)
}

func TestStorage_MissingKey(t *testing.T) {
	svc := setupStorageTest(t)

	var out []testEntity
	found, err := svc.Load("never_written", testHash, &out)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestStorage_RemoveAndClear(t *testing.T) {
	svc := setupStorageTest(t)

	assert.NoError(t, svc.Save(KeyRules, []testEntity{{Name: "a"}}, testHash))
	assert.NoError(t, svc.Save(KeyProfiles, []testEntity{{Name: "b"}}, testHash))

	assert.NoError(t, svc.Remove(KeyRules))
	var out []testEntity
	found, _ := svc.Load(KeyRules, testHash, &out)
	assert.False(t, found)

	// Removing a missing record is a no-op.
	assert.NoError(t, svc.Remove(KeyRules))

	assert.NoError(t, svc.Clear())
	found, _ = svc.Load(KeyProfiles, testHash, &out)
	assert.False(t, found)
}

func TestStorage_ReEncrypt(t *testing.T) {
	svc := setupStorageTest(t)
	newHash := crypto.NewPasswordService().HashPassword("rotated22")

	in := []testEntity{{Name: "a", Count: 7}}
	assert.NoError(t, svc.Save(KeyRules, in, testHash))

	assert.NoError(t, svc.ReEncrypt(testHash, newHash))

	var out []testEntity
	found, err := svc.Load(KeyRules, newHash, &out)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	// The old key no longer opens the record.
	found, err = svc.Load(KeyRules, testHash, &out)
	assert.NoError(t, err)
	assert.False(t, found)
}
