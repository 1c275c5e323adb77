package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/EveryDayApps/LinkLock-sub001/internal/crypto"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/scheduler"
	"github.com/EveryDayApps/LinkLock-sub001/internal/storage"
)

func newProfileService(t *testing.T) (*ProfileService, *UnlockSessionService) {
	t.Helper()
	store := setupTestStore(t)
	sessions := NewUnlockSessionService(store, scheduler.New(), testHashFn)
	return NewProfileService(store, testPasswords, sessions, testHashFn, testHashFn), sessions
}

func TestProfile_LoadSeedsDefault(t *testing.T) {
	svc, _ := newProfileService(t)
	assert.NoError(t, svc.Load())

	list := svc.List()
	assert.Len(t, list, 1)
	assert.Equal(t, "Default", list[0].Name)
	assert.True(t, list[0].IsActive)
	assert.Equal(t, list[0].ID, svc.Active().ID)
}

func TestProfile_CreateValidation(t *testing.T) {
	svc, _ := newProfileService(t)
	assert.NoError(t, svc.Load())

	_, err := svc.Create("   ")
	assert.ErrorIs(t, err, ErrProfileNameRequired)

	p, err := svc.Create("Kids")
	assert.NoError(t, err)
	assert.False(t, p.IsActive, "new profiles do not steal the active flag")

	_, err = svc.Create("kids")
	assert.ErrorIs(t, err, ErrDuplicateProfileName, "names are case-insensitively unique")
	assert.Len(t, svc.List(), 2)
}

func TestProfile_Rename(t *testing.T) {
	svc, _ := newProfileService(t)
	assert.NoError(t, svc.Load())
	p, err := svc.Create("Kids")
	assert.NoError(t, err)

	renamed, err := svc.Rename(p.ID, "Teens")
	assert.NoError(t, err)
	assert.Equal(t, "Teens", renamed.Name)

	_, err = svc.Rename(p.ID, "default")
	assert.ErrorIs(t, err, ErrDuplicateProfileName)

	_, err = svc.Rename("missing", "Whatever")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfile_DeleteGuards(t *testing.T) {
	svc, _ := newProfileService(t)
	assert.NoError(t, svc.Load())
	active := svc.Active()

	assert.ErrorIs(t, svc.Delete(active.ID), ErrDeleteActiveProfile)
	assert.ErrorIs(t, svc.Delete("missing"), ErrProfileNotFound)

	p, err := svc.Create("Kids")
	assert.NoError(t, err)
	assert.NoError(t, svc.Delete(p.ID))
	assert.Len(t, svc.List(), 1)
}

func TestProfile_SwitchVerifiesPasswordAndClearsSessions(t *testing.T) {
	svc, sessions := newProfileService(t)
	assert.NoError(t, svc.Load())
	active := svc.Active()
	p, err := svc.Create("Kids")
	assert.NoError(t, err)

	assert.NoError(t, sessions.Unlock("example.com", 30, active.ID))
	assert.True(t, sessions.IsUnlocked("example.com", active.ID))

	_, err = svc.Switch(p.ID, "wrong")
	assert.ErrorIs(t, err, crypto.ErrInvalidPassword)
	assert.Equal(t, active.ID, svc.Active().ID, "failed switch leaves state untouched")
	assert.True(t, sessions.IsUnlocked("example.com", active.ID))

	switched, err := svc.Switch(p.ID, "master99")
	assert.NoError(t, err)
	assert.True(t, switched.IsActive)
	assert.Equal(t, p.ID, svc.Active().ID)
	assert.False(t, sessions.IsUnlocked("example.com", active.ID), "switch revokes every unlock session")

	_, err = svc.Switch("missing", "master99")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfile_LoadRepairsActiveFlag(t *testing.T) {
	store := setupTestStore(t)
	sessions := NewUnlockSessionService(store, scheduler.New(), testHashFn)
	first := NewProfileService(store, testPasswords, sessions, testHashFn, testHashFn)
	assert.NoError(t, first.Load())
	older := first.Active()
	time.Sleep(2 * time.Millisecond)
	_, err := first.Create("Kids")
	assert.NoError(t, err)

	// Corrupt the persisted flag: nobody active.
	var profiles []models.Profile
	found, err := store.Load(storage.KeyProfiles, testMasterHash, &profiles)
	assert.NoError(t, err)
	assert.True(t, found)
	for i := range profiles {
		profiles[i].IsActive = false
	}
	assert.NoError(t, store.Save(storage.KeyProfiles, profiles, testMasterHash))

	second := NewProfileService(store, testPasswords, sessions, testHashFn, testHashFn)
	assert.NoError(t, second.Load())
	assert.Equal(t, older.ID, second.Active().ID, "oldest profile becomes active")
}
