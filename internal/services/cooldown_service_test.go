package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/scheduler"
)

func newCooldownService(t *testing.T, cfg *models.SecurityConfig) (*CooldownService, *time.Time) {
	t.Helper()
	if cfg == nil {
		cfg = &models.SecurityConfig{FailedAttemptLimit: 5, CooldownDurationMinutes: 5}
	}
	svc := NewCooldownService(setupTestStore(t), scheduler.New(), testHashFn, func() *models.SecurityConfig { return cfg })
	clock := time.Now()
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestCooldown_TriggersAtLimit(t *testing.T) {
	svc, _ := newCooldownService(t, nil)

	for i := 0; i < 4; i++ {
		assert.False(t, svc.RecordFailedAttempt("example.com"))
		assert.False(t, svc.IsInCooldown("example.com"))
	}
	assert.True(t, svc.RecordFailedAttempt("example.com"), "fifth failure triggers the cooldown")
	assert.True(t, svc.IsInCooldown("example.com"))

	// Further failures during the window do not re-trigger.
	assert.False(t, svc.RecordFailedAttempt("example.com"))
}

func TestCooldown_DomainScoped(t *testing.T) {
	svc, _ := newCooldownService(t, nil)

	for i := 0; i < 5; i++ {
		svc.RecordFailedAttempt("a.com")
	}
	assert.True(t, svc.IsInCooldown("a.com"))
	assert.False(t, svc.IsInCooldown("b.com"))
}

func TestCooldown_ExpiresAndResetsState(t *testing.T) {
	svc, clock := newCooldownService(t, nil)

	for i := 0; i < 5; i++ {
		svc.RecordFailedAttempt("example.com")
	}
	assert.True(t, svc.IsInCooldown("example.com"))

	*clock = clock.Add(6 * time.Minute)
	assert.False(t, svc.IsInCooldown("example.com"))

	// The whole state reset: the next failure starts counting from one.
	assert.False(t, svc.RecordFailedAttempt("example.com"))
	assert.False(t, svc.IsInCooldown("example.com"))
}

func TestCooldown_ResetAttempts(t *testing.T) {
	svc, _ := newCooldownService(t, nil)

	svc.RecordFailedAttempt("example.com")
	svc.RecordFailedAttempt("example.com")
	svc.ResetAttempts("example.com")

	for i := 0; i < 4; i++ {
		assert.False(t, svc.RecordFailedAttempt("example.com"))
	}
	assert.True(t, svc.RecordFailedAttempt("example.com"))

	svc.ResetAttempts("example.com")
	assert.False(t, svc.IsInCooldown("example.com"))
}

func TestCooldown_RequireMasterSticksAcrossExpiry(t *testing.T) {
	cfg := &models.SecurityConfig{FailedAttemptLimit: 2, CooldownDurationMinutes: 5, RequireMasterAfterCooldown: true}
	svc, clock := newCooldownService(t, cfg)

	svc.RecordFailedAttempt("example.com")
	svc.RecordFailedAttempt("example.com")
	assert.True(t, svc.IsInCooldown("example.com"))
	assert.True(t, svc.RequiresMaster("example.com"))

	*clock = clock.Add(6 * time.Minute)
	assert.False(t, svc.IsInCooldown("example.com"))
	assert.True(t, svc.RequiresMaster("example.com"), "flag survives natural expiry")

	svc.ResetAttempts("example.com")
	assert.False(t, svc.RequiresMaster("example.com"), "successful unlock clears the flag")
}

func TestCooldown_LoadRestoresActiveWindow(t *testing.T) {
	store := setupTestStore(t)
	cfg := &models.SecurityConfig{FailedAttemptLimit: 2, CooldownDurationMinutes: 5}
	cfgFn := func() *models.SecurityConfig { return cfg }

	first := NewCooldownService(store, scheduler.New(), testHashFn, cfgFn)
	clock := time.Now()
	first.now = func() time.Time { return clock }
	first.RecordFailedAttempt("example.com")
	first.RecordFailedAttempt("example.com")
	assert.True(t, first.IsInCooldown("example.com"))

	second := NewCooldownService(store, scheduler.New(), testHashFn, cfgFn)
	second.now = func() time.Time { return clock }
	assert.NoError(t, second.Load())
	assert.True(t, second.IsInCooldown("example.com"))

	third := NewCooldownService(store, scheduler.New(), testHashFn, cfgFn)
	third.now = func() time.Time { return clock.Add(10 * time.Minute) }
	assert.NoError(t, third.Load())
	assert.False(t, third.IsInCooldown("example.com"))
}
