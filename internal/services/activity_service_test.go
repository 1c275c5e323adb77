package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
)

func TestActivity_RecordNewestFirst(t *testing.T) {
	svc := NewActivityService(setupTestStore(t), testHashFn)

	svc.Record(models.ActivityBlocked, "a.com", "p1", "")
	svc.Record(models.ActivityUnlocked, "b.com", "p1", "")

	entries := svc.List(0)
	assert.Len(t, entries, 2)
	assert.Equal(t, "b.com", entries[0].Domain)
	assert.Equal(t, "a.com", entries[1].Domain)

	assert.Len(t, svc.List(1), 1)
}

func TestActivity_CapsEntries(t *testing.T) {
	svc := NewActivityService(setupTestStore(t), testHashFn)

	for i := 0; i < maxActivityEntries; i++ {
		svc.entries = append(svc.entries, models.ActivityEntry{
			ID:     fmt.Sprintf("e%d", i),
			Type:   models.ActivityBlocked,
			Domain: fmt.Sprintf("site%d.com", i),
		})
	}

	svc.Record(models.ActivityBlocked, "newest.com", "p1", "")
	entries := svc.List(0)
	assert.Len(t, entries, maxActivityEntries)
	assert.Equal(t, "newest.com", entries[0].Domain)
	assert.Equal(t, fmt.Sprintf("site%d.com", maxActivityEntries-2), entries[len(entries)-1].Domain, "oldest entry trimmed")
}

func TestActivity_Prune(t *testing.T) {
	svc := NewActivityService(setupTestStore(t), testHashFn)
	clock := time.Now().Add(-40 * 24 * time.Hour)
	svc.now = func() time.Time { return clock }

	svc.Record(models.ActivityBlocked, "old.com", "p1", "")
	clock = time.Now()
	svc.Record(models.ActivityBlocked, "fresh.com", "p1", "")

	assert.Equal(t, 1, svc.Prune(30*24*time.Hour))
	entries := svc.List(0)
	assert.Len(t, entries, 1)
	assert.Equal(t, "fresh.com", entries[0].Domain)
	assert.Equal(t, 0, svc.Prune(30*24*time.Hour))
}

func TestActivity_LoadRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	first := NewActivityService(store, testHashFn)
	first.Record(models.ActivityBlocked, "a.com", "p1", "")

	second := NewActivityService(store, testHashFn)
	assert.NoError(t, second.Load())
	entries := second.List(0)
	assert.Len(t, entries, 1)
	assert.Equal(t, "a.com", entries[0].Domain)
}
