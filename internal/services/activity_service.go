package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EveryDayApps/LinkLock-sub001/internal/logger"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/storage"
)

// maxActivityEntries caps the persisted activity log at the most recent
// entries.
const maxActivityEntries = 500

// ActivityService keeps a capped, newest-first log of policy events.
type ActivityService struct {
	mu      sync.Mutex
	entries []models.ActivityEntry

	store  *storage.Service
	hashFn func() string
	now    func() time.Time
}

func NewActivityService(store *storage.Service, hashFn func() string) *ActivityService {
	return &ActivityService{
		store:  store,
		hashFn: hashFn,
		now:    time.Now,
	}
}

// Load restores the persisted log.
func (s *ActivityService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []models.ActivityEntry
	if _, err := s.store.Load(storage.KeyActivityLogs, s.hashFn(), &entries); err != nil {
		return err
	}
	s.entries = entries
	return nil
}

// Record appends an event, trimming the oldest entries past the cap.
func (s *ActivityService) Record(t models.ActivityType, domain, profileID, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.ActivityEntry{
		ID:        uuid.NewString(),
		Type:      t,
		Domain:    domain,
		ProfileID: profileID,
		Detail:    detail,
		CreatedAt: s.now(),
	}
	s.entries = append([]models.ActivityEntry{entry}, s.entries...)
	if len(s.entries) > maxActivityEntries {
		s.entries = s.entries[:maxActivityEntries]
	}
	s.persist()
}

// List returns the newest entries, up to limit (everything when limit <= 0).
func (s *ActivityService) List(limit int) []models.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.ActivityEntry, n)
	copy(out, s.entries[:n])
	return out
}

// Prune drops entries older than the retention window.
func (s *ActivityService) Prune(retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-retention)
	kept := s.entries[:0]
	dropped := 0
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	if dropped > 0 {
		s.persist()
	}
	return dropped
}

func (s *ActivityService) persist() {
	if err := s.store.Save(storage.KeyActivityLogs, s.entries, s.hashFn()); err != nil {
		logger.Log().WithError(err).Error("persist activity log")
	}
}
