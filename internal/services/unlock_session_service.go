package services

import (
	"errors"
	"sync"
	"time"

	"github.com/EveryDayApps/LinkLock-sub001/internal/logger"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/scheduler"
	"github.com/EveryDayApps/LinkLock-sub001/internal/storage"
)

var ErrInvalidSnoozeDuration = errors.New("snooze duration must be 5, 30 or 0 for the rest of today")

const (
	unlockTimerPrefix = "unlock:"
	snoozeTimerPrefix = "snooze:"
)

// UnlockSessionService tracks which (domain, profile) pairs are currently
// unlocked or snoozed. Expiry is enforced both eagerly through the shared
// scheduler and lazily on every query, so entries cannot outlive their
// deadline even if a timer is lost across a process suspension.
type UnlockSessionService struct {
	mu       sync.Mutex
	sessions map[string]*models.UnlockSession
	snoozes  map[string]*models.SnoozeState

	store  *storage.Service
	sched  *scheduler.Scheduler
	hashFn func() string
	now    func() time.Time
}

func NewUnlockSessionService(store *storage.Service, sched *scheduler.Scheduler, hashFn func() string) *UnlockSessionService {
	return &UnlockSessionService{
		sessions: make(map[string]*models.UnlockSession),
		snoozes:  make(map[string]*models.SnoozeState),
		store:    store,
		sched:    sched,
		hashFn:   hashFn,
		now:      time.Now,
	}
}

func sessionKey(domain, profileID string) string {
	return domain + "|" + profileID
}

// Load restores persisted sessions and snoozes. Expired entries and
// session-scoped grants (which do not survive a restart) are dropped; timers
// are re-armed for the remaining lifetime of everything else.
func (s *UnlockSessionService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	var sessions []models.UnlockSession
	if _, err := s.store.Load(storage.KeyUnlockSessions, s.hashFn(), &sessions); err != nil {
		return err
	}
	s.sessions = make(map[string]*models.UnlockSession)
	for i := range sessions {
		sess := sessions[i]
		if sess.ExpiresAt == nil || !sess.ExpiresAt.After(now) {
			continue
		}
		key := sessionKey(sess.Domain, sess.ProfileID)
		s.sessions[key] = &sess
		s.armUnlockExpiry(key, sess.Domain, sess.ProfileID, *sess.ExpiresAt)
	}

	var snoozes []models.SnoozeState
	if _, err := s.store.Load(storage.KeySnoozeStates, s.hashFn(), &snoozes); err != nil {
		return err
	}
	s.snoozes = make(map[string]*models.SnoozeState)
	for i := range snoozes {
		sn := snoozes[i]
		if !sn.SnoozedUntil.After(now) {
			continue
		}
		key := sessionKey(sn.Domain, sn.ProfileID)
		s.snoozes[key] = &sn
		s.armSnoozeExpiry(key, sn.Domain, sn.ProfileID, sn.SnoozedUntil)
	}

	s.persistSessions()
	s.persistSnoozes()
	return nil
}

// Unlock creates an unlock session for the domain within the profile.
// An ask-every-time duration never creates a session; a session-scoped
// duration creates one without a deadline; minutes arm an expiry timer.
func (s *UnlockSessionService) Unlock(domain string, duration models.UnlockDuration, profileID string) error {
	if duration == models.UnlockAlwaysAsk {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(domain, profileID)
	sess := &models.UnlockSession{
		Domain:     domain,
		ProfileID:  profileID,
		UnlockedAt: s.now(),
	}

	if duration == models.UnlockSessionScoped {
		s.sched.Cancel(unlockTimerPrefix + key)
	} else {
		expires := s.now().Add(time.Duration(duration) * time.Minute)
		sess.ExpiresAt = &expires
		s.armUnlockExpiry(key, domain, profileID, expires)
	}

	s.sessions[key] = sess
	s.persistSessions()
	return nil
}

// IsUnlocked reports whether an unexpired session exists. Expired sessions
// are removed on the spot.
func (s *UnlockSessionService) IsUnlocked(domain, profileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(domain, profileID)
	sess, ok := s.sessions[key]
	if !ok {
		return false
	}
	if sess.ExpiresAt == nil {
		return true
	}
	if s.now().After(*sess.ExpiresAt) {
		s.removeSessionLocked(key)
		s.persistSessions()
		return false
	}
	return true
}

// Lock removes any session and snooze for the domain within the profile.
func (s *UnlockSessionService) Lock(domain, profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(domain, profileID)
	_, hadSession := s.sessions[key]
	_, hadSnooze := s.snoozes[key]
	if hadSession {
		s.removeSessionLocked(key)
		s.persistSessions()
	}
	if hadSnooze {
		s.removeSnoozeLocked(key)
		s.persistSnoozes()
	}
}

// Snooze pauses the gate for 5 or 30 minutes, or until 23:59:59.999 local
// time when minutes is 0.
func (s *UnlockSessionService) Snooze(domain string, minutes int, profileID string) error {
	var until time.Time
	now := s.now()
	switch minutes {
	case 0:
		until = endOfDay(now)
	case 5, 30:
		until = now.Add(time.Duration(minutes) * time.Minute)
	default:
		return ErrInvalidSnoozeDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(domain, profileID)
	s.snoozes[key] = &models.SnoozeState{
		Domain:       domain,
		ProfileID:    profileID,
		SnoozedUntil: until,
	}
	s.armSnoozeExpiry(key, domain, profileID, until)
	s.persistSnoozes()
	return nil
}

// IsSnoozed reports whether an unexpired snooze exists, removing expired
// entries lazily.
func (s *UnlockSessionService) IsSnoozed(domain, profileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(domain, profileID)
	sn, ok := s.snoozes[key]
	if !ok {
		return false
	}
	if s.now().After(sn.SnoozedUntil) {
		s.removeSnoozeLocked(key)
		s.persistSnoozes()
		return false
	}
	return true
}

// ClearSessions removes unlock sessions, scoped to one profile when
// profileID is non-empty. Snoozes are left in place; a profile switch
// revokes credentialed grants, not courtesy pauses.
func (s *UnlockSessionService) ClearSessions(profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for key, sess := range s.sessions {
		if profileID != "" && sess.ProfileID != profileID {
			continue
		}
		s.removeSessionLocked(key)
		changed = true
	}
	if changed {
		s.persistSessions()
	}
}

// SweepExpired drops every session and snooze past its deadline. Acts as a
// backstop for per-key timers lost across process suspensions.
func (s *UnlockSessionService) SweepExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sessionsChanged := false
	for key, sess := range s.sessions {
		if sess.ExpiresAt != nil && now.After(*sess.ExpiresAt) {
			s.removeSessionLocked(key)
			sessionsChanged = true
		}
	}
	snoozesChanged := false
	for key, sn := range s.snoozes {
		if now.After(sn.SnoozedUntil) {
			s.removeSnoozeLocked(key)
			snoozesChanged = true
		}
	}
	if sessionsChanged {
		s.persistSessions()
	}
	if snoozesChanged {
		s.persistSnoozes()
	}
}

func (s *UnlockSessionService) armUnlockExpiry(key, domain, profileID string, at time.Time) {
	s.sched.Arm(unlockTimerPrefix+key, at, func() {
		s.expireSession(domain, profileID)
	})
}

func (s *UnlockSessionService) armSnoozeExpiry(key, domain, profileID string, at time.Time) {
	s.sched.Arm(snoozeTimerPrefix+key, at, func() {
		s.expireSnooze(domain, profileID)
	})
}

func (s *UnlockSessionService) expireSession(domain, profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(domain, profileID)
	sess, ok := s.sessions[key]
	if !ok || sess.ExpiresAt == nil || sess.ExpiresAt.After(s.now()) {
		return
	}
	s.removeSessionLocked(key)
	s.persistSessions()
	logger.WithFields(map[string]interface{}{"domain": domain, "profile": profileID}).Debug("unlock session expired")
}

func (s *UnlockSessionService) expireSnooze(domain, profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(domain, profileID)
	sn, ok := s.snoozes[key]
	if !ok || sn.SnoozedUntil.After(s.now()) {
		return
	}
	s.removeSnoozeLocked(key)
	s.persistSnoozes()
}

// removeSessionLocked deletes the session and cancels its timer in the same
// step so a dangling callback cannot resurrect deleted state.
func (s *UnlockSessionService) removeSessionLocked(key string) {
	delete(s.sessions, key)
	s.sched.Cancel(unlockTimerPrefix + key)
}

func (s *UnlockSessionService) removeSnoozeLocked(key string) {
	delete(s.snoozes, key)
	s.sched.Cancel(snoozeTimerPrefix + key)
}

func (s *UnlockSessionService) persistSessions() {
	list := make([]models.UnlockSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, *sess)
	}
	if err := s.store.Save(storage.KeyUnlockSessions, list, s.hashFn()); err != nil {
		logger.Log().WithError(err).Error("persist unlock sessions")
	}
}

func (s *UnlockSessionService) persistSnoozes() {
	list := make([]models.SnoozeState, 0, len(s.snoozes))
	for _, sn := range s.snoozes {
		list = append(list, *sn)
	}
	if err := s.store.Save(storage.KeySnoozeStates, list, s.hashFn()); err != nil {
		logger.Log().WithError(err).Error("persist snooze states")
	}
}

func endOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999_000_000, now.Location())
}
