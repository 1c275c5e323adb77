package services

import (
	"sync"
	"time"

	"github.com/EveryDayApps/LinkLock-sub001/internal/logger"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/scheduler"
	"github.com/EveryDayApps/LinkLock-sub001/internal/storage"
)

const cooldownTimerPrefix = "cooldown:"

// CooldownService counts failed unlock attempts per domain and enforces a
// temporary lockout once the configured limit is reached.
type CooldownService struct {
	mu     sync.Mutex
	states map[string]*models.CooldownState

	store  *storage.Service
	sched  *scheduler.Scheduler
	hashFn func() string
	cfgFn  func() *models.SecurityConfig
	now    func() time.Time
}

func NewCooldownService(store *storage.Service, sched *scheduler.Scheduler, hashFn func() string, cfgFn func() *models.SecurityConfig) *CooldownService {
	return &CooldownService{
		states: make(map[string]*models.CooldownState),
		store:  store,
		sched:  sched,
		hashFn: hashFn,
		cfgFn:  cfgFn,
		now:    time.Now,
	}
}

// Load restores persisted cooldown states, discarding expired windows and
// re-arming timers for active ones.
func (s *CooldownService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var states []models.CooldownState
	if _, err := s.store.Load(storage.KeyCooldownStates, s.hashFn(), &states); err != nil {
		return err
	}

	now := s.now()
	s.states = make(map[string]*models.CooldownState)
	for i := range states {
		st := states[i]
		if st.LockedUntil != nil && now.After(*st.LockedUntil) {
			st.FailedAttempts = 0
			st.LockedUntil = nil
			if !st.RequireMaster {
				continue
			}
		}
		s.states[st.Domain] = &st
		if st.LockedUntil != nil {
			s.armExpiry(st.Domain, *st.LockedUntil)
		}
	}
	s.persist()
	return nil
}

// RecordFailedAttempt increments the domain's failure counter and reports
// whether this attempt triggered the cooldown.
func (s *CooldownService) RecordFailedAttempt(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[domain]
	if !ok {
		st = &models.CooldownState{Domain: domain}
		s.states[domain] = st
	}

	st.FailedAttempts++

	cfg := s.cfgFn()
	triggered := st.LockedUntil == nil && st.FailedAttempts >= cfg.FailedAttemptLimit
	if triggered {
		until := s.now().Add(time.Duration(cfg.CooldownDurationMinutes) * time.Minute)
		st.LockedUntil = &until
		if cfg.RequireMasterAfterCooldown {
			st.RequireMaster = true
		}
		s.armExpiry(domain, until)
		logger.WithFields(map[string]interface{}{"domain": domain, "attempts": st.FailedAttempts}).Warn("cooldown triggered")
	}

	s.persist()
	return triggered
}

// IsInCooldown reports whether unlock attempts for the domain are currently
// locked out. An elapsed window resets the whole state on the spot.
func (s *CooldownService) IsInCooldown(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[domain]
	if !ok || st.LockedUntil == nil {
		return false
	}
	if s.now().After(*st.LockedUntil) {
		s.clearExpiredLocked(domain)
		s.persist()
		return false
	}
	return true
}

// RequiresMaster reports whether a past cooldown demands the master password
// for this domain regardless of any per-rule custom password.
func (s *CooldownService) RequiresMaster(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[domain]
	return ok && st.RequireMaster
}

// ResetAttempts fully clears the domain's state and timer. Called on every
// successful unlock.
func (s *CooldownService) ResetAttempts(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[domain]; !ok {
		return
	}
	delete(s.states, domain)
	s.sched.Cancel(cooldownTimerPrefix + domain)
	s.persist()
}

// SweepExpired clears every elapsed cooldown window.
func (s *CooldownService) SweepExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	changed := false
	for domain, st := range s.states {
		if st.LockedUntil != nil && now.After(*st.LockedUntil) {
			s.clearExpiredLocked(domain)
			changed = true
		}
	}
	if changed {
		s.persist()
	}
}

func (s *CooldownService) armExpiry(domain string, at time.Time) {
	s.sched.Arm(cooldownTimerPrefix+domain, at, func() {
		s.expire(domain)
	})
}

func (s *CooldownService) expire(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[domain]
	if !ok || st.LockedUntil == nil || st.LockedUntil.After(s.now()) {
		return
	}
	s.clearExpiredLocked(domain)
	s.persist()
}

// clearExpiredLocked resets attempts and the lockout deadline. The sticky
// require-master flag survives natural expiry and falls only with a
// successful unlock.
func (s *CooldownService) clearExpiredLocked(domain string) {
	st := s.states[domain]
	s.sched.Cancel(cooldownTimerPrefix + domain)
	if st.RequireMaster {
		st.FailedAttempts = 0
		st.LockedUntil = nil
		return
	}
	delete(s.states, domain)
}

func (s *CooldownService) persist() {
	list := make([]models.CooldownState, 0, len(s.states))
	for _, st := range s.states {
		list = append(list, *st)
	}
	if err := s.store.Save(storage.KeyCooldownStates, list, s.hashFn()); err != nil {
		logger.Log().WithError(err).Error("persist cooldown states")
	}
}
