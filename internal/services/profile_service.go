package services

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EveryDayApps/LinkLock-sub001/internal/crypto"
	"github.com/EveryDayApps/LinkLock-sub001/internal/logger"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/storage"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileNameRequired  = errors.New("profile name is required")
	ErrDuplicateProfileName = errors.New("profile name already exists")
	ErrDeleteActiveProfile  = errors.New("cannot delete the active profile")
	ErrDeleteLastProfile    = errors.New("cannot delete the last profile")
)

const defaultProfileName = "Default"

// ProfileService owns the set of profiles and the active profile. Exactly
// one profile is active whenever at least one exists.
type ProfileService struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile

	store        *storage.Service
	passwords    *crypto.PasswordService
	sessions     *UnlockSessionService
	hashFn       func() string
	masterHashFn func() string
	now          func() time.Time
}

func NewProfileService(store *storage.Service, passwords *crypto.PasswordService, sessions *UnlockSessionService, hashFn, masterHashFn func() string) *ProfileService {
	return &ProfileService{
		profiles:     make(map[string]*models.Profile),
		store:        store,
		passwords:    passwords,
		sessions:     sessions,
		hashFn:       hashFn,
		masterHashFn: masterHashFn,
		now:          time.Now,
	}
}

// Load restores persisted profiles, seeding a Default profile when none
// exist and repairing the single-active invariant.
func (s *ProfileService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles []models.Profile
	if _, err := s.store.Load(storage.KeyProfiles, s.hashFn(), &profiles); err != nil {
		return err
	}

	s.profiles = make(map[string]*models.Profile)
	for i := range profiles {
		p := profiles[i]
		s.profiles[p.ID] = &p
	}

	if len(s.profiles) == 0 {
		now := s.now()
		p := &models.Profile{
			ID:        uuid.NewString(),
			Name:      defaultProfileName,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.profiles[p.ID] = p
		logger.Log().Info("seeded default profile")
	} else if s.activeLocked() == nil {
		// Oldest profile becomes active when the flag was lost.
		list := s.sortedLocked()
		list[0].IsActive = true
		s.profiles[list[0].ID].IsActive = true
	}

	s.persist()
	return nil
}

// List returns all profiles ordered by creation time.
func (s *ProfileService) List() []models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.sortedLocked()
	out := make([]models.Profile, len(list))
	for i, p := range list {
		out[i] = *p
	}
	return out
}

// Get returns one profile by id.
func (s *ProfileService) Get(id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

// Active returns the active profile.
func (s *ProfileService) Active() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.activeLocked(); p != nil {
		cp := *p
		return &cp
	}
	return nil
}

// Create adds a profile with a case-insensitively unique name.
func (s *ProfileService) Create(name string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrProfileNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(name, "") {
		return nil, ErrDuplicateProfileName
	}

	now := s.now()
	p := &models.Profile{
		ID:        uuid.NewString(),
		Name:      name,
		IsActive:  len(s.profiles) == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.profiles[p.ID] = p
	s.persist()

	cp := *p
	return &cp, nil
}

// Rename changes a profile's name, keeping names case-insensitively unique.
func (s *ProfileService) Rename(id, name string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrProfileNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	if s.nameTakenLocked(name, id) {
		return nil, ErrDuplicateProfileName
	}

	p.Name = name
	p.UpdatedAt = s.now()
	s.persist()

	cp := *p
	return &cp, nil
}

// Delete removes a profile. The active profile and the last remaining
// profile cannot be deleted. Cascading rule deletion is the caller's job.
func (s *ProfileService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	if p.IsActive {
		return ErrDeleteActiveProfile
	}
	if len(s.profiles) == 1 {
		return ErrDeleteLastProfile
	}

	delete(s.profiles, id)
	s.persist()
	return nil
}

// Switch verifies the master password, clears all unlock sessions
// process-wide (snoozes stay) and flips the active flag to the target
// profile. Failure leaves state untouched.
func (s *ProfileService) Switch(id, password string) (*models.Profile, error) {
	if !s.passwords.VerifyPassword(password, s.masterHashFn()) {
		return nil, crypto.ErrInvalidPassword
	}

	s.mu.Lock()

	target, ok := s.profiles[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrProfileNotFound
	}

	for _, p := range s.profiles {
		p.IsActive = false
	}
	target.IsActive = true
	target.UpdatedAt = s.now()
	s.persist()

	cp := *target
	s.mu.Unlock()

	// Revoke credentialed grants everywhere; a different profile's unlocks
	// must not leak into the new context.
	s.sessions.ClearSessions("")

	logger.WithFields(map[string]interface{}{"profile": cp.Name}).Info("switched active profile")
	return &cp, nil
}

func (s *ProfileService) activeLocked() *models.Profile {
	for _, p := range s.profiles {
		if p.IsActive {
			return p
		}
	}
	return nil
}

func (s *ProfileService) nameTakenLocked(name, excludeID string) bool {
	for _, p := range s.profiles {
		if p.ID != excludeID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (s *ProfileService) sortedLocked() []*models.Profile {
	list := make([]*models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (s *ProfileService) persist() {
	list := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.sortedLocked() {
		list = append(list, *p)
	}
	if err := s.store.Save(storage.KeyProfiles, list, s.hashFn()); err != nil {
		logger.Log().WithError(err).Error("persist profiles")
	}
}
