package services

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EveryDayApps/LinkLock-sub001/internal/logger"
	"github.com/EveryDayApps/LinkLock-sub001/internal/matcher"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/storage"
)

var (
	ErrRuleNotFound              = errors.New("rule not found")
	ErrDuplicateRule             = errors.New("a rule for this pattern already exists in the profile")
	ErrInvalidRuleAction         = errors.New("invalid rule action")
	ErrMissingLockOptions        = errors.New("lock rules require lock options")
	ErrMissingRedirectOptions    = errors.New("redirect rules require redirect options")
	ErrInvalidRedirectURL        = errors.New("redirect target is not a valid url")
	ErrMissingCustomPasswordHash = errors.New("custom password rules require a password hash")
	ErrInvalidUnlockDuration     = errors.New("unlock duration must be 0, -1 or positive minutes")
)

// RuleService owns the ordered rule list. Order matters: evaluation uses
// first-match, so rules keep their insertion order.
type RuleService struct {
	mu    sync.Mutex
	rules []*models.Rule

	store  *storage.Service
	hashFn func() string
	now    func() time.Time
}

func NewRuleService(store *storage.Service, hashFn func() string) *RuleService {
	return &RuleService{
		store:  store,
		hashFn: hashFn,
		now:    time.Now,
	}
}

// Load restores the persisted rule list.
func (s *RuleService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rules []models.Rule
	if _, err := s.store.Load(storage.KeyRules, s.hashFn(), &rules); err != nil {
		return err
	}

	s.rules = make([]*models.Rule, 0, len(rules))
	for i := range rules {
		r := rules[i]
		s.rules = append(s.rules, &r)
	}
	return nil
}

// List returns every rule in evaluation order.
func (s *RuleService) List() []models.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked(s.rules)
}

// ListByProfile returns a profile's rules in evaluation order.
func (s *RuleService) ListByProfile(profileID string) []models.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	var filtered []*models.Rule
	for _, r := range s.rules {
		if r.ProfileID == profileID {
			filtered = append(filtered, r)
		}
	}
	return s.copyLocked(filtered)
}

// Get returns one rule by id.
func (s *RuleService) Get(id string) (*models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findLocked(id)
	if r == nil {
		return nil, ErrRuleNotFound
	}
	cp := *r
	return &cp, nil
}

// Create validates and persists a new rule. Validation failures leave the
// rule set untouched.
func (s *RuleService) Create(input models.Rule) (*models.Rule, error) {
	if err := matcher.ValidatePattern(input.URLPattern); err != nil {
		return nil, err
	}
	if err := validateActionOptions(&input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.patternTakenLocked(input.ProfileID, input.URLPattern, "") {
		return nil, ErrDuplicateRule
	}

	now := s.now()
	r := input
	r.ID = uuid.NewString()
	r.CreatedAt = now
	r.UpdatedAt = now

	s.rules = append(s.rules, &r)
	s.persist()

	cp := r
	return &cp, nil
}

// RuleUpdate carries the mutable fields of a rule; nil fields are left as
// they are.
type RuleUpdate struct {
	URLPattern      *string
	Action          *models.RuleAction
	LockOptions     *models.LockOptions
	RedirectOptions *models.RedirectOptions
	Enabled         *bool
}

// Update applies a partial update. Action-specific options are re-validated
// when the action changes or new options are supplied; a changed pattern is
// always validated.
func (s *RuleService) Update(id string, upd RuleUpdate) (*models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findLocked(id)
	if r == nil {
		return nil, ErrRuleNotFound
	}

	next := *r
	if upd.URLPattern != nil && *upd.URLPattern != r.URLPattern {
		if err := matcher.ValidatePattern(*upd.URLPattern); err != nil {
			return nil, err
		}
		if s.patternTakenLocked(r.ProfileID, *upd.URLPattern, id) {
			return nil, ErrDuplicateRule
		}
		next.URLPattern = *upd.URLPattern
	}
	if upd.LockOptions != nil {
		next.LockOptions = upd.LockOptions
	}
	if upd.RedirectOptions != nil {
		next.RedirectOptions = upd.RedirectOptions
	}
	if upd.Enabled != nil {
		next.Enabled = *upd.Enabled
	}
	if upd.Action != nil {
		next.Action = *upd.Action
	}
	if (upd.Action != nil && *upd.Action != r.Action) || upd.LockOptions != nil || upd.RedirectOptions != nil {
		if err := validateActionOptions(&next); err != nil {
			return nil, err
		}
	}

	next.UpdatedAt = s.now()
	*r = next
	s.persist()

	cp := next
	return &cp, nil
}

// Toggle flips a rule's enabled flag.
func (s *RuleService) Toggle(id string) (*models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findLocked(id)
	if r == nil {
		return nil, ErrRuleNotFound
	}

	r.Enabled = !r.Enabled
	r.UpdatedAt = s.now()
	s.persist()

	cp := *r
	return &cp, nil
}

// Delete removes a rule by id.
func (s *RuleService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.rules {
		if r.ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			s.persist()
			return nil
		}
	}
	return ErrRuleNotFound
}

// DeleteProfileRules removes every rule owned by a profile, returning the
// number deleted. Used by callers cascading a profile deletion.
func (s *RuleService) DeleteProfileRules(profileID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rules[:0]
	deleted := 0
	for _, r := range s.rules {
		if r.ProfileID == profileID {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.rules = kept
	if deleted > 0 {
		s.persist()
	}
	return deleted
}

// CopyRules clones a profile's rules into another profile with fresh ids and
// timestamps, skipping patterns the target already has. Used when a new
// profile is seeded from an existing one.
func (s *RuleService) CopyRules(sourceProfileID, targetProfileID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	copied := 0
	for _, r := range s.rules {
		if r.ProfileID != sourceProfileID {
			continue
		}
		if s.patternTakenLocked(targetProfileID, r.URLPattern, "") {
			continue
		}

		clone := *r
		clone.ID = uuid.NewString()
		clone.ProfileID = targetProfileID
		clone.CreatedAt = now
		clone.UpdatedAt = now
		if r.LockOptions != nil {
			lo := *r.LockOptions
			clone.LockOptions = &lo
		}
		if r.RedirectOptions != nil {
			ro := *r.RedirectOptions
			clone.RedirectOptions = &ro
		}
		s.rules = append(s.rules, &clone)
		copied++
	}

	if copied > 0 {
		s.persist()
	}
	return copied, nil
}

func validateActionOptions(r *models.Rule) error {
	switch r.Action {
	case models.ActionLock:
		if r.LockOptions == nil {
			return ErrMissingLockOptions
		}
		if !r.LockOptions.UnlockDuration.Valid() {
			return ErrInvalidUnlockDuration
		}
		if r.LockOptions.UseCustomPassword && r.LockOptions.CustomPasswordHash == "" {
			return ErrMissingCustomPasswordHash
		}
		if !r.LockOptions.UseCustomPassword {
			r.LockOptions.CustomPasswordHash = ""
		}
		r.RedirectOptions = nil
	case models.ActionBlock:
		r.LockOptions = nil
		r.RedirectOptions = nil
	case models.ActionRedirect:
		if r.RedirectOptions == nil {
			return ErrMissingRedirectOptions
		}
		target := strings.TrimSpace(r.RedirectOptions.TargetURL)
		if !strings.Contains(target, "://") {
			target = "https://" + target
		}
		u, err := url.Parse(target)
		if err != nil || u.Hostname() == "" {
			return ErrInvalidRedirectURL
		}
		r.RedirectOptions.TargetURL = target
		r.LockOptions = nil
	default:
		return ErrInvalidRuleAction
	}
	return nil
}

func (s *RuleService) findLocked(id string) *models.Rule {
	for _, r := range s.rules {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *RuleService) patternTakenLocked(profileID, pattern, excludeID string) bool {
	for _, r := range s.rules {
		if r.ID != excludeID && r.ProfileID == profileID && strings.EqualFold(r.URLPattern, pattern) {
			return true
		}
	}
	return false
}

func (s *RuleService) copyLocked(src []*models.Rule) []models.Rule {
	out := make([]models.Rule, len(src))
	for i, r := range src {
		out[i] = *r
	}
	return out
}

func (s *RuleService) persist() {
	list := make([]models.Rule, len(s.rules))
	for i, r := range s.rules {
		list[i] = *r
	}
	if err := s.store.Save(storage.KeyRules, list, s.hashFn()); err != nil {
		logger.Log().WithError(err).Error("persist rules")
	}
}
