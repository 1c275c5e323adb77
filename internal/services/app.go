package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/EveryDayApps/LinkLock-sub001/internal/config"
	"github.com/EveryDayApps/LinkLock-sub001/internal/crypto"
	"github.com/EveryDayApps/LinkLock-sub001/internal/logger"
	"github.com/EveryDayApps/LinkLock-sub001/internal/matcher"
	"github.com/EveryDayApps/LinkLock-sub001/internal/metrics"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/scheduler"
	"github.com/EveryDayApps/LinkLock-sub001/internal/storage"
)

var (
	ErrDomainInCooldown   = errors.New("domain is in cooldown")
	ErrRuleNotLockable    = errors.New("rule is not a lock rule")
	ErrDomainRuleMismatch = errors.New("domain does not match the rule's pattern")
)

// activityRetention is how long pruning keeps activity entries.
const activityRetention = 30 * 24 * time.Hour

// App is the top-level orchestrator. One instance owns every manager; it is
// constructed once at process start and injected into the HTTP layer.
type App struct {
	cfg config.Config
	db  *gorm.DB

	mu     sync.Mutex
	secCfg models.SecurityConfig

	Passwords     *crypto.PasswordService
	Store         *storage.Service
	Scheduler     *scheduler.Scheduler
	Sessions      *UnlockSessionService
	Cooldowns     *CooldownService
	Profiles      *ProfileService
	Rules         *RuleService
	Activity      *ActivityService
	Notifications *NotificationService

	evaluator *Evaluator
}

// NewApp wires the managers together. Call Initialize before use.
func NewApp(db *gorm.DB, cfg config.Config) *App {
	app := &App{cfg: cfg, db: db}

	app.Passwords = crypto.NewPasswordService()
	app.Store = storage.NewService(db, crypto.NewEncryptionService())
	app.Scheduler = scheduler.New()
	app.Sessions = NewUnlockSessionService(app.Store, app.Scheduler, app.PasswordHash)
	app.Cooldowns = NewCooldownService(app.Store, app.Scheduler, app.PasswordHash, app.SecurityConfig)
	app.Profiles = NewProfileService(app.Store, app.Passwords, app.Sessions, app.PasswordHash, app.PasswordHash)
	app.Rules = NewRuleService(app.Store, app.PasswordHash)
	app.Activity = NewActivityService(app.Store, app.PasswordHash)
	app.Notifications = NewNotificationService(db, cfg.NotifyURLs)
	app.evaluator = NewEvaluator(app.Sessions)

	return app
}

// Initialize loads or seeds the security config, then restores every
// manager's state and re-arms expiry timers.
func (a *App) Initialize() error {
	if err := a.loadSecurityConfig(); err != nil {
		return err
	}

	if err := a.Sessions.Load(); err != nil {
		return fmt.Errorf("load unlock sessions: %w", err)
	}
	if err := a.Cooldowns.Load(); err != nil {
		return fmt.Errorf("load cooldown states: %w", err)
	}
	if err := a.Profiles.Load(); err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	if err := a.Rules.Load(); err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	if err := a.Activity.Load(); err != nil {
		return fmt.Errorf("load activity log: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"profiles": len(a.Profiles.List()),
		"rules":    len(a.Rules.List()),
	}).Info("policy engine initialized")
	return nil
}

func (a *App) loadSecurityConfig() error {
	var cfg models.SecurityConfig
	err := a.db.First(&cfg).Error
	if err == nil {
		a.mu.Lock()
		a.secCfg = cfg
		a.mu.Unlock()
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load security config: %w", err)
	}

	password := a.cfg.MasterPassword
	generated := false
	if password == "" {
		raw := make([]byte, 9)
		if _, err := rand.Read(raw); err != nil {
			return fmt.Errorf("generate bootstrap password: %w", err)
		}
		// hex keeps the digit requirement, the prefix the letter one
		password = "lk" + hex.EncodeToString(raw)
		generated = true
	}
	if err := a.Passwords.ValidateStrength(password); err != nil {
		return fmt.Errorf("bootstrap master password: %w", err)
	}

	cfg = models.SecurityConfig{
		MasterPasswordHash:      a.Passwords.HashPassword(password),
		FailedAttemptLimit:      5,
		CooldownDurationMinutes: 5,
	}
	if err := a.db.Create(&cfg).Error; err != nil {
		return fmt.Errorf("seed security config: %w", err)
	}

	a.mu.Lock()
	a.secCfg = cfg
	a.mu.Unlock()

	if generated {
		// One-time disclosure; the password is never recoverable later.
		logger.WithFields(map[string]interface{}{"master_password": password}).Warn("generated master password, change it now")
	}
	return nil
}

// PasswordHash returns the current master password hash, the key every
// encrypted record derives from.
func (a *App) PasswordHash() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.secCfg.MasterPasswordHash
}

// SecurityConfig returns a snapshot of the process-wide security settings.
func (a *App) SecurityConfig() *models.SecurityConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	cfg := a.secCfg
	return &cfg
}

// UpdateSecurityConfig persists new limits for the cooldown machinery.
func (a *App) UpdateSecurityConfig(failedAttemptLimit, cooldownMinutes int, requireMasterAfterCooldown bool) (*models.SecurityConfig, error) {
	if failedAttemptLimit < 1 || cooldownMinutes < 1 {
		return nil, errors.New("limits must be at least 1")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.secCfg.FailedAttemptLimit = failedAttemptLimit
	a.secCfg.CooldownDurationMinutes = cooldownMinutes
	a.secCfg.RequireMasterAfterCooldown = requireMasterAfterCooldown
	if err := a.db.Save(&a.secCfg).Error; err != nil {
		return nil, err
	}
	cfg := a.secCfg
	return &cfg, nil
}

// EvaluateURL classifies one URL against the active profile's rules.
func (a *App) EvaluateURL(rawURL string) (models.Decision, error) {
	active := a.Profiles.Active()
	if active == nil {
		return models.Decision{Action: models.DecisionAllow}, nil
	}

	decision := a.evaluator.Evaluate(rawURL, a.Rules.List(), active.ID)
	metrics.IncEvaluation(string(decision.Action))

	switch decision.Action {
	case models.DecisionBlock:
		a.Activity.Record(models.ActivityBlocked, decision.Domain, active.ID, rawURL)
	case models.DecisionRedirect:
		a.Activity.Record(models.ActivityRedirected, decision.Domain, active.ID, decision.RedirectURL)
	case models.DecisionRequireUnlock:
		a.Activity.Record(models.ActivityUnlockRequired, decision.Domain, active.ID, "")
	}

	return decision, nil
}

// UnlockOutcome reports what a failed or successful unlock attempt did.
type UnlockOutcome struct {
	Unlocked          bool `json:"unlocked"`
	TriggeredCooldown bool `json:"triggered_cooldown"`
}

// HandleUnlockAttempt verifies the password for a lock rule and opens an
// unlock session on success. Failures feed the cooldown bookkeeping; a
// domain in cooldown rejects attempts without examining the password.
func (a *App) HandleUnlockAttempt(domain, password, ruleID string) (UnlockOutcome, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))

	if a.Cooldowns.IsInCooldown(domain) {
		metrics.IncUnlockAttempt("cooldown")
		return UnlockOutcome{}, ErrDomainInCooldown
	}

	rule, err := a.Rules.Get(ruleID)
	if err != nil {
		return UnlockOutcome{}, err
	}
	if rule.Action != models.ActionLock || rule.LockOptions == nil {
		return UnlockOutcome{}, ErrRuleNotLockable
	}
	// The password gate opens sessions only for domains the rule covers.
	if !matcher.MatchesPattern(domain, rule.URLPattern) {
		return UnlockOutcome{}, ErrDomainRuleMismatch
	}

	expectedHash := a.PasswordHash()
	if rule.LockOptions.UseCustomPassword && !a.Cooldowns.RequiresMaster(domain) {
		expectedHash = rule.LockOptions.CustomPasswordHash
	}

	if !a.Passwords.VerifyPassword(password, expectedHash) {
		triggered := a.Cooldowns.RecordFailedAttempt(domain)
		metrics.IncUnlockAttempt("failure")
		a.Activity.Record(models.ActivityUnlockFailed, domain, rule.ProfileID, "")
		if triggered {
			metrics.IncCooldownTriggered()
			a.Activity.Record(models.ActivityCooldown, domain, rule.ProfileID, "")
			a.Notifications.Notify(models.NotificationTypeWarning,
				"Unlock attempts locked out",
				fmt.Sprintf("Too many failed unlock attempts for %s", domain))
		}
		return UnlockOutcome{TriggeredCooldown: triggered}, crypto.ErrInvalidPassword
	}

	a.Cooldowns.ResetAttempts(domain)
	if err := a.Sessions.Unlock(domain, rule.LockOptions.UnlockDuration, rule.ProfileID); err != nil {
		return UnlockOutcome{}, err
	}

	metrics.IncUnlockAttempt("success")
	a.Activity.Record(models.ActivityUnlocked, domain, rule.ProfileID, "")
	return UnlockOutcome{Unlocked: true}, nil
}

// HandleSnooze pauses the lock gate for the domain within the active
// profile.
func (a *App) HandleSnooze(domain string, minutes int) error {
	domain = strings.ToLower(strings.TrimSpace(domain))

	active := a.Profiles.Active()
	if active == nil {
		return ErrProfileNotFound
	}
	if err := a.Sessions.Snooze(domain, minutes, active.ID); err != nil {
		return err
	}
	a.Activity.Record(models.ActivitySnoozed, domain, active.ID, fmt.Sprintf("%d", minutes))
	return nil
}

// LockDomain explicitly re-locks a domain within the active profile,
// revoking its unlock session and snooze.
func (a *App) LockDomain(domain string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))

	active := a.Profiles.Active()
	if active == nil {
		return ErrProfileNotFound
	}
	a.Sessions.Lock(domain, active.ID)
	a.Activity.Record(models.ActivityLocked, domain, active.ID, "")
	return nil
}

// SwitchProfile activates another profile after master password
// verification.
func (a *App) SwitchProfile(id, password string) (*models.Profile, error) {
	profile, err := a.Profiles.Switch(id, password)
	if err != nil {
		return nil, err
	}
	metrics.IncProfileSwitch()
	a.Activity.Record(models.ActivityProfileSwitch, "", profile.ID, profile.Name)
	return profile, nil
}

// ChangeMasterPassword verifies the old password, re-encrypts every stored
// record under the new hash and only then persists it. Callers never see a
// state where the hash and the records disagree.
func (a *App) ChangeMasterPassword(oldPassword, newPassword string) error {
	oldHash := a.PasswordHash()
	newHash, err := a.Passwords.ChangeMasterPassword(oldPassword, newPassword, oldHash)
	if err != nil {
		return err
	}

	if err := a.Store.ReEncrypt(oldHash, newHash); err != nil {
		return fmt.Errorf("re-encrypt records: %w", err)
	}

	a.mu.Lock()
	a.secCfg.MasterPasswordHash = newHash
	err = a.db.Save(&a.secCfg).Error
	a.mu.Unlock()
	if err != nil {
		return fmt.Errorf("persist master password: %w", err)
	}

	a.Notifications.Notify(models.NotificationTypeInfo, "Master password changed", "The master password was changed")
	logger.Log().Info("master password changed")
	return nil
}

// VerifyMasterPassword checks a password against the master hash.
func (a *App) VerifyMasterPassword(password string) bool {
	return a.Passwords.VerifyPassword(password, a.PasswordHash())
}

// Sweep expires stale sessions, snoozes and cooldowns. Run periodically as
// a backstop for per-key timers.
func (a *App) Sweep() {
	a.Sessions.SweepExpired()
	a.Cooldowns.SweepExpired()
}

// PruneActivity drops activity entries past the retention window.
func (a *App) PruneActivity() {
	if n := a.Activity.Prune(activityRetention); n > 0 {
		logger.WithFields(map[string]interface{}{"dropped": n}).Debug("pruned activity log")
	}
}
