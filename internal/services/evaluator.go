package services

import (
	"github.com/EveryDayApps/LinkLock-sub001/internal/matcher"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
)

// Evaluator turns a URL into a policy decision by composing the rule matcher
// with the unlock/snooze state.
type Evaluator struct {
	sessions *UnlockSessionService
}

func NewEvaluator(sessions *UnlockSessionService) *Evaluator {
	return &Evaluator{sessions: sessions}
}

// Evaluate matches the URL against the active profile's rules. Lock rules
// yield Allow while the domain is unlocked or snoozed for the profile;
// unmatched URLs are allowed (default-open policy).
func (e *Evaluator) Evaluate(rawURL string, rules []models.Rule, activeProfileID string) models.Decision {
	scoped := make([]models.Rule, 0, len(rules))
	for _, r := range rules {
		if r.ProfileID == activeProfileID {
			scoped = append(scoped, r)
		}
	}

	rule := matcher.FindMatchingRule(rawURL, scoped)
	if rule == nil {
		return models.Decision{Action: models.DecisionAllow}
	}

	domain, err := matcher.Hostname(rawURL)
	if err != nil {
		return models.Decision{Action: models.DecisionAllow}
	}

	switch rule.Action {
	case models.ActionBlock:
		return models.Decision{Action: models.DecisionBlock, Domain: domain, Rule: rule}
	case models.ActionRedirect:
		return models.Decision{
			Action:      models.DecisionRedirect,
			Domain:      domain,
			RedirectURL: rule.RedirectOptions.TargetURL,
			Rule:        rule,
		}
	case models.ActionLock:
		if e.sessions.IsUnlocked(domain, activeProfileID) || e.sessions.IsSnoozed(domain, activeProfileID) {
			return models.Decision{Action: models.DecisionAllow, Domain: domain, Rule: rule}
		}
		return models.Decision{Action: models.DecisionRequireUnlock, Domain: domain, Rule: rule}
	}

	return models.Decision{Action: models.DecisionAllow, Domain: domain}
}
