package models

// DecisionAction is the outcome of evaluating one URL against the rule set.
type DecisionAction string

const (
	DecisionAllow         DecisionAction = "allow"
	DecisionBlock         DecisionAction = "block"
	DecisionRedirect      DecisionAction = "redirect"
	DecisionRequireUnlock DecisionAction = "require_unlock"
)

// Decision is the result of a URL evaluation. RedirectURL is set for
// redirect decisions; Rule is set whenever a rule matched.
type Decision struct {
	Action      DecisionAction `json:"action"`
	Domain      string         `json:"domain,omitempty"`
	RedirectURL string         `json:"redirect_url,omitempty"`
	Rule        *Rule          `json:"rule,omitempty"`
}
