package matcher

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
)

var (
	ErrEmptyPattern       = errors.New("pattern must not be empty")
	ErrInvalidPatternChar = errors.New("pattern contains invalid characters")
	ErrWildcardPlacement  = errors.New("wildcard must be a leading *. prefix")
	ErrPatternNeedsDot    = errors.New("pattern must contain a dot")
	ErrInvalidURL         = errors.New("invalid url")
)

const invalidPatternChars = "<>\"|{}\\^`"

// Hostname extracts the lowercase hostname from a raw URL, defaulting the
// scheme to https when none is present.
func Hostname(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	return strings.ToLower(u.Hostname()), nil
}

// ValidatePattern rejects empty patterns, forbidden characters, whitespace,
// wildcards not anchored at the start, and patterns without a dot.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return ErrEmptyPattern
	}
	if strings.ContainsAny(pattern, invalidPatternChars) || strings.ContainsAny(pattern, " \t\r\n") {
		return ErrInvalidPatternChar
	}
	if i := strings.Index(pattern, "*"); i >= 0 {
		if i != 0 || !strings.HasPrefix(pattern, "*.") || strings.Contains(pattern[2:], "*") {
			return ErrWildcardPlacement
		}
	}
	host := strings.TrimPrefix(pattern, "*.")
	if !strings.Contains(host, ".") {
		return ErrPatternNeedsDot
	}
	return nil
}

// MatchesPattern reports whether the URL's hostname matches the pattern.
// Exact patterns match the hostname verbatim; a *. prefix matches the bare
// domain and any subdomain depth.
func MatchesPattern(rawURL, pattern string) bool {
	host, err := Hostname(rawURL)
	if err != nil {
		return false
	}

	pattern = strings.ToLower(pattern)
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return host == suffix || strings.HasSuffix(host, "."+suffix)
	}
	return host == pattern
}

// FindMatchingRule returns the first enabled rule whose pattern matches the
// URL, in input order. Ties break by list position, not specificity.
func FindMatchingRule(rawURL string, rules []models.Rule) *models.Rule {
	for i := range rules {
		if !rules[i].Enabled {
			continue
		}
		if MatchesPattern(rawURL, rules[i].URLPattern) {
			return &rules[i]
		}
	}
	return nil
}
