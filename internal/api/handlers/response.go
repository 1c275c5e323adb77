package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EveryDayApps/LinkLock-sub001/internal/crypto"
	"github.com/EveryDayApps/LinkLock-sub001/internal/matcher"
	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

// respondOK writes the success envelope with optional payload fields.
func respondOK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// respondErr maps a service error to an HTTP status and the failure
// envelope. No operation throws across this boundary; failures are always
// encoded in the result.
func respondErr(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, crypto.ErrInvalidPassword):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrDomainInCooldown):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrRuleNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateRule),
		errors.Is(err, services.ErrDuplicateProfileName),
		errors.Is(err, services.ErrDeleteActiveProfile),
		errors.Is(err, services.ErrDeleteLastProfile):
		return http.StatusConflict
	case errors.Is(err, matcher.ErrEmptyPattern),
		errors.Is(err, matcher.ErrInvalidPatternChar),
		errors.Is(err, matcher.ErrWildcardPlacement),
		errors.Is(err, matcher.ErrPatternNeedsDot),
		errors.Is(err, matcher.ErrInvalidURL),
		errors.Is(err, services.ErrInvalidSnoozeDuration),
		errors.Is(err, services.ErrInvalidRuleAction),
		errors.Is(err, services.ErrMissingLockOptions),
		errors.Is(err, services.ErrMissingRedirectOptions),
		errors.Is(err, services.ErrInvalidRedirectURL),
		errors.Is(err, services.ErrMissingCustomPasswordHash),
		errors.Is(err, services.ErrInvalidUnlockDuration),
		errors.Is(err, services.ErrRuleNotLockable),
		errors.Is(err, services.ErrDomainRuleMismatch),
		errors.Is(err, services.ErrProfileNameRequired),
		errors.Is(err, crypto.ErrPasswordTooShort),
		errors.Is(err, crypto.ErrPasswordNeedsLetter),
		errors.Is(err, crypto.ErrPasswordNeedsDigit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
