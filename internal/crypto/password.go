package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"unicode"
)

var (
	ErrInvalidPassword     = errors.New("invalid password")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrPasswordNeedsLetter = errors.New("password must contain at least one letter")
	ErrPasswordNeedsDigit  = errors.New("password must contain at least one digit")
)

// PasswordService hashes and verifies passwords and orchestrates
// master-password changes.
//
// The digest is a plain SHA-256 of the UTF-8 password bytes, hex-encoded.
// The hash doubles as input to record-key derivation, so it must be
// deterministic; a salted scheme cannot back the storage layer.
type PasswordService struct{}

func NewPasswordService() *PasswordService {
	return &PasswordService{}
}

// HashPassword returns the hex-encoded SHA-256 digest of the password.
func (s *PasswordService) HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword re-hashes the candidate and compares in constant time.
func (s *PasswordService) VerifyPassword(password, hash string) bool {
	candidate := s.HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hash)) == 1
}

// ValidateStrength enforces the minimum password policy: at least 8
// characters, one letter and one digit.
func (s *PasswordService) ValidateStrength(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return ErrPasswordNeedsLetter
	}
	if !hasDigit {
		return ErrPasswordNeedsDigit
	}
	return nil
}

// ChangeMasterPassword verifies the old password against the current hash,
// validates the new password's strength and returns the new hash. Re-keying
// of already-stored records is the caller's job; ApplicationService performs
// it before persisting the returned hash.
func (s *PasswordService) ChangeMasterPassword(oldPassword, newPassword, currentHash string) (string, error) {
	if !s.VerifyPassword(oldPassword, currentHash) {
		return "", ErrInvalidPassword
	}
	if err := s.ValidateStrength(newPassword); err != nil {
		return "", err
	}
	return s.HashPassword(newPassword), nil
}
