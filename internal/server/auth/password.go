package auth

import (
	"fmt"
	"unicode"

	"github.com/evgsol/vipgate/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicy is checked before hashing. A policy violation is a
// user-facing error, distinct from a hashing failure.
type PasswordPolicy struct {
	MinLength             int
	RequireLetterAndDigit bool
}

// Check returns ErrWeakPassword (wrapped with the reason) when the candidate
// password does not satisfy the policy.
func (p PasswordPolicy) Check(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("%w: at least %d characters required", common.ErrWeakPassword, p.MinLength)
	}
	if p.RequireLetterAndDigit {
		var hasLetter, hasDigit bool
		for _, r := range password {
			switch {
			case unicode.IsLetter(r):
				hasLetter = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		if !hasLetter || !hasDigit {
			return fmt.Errorf("%w: must contain both letters and digits", common.ErrWeakPassword)
		}
	}
	return nil
}

// HashPassword hashes a password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
