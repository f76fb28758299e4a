package utils

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 6

var ErrWeakPassword = errors.New("password must be 6 to 72 characters")

// CheckPassword enforces the registration password policy.  bcrypt ignores
// everything past 72 bytes, so longer inputs are rejected too.
func CheckPassword(plain string) error {
	if utf8.RuneCountInString(plain) < MinPasswordLen || len(plain) > 72 {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns a bcrypt hash.  Costs outside bcrypt's range fall
// back to the library default.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
